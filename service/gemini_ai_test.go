package service

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeminiService_NoKeys(t *testing.T) {
	_, err := NewGeminiService(nil, "gemini-1.5-flash")
	assert.Error(t, err)
}

func TestGeminiService_ConcurrentKeyRotation(t *testing.T) {
	svc, err := NewGeminiService([]string{"key-a", "key-b", "key-c"}, "gemini-1.5-flash")
	require.NoError(t, err)
	defer svc.Close()

	// Xoay key trong khi các goroutine khác đang đọc model
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				assert.NoError(t, svc.rotateAPIKey())
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				assert.NotNil(t, svc.currentModel())
			}
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, svc.currentKey, 0)
	assert.Less(t, svc.currentKey, len(svc.apiKeys))
}
