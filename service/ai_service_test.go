package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type contentHolder struct{ content string }

func (c contentHolder) GetContent() string { return c.content }

func TestExtractCompletionText(t *testing.T) {
	tests := []struct {
		name     string
		response interface{}
		want     string
	}{
		{"plain string", "  kết quả tóm tắt  ", "kết quả tóm tắt"},
		{"content map", map[string]interface{}{"content": " từ map "}, "từ map"},
		{"map without content", map[string]interface{}{"other": 1}, "map[other:1]"},
		{"content getter", contentHolder{content: " qua getter "}, "qua getter"},
		{"nil", nil, ""},
		{"fallback formatting", 42, "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractCompletionText(tt.response))
		})
	}
}
