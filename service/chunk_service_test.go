package service

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tieubaoca/docsum-be/config"
	"github.com/tieubaoca/docsum-be/types"
)

func chunkTestConfig() config.PipelineConfig {
	cfg := config.DefaultPipelineConfig()
	cfg.LargeDocumentThreshold = 80
	cfg.MaxCharsPerChunk = 120
	cfg.OverlapSize = 20
	return cfg
}

// structuredDoc builds a document with section headers and paragraph
// breaks, large enough to need several chunks under the test budget.
func structuredDoc(sections int) string {
	var b strings.Builder
	for i := 1; i <= sections; i++ {
		fmt.Fprintf(&b, "Section %d: overview\nThis part covers topic number %d in enough detail to matter.\n\n", i, i)
	}
	return b.String()
}

func TestShouldChunk(t *testing.T) {
	s := NewChunkService(chunkTestConfig())
	assert.False(t, s.ShouldChunk(strings.Repeat("a", 80)))
	assert.True(t, s.ShouldChunk(strings.Repeat("a", 81)))
}

func TestChunkDocument_Empty(t *testing.T) {
	s := NewChunkService(chunkTestConfig())
	_, err := s.ChunkDocument("   \n\t ", true, 0)
	assert.Error(t, err)
}

func TestChunkDocument_SingleChunk(t *testing.T) {
	s := NewChunkService(chunkTestConfig())
	input := "  A short note about one quarterly report.  "

	result, err := s.ChunkDocument(input, true, 0)
	require.NoError(t, err)

	assert.Equal(t, types.StrategySingleChunk, result.ProcessingStrategy)
	require.Len(t, result.Chunks, 1)
	chunk := result.Chunks[0]
	assert.Equal(t, strings.TrimSpace(input), chunk.Content)
	assert.Equal(t, 0, chunk.ChunkID)
	assert.Equal(t, 0, chunk.StartPos)
	assert.Equal(t, len(chunk.Content), chunk.EndPos)
	assert.Equal(t, "Single chunk", chunk.ContextInfo)
	assert.Empty(t, chunk.ContextOverlap)
}

func TestChunkDocument_BetweenThresholdAndBudget(t *testing.T) {
	s := NewChunkService(chunkTestConfig())

	// Above the large-document threshold but within one chunk budget:
	// a single chunk, yet reported with the real chunking strategy.
	input := "Part 1: alpha alpha alpha\n\nPart 2: beta beta beta beta\n\nPart 3: gamma gamma gamma gamma"
	require.Greater(t, len(input), 80)
	require.LessOrEqual(t, len(input), 120)

	result, err := s.ChunkDocument(input, true, 0)
	require.NoError(t, err)
	assert.Equal(t, types.StrategyStructureAware, result.ProcessingStrategy)
	require.Len(t, result.Chunks, 1)
	assert.Equal(t, input, result.Chunks[0].Content)
	assert.Equal(t, "Structure chunk 1/1", result.Chunks[0].ContextInfo)
	assert.Empty(t, result.Chunks[0].ContextOverlap)

	plain := strings.TrimSpace(strings.Repeat("Most figures improved. ", 4))
	require.Greater(t, len(plain), 80)
	require.LessOrEqual(t, len(plain), 120)

	result, err = s.ChunkDocument(plain, true, 0)
	require.NoError(t, err)
	assert.Equal(t, types.StrategySimpleChunking, result.ProcessingStrategy)
	require.Len(t, result.Chunks, 1)
	assert.Equal(t, plain, result.Chunks[0].Content)
}

func TestChunkDocument_ExactPartition(t *testing.T) {
	s := NewChunkService(chunkTestConfig())
	input := structuredDoc(6)

	result, err := s.ChunkDocument(input, true, 0)
	require.NoError(t, err)
	require.Greater(t, result.TotalChunks, 1)

	trimmed := strings.TrimSpace(input)
	var reassembled strings.Builder
	pos := 0
	for i, chunk := range result.Chunks {
		assert.Equal(t, i, chunk.ChunkID)
		assert.Equal(t, pos, chunk.StartPos)
		assert.Equal(t, pos+len(chunk.Content), chunk.EndPos)
		assert.Equal(t, len(chunk.Content), chunk.CharCount)
		// continuation notes never leak into the content
		assert.NotContains(t, chunk.Content, "[Tiếp")
		reassembled.WriteString(chunk.Content)
		pos = chunk.EndPos
	}
	assert.Equal(t, trimmed, reassembled.String())
	assert.Equal(t, len(trimmed), result.TotalChars)
}

func TestChunkDocument_BudgetRespected(t *testing.T) {
	cfg := chunkTestConfig()
	s := NewChunkService(cfg)

	result, err := s.ChunkDocument(structuredDoc(8), true, 0)
	require.NoError(t, err)

	for _, chunk := range result.Chunks {
		assert.LessOrEqual(t, chunk.CharCount, cfg.MaxCharsPerChunk,
			"chunk %d exceeds budget", chunk.ChunkID)
	}
}

func TestChunkDocument_OversizedSentenceKeptWhole(t *testing.T) {
	cfg := chunkTestConfig()
	s := NewChunkService(cfg)

	// One sentence with no split points beyond the budget
	giant := strings.Repeat("x", cfg.MaxCharsPerChunk+50)
	input := "Short intro. " + giant + ". Short outro."

	result, err := s.ChunkDocument(input, false, 0)
	require.NoError(t, err)

	found := false
	for _, chunk := range result.Chunks {
		if strings.Contains(chunk.Content, giant) {
			found = true
		}
	}
	assert.True(t, found, "oversized sentence must stay in one chunk")

	// partition still holds
	var reassembled strings.Builder
	for _, chunk := range result.Chunks {
		reassembled.WriteString(chunk.Content)
	}
	assert.Equal(t, strings.TrimSpace(input), reassembled.String())
}

func TestChunkDocument_StrategySelection(t *testing.T) {
	s := NewChunkService(chunkTestConfig())

	structured := structuredDoc(6)
	unstructured := strings.Repeat("One plain sentence follows another here. ", 10)

	tests := []struct {
		name              string
		input             string
		preserveStructure bool
		wantStrategy      string
	}{
		{"structured document", structured, true, types.StrategyStructureAware},
		{"structure disabled", structured, false, types.StrategySimpleChunking},
		{"no structure present", unstructured, true, types.StrategySimpleChunking},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.ChunkDocument(tt.input, tt.preserveStructure, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStrategy, result.ProcessingStrategy)
		})
	}
}

func TestChunkDocument_MaxChunksMerge(t *testing.T) {
	s := NewChunkService(chunkTestConfig())
	input := structuredDoc(10)

	unlimited, err := s.ChunkDocument(input, true, 0)
	require.NoError(t, err)
	require.Greater(t, unlimited.TotalChunks, 2)

	capped, err := s.ChunkDocument(input, true, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, capped.TotalChunks)

	var reassembled strings.Builder
	for _, chunk := range capped.Chunks {
		reassembled.WriteString(chunk.Content)
	}
	assert.Equal(t, strings.TrimSpace(input), reassembled.String())
}

func TestChunkDocument_OverlapNotes(t *testing.T) {
	s := NewChunkService(chunkTestConfig())

	result, err := s.ChunkDocument(structuredDoc(8), true, 0)
	require.NoError(t, err)
	require.GreaterOrEqual(t, result.TotalChunks, 3)

	first := result.Chunks[0]
	middle := result.Chunks[1]
	last := result.Chunks[len(result.Chunks)-1]

	assert.NotContains(t, first.ContextOverlap, "Tiếp theo từ phần trước")
	assert.Contains(t, first.ContextOverlap, "Tiếp tục ở phần sau")

	assert.Contains(t, middle.ContextOverlap, "Tiếp theo từ phần trước")
	assert.Contains(t, middle.ContextOverlap, "Tiếp tục ở phần sau")

	assert.Contains(t, last.ContextOverlap, "Tiếp theo từ phần trước")
	assert.NotContains(t, last.ContextOverlap, "Tiếp tục ở phần sau")
}

func TestSplitKeepingSeparators(t *testing.T) {
	s := NewChunkService(chunkTestConfig())

	text := "First sentence. Second one! Third?"
	segments := splitKeepingSeparators(text, s.sentenceEnd)
	require.Len(t, segments, 3)
	assert.Equal(t, text, strings.Join(segments, ""))
	assert.Equal(t, "First sentence. ", segments[0])
}
