package service

import (
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/tieubaoca/docsum-be/config"
	"github.com/tieubaoca/docsum-be/types"
	"github.com/tieubaoca/docsum-be/utils"
)

// ChunkService splits a normalized document into contiguous chunks that
// reassemble byte-for-byte into the trimmed input. Continuation hints
// between neighboring chunks live in ContextOverlap only, never in the
// chunk content itself.
type ChunkService struct {
	cfg config.PipelineConfig

	paragraphSep  *regexp.Regexp
	sectionHeader *regexp.Regexp
	sentenceEnd   *regexp.Regexp
}

func NewChunkService(cfg config.PipelineConfig) *ChunkService {
	return &ChunkService{
		cfg:           cfg,
		paragraphSep:  regexp.MustCompile(`\n\s*\n`),
		sectionHeader: regexp.MustCompile(`(?m)^[\d\w\s]*[:\-]\s*`),
		sentenceEnd:   regexp.MustCompile(`[.!?]\s+`),
	}
}

// ShouldChunk reports whether the document is large enough to require
// the chunked pipeline.
func (s *ChunkService) ShouldChunk(text string) bool {
	return len(text) > s.cfg.LargeDocumentThreshold
}

// ChunkDocument splits text into chunks of at most MaxCharsPerChunk
// characters. When preserveStructure is set and the document shows
// paragraph/section structure, splits happen on paragraph boundaries;
// otherwise on sentence boundaries. maxChunks > 0 caps the chunk count
// by merging neighbors.
func (s *ChunkService) ChunkDocument(text string, preserveStructure bool, maxChunks int) (*types.ChunkingResult, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("empty document")
	}

	if len(trimmed) <= s.cfg.LargeDocumentThreshold {
		chunk := types.DocumentChunk{
			Content:     trimmed,
			ChunkID:     0,
			StartPos:    0,
			EndPos:      len(trimmed),
			WordCount:   utils.CountWords(trimmed),
			CharCount:   len(trimmed),
			ContextInfo: "Single chunk",
		}
		return &types.ChunkingResult{
			Chunks:             []types.DocumentChunk{chunk},
			TotalChunks:        1,
			TotalChars:         len(trimmed),
			AvgChunkSize:       len(trimmed),
			ProcessingStrategy: types.StrategySingleChunk,
		}, nil
	}

	structured := preserveStructure && s.hasStructure(trimmed)
	strategy := types.StrategySimpleChunking
	label := "Simple chunk"
	if structured {
		strategy = types.StrategyStructureAware
		label = "Structure chunk"
	}

	segments := s.segment(trimmed, structured)
	contents := s.accumulate(segments)
	if maxChunks > 0 && len(contents) > maxChunks {
		log.Printf("Merging %d chunks down to %d", len(contents), maxChunks)
		contents = mergeContiguous(contents, maxChunks)
	}

	chunks := s.annotate(contents, label)
	result := &types.ChunkingResult{
		Chunks:             chunks,
		TotalChunks:        len(chunks),
		TotalChars:         len(trimmed),
		AvgChunkSize:       len(trimmed) / len(chunks),
		ProcessingStrategy: strategy,
	}
	log.Printf("Chunked document: %d chars into %d chunks (%s)", len(trimmed), len(chunks), strategy)
	return result, nil
}

// hasStructure checks for enough paragraph breaks and section-like
// headers to make paragraph-boundary splitting worthwhile.
func (s *ChunkService) hasStructure(text string) bool {
	paragraphs := 0
	for _, p := range s.paragraphSep.Split(text, -1) {
		if strings.TrimSpace(p) != "" {
			paragraphs++
		}
	}
	sections := len(s.sectionHeader.FindAllString(text, -1))
	return paragraphs >= s.cfg.MinParagraphs && sections >= s.cfg.MinSections
}

// segment cuts the text into units whose concatenation equals the input:
// each separator stays attached to the segment it terminates. Structured
// paragraphs larger than the chunk budget are pre-split into sentences.
func (s *ChunkService) segment(text string, structured bool) []string {
	if !structured {
		return splitKeepingSeparators(text, s.sentenceEnd)
	}
	var segments []string
	for _, para := range splitKeepingSeparators(text, s.paragraphSep) {
		if len(para) > s.cfg.MaxCharsPerChunk {
			segments = append(segments, splitKeepingSeparators(para, s.sentenceEnd)...)
		} else {
			segments = append(segments, para)
		}
	}
	return segments
}

// splitKeepingSeparators cuts text at the end of every separator match,
// so each piece carries its own trailing separator.
func splitKeepingSeparators(text string, sep *regexp.Regexp) []string {
	matches := sep.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return []string{text}
	}
	segments := make([]string, 0, len(matches)+1)
	prev := 0
	for _, m := range matches {
		segments = append(segments, text[prev:m[1]])
		prev = m[1]
	}
	if prev < len(text) {
		segments = append(segments, text[prev:])
	}
	return segments
}

// accumulate greedily packs segments into chunk contents without ever
// crossing the budget, except for a single segment that alone exceeds
// it - that one becomes its own oversized chunk rather than being cut
// mid-sentence.
func (s *ChunkService) accumulate(segments []string) []string {
	var contents []string
	var cur strings.Builder
	for _, seg := range segments {
		if cur.Len() > 0 && cur.Len()+len(seg) > s.cfg.MaxCharsPerChunk {
			contents = append(contents, cur.String())
			cur.Reset()
		}
		cur.WriteString(seg)
		if cur.Len() > s.cfg.MaxCharsPerChunk {
			contents = append(contents, cur.String())
			cur.Reset()
		}
	}
	if cur.Len() > 0 {
		contents = append(contents, cur.String())
	}
	return contents
}

// mergeContiguous concatenates neighboring chunks so at most maxChunks
// remain. The index mapping is monotonic, so ordering and adjacency are
// preserved.
func mergeContiguous(contents []string, maxChunks int) []string {
	merged := make([]strings.Builder, maxChunks)
	for i, c := range contents {
		merged[i*maxChunks/len(contents)].WriteString(c)
	}
	out := make([]string, maxChunks)
	for i := range merged {
		out[i] = merged[i].String()
	}
	return out
}

func (s *ChunkService) annotate(contents []string, label string) []types.DocumentChunk {
	chunks := make([]types.DocumentChunk, len(contents))
	pos := 0
	for i, content := range contents {
		chunks[i] = types.DocumentChunk{
			Content:        content,
			ChunkID:        i,
			StartPos:       pos,
			EndPos:         pos + len(content),
			WordCount:      utils.CountWords(content),
			CharCount:      len(content),
			ContextInfo:    fmt.Sprintf("%s %d/%d", label, i+1, len(contents)),
			ContextOverlap: s.overlapNote(contents, i),
		}
		pos += len(content)
	}
	return chunks
}

// overlapNote builds the advisory continuation hints for the LLM prompt
// from the neighbors' edges.
func (s *ChunkService) overlapNote(contents []string, i int) string {
	var b strings.Builder
	if i > 0 {
		b.WriteString("[Tiếp theo từ phần trước: ...")
		b.WriteString(strings.TrimSpace(tailChars(contents[i-1], s.cfg.OverlapSize)))
		b.WriteString("]")
	}
	if i < len(contents)-1 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("[Tiếp tục ở phần sau: ")
		b.WriteString(strings.TrimSpace(headChars(contents[i+1], s.cfg.OverlapSize)))
		b.WriteString("...]")
	}
	return b.String()
}

func headChars(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}

func tailChars(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[len(runes)-n:])
}
