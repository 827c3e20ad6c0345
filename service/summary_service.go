package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/tieubaoca/docsum-be/config"
	"github.com/tieubaoca/docsum-be/types"
	"github.com/tieubaoca/docsum-be/utils"
)

const minInputChars = 50

// summaryInstructions maps summary types to the instruction block sent
// to the model.
var summaryInstructions = map[string]string{
	"general":           "Tạo bản tóm tắt tổng quan, bao quát các ý chính của văn bản.",
	"bullet_points":     "Tóm tắt văn bản dưới dạng danh sách gạch đầu dòng, mỗi dòng một ý chính.",
	"key_insights":      "Rút ra những nhận định và thông tin quan trọng nhất từ văn bản.",
	"executive_summary": "Viết bản tóm tắt điều hành ngắn gọn dành cho lãnh đạo, tập trung vào kết luận và khuyến nghị.",
	"detailed":          "Tạo bản tóm tắt chi tiết, giữ lại các số liệu, điều khoản và mốc thời gian quan trọng.",
}

// lengthRatios drives the optimal summary length per summary depth, as
// a fraction of the source character count.
var lengthRatios = map[string]float64{
	"brief":         0.03,
	"general":       0.08,
	"detailed":      0.15,
	"comprehensive": 0.25,
}

// SummaryService runs the summarization pipeline: direct for small
// texts, chunk-then-merge for large ones.
type SummaryService struct {
	cfg        config.PipelineConfig
	completion CompletionService
	chunker    *ChunkService
}

func NewSummaryService(cfg config.PipelineConfig, completion CompletionService, chunker *ChunkService) *SummaryService {
	return &SummaryService{
		cfg:        cfg,
		completion: completion,
		chunker:    chunker,
	}
}

// SummarizeText is the pipeline entry point for raw text.
func (s *SummaryService) SummarizeText(ctx context.Context, req types.SummarizeTextRequest) (*types.SummaryResult, error) {
	start := time.Now()

	if utf8.RuneCountInString(strings.TrimSpace(req.Text)) < minInputChars {
		return nil, fmt.Errorf("văn bản quá ngắn để tóm tắt (tối thiểu %d ký tự)", minInputChars)
	}

	summaryType := req.SummaryType
	if summaryType == "" {
		summaryType = "general"
	}
	language := req.Language
	if language == "" {
		language = "vi"
	}
	maxLength := req.MaxLength
	if maxLength <= 0 {
		maxLength = 500
	}

	text := utils.CleanText(req.Text)
	originalLength := len(text)

	// Auto-adjust requested length when it diverges badly from what the
	// document size warrants.
	if req.AutoAdjust == nil || *req.AutoAdjust {
		optimal := s.OptimalMaxLength(originalLength, summaryType)
		if diff := optimal - maxLength; diff > maxLength/2 || -diff > maxLength/2 {
			log.Printf("Adjusting max_length from %d to %d for %d chars", maxLength, optimal, originalLength)
			maxLength = optimal
		}
	}

	var (
		summary string
		method  = types.ProcessingMethodDirect
		stats   *types.ChunkingStats
		err     error
	)

	switch {
	case originalLength < s.cfg.FastProcessingThreshold:
		summary, err = s.directSummary(ctx, text, summaryType, language, maxLength)
	case s.chunker.ShouldChunk(text):
		summary, stats, err = s.summarizeChunked(ctx, text, summaryType, language, maxLength)
		method = types.ProcessingMethodChunked
	default:
		summary, err = s.directSummary(ctx, text, summaryType, language, maxLength)
	}
	if err != nil {
		return nil, err
	}

	result := &types.SummaryResult{
		Summary:        summary,
		SummaryType:    summaryType,
		Language:       language,
		OriginalLength: originalLength,
		SummaryLength:  len(summary),
		WordCount: types.SummaryWordCount{
			Original: utils.CountWords(text),
			Summary:  utils.CountWords(summary),
		},
		MaxLengthUsed:         maxLength,
		ProcessingMethod:      method,
		ProcessingTimeSeconds: time.Since(start).Seconds(),
		ChunkingStats:         stats,
	}
	if len(summary) > 0 {
		result.CompressionRatio = float64(originalLength) / float64(len(summary))
	}
	return result, nil
}

// OptimalMaxLength estimates a sensible summary word budget from the
// document size, clamped to [50, 5000].
func (s *SummaryService) OptimalMaxLength(textLen int, summaryType string) int {
	ratio, ok := lengthRatios[summaryType]
	if !ok {
		ratio = lengthRatios["general"]
	}
	// ~6 chars per Vietnamese word including the trailing space
	optimal := int(float64(textLen) * ratio / 6)
	if optimal < 50 {
		return 50
	}
	if optimal > 5000 {
		return 5000
	}
	return optimal
}

func (s *SummaryService) summarizeChunked(ctx context.Context, text, summaryType, language string, maxLength int) (string, *types.ChunkingStats, error) {
	chunking, err := s.chunker.ChunkDocument(text, true, s.cfg.MaxChunks)
	if err != nil {
		return "", nil, fmt.Errorf("chunking failed: %w", err)
	}
	log.Printf("Processing large document: %d chunks, strategy %s", chunking.TotalChunks, chunking.ProcessingStrategy)

	partials, err := s.ProcessChunks(ctx, chunking.Chunks, summaryType, language)
	if err != nil {
		return "", nil, err
	}

	summary, err := s.CreateFinalSummary(ctx, partials, summaryType, language, maxLength)
	if err != nil {
		return "", nil, err
	}

	stats := &types.ChunkingStats{
		TotalChunks:        chunking.TotalChunks,
		TotalChars:         chunking.TotalChars,
		AvgChunkSize:       chunking.AvgChunkSize,
		ProcessingStrategy: chunking.ProcessingStrategy,
		EstimatedCalls:     chunking.TotalChunks + 1,
		CallsMade:          chunking.TotalChunks + 1,
		Parallel:           len(chunking.Chunks) <= s.cfg.ParallelThreshold,
	}
	return summary, stats, nil
}

// ProcessChunks summarizes every chunk and returns the partial
// summaries in chunk order. A failed chunk yields an error placeholder
// at its slot instead of aborting the batch.
func (s *SummaryService) ProcessChunks(ctx context.Context, chunks []types.DocumentChunk, summaryType, language string) ([]string, error) {
	if s.completion == nil {
		return nil, fmt.Errorf("no completion service configured")
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunks to process")
	}
	if len(chunks) <= s.cfg.ParallelThreshold {
		return s.processParallel(ctx, chunks, summaryType, language), nil
	}
	return s.processSequential(ctx, chunks, summaryType, language)
}

func (s *SummaryService) processParallel(ctx context.Context, chunks []types.DocumentChunk, summaryType, language string) []string {
	results := make([]string, len(chunks))
	sem := make(chan struct{}, s.cfg.MaxParallel)
	var wg sync.WaitGroup

	for i := range chunks {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = s.summarizeChunk(ctx, chunks[i], summaryType, language)
		}(i)
	}
	wg.Wait()
	return results
}

func (s *SummaryService) processSequential(ctx context.Context, chunks []types.DocumentChunk, summaryType, language string) ([]string, error) {
	results := make([]string, len(chunks))
	for i := range chunks {
		results[i] = s.summarizeChunk(ctx, chunks[i], summaryType, language)
		if i < len(chunks)-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.cfg.RateLimitDelay):
			}
		}
	}
	return results, nil
}

// summarizeChunk never fails the batch: errors become a tagged
// placeholder the aggregation step filters out.
func (s *SummaryService) summarizeChunk(ctx context.Context, chunk types.DocumentChunk, summaryType, language string) string {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	resp, err := s.completion.Complete(ctx, s.chunkPrompt(chunk, summaryType, language))
	if err != nil {
		log.Printf("Chunk %d summarization failed: %v", chunk.ChunkID, err)
		return fmt.Sprintf("[Lỗi chunk %d: %v]", chunk.ChunkID, err)
	}
	return strings.TrimSpace(resp)
}

func (s *SummaryService) chunkPrompt(chunk types.DocumentChunk, summaryType, language string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tóm tắt phần văn bản sau (%s) trong khoảng %d-%d từ bằng %s. %s\n\n",
		chunk.ContextInfo, s.cfg.ChunkSummaryMinWords, s.cfg.ChunkSummaryMaxWords,
		languageName(language), instructionFor(summaryType))
	if chunk.ContextOverlap != "" {
		b.WriteString(chunk.ContextOverlap)
		b.WriteString("\n\n")
	}
	b.WriteString(chunk.Content)
	return b.String()
}

// CreateFinalSummary merges the per-chunk partial summaries into one
// coherent summary. Error placeholders are dropped first; if everything
// failed, a fixed failure message is returned instead of an error so
// the caller still gets a displayable result. If the merge call itself
// fails, the concatenated partials are truncated and returned as a
// degraded summary.
func (s *SummaryService) CreateFinalSummary(ctx context.Context, partials []string, summaryType, language string, maxLength int) (string, error) {
	var valid []string
	for _, p := range partials {
		if p != "" && !strings.HasPrefix(p, "[Lỗi") {
			valid = append(valid, p)
		}
	}
	if len(valid) == 0 {
		return "Không thể tạo tóm tắt do lỗi xử lý.", nil
	}
	if failed := len(partials) - len(valid); failed > 0 {
		log.Printf("Merging %d partial summaries (%d chunks failed)", len(valid), failed)
	}

	parts := make([]string, len(valid))
	for i, p := range valid {
		parts[i] = fmt.Sprintf("Phần %d: %s", i+1, p)
	}
	combined := strings.Join(parts, "\n\n")

	prompt := fmt.Sprintf(
		"Dưới đây là các bản tóm tắt từng phần của một tài liệu. Hãy hợp nhất chúng thành một bản tóm tắt hoàn chỉnh, mạch lạc, tối đa %d từ, bằng %s. %s\n\n%s",
		maxLength, languageName(language), instructionFor(summaryType), combined)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()
	merged, err := s.completion.Complete(ctx, prompt)
	if err != nil {
		log.Printf("Final merge failed, falling back to concatenation: %v", err)
		return utils.TruncateRunes(combined, maxLength*5), nil
	}
	return strings.TrimSpace(merged), nil
}

func (s *SummaryService) directSummary(ctx context.Context, text, summaryType, language string, maxLength int) (string, error) {
	prompt := fmt.Sprintf("Tóm tắt văn bản sau trong tối đa %d từ bằng %s. %s\n\n%s",
		maxLength, languageName(language), instructionFor(summaryType), text)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()
	resp, err := s.completion.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("summarization failed: %w", err)
	}
	return strings.TrimSpace(resp), nil
}

func instructionFor(summaryType string) string {
	if instr, ok := summaryInstructions[summaryType]; ok {
		return instr
	}
	return summaryInstructions["general"]
}

func languageName(language string) string {
	switch language {
	case "en":
		return "tiếng Anh"
	default:
		return "tiếng Việt"
	}
}
