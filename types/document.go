package types

// Extraction sources
const (
	ExtractionSourcePdftotext = "pdftotext"
	ExtractionSourceOCR       = "ocr"
)

// Chunking strategies
const (
	StrategySingleChunk    = "single_chunk"
	StrategyStructureAware = "structure_aware"
	StrategySimpleChunking = "simple_chunking"
)

// Processing methods for the final summary result
const (
	ProcessingMethodDirect  = "direct"
	ProcessingMethodChunked = "chunked"
)

// ExtractionResult is the outcome of one PDF text extraction.
// Text is never empty on success; a failed extraction is reported as an
// error by the extractor, not as an empty result.
type ExtractionResult struct {
	Text           string `json:"text"`
	Source         string `json:"source"`          // pdftotext | ocr
	Method         string `json:"method"`          // human-readable sub-strategy
	PagesProcessed string `json:"pages_processed"` // page count or "all"
	CharCount      int    `json:"char_count"`
}

// DocumentChunk is one contiguous slice of the normalized document text.
// Content holds the exact slice; ContextOverlap carries the advisory
// continuation notes for the LLM prompt and is never counted in
// CharCount/WordCount.
type DocumentChunk struct {
	Content        string `json:"content"`
	ChunkID        int    `json:"chunk_id"`
	StartPos       int    `json:"start_pos"`
	EndPos         int    `json:"end_pos"`
	WordCount      int    `json:"word_count"`
	CharCount      int    `json:"char_count"`
	ContextInfo    string `json:"context_info"`
	ContextOverlap string `json:"-"`
}

// ChunkingResult describes how a document was split.
type ChunkingResult struct {
	Chunks             []DocumentChunk `json:"chunks"`
	TotalChunks        int             `json:"total_chunks"`
	TotalChars         int             `json:"total_chars"`
	AvgChunkSize       int             `json:"avg_chunk_size"`
	ProcessingStrategy string          `json:"processing_strategy"`
}

// SummaryWordCount holds original vs summary word counts.
type SummaryWordCount struct {
	Original int `json:"original"`
	Summary  int `json:"summary"`
}

// ChunkingStats is the processing statistics block attached to chunked runs.
type ChunkingStats struct {
	TotalChunks        int    `json:"total_chunks"`
	TotalChars         int    `json:"total_characters"`
	AvgChunkSize       int    `json:"avg_chunk_size"`
	ProcessingStrategy string `json:"processing_strategy"`
	EstimatedCalls     int    `json:"estimated_calls"`
	CallsMade          int    `json:"calls_made"`
	Parallel           bool   `json:"parallel_processing"`
}

// SummaryResult is the final output of the summarization pipeline.
type SummaryResult struct {
	Summary               string           `json:"summary"`
	SummaryType           string           `json:"summary_type"`
	Language              string           `json:"language"`
	OriginalLength        int              `json:"original_length"`
	SummaryLength         int              `json:"summary_length"`
	CompressionRatio      float64          `json:"compression_ratio"`
	WordCount             SummaryWordCount `json:"word_count"`
	MaxLengthUsed         int              `json:"max_length_used"`
	ProcessingMethod      string           `json:"processing_method"` // direct | chunked
	ProcessingTimeSeconds float64          `json:"processing_time_seconds"`
	ChunkingStats         *ChunkingStats   `json:"chunking_stats,omitempty"`
}

// OCRPage holds per-page OCR output and statistics.
type OCRPage struct {
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
	CharCount  int    `json:"char_count"`
	WordCount  int    `json:"word_count"`
	Error      string `json:"error,omitempty"`
}

// OCRResult is the structured outcome of an OCR pass over a PDF.
// Available is false when the OCR runtime is not installed; Success is
// false when no page yielded usable text.
type OCRResult struct {
	Success         bool      `json:"success"`
	Available       bool      `json:"available"`
	Error           string    `json:"error,omitempty"`
	Text            string    `json:"text"`
	Pages           []OCRPage `json:"pages"`
	EngineUsed      string    `json:"engine_used"`
	SuccessfulPages int       `json:"successful_pages"`
	TotalPages      int       `json:"total_pages"`
}

// SummaryRecord is a stored summary history entry.
type SummaryRecord struct {
	ID               string  `json:"id" bson:"_id,omitempty"`
	FileName         string  `json:"file_name" bson:"file_name"`
	SummaryType      string  `json:"summary_type" bson:"summary_type"`
	Language         string  `json:"language" bson:"language"`
	Summary          string  `json:"summary" bson:"summary"`
	OriginalLength   int     `json:"original_length" bson:"original_length"`
	SummaryLength    int     `json:"summary_length" bson:"summary_length"`
	CompressionRatio float64 `json:"compression_ratio" bson:"compression_ratio"`
	ProcessingMethod string  `json:"processing_method" bson:"processing_method"`
	CreatedAt        int64   `json:"created_at" bson:"created_at"`
}
