package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port          string         `mapstructure:"port"`
	AIEndpoint    string         `mapstructure:"ai_endpoint"`
	Model         string         `mapstructure:"model"`
	OpenAIAPIKey  string         `mapstructure:"OPENAI_API_KEY"`
	GeminiAPIKeys string         `mapstructure:"GEMINI_API_KEYS"`
	JWTSecret     string         `mapstructure:"JWT_SECRET"`
	UploadDir     string         `mapstructure:"upload_dir"`
	MongoURI      string         `mapstructure:"MONGODB_URI"`
	Pipeline      PipelineConfig `mapstructure:"pipeline"`
}

// PipelineConfig holds every tunable of the document pipeline. Read once
// at startup, never mutated afterwards.
type PipelineConfig struct {
	// Chunking
	LargeDocumentThreshold int `mapstructure:"large_document_threshold"`
	MaxCharsPerChunk       int `mapstructure:"max_chars_per_chunk"`
	OverlapSize            int `mapstructure:"overlap_size"`
	MaxChunks              int `mapstructure:"max_chunks"` // 0 = no cap
	MinParagraphs          int `mapstructure:"min_paragraphs"`
	MinSections            int `mapstructure:"min_sections"`

	// Orchestration
	ParallelThreshold int           `mapstructure:"parallel_threshold"`
	MaxParallel       int           `mapstructure:"max_parallel"`
	RateLimitDelay    time.Duration `mapstructure:"rate_limit_delay"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`

	// Summary lengths (words)
	ChunkSummaryMinWords    int `mapstructure:"chunk_summary_min_words"`
	ChunkSummaryMaxWords    int `mapstructure:"chunk_summary_max_words"`
	FastProcessingThreshold int `mapstructure:"fast_processing_threshold"`

	// Extraction validity heuristics
	MinTextLength int     `mapstructure:"min_text_length"`
	MetadataRatio float64 `mapstructure:"metadata_ratio"`

	// OCR
	OCRDPI       int    `mapstructure:"ocr_dpi"`
	OCRLanguages string `mapstructure:"ocr_languages"`
}

// DefaultPipelineConfig returns the tuned defaults for Vietnamese banking
// documents. The chunk budget stays at 70% of the model's character-
// equivalent context window.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		LargeDocumentThreshold:  100000,
		MaxCharsPerChunk:        504000,
		OverlapSize:             300,
		MaxChunks:               0,
		MinParagraphs:           3,
		MinSections:             2,
		ParallelThreshold:       5,
		MaxParallel:             3,
		RateLimitDelay:          500 * time.Millisecond,
		RequestTimeout:          120 * time.Second,
		ChunkSummaryMinWords:    150,
		ChunkSummaryMaxWords:    200,
		FastProcessingThreshold: 10000,
		MinTextLength:           100,
		MetadataRatio:           0.7,
		OCRDPI:                  200,
		OCRLanguages:            "vie+eng",
	}
}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	setPipelineDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Bind environment variables for secrets
	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("GEMINI_API_KEYS")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("MONGODB_URI")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

func setPipelineDefaults(v *viper.Viper) {
	def := DefaultPipelineConfig()
	v.SetDefault("port", "8080")
	v.SetDefault("upload_dir", "uploads")
	v.SetDefault("pipeline.large_document_threshold", def.LargeDocumentThreshold)
	v.SetDefault("pipeline.max_chars_per_chunk", def.MaxCharsPerChunk)
	v.SetDefault("pipeline.overlap_size", def.OverlapSize)
	v.SetDefault("pipeline.max_chunks", def.MaxChunks)
	v.SetDefault("pipeline.min_paragraphs", def.MinParagraphs)
	v.SetDefault("pipeline.min_sections", def.MinSections)
	v.SetDefault("pipeline.parallel_threshold", def.ParallelThreshold)
	v.SetDefault("pipeline.max_parallel", def.MaxParallel)
	v.SetDefault("pipeline.rate_limit_delay", def.RateLimitDelay)
	v.SetDefault("pipeline.request_timeout", def.RequestTimeout)
	v.SetDefault("pipeline.chunk_summary_min_words", def.ChunkSummaryMinWords)
	v.SetDefault("pipeline.chunk_summary_max_words", def.ChunkSummaryMaxWords)
	v.SetDefault("pipeline.fast_processing_threshold", def.FastProcessingThreshold)
	v.SetDefault("pipeline.min_text_length", def.MinTextLength)
	v.SetDefault("pipeline.metadata_ratio", def.MetadataRatio)
	v.SetDefault("pipeline.ocr_dpi", def.OCRDPI)
	v.SetDefault("pipeline.ocr_languages", def.OCRLanguages)
}
