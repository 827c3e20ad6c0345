/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/docsum-be/config"
	"github.com/tieubaoca/docsum-be/service"
	"github.com/tieubaoca/docsum-be/types"
)

// summarizeCmd summarizes a single local file from the command line.
var summarizeCmd = &cobra.Command{
	Use:   "summarize [file]",
	Short: "Summarize a document file",
	Long:  `Extracts text from a PDF, DOCX or TXT file and prints its summary`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		filePath := args[0]
		summaryType, _ := cmd.Flags().GetString("type")
		maxLength, _ := cmd.Flags().GetInt("max-length")
		language, _ := cmd.Flags().GetString("language")
		maxPages, _ := cmd.Flags().GetInt("max-pages")
		provider, _ := cmd.Flags().GetString("provider")

		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		content, err := os.ReadFile(filePath)
		if err != nil {
			log.Fatalf("Failed to read file: %v", err)
		}

		var completion service.CompletionService
		switch provider {
		case "gemini":
			apiKeys := strings.Split(cfg.GeminiAPIKeys, ",")
			gemini, err := service.NewGeminiService(apiKeys, cfg.Model)
			if err != nil {
				log.Fatalf("Failed to create Gemini client: %v", err)
			}
			defer gemini.Close()
			completion = gemini
		default:
			completion = service.NewOpenAIService(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.Model)
		}

		ocrService := service.NewOCRService(cfg.Pipeline)
		pdfService := service.NewPDFService(cfg.Pipeline, ocrService)
		documentService := service.NewDocumentService(pdfService)
		chunkService := service.NewChunkService(cfg.Pipeline)
		summaryService := service.NewSummaryService(cfg.Pipeline, completion, chunkService)

		ctx := context.Background()
		extraction, err := documentService.ExtractText(ctx, filePath, content, maxPages)
		if err != nil {
			log.Fatalf("Extraction failed: %v", err)
		}
		log.Printf("Extracted %d chars via %s (%s)", extraction.CharCount, extraction.Source, extraction.Method)

		result, err := summaryService.SummarizeText(ctx, types.SummarizeTextRequest{
			Text:        extraction.Text,
			SummaryType: summaryType,
			MaxLength:   maxLength,
			Language:    language,
		})
		if err != nil {
			log.Fatalf("Summarization failed: %v", err)
		}

		fmt.Println(result.Summary)
		log.Printf("Done: %d -> %d chars (%.1fx compression), method %s, %.1fs",
			result.OriginalLength, result.SummaryLength,
			result.CompressionRatio, result.ProcessingMethod,
			result.ProcessingTimeSeconds)
	},
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
	summarizeCmd.Flags().StringP("config", "c", "config/config.yaml", "config file")
	summarizeCmd.Flags().StringP("type", "t", "general", "summary type (general, bullet_points, key_insights, executive_summary, detailed)")
	summarizeCmd.Flags().IntP("max-length", "l", 500, "maximum summary length in words")
	summarizeCmd.Flags().String("language", "vi", "summary language (vi, en)")
	summarizeCmd.Flags().Int("max-pages", 0, "limit PDF extraction to the first N pages (0 = all)")
	summarizeCmd.Flags().String("provider", "openai", "AI provider (openai, gemini)")
}
