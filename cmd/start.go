/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/tieubaoca/docsum-be/config"
	"github.com/tieubaoca/docsum-be/database"
	"github.com/tieubaoca/docsum-be/handler"
	"github.com/tieubaoca/docsum-be/middleware"
	"github.com/tieubaoca/docsum-be/repository"
	"github.com/tieubaoca/docsum-be/service"
	"github.com/tieubaoca/docsum-be/utils"
)

// startServerCmd represents the startServer command
var startServerCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the summarization server",
	Long:  `Starts the HTTP server that handles document upload and summarization requests`,
	Run: func(cmd *cobra.Command, args []string) {

		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		utils.SetJWTSecret(cfg.JWTSecret)

		// Initialize services
		ocrService := service.NewOCRService(cfg.Pipeline)
		pdfService := service.NewPDFService(cfg.Pipeline, ocrService)
		documentService := service.NewDocumentService(pdfService)

		aiService := service.NewOpenAIService(cfg.AIEndpoint, cfg.OpenAIAPIKey, cfg.Model)
		chunkService := service.NewChunkService(cfg.Pipeline)
		summaryService := service.NewSummaryService(cfg.Pipeline, aiService, chunkService)

		var summaryRepo repository.SummaryRepo
		if mongoClient, err := database.NewMongoClient(cfg.MongoURI); err != nil {
			log.Printf("MongoDB unavailable, summary history disabled: %v", err)
		} else if err := mongoClient.Ping(context.Background(), nil); err != nil {
			log.Printf("MongoDB unavailable, summary history disabled: %v", err)
		} else {
			summaryRepo = repository.NewSummaryRepo(mongoClient.Database("docsum"))
		}

		fileService := service.NewFileService(cfg.UploadDir, documentService, summaryService, summaryRepo)
		wsService := service.NewWebSocketService(summaryService)

		// Initialize handlers
		corsHandler := handler.NewCorsHandler()
		summaryHandler := handler.NewSummaryHandler(fileService, summaryService)

		// Setup Gin router
		router := gin.Default()
		router.Use(corsHandler.CorsMiddleware)

		router.GET("/health", gin.WrapH(wsService.Health()))

		apiV1 := router.Group("/api/v1")
		apiV1.Use(middleware.AuthMiddleware)
		{
			apiV1.POST("/summarize", summaryHandler.SummarizeTextHandler)
			apiV1.POST("/summarize/upload", summaryHandler.SummarizeUploadHandler)
			apiV1.GET("/ws/summarize", gin.WrapF(wsService.HandleSummarize))

			if summaryRepo != nil {
				historyHandler := handler.NewHistoryHandler(summaryRepo)
				apiV1.GET("/summaries", historyHandler.ListSummariesHandler)
				apiV1.GET("/summaries/:id", historyHandler.GetSummaryHandler)
			}
		}

		log.Printf("Starting server on port %s...\n", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Server error:", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(startServerCmd)
	startServerCmd.Flags().StringP("config", "c", "config/config.yaml", "config file")
}
