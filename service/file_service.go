package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tieubaoca/docsum-be/repository"
	"github.com/tieubaoca/docsum-be/types"
	"github.com/tieubaoca/docsum-be/utils"
)

type FileService struct {
	uploadDir       string
	documentService *DocumentService
	summaryService  *SummaryService
	summaryRepo     repository.SummaryRepo
}

func NewFileService(
	uploadDir string,
	documentService *DocumentService,
	summaryService *SummaryService,
	summaryRepo repository.SummaryRepo,
) *FileService {
	// Tạo thư mục nếu chưa tồn tại
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		panic(err)
	}
	return &FileService{
		uploadDir:       uploadDir,
		documentService: documentService,
		summaryService:  summaryService,
		summaryRepo:     summaryRepo,
	}
}

// SummarizeUpload saves the uploaded document and runs it through the
// full pipeline. Progress events go to c; the final summary is the
// return value.
func (s *FileService) SummarizeUpload(ctx context.Context, req types.SummarizeUploadRequest, file *multipart.FileHeader, c chan<- types.ProcessingStatus) (*types.SummaryResult, error) {
	// Kiểm tra phần mở rộng file
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !SupportedExtensions[ext] {
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}

	title := req.Title
	if title == "" {
		title = file.Filename
	}

	// Lưu file với tên mới: originalname_timestamp.extension
	filename := utils.TimestampedFileName(title, ext)
	if err := os.WriteFile(filepath.Join(s.uploadDir, filename), content, 0644); err != nil {
		return nil, err
	}

	c <- types.ProcessingStatus{
		Status:   "processing",
		Stage:    "extracting",
		Message:  "Đang trích xuất văn bản",
		Progress: 0.1,
	}

	extraction, err := s.documentService.ExtractText(ctx, file.Filename, content, req.MaxPages)
	if err != nil {
		return nil, err
	}

	c <- types.ProcessingStatus{
		Status:   "processing",
		Stage:    "summarizing",
		Message:  fmt.Sprintf("Đang tóm tắt %d ký tự (nguồn: %s)", extraction.CharCount, extraction.Source),
		Progress: 0.4,
	}

	result, err := s.summaryService.SummarizeText(ctx, types.SummarizeTextRequest{
		Text:        extraction.Text,
		SummaryType: req.SummaryType,
		MaxLength:   req.MaxLength,
		Language:    req.Language,
	})
	if err != nil {
		return nil, err
	}

	s.saveRecord(ctx, filename, result)

	c <- types.ProcessingStatus{
		Status:   "completed",
		Stage:    "done",
		Message:  "Hoàn tất tóm tắt",
		Progress: 1.0,
	}
	return result, nil
}

// saveRecord persists the summary history entry. Best-effort: a dead
// database never fails the request.
func (s *FileService) saveRecord(ctx context.Context, fileName string, result *types.SummaryResult) {
	if s.summaryRepo == nil {
		return
	}
	record := &types.SummaryRecord{
		FileName:         fileName,
		SummaryType:      result.SummaryType,
		Language:         result.Language,
		Summary:          result.Summary,
		OriginalLength:   result.OriginalLength,
		SummaryLength:    result.SummaryLength,
		CompressionRatio: result.CompressionRatio,
		ProcessingMethod: result.ProcessingMethod,
		CreatedAt:        time.Now().Unix(),
	}
	if err := s.summaryRepo.CreateSummary(ctx, record); err != nil {
		log.Printf("Failed to save summary record: %v", err)
	}
}
