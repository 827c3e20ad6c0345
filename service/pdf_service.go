package service

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/tieubaoca/docsum-be/config"
	"github.com/tieubaoca/docsum-be/types"
	"github.com/tieubaoca/docsum-be/utils"
)

// metadataTokens are PDF-internal syntax tokens. Extractor output dominated
// by these is raw object-stream noise, not document content.
var metadataTokens = []string{
	"filter:", "flatedecode", "flatdecodefilter", "dctdecode",
	"ascii85decode", "lzwdecode", "runlengthdecode", "/filter",
	"/length", "/type", "stream", "endstream", "obj", "endobj",
}

// PDFDiagnostic carries the information shown to the user when every
// extraction strategy fails.
type PDFDiagnostic struct {
	PageCount int
	FileSize  int
	Encrypted bool
	OCRError  string
}

// ExtractionError means no strategy, OCR included, produced valid text.
// Its message is user-facing: re-exporting the document can fix it,
// retrying the same bytes cannot.
type ExtractionError struct {
	Diagnostic PDFDiagnostic
}

func (e *ExtractionError) Error() string {
	var b strings.Builder
	b.WriteString("Không thể trích xuất text từ PDF.\n\n")
	b.WriteString("Thông tin chẩn đoán PDF:\n")
	fmt.Fprintf(&b, "- Số trang: %d\n", e.Diagnostic.PageCount)
	fmt.Fprintf(&b, "- Kích thước file: %d bytes\n", e.Diagnostic.FileSize)
	if e.Diagnostic.Encrypted {
		b.WriteString("- Mã hóa: Có\n")
	} else {
		b.WriteString("- Mã hóa: Không\n")
	}
	if e.Diagnostic.OCRError != "" {
		fmt.Fprintf(&b, "- OCR: %s\n", e.Diagnostic.OCRError)
	}
	b.WriteString(`
Khả năng nguyên nhân:
1. PDF được tạo từ scan/hình ảnh (cần OCR)
2. PDF sử dụng font đặc biệt hoặc encoding không hỗ trợ
3. PDF có cấu trúc phức tạp (form, table đặc biệt)

Gợi ý giải pháp:
- Thử chuyển đổi PDF sang định dạng khác (Word, Text)
- Sử dụng công cụ OCR nếu là PDF scan
- Kiểm tra PDF có mở được bình thường không`)
	return b.String()
}

// ocrEngine is the OCR fallback collaborator, injected so the cascade can
// be tested without a tesseract install.
type ocrEngine interface {
	ExtractTextFromPDF(ctx context.Context, pdfPath string, maxPages int) *types.OCRResult
}

// extractionStrategy is one text-extraction attempt with a uniform
// signature. The cascade driver applies a single validity gate after each
// strategy and short-circuits on the first valid result.
type extractionStrategy struct {
	name string
	run  func(ctx context.Context, pdfPath string, maxPages int) (string, error)
}

// PDFService extracts plain text from PDF bytes through an ordered cascade
// of pdftotext strategies, falling back to OCR for scanned documents.
type PDFService struct {
	cfg        config.PipelineConfig
	ocr        ocrEngine
	strategies []extractionStrategy
}

func NewPDFService(cfg config.PipelineConfig, ocr *OCRService) *PDFService {
	s := &PDFService{cfg: cfg}
	if ocr != nil {
		s.ocr = ocr
	}
	s.strategies = []extractionStrategy{
		{"pdftotext strict", s.extractStrict},
		{"pdftotext warnings ignored", s.extractWarningsIgnored},
		{"pdftotext page-by-page", s.extractPageByPage},
	}
	return s
}

// ExtractText runs the cascade over raw PDF bytes. maxPages limits how
// many pages are read, 0 means all.
func (s *PDFService) ExtractText(ctx context.Context, fileContent []byte, maxPages int) (*types.ExtractionResult, error) {
	tmp, err := os.CreateTemp("", "docsum-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(fileContent); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	tmp.Close()

	for i, strat := range s.strategies {
		text, err := strat.run(ctx, tmp.Name(), maxPages)
		if err != nil {
			log.Printf("Extraction method %d/%d (%s) failed: %v", i+1, len(s.strategies), strat.name, err)
			continue
		}
		if !s.IsValidText(text) {
			log.Printf("Extraction method %d/%d (%s) insufficient text: %d characters", i+1, len(s.strategies), strat.name, len(strings.TrimSpace(text)))
			continue
		}
		cleaned := utils.CleanText(text)
		log.Printf("Extraction method %d (%s) successful: %d characters", i+1, strat.name, len(cleaned))
		return &types.ExtractionResult{
			Text:           cleaned,
			Source:         types.ExtractionSourcePdftotext,
			Method:         strat.name,
			PagesProcessed: pagesLabel(maxPages),
			CharCount:      len(cleaned),
		}, nil
	}

	// All pdftotext strategies failed, try OCR for scanned PDFs
	log.Println("pdftotext failed, trying OCR for scanned PDF...")
	var ocrErrMsg string
	if s.ocr != nil {
		ocrResult := s.ocr.ExtractTextFromPDF(ctx, tmp.Name(), maxPages)
		if ocrResult.Success && s.IsValidText(ocrResult.Text) {
			cleaned := utils.CleanText(ocrResult.Text)
			log.Printf("OCR successful: %d characters from %d/%d pages", len(cleaned), ocrResult.SuccessfulPages, ocrResult.TotalPages)
			return &types.ExtractionResult{
				Text:           cleaned,
				Source:         types.ExtractionSourceOCR,
				Method:         "Tesseract OCR",
				PagesProcessed: pagesLabel(maxPages),
				CharCount:      len(cleaned),
			}, nil
		}
		ocrErrMsg = ocrResult.Error
		if ocrErrMsg == "" && !ocrResult.Success {
			ocrErrMsg = "OCR không trả về text hợp lệ"
		}
	} else {
		ocrErrMsg = "OCR engine chưa được cấu hình"
	}

	diag := s.diagnose(ctx, tmp.Name(), len(fileContent))
	diag.OCRError = ocrErrMsg
	return nil, &ExtractionError{Diagnostic: diag}
}

// IsValidText is the single validity gate of the cascade: the trimmed
// text must exceed the minimum length and must not be metadata noise.
func (s *PDFService) IsValidText(text string) bool {
	return len(strings.TrimSpace(text)) > s.cfg.MinTextLength && !s.IsMetadataOnly(text)
}

// IsMetadataOnly classifies text as PDF-internals noise when the known
// tokens, weighted by their lengths, cover more than the configured share
// of the text.
func (s *PDFService) IsMetadataOnly(text string) bool {
	if strings.TrimSpace(text) == "" {
		return true
	}
	lower := strings.ToLower(strings.TrimSpace(text))
	metadataChars := 0
	for _, token := range metadataTokens {
		metadataChars += strings.Count(lower, token) * len(token)
	}
	ratio := float64(metadataChars) / float64(len(text))
	return ratio > s.cfg.MetadataRatio
}

// Method 1: single pdftotext invocation over the whole page range. Any
// tool error fails the strategy.
func (s *PDFService) extractStrict(ctx context.Context, pdfPath string, maxPages int) (string, error) {
	args := []string{"-enc", "UTF-8", "-nopgbrk"}
	if maxPages > 0 {
		args = append(args, "-f", "1", "-l", strconv.Itoa(maxPages))
	}
	args = append(args, pdfPath, "-")

	cmd := exec.CommandContext(ctx, "pdftotext", args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pdftotext failed: %w", err)
	}
	return out.String(), nil
}

// Method 2: same invocation with warnings suppressed; a non-zero exit is
// tolerated as long as some output was produced (pdftotext keeps going
// past recoverable per-page errors).
func (s *PDFService) extractWarningsIgnored(ctx context.Context, pdfPath string, maxPages int) (string, error) {
	args := []string{"-q", "-enc", "UTF-8", "-nopgbrk"}
	if maxPages > 0 {
		args = append(args, "-f", "1", "-l", strconv.Itoa(maxPages))
	}
	args = append(args, pdfPath, "-")

	cmd := exec.CommandContext(ctx, "pdftotext", args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		log.Printf("pdftotext warning ignored: %v", err)
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("pdftotext produced no output")
	}
	return out.String(), nil
}

// Method 3: page-by-page extraction with success statistics. The strategy
// fails only when zero pages succeed.
func (s *PDFService) extractPageByPage(ctx context.Context, pdfPath string, maxPages int) (string, error) {
	totalPages, _, err := pdfInfo(ctx, pdfPath)
	if err != nil {
		return "", err
	}
	pages := totalPages
	if maxPages > 0 && maxPages < pages {
		pages = maxPages
	}

	var text strings.Builder
	successfulPages := 0
	for page := 1; page <= pages; page++ {
		cmd := exec.CommandContext(ctx, "pdftotext",
			"-f", strconv.Itoa(page),
			"-l", strconv.Itoa(page),
			"-q", "-enc", "UTF-8", "-nopgbrk",
			pdfPath, "-")
		var out bytes.Buffer
		cmd.Stdout = &out
		if err := cmd.Run(); err != nil {
			log.Printf("Failed to extract page %d: %v", page, err)
			continue
		}
		if pageText := out.String(); strings.TrimSpace(pageText) != "" {
			text.WriteString(pageText)
			text.WriteString("\n")
			successfulPages++
		}
	}

	if successfulPages == 0 {
		return "", fmt.Errorf("no pages could be extracted")
	}
	log.Printf("Successfully extracted %d/%d pages", successfulPages, pages)
	return text.String(), nil
}

func (s *PDFService) diagnose(ctx context.Context, pdfPath string, fileSize int) PDFDiagnostic {
	diag := PDFDiagnostic{FileSize: fileSize}
	pages, encrypted, err := pdfInfo(ctx, pdfPath)
	if err != nil {
		log.Printf("Could not analyze PDF for diagnostics: %v", err)
		return diag
	}
	diag.PageCount = pages
	diag.Encrypted = encrypted
	return diag
}

var (
	pdfInfoPagesPattern     = regexp.MustCompile(`Pages:\s+(\d+)`)
	pdfInfoEncryptedPattern = regexp.MustCompile(`Encrypted:\s+(\w+)`)
)

// pdfInfo reads the page count and encryption flag via the pdfinfo tool.
func pdfInfo(ctx context.Context, pdfPath string) (pages int, encrypted bool, err error) {
	cmd := exec.CommandContext(ctx, "pdfinfo", pdfPath)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return 0, false, fmt.Errorf("error running pdfinfo: %w", err)
	}

	scanner := bufio.NewScanner(&out)
	pages = -1
	for scanner.Scan() {
		line := scanner.Text()
		if m := pdfInfoPagesPattern.FindStringSubmatch(line); len(m) == 2 {
			pages, _ = strconv.Atoi(m[1])
		}
		if m := pdfInfoEncryptedPattern.FindStringSubmatch(line); len(m) == 2 {
			encrypted = strings.EqualFold(m[1], "yes")
		}
	}
	if pages < 0 {
		return 0, false, fmt.Errorf("unable to determine page count from pdfinfo")
	}
	return pages, encrypted, nil
}

func pagesLabel(maxPages int) string {
	if maxPages > 0 {
		return strconv.Itoa(maxPages)
	}
	return "all"
}
