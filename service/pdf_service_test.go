package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tieubaoca/docsum-be/config"
	"github.com/tieubaoca/docsum-be/types"
)

// stubOCR satisfies ocrEngine without a tesseract install.
type stubOCR struct {
	result *types.OCRResult
	called bool
}

func (s *stubOCR) ExtractTextFromPDF(ctx context.Context, pdfPath string, maxPages int) *types.OCRResult {
	s.called = true
	return s.result
}

func pdfTestConfig() config.PipelineConfig {
	return config.DefaultPipelineConfig()
}

func stubStrategy(name string, text string, err error, called *bool) extractionStrategy {
	return extractionStrategy{
		name: name,
		run: func(ctx context.Context, pdfPath string, maxPages int) (string, error) {
			if called != nil {
				*called = true
			}
			return text, err
		},
	}
}

func validDocumentText() string {
	return strings.Repeat("Hợp đồng tín dụng quy định lãi suất và kỳ hạn thanh toán. ", 4)
}

func TestExtractText_CascadeStopsAtFirstValid(t *testing.T) {
	s := NewPDFService(pdfTestConfig(), nil)
	var thirdCalled bool
	s.strategies = []extractionStrategy{
		stubStrategy("first", "", errors.New("tool error"), nil),
		stubStrategy("second", validDocumentText(), nil, nil),
		stubStrategy("third", "", nil, &thirdCalled),
	}

	result, err := s.ExtractText(context.Background(), []byte("%PDF-1.4"), 0)
	require.NoError(t, err)

	assert.Equal(t, types.ExtractionSourcePdftotext, result.Source)
	assert.Equal(t, "second", result.Method)
	assert.Equal(t, "all", result.PagesProcessed)
	assert.Equal(t, len(result.Text), result.CharCount)
	assert.False(t, thirdCalled, "cascade must stop at the first valid result")
}

func TestExtractText_SkipsInvalidOutput(t *testing.T) {
	s := NewPDFService(pdfTestConfig(), nil)
	s.strategies = []extractionStrategy{
		stubStrategy("short output", "vài chữ", nil, nil),
		stubStrategy("metadata noise", strings.Repeat("flatedecode stream endstream obj ", 20), nil, nil),
		stubStrategy("real text", validDocumentText(), nil, nil),
	}

	result, err := s.ExtractText(context.Background(), []byte("%PDF-1.4"), 0)
	require.NoError(t, err)
	assert.Equal(t, "real text", result.Method)
}

func TestExtractText_OCRFallback(t *testing.T) {
	ocr := &stubOCR{result: &types.OCRResult{
		Success:         true,
		Available:       true,
		Text:            validDocumentText(),
		EngineUsed:      "tesseract",
		SuccessfulPages: 3,
		TotalPages:      3,
	}}
	s := NewPDFService(pdfTestConfig(), nil)
	s.ocr = ocr
	s.strategies = []extractionStrategy{
		stubStrategy("first", "", errors.New("broken"), nil),
	}

	result, err := s.ExtractText(context.Background(), []byte("%PDF-1.4"), 2)
	require.NoError(t, err)

	assert.True(t, ocr.called)
	assert.Equal(t, types.ExtractionSourceOCR, result.Source)
	assert.Equal(t, "Tesseract OCR", result.Method)
	assert.Equal(t, "2", result.PagesProcessed)
}

func TestExtractText_AllFailedReturnsDiagnostic(t *testing.T) {
	ocr := &stubOCR{result: &types.OCRResult{
		Success:   false,
		Available: false,
		Error:     "Tesseract OCR không khả dụng",
	}}
	s := NewPDFService(pdfTestConfig(), nil)
	s.ocr = ocr
	s.strategies = []extractionStrategy{
		stubStrategy("first", "", errors.New("broken"), nil),
	}

	_, err := s.ExtractText(context.Background(), []byte("%PDF-1.4"), 0)
	require.Error(t, err)

	var extractErr *ExtractionError
	require.ErrorAs(t, err, &extractErr)
	assert.Contains(t, err.Error(), "Không thể trích xuất text từ PDF")
	assert.Contains(t, err.Error(), "Kích thước file: 8 bytes")
	assert.Contains(t, err.Error(), "Tesseract OCR không khả dụng")
	assert.Contains(t, err.Error(), "Gợi ý giải pháp")
}

func TestExtractText_NoOCRConfigured(t *testing.T) {
	s := NewPDFService(pdfTestConfig(), nil)
	s.strategies = []extractionStrategy{
		stubStrategy("first", "", errors.New("broken"), nil),
	}

	_, err := s.ExtractText(context.Background(), []byte("%PDF-1.4"), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OCR engine chưa được cấu hình")
}

func TestIsValidText(t *testing.T) {
	s := NewPDFService(pdfTestConfig(), nil)

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"empty", "", false},
		{"whitespace only", "   \n\t  ", false},
		{"below minimum length", "ngắn quá", false},
		{"real document text", validDocumentText(), true},
		{"metadata noise", strings.Repeat("flatedecode /filter /length stream endstream obj endobj ", 10), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.IsValidText(tt.text))
		})
	}
}

func TestIsMetadataOnly(t *testing.T) {
	s := NewPDFService(pdfTestConfig(), nil)

	assert.True(t, s.IsMetadataOnly(""))
	assert.True(t, s.IsMetadataOnly(strings.Repeat("flatedecode ", 30)))
	assert.False(t, s.IsMetadataOnly(validDocumentText()))
	// a stray token inside real prose does not disqualify the text
	assert.False(t, s.IsMetadataOnly(validDocumentText()+" stream"))
}

func TestPagesLabel(t *testing.T) {
	assert.Equal(t, "all", pagesLabel(0))
	assert.Equal(t, "5", pagesLabel(5))
}
