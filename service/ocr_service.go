package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/tieubaoca/docsum-be/config"
	"github.com/tieubaoca/docsum-be/types"
	"github.com/tieubaoca/docsum-be/utils"
)

// Pages with fewer meaningful characters than this are dropped from the
// concatenated OCR output.
const minOCRPageChars = 10

// Sample size for the text/image analysis that decides whether OCR is
// worth attempting.
const maxAnalysisPages = 3

var (
	ocrArtifactPattern = regexp.MustCompile(`[^\p{L}\p{N}\s.,!?;:()\-"'%/]`)
	ocrSpaceRunPattern = regexp.MustCompile(`[ \t]+`)
)

type pdfAnalysis struct {
	HasText    bool
	HasImages  bool
	TotalPages int
}

func (a pdfAnalysis) NeedsOCR() bool {
	return a.HasImages || !a.HasText
}

// OCRService rasterizes PDF pages with pdftoppm and runs tesseract on
// each bitmap. It is best-effort per page: one bad page out of ten still
// returns the other nine.
type OCRService struct {
	cfg config.PipelineConfig
}

func NewOCRService(cfg config.PipelineConfig) *OCRService {
	return &OCRService{cfg: cfg}
}

// Available reports whether the tesseract and pdftoppm binaries are
// installed. Checked lazily on every invocation so an install fixes the
// service without a restart.
func (s *OCRService) Available() bool {
	if _, err := exec.LookPath("tesseract"); err != nil {
		return false
	}
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		return false
	}
	return true
}

// ExtractTextFromPDF runs OCR over the PDF at pdfPath. It never returns
// an error: missing runtime or total failure are reported in the
// structured result so the cascade can build one combined diagnostic.
func (s *OCRService) ExtractTextFromPDF(ctx context.Context, pdfPath string, maxPages int) *types.OCRResult {
	if !s.Available() {
		return &types.OCRResult{
			Success:    false,
			Available:  false,
			Error:      "Tesseract OCR không khả dụng. Cần cài đặt: apt-get install tesseract-ocr tesseract-ocr-vie poppler-utils",
			EngineUsed: "tesseract",
		}
	}

	analysis := s.analyzePDF(ctx, pdfPath)
	if !analysis.NeedsOCR() {
		return &types.OCRResult{
			Success:    false,
			Available:  true,
			Error:      "Trang PDF đã có text layer, bỏ qua OCR",
			EngineUsed: "tesseract",
			TotalPages: analysis.TotalPages,
		}
	}
	log.Printf("Detected PDF needing OCR - has_images: %v, has_text: %v", analysis.HasImages, analysis.HasText)

	images, cleanup, err := s.rasterize(ctx, pdfPath, maxPages)
	if err != nil {
		return &types.OCRResult{
			Success:    false,
			Available:  true,
			Error:      fmt.Sprintf("Lỗi chuyển đổi PDF thành hình ảnh: %v", err),
			EngineUsed: "tesseract",
		}
	}
	defer cleanup()

	return s.recognizePages(ctx, images)
}

// analyzePDF samples the first pages: extractable text above the page
// threshold means OCR is unnecessary; otherwise embedded images indicate
// a scanned document.
func (s *OCRService) analyzePDF(ctx context.Context, pdfPath string) pdfAnalysis {
	analysis := pdfAnalysis{}
	totalPages, _, err := pdfInfo(ctx, pdfPath)
	if err != nil {
		log.Printf("OCR analysis: pdfinfo failed: %v", err)
		// Unknown structure, let OCR try anyway
		return analysis
	}
	analysis.TotalPages = totalPages

	pagesToCheck := totalPages
	if pagesToCheck > maxAnalysisPages {
		pagesToCheck = maxAnalysisPages
	}
	for page := 1; page <= pagesToCheck; page++ {
		cmd := exec.CommandContext(ctx, "pdftotext",
			"-f", strconv.Itoa(page), "-l", strconv.Itoa(page),
			"-q", "-enc", "UTF-8", "-nopgbrk", pdfPath, "-")
		var out bytes.Buffer
		cmd.Stdout = &out
		if err := cmd.Run(); err != nil {
			log.Printf("OCR analysis: error checking page %d: %v", page, err)
			continue
		}
		if len(strings.TrimSpace(out.String())) > minOCRPageChars {
			analysis.HasText = true
			break
		}
		if pageHasImages(ctx, pdfPath, page) {
			analysis.HasImages = true
		}
	}
	return analysis
}

// pageHasImages checks for embedded image objects via pdfimages -list.
// The listing carries two header lines; anything beyond them is an image.
func pageHasImages(ctx context.Context, pdfPath string, page int) bool {
	cmd := exec.CommandContext(ctx, "pdfimages", "-list",
		"-f", strconv.Itoa(page), "-l", strconv.Itoa(page), pdfPath)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return false
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	return len(lines) > 2
}

// rasterize converts pages to grayscale PNGs at the configured DPI and
// returns them in page order.
func (s *OCRService) rasterize(ctx context.Context, pdfPath string, maxPages int) ([]string, func(), error) {
	tempDir, err := os.MkdirTemp("", "docsum-ocr-")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	cleanup := func() { os.RemoveAll(tempDir) }

	args := []string{"-png", "-gray", "-r", strconv.Itoa(s.cfg.OCRDPI)}
	if maxPages > 0 {
		args = append(args, "-f", "1", "-l", strconv.Itoa(maxPages))
	}
	args = append(args, pdfPath, filepath.Join(tempDir, "page"))

	if err := exec.CommandContext(ctx, "pdftoppm", args...).Run(); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("pdftoppm failed: %w", err)
	}

	images, err := filepath.Glob(filepath.Join(tempDir, "page-*.png"))
	if err != nil || len(images) == 0 {
		cleanup()
		return nil, nil, fmt.Errorf("no page images produced")
	}
	sort.Strings(images)
	log.Printf("Converted PDF to %d images at %d DPI", len(images), s.cfg.OCRDPI)
	return images, cleanup, nil
}

func (s *OCRService) recognizePages(ctx context.Context, images []string) *types.OCRResult {
	var allText strings.Builder
	pages := make([]types.OCRPage, 0, len(images))
	successfulPages := 0

	for i, imagePath := range images {
		pageNum := i + 1
		processed := preprocessImage(imagePath)

		pageText, err := s.runTesseract(ctx, processed)
		if err != nil {
			log.Printf("Tesseract failed on page %d: %v", pageNum, err)
			pages = append(pages, types.OCRPage{PageNumber: pageNum, Error: err.Error()})
			continue
		}

		pageText = cleanOCRText(pageText)
		pages = append(pages, types.OCRPage{
			PageNumber: pageNum,
			Text:       pageText,
			CharCount:  len(pageText),
			WordCount:  utils.CountWords(pageText),
		})

		if len(strings.TrimSpace(pageText)) > minOCRPageChars {
			allText.WriteString(pageText)
			allText.WriteString("\n\n")
			successfulPages++
		}
	}

	if successfulPages == 0 {
		return &types.OCRResult{
			Success:    false,
			Available:  true,
			Error:      "Không thể trích xuất text từ bất kỳ trang nào",
			Pages:      pages,
			EngineUsed: "tesseract",
			TotalPages: len(images),
		}
	}

	text := strings.TrimSpace(allText.String())
	log.Printf("Tesseract OCR successful: %d/%d pages, %d characters", successfulPages, len(images), len(text))
	return &types.OCRResult{
		Success:         true,
		Available:       true,
		Text:            text,
		Pages:           pages,
		EngineUsed:      "tesseract",
		SuccessfulPages: successfulPages,
		TotalPages:      len(images),
	}
}

func (s *OCRService) runTesseract(ctx context.Context, imagePath string) (string, error) {
	cmd := exec.CommandContext(ctx, "tesseract",
		imagePath,
		"stdout",
		"-l", s.cfg.OCRLanguages,
		"--oem", "3", // LSTM engine
		"--psm", "6", // Assume a single uniform block of text
	)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to run tesseract: %w", err)
	}
	return out.String(), nil
}

// preprocessImage boosts contrast slightly on the grayscale page bitmap.
// Best-effort: any failure returns the original path untouched.
func preprocessImage(imagePath string) string {
	f, err := os.Open(imagePath)
	if err != nil {
		return imagePath
	}
	img, err := png.Decode(f)
	f.Close()
	if err != nil {
		return imagePath
	}

	bounds := img.Bounds()
	enhanced := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			v := 128 + 1.2*(float64(g.Y)-128)
			if v < 0 {
				v = 0
			} else if v > 255 {
				v = 255
			}
			enhanced.SetGray(x, y, color.Gray{Y: uint8(v)})
		}
	}

	outPath := strings.TrimSuffix(imagePath, ".png") + "-proc.png"
	out, err := os.Create(outPath)
	if err != nil {
		return imagePath
	}
	defer out.Close()
	if err := png.Encode(out, enhanced); err != nil {
		return imagePath
	}
	return outPath
}

// cleanOCRText removes control/symbol artifacts the OCR engine leaves
// behind and collapses whitespace.
func cleanOCRText(text string) string {
	if text == "" {
		return ""
	}
	text = ocrArtifactPattern.ReplaceAllString(text, "")
	text = ocrSpaceRunPattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
