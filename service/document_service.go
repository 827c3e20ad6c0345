package service

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/tieubaoca/docsum-be/types"
	"github.com/tieubaoca/docsum-be/utils"
)

// DocumentService dispatches extraction by file extension. PDF goes
// through the pdftotext/OCR cascade; DOCX and TXT are decoded in
// process.
type DocumentService struct {
	pdf *PDFService
}

func NewDocumentService(pdf *PDFService) *DocumentService {
	return &DocumentService{pdf: pdf}
}

// SupportedExtensions lists the file types the pipeline accepts.
var SupportedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".doc":  true,
	".txt":  true,
}

// ExtractText extracts text from the uploaded document content.
// fileName is used only for its extension.
func (s *DocumentService) ExtractText(ctx context.Context, fileName string, content []byte, maxPages int) (*types.ExtractionResult, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".pdf":
		return s.pdf.ExtractText(ctx, content, maxPages)
	case ".docx", ".doc":
		text, err := ExtractDocxText(content)
		if err != nil {
			return nil, fmt.Errorf("không thể đọc file Word: %w", err)
		}
		text = utils.CleanText(text)
		return &types.ExtractionResult{
			Text:           text,
			Source:         "docx",
			Method:         "xml",
			PagesProcessed: "all",
			CharCount:      len(text),
		}, nil
	case ".txt":
		if !utf8.Valid(content) {
			return nil, fmt.Errorf("file text không phải UTF-8 hợp lệ")
		}
		text := utils.CleanText(string(content))
		return &types.ExtractionResult{
			Text:           text,
			Source:         "txt",
			Method:         "plain",
			PagesProcessed: "all",
			CharCount:      len(text),
		}, nil
	default:
		return nil, fmt.Errorf("định dạng file không được hỗ trợ: %s", ext)
	}
}

// ExtractDocxText reads paragraphs from the word/document.xml entry of
// a DOCX archive. A .doc that is not a zip archive is rejected.
func ExtractDocxText(content []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("invalid docx archive: %w", err)
	}

	var docXML io.ReadCloser
	for _, f := range reader.File {
		if f.Name == "word/document.xml" {
			docXML, err = f.Open()
			if err != nil {
				return "", err
			}
			break
		}
	}
	if docXML == nil {
		return "", fmt.Errorf("word/document.xml not found")
	}
	defer docXML.Close()

	decoder := xml.NewDecoder(docXML)
	var paragraphs []string
	var current strings.Builder
	inText := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("malformed document xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if p := strings.TrimSpace(current.String()); p != "" {
					paragraphs = append(paragraphs, p)
				}
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	if p := strings.TrimSpace(current.String()); p != "" {
		paragraphs = append(paragraphs, p)
	}
	return strings.Join(paragraphs, "\n"), nil
}
