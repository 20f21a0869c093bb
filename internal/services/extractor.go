package services

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"hirehub/backend/internal/apperr"
)

// Supported upload mime types.
const (
	MimePDF   = "application/pdf"
	MimeDocx  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeDoc   = "application/msword"
	MimePlain = "text/plain"
)

// ExtractorService turns uploaded resume bytes into raw text, dispatching on
// the declared mime type.
type ExtractorService interface {
	ExtractText(data []byte, mimeType string) (string, error)
}

type extractorService struct{}

func NewExtractorService() ExtractorService {
	return &extractorService{}
}

// ExtractText implements ExtractorService.
func (e *extractorService) ExtractText(data []byte, mimeType string) (string, error) {
	var text string
	var err error

	switch mimeType {
	case MimePDF:
		text, err = extractPDF(data)
	case MimeDocx, MimeDoc:
		text, err = extractWord(data)
	case MimePlain:
		text = string(data)
	default:
		return "", apperr.UnsupportedFormat("unsupported file type: %s", mimeType)
	}

	if err != nil {
		return "", err
	}

	text = CleanText(text)
	if text == "" {
		return "", apperr.EmptyDocument("no readable text could be extracted from the document")
	}

	return text, nil
}

func extractPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages, keep the rest
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	return textBuilder.String(), nil
}

// extractWord reads the WordprocessingML main document part from a docx
// archive and flattens its runs to plain text, one line per paragraph.
func extractWord(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open Word document: %w", err)
	}

	var docPart *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docPart = f
			break
		}
	}
	if docPart == nil {
		return "", fmt.Errorf("word/document.xml not found in archive")
	}

	rc, err := docPart.Open()
	if err != nil {
		return "", fmt.Errorf("failed to read document part: %w", err)
	}
	defer rc.Close()

	var textBuilder strings.Builder
	decoder := xml.NewDecoder(rc)

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse document XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				var content string
				if err := decoder.DecodeElement(&content, &t); err != nil {
					continue
				}
				textBuilder.WriteString(content)
			}
		case xml.EndElement:
			if t.Name.Local == "p" {
				textBuilder.WriteString("\n")
			}
		}
	}

	return textBuilder.String(), nil
}

// CleanText normalizes extracted text: trims lines and drops blank ones.
func CleanText(text string) string {
	text = strings.TrimSpace(text)

	lines := strings.Split(text, "\n")
	var cleanedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}
