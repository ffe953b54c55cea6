package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Kind identifies the declared document format, derived from the filename suffix.
type Kind string

const (
	KindPDF  Kind = "pdf"
	KindDOCX Kind = "docx"
)

// ParseError indicates the document bytes could not be parsed as the declared kind.
type ParseError struct {
	Kind  Kind
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Kind, e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// KindForFilename maps a filename suffix to a document kind. The suffix match
// is case-sensitive; callers reject anything else before extraction runs.
func KindForFilename(filename string) (Kind, bool) {
	switch {
	case strings.HasSuffix(filename, ".pdf"):
		return KindPDF, true
	case strings.HasSuffix(filename, ".docx"), strings.HasSuffix(filename, ".doc"):
		return KindDOCX, true
	default:
		return "", false
	}
}

// Text extracts plain text from document bytes of the declared kind.
// The output is the raw concatenation for the format; no trimming or
// normalization is applied.
func Text(data []byte, kind Kind) (string, error) {
	switch kind {
	case KindPDF:
		return pdfText(data)
	case KindDOCX:
		return docxText(data)
	default:
		return "", fmt.Errorf("unsupported document kind: %q", kind)
	}
}

// pdfText concatenates each page's extracted text in page order. A page with
// no extractable content contributes an empty string.
func pdfText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ParseError{Kind: KindPDF, Cause: err}
	}

	var buf strings.Builder
	total := reader.NumPage()
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", &ParseError{Kind: KindPDF, Cause: fmt.Errorf("page %d: %w", i, err)}
		}
		// GetPlainText prefixes every row with "\n", including the first.
		// Drop that artifact so pages concatenate directly; interior row
		// breaks stay untouched.
		buf.WriteString(strings.TrimPrefix(text, "\n"))
	}
	return buf.String(), nil
}

// docxText concatenates paragraph texts in document order joined by newline.
// A document with zero paragraphs yields an empty string.
func docxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ParseError{Kind: KindDOCX, Cause: err}
	}

	var docFile *zip.File
	for _, f := range zr.File {
		name := strings.ReplaceAll(f.Name, "\\", "/")
		if name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", &ParseError{Kind: KindDOCX, Cause: errors.New("word/document.xml not found")}
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", &ParseError{Kind: KindDOCX, Cause: err}
	}
	defer rc.Close()

	paragraphs, err := docxParagraphs(rc)
	if err != nil {
		return "", &ParseError{Kind: KindDOCX, Cause: err}
	}
	return strings.Join(paragraphs, "\n"), nil
}

// docxParagraphs walks word/document.xml collecting the text runs of each
// w:p element.
func docxParagraphs(r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)
	var paragraphs []string
	var current strings.Builder
	inParagraph := false
	textDepth := 0

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inParagraph = true
				current.Reset()
			case "t":
				if inParagraph {
					textDepth++
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if inParagraph {
					paragraphs = append(paragraphs, current.String())
					inParagraph = false
				}
			case "t":
				if textDepth > 0 {
					textDepth--
				}
			}
		case xml.CharData:
			if inParagraph && textDepth > 0 {
				current.Write(t)
			}
		}
	}
	return paragraphs, nil
}
