package ingestion

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// DocumentKind identifies a supported CV upload format.
type DocumentKind string

const (
	KindPDF  DocumentKind = "pdf"
	KindDOCX DocumentKind = "docx"
	KindText DocumentKind = "text"
)

var (
	pdfMagic = []byte("%PDF-")
	zipMagic = []byte("PK\x03\x04")
)

// DetectKind picks a parser from the filename extension, falling back to magic bytes.
func DetectKind(filename string, data []byte) (DocumentKind, bool) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return KindPDF, true
	case ".docx":
		return KindDOCX, true
	case ".txt", ".md", ".text":
		return KindText, true
	}

	switch {
	case bytes.HasPrefix(data, pdfMagic):
		return KindPDF, true
	case bytes.HasPrefix(data, zipMagic):
		return KindDOCX, true
	}
	return "", false
}

// ExtractCV converts an uploaded CV document into cleaned plain text.
// A document whose pages hold no text yields an empty string, not an error.
func ExtractCV(filename string, data []byte) (string, error) {
	kind, ok := DetectKind(filename, data)
	if !ok {
		return "", &ExtractionError{Filename: filename, Message: "unsupported document type (expected PDF, DOCX or plain text)"}
	}

	var (
		text string
		err  error
	)
	switch kind {
	case KindPDF:
		text, err = ExtractPDF(bytes.NewReader(data), int64(len(data)))
	case KindDOCX:
		text, err = ExtractDOCX(bytes.NewReader(data), int64(len(data)))
	case KindText:
		text = string(data)
	}
	if err != nil {
		if extErr, ok := err.(*ExtractionError); ok {
			extErr.Filename = filename
		}
		return "", err
	}

	return CleanText(text), nil
}

// CVFromText normalises pasted CV text.
func CVFromText(text string) string {
	return CleanText(text)
}

// ExtractPDF concatenates the plain text of every page in order.
// Pages that are null, empty or fail to decode contribute nothing.
func ExtractPDF(r io.ReaderAt, size int64) (text string, err error) {
	// The PDF parser panics on some malformed inputs
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = &ExtractionError{Message: "corrupt PDF", Cause: fmt.Errorf("%v", rec)}
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", &ExtractionError{Message: "failed to read PDF", Cause: err}
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		pageText := plainText(reader.Page(i))
		if strings.TrimSpace(pageText) == "" {
			continue
		}
		pages = append(pages, pageText)
	}

	return strings.Join(pages, "\n"), nil
}

// plainText extracts one page, treating any failure as a blank page.
func plainText(page pdf.Page) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()

	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}

// ExtractDOCX returns the text of each paragraph in document order, one per line.
func ExtractDOCX(r io.ReaderAt, size int64) (string, error) {
	doc, err := docx.ReadDocxFromMemory(r, size)
	if err != nil {
		return "", &ExtractionError{Message: "failed to read DOCX", Cause: err}
	}
	defer func() { _ = doc.Close() }()

	text, err := paragraphsFromDocumentXML(doc.Editable().GetContent())
	if err != nil {
		return "", &ExtractionError{Message: "malformed DOCX document body", Cause: err}
	}
	return text, nil
}

// paragraphsFromDocumentXML walks WordprocessingML, keeping w:t runs and
// turning w:p boundaries into newlines, w:tab into tabs and w:br into line breaks.
func paragraphsFromDocumentXML(content string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(content))

	var (
		lines   []string
		current strings.Builder
		inText  bool
	)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				current.WriteByte('\t')
			case "br", "cr":
				current.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				lines = append(lines, current.String())
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}

	return strings.Join(lines, "\n"), nil
}
