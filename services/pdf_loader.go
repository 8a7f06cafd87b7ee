package services

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"enterprise-knowledge-platform/models"
)

// PDFLoader reads PDF files from a folder and reduces each one to page-level
// text plus provenance. Parsing is treated as a black box; a file that
// yields no text simply produces a document with no pages.
type PDFLoader struct{}

func NewPDFLoader() *PDFLoader {
	return &PDFLoader{}
}

// ListPDFs returns the paths of all .pdf files directly inside folder, in
// lexical order.
func (l *PDFLoader) ListPDFs(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("read data folder %q: %w", folder, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			paths = append(paths, filepath.Join(folder, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// Load extracts the page texts of a single PDF file.
func (l *PDFLoader) Load(path string) (models.Document, error) {
	doc := models.Document{Source: path}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return doc, fmt.Errorf("open pdf %q: %w", path, err)
	}
	defer f.Close()

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			doc.Pages = append(doc.Pages, "")
			continue
		}

		fonts := make(map[string]*pdf.Font)
		text, err := page.GetPlainText(fonts)
		if err != nil {
			return doc, fmt.Errorf("extract page %d of %q: %w", i, path, err)
		}
		doc.Pages = append(doc.Pages, text)
	}

	return doc, nil
}
