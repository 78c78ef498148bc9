// Package pdfio wraps the PDF libraries behind the three capabilities the
// extractor needs: page counting, per-page text, and page-range extraction.
// pdfcpu handles page counting and sub-document assembly; ledongthuc/pdf
// provides linearized page text, with an optional pdftotext fallback.
package pdfio

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"

	pdflib "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Document is an open source PDF, read-only, accessed page by page.
type Document struct {
	path      string
	pageCount int
	file      *os.File
	reader    *pdflib.Reader

	// FallbackPdftotext shells out to pdftotext when the Go library
	// cannot extract a page's text.
	FallbackPdftotext bool
}

// Open opens a PDF for reading.
func Open(path string) (*Document, error) {
	count, err := PageCount(path)
	if err != nil {
		return nil, err
	}

	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF for text extraction: %w", err)
	}

	return &Document{
		path:      path,
		pageCount: count,
		file:      f,
		reader:    reader,
	}, nil
}

// Close releases the underlying file handle.
func (d *Document) Close() error {
	return d.file.Close()
}

// Path returns the source path the document was opened from.
func (d *Document) Path() string {
	return d.path
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int {
	return d.pageCount
}

// PageText returns the plain text of one page (1-based).
func (d *Document) PageText(pageNum int) (text string, err error) {
	if pageNum < 1 || pageNum > d.pageCount {
		return "", fmt.Errorf("page %d out of range 1-%d", pageNum, d.pageCount)
	}

	text, err = d.libraryPageText(pageNum)
	if err != nil && d.FallbackPdftotext {
		return pdftotextPage(d.path, pageNum)
	}
	return text, err
}

// libraryPageText extracts page text via ledongthuc/pdf. The library panics
// on some malformed content streams, so the panic is converted to an error
// and handled like any other per-page extraction failure.
func (d *Document) libraryPageText(pageNum int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("text extraction panicked on page %d: %v", pageNum, r)
		}
	}()

	page := d.reader.Page(pageNum)
	if page.V.IsNull() {
		return "", fmt.Errorf("page %d has no content", pageNum)
	}
	return page.GetPlainText(nil)
}

// ExtractPages writes pages [first, last] of the document to outPath as a
// standalone PDF.
func (d *Document) ExtractPages(first, last int, outPath string) error {
	if first < 1 || last > d.pageCount || first > last {
		return fmt.Errorf("page range %d-%d out of range 1-%d", first, last, d.pageCount)
	}
	selection := []string{fmt.Sprintf("%d-%d", first, last)}
	if err := api.TrimFile(d.path, outPath, selection, nil); err != nil {
		return fmt.Errorf("failed to extract pages %d-%d: %w", first, last, err)
	}
	return nil
}

// PageCount returns the number of pages of the PDF at path. An error also
// means the file is not a readable PDF.
func PageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	count, err := api.PageCount(f, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get page count: %w", err)
	}
	return count, nil
}

// pdftotextPage extracts one page's text using pdftotext (poppler-utils).
func pdftotextPage(path string, pageNum int) (string, error) {
	pageStr := strconv.Itoa(pageNum)
	cmd := exec.Command("pdftotext", "-f", pageStr, "-l", pageStr, "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}
