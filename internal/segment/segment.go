// Package segment drives the page-by-page scan of the TLF section and folds
// contiguous pages into TLF records.
package segment

import (
	"fmt"
	"log/slog"

	"github.com/jackzampolin/tlfsplit/internal/classify"
)

// Record is one detected TLF and the source page range it occupies.
// Pages are 1-based and inclusive, in source-document numbering.
type Record struct {
	ID            string
	Kind          classify.Kind
	Title         string
	Population    string
	SourceProgram string
	FirstPage     int
	LastPage      int
	PageCount     int
}

// extend folds one more page into the record.
func (r *Record) extend(pageNum int) {
	r.LastPage = pageNum
	r.PageCount++
}

// Scanner is the segmentation state machine.
// Feed pages strictly in order via Step; records come out in page order with
// non-overlapping, gap-free ranges because each page extends at most one
// record and the scan never looks backward.
type Scanner struct {
	records      []*Record
	current      *Record // open record, nil when none
	warnings     int
	terminatedAt int // page that carried the termination heading, 0 if none
	log          *slog.Logger
}

// NewScanner returns a Scanner that logs progress to log.
// A nil logger falls back to slog.Default.
func NewScanner(log *slog.Logger) *Scanner {
	if log == nil {
		log = slog.Default()
	}
	return &Scanner{log: log}
}

// Step consumes the text of one page. It returns false once a termination
// heading is seen; that page and everything after it are outside the TLF
// section and must not be fed to the scanner.
func (s *Scanner) Step(pageNum int, text string) bool {
	if classify.IsTermination(text) {
		s.terminatedAt = pageNum
		s.log.Info("reached back matter, terminating TLF scan", "page", pageNum)
		return false
	}

	ident := classify.Classify(text)
	if ident == nil {
		if s.current != nil {
			// Continuation page without a repeated heading.
			s.current.extend(pageNum)
		} else if len(s.records) == 0 {
			s.log.Warn("no TLF heading found before any TLF started", "page", pageNum)
			s.warnings++
		}
		return true
	}

	if s.current != nil && s.current.ID == ident.ID {
		s.current.extend(pageNum)
		return true
	}

	// New id: the open record (if any) is final by construction.
	if s.current != nil {
		s.log.Info("found TLF",
			"id", s.current.ID,
			"pages", fmt.Sprintf("%d-%d", s.current.FirstPage, s.current.LastPage))
	}

	s.current = &Record{
		ID:            ident.ID,
		Kind:          ident.Kind,
		Title:         ident.Title,
		Population:    ident.Population,
		SourceProgram: ident.SourceProgram,
		FirstPage:     pageNum,
		LastPage:      pageNum,
		PageCount:     1,
	}
	s.records = append(s.records, s.current)
	return true
}

// Finish closes the scan and returns the accumulated result. A record still
// open at end of document is finalized as-is.
func (s *Scanner) Finish() *Result {
	if s.current != nil {
		s.log.Info("found TLF",
			"id", s.current.ID,
			"pages", fmt.Sprintf("%d-%d", s.current.FirstPage, s.current.LastPage))
	}
	return &Result{
		Records:      s.records,
		Warnings:     s.warnings,
		TerminatedAt: s.terminatedAt,
	}
}

// Result is the outcome of a full scan.
type Result struct {
	Records  []*Record
	Warnings int

	// TerminatedAt is the source page carrying the References/Appendices
	// heading, or 0 when the document ended without one.
	TerminatedAt int
}

// Tables counts table records.
func (r *Result) Tables() int {
	n := 0
	for _, rec := range r.Records {
		if rec.Kind == classify.KindTable {
			n++
		}
	}
	return n
}

// Figures counts figure records.
func (r *Result) Figures() int {
	n := 0
	for _, rec := range r.Records {
		if rec.Kind == classify.KindFigure {
			n++
		}
	}
	return n
}

// TLFPages is the total number of pages folded into records.
func (r *Result) TLFPages() int {
	n := 0
	for _, rec := range r.Records {
		n += rec.PageCount
	}
	return n
}

// TextSource yields the linearized text of one source page.
type TextSource interface {
	PageText(pageNum int) (string, error)
}

// Scan runs the state machine over pages [firstPage, lastPage]. A page whose
// text cannot be extracted is treated as having no heading: it extends the
// open record or is dropped with a warning, and the scan continues.
func Scan(src TextSource, firstPage, lastPage int, log *slog.Logger) *Result {
	if log == nil {
		log = slog.Default()
	}
	s := NewScanner(log)
	for page := firstPage; page <= lastPage; page++ {
		text, err := src.PageText(page)
		if err != nil {
			log.Warn("failed to extract page text during scan", "page", page, "error", err)
			text = ""
		}
		if !s.Step(page, text) {
			break
		}
	}
	return s.Finish()
}
