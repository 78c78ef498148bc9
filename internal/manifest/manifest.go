// Package manifest defines the authoritative record of an extraction: what
// was pulled out of the source CSR and where it landed. The manifest is both
// the output contract of the extractor and the input the validator re-derives
// ground truth from.
package manifest

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jackzampolin/tlfsplit/internal/outdir"
	"github.com/jackzampolin/tlfsplit/internal/segment"
)

const (
	// NarrativePageCount is the fixed length of the CSR narrative body.
	NarrativePageCount = 42

	// FirstTLFPage is the first page of the Section 14 TLF block.
	FirstTLFPage = NarrativePageCount + 1

	// MinSourcePages is the smallest document the layout convention can
	// describe: a full narrative plus at least the first TLF page.
	MinSourcePages = FirstTLFPage
)

// PageRange is an inclusive 1-based [start, end] range in source numbering.
type PageRange [2]int

// Start returns the first page of the range.
func (p PageRange) Start() int { return p[0] }

// End returns the last page of the range.
func (p PageRange) End() int { return p[1] }

// Pages returns the number of pages the range spans.
func (p PageRange) Pages() int { return p[1] - p[0] + 1 }

// Narrative describes the extracted narrative body.
type Narrative struct {
	File          string    `json:"file"`
	PagesInSource PageRange `json:"pages_in_source"`
	PageCount     int       `json:"page_count"`
}

// TLF describes one extracted Table/Figure/Listing.
type TLF struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Title         string    `json:"title"`
	File          string    `json:"file"`
	PagesInSource PageRange `json:"pages_in_source"`
	PageCount     int       `json:"page_count"`
	Population    string    `json:"population"`
	SourceProgram string    `json:"source_program,omitempty"`
}

// Manifest is the persisted record of one extraction run.
type Manifest struct {
	SourceFile     string    `json:"source_file"`
	SourcePages    int       `json:"source_pages"`
	ExtractionDate string    `json:"extraction_date"`
	Narrative      Narrative `json:"narrative"`
	TLFs           []TLF     `json:"tlfs"`
}

// Build converts a segmentation result into a Manifest. now is truncated to
// UTC second precision; the records are taken as read-only.
func Build(sourceFile string, sourcePages int, res *segment.Result, now time.Time) *Manifest {
	m := &Manifest{
		SourceFile:     sourceFile,
		SourcePages:    sourcePages,
		ExtractionDate: now.UTC().Format("2006-01-02T15:04:05Z"),
		Narrative: Narrative{
			File:          outdir.NarrativePDFRef(),
			PagesInSource: PageRange{1, NarrativePageCount},
			PageCount:     NarrativePageCount,
		},
		TLFs: make([]TLF, 0, len(res.Records)),
	}

	for _, rec := range res.Records {
		tlf := TLF{
			ID:            rec.ID,
			Type:          string(rec.Kind),
			Title:         rec.Title,
			File:          outdir.TLFPDFRef(rec.ID),
			PagesInSource: PageRange{rec.FirstPage, rec.LastPage},
			PageCount:     rec.PageCount,
			Population:    rec.Population,
			SourceProgram: rec.SourceProgram,
		}
		m.TLFs = append(m.TLFs, tlf)
	}

	return m
}

// WriteJSON persists the manifest to path as indented JSON.
func (m *Manifest) WriteJSON(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// CSVHeader is the fixed column order of the tabular projection.
var CSVHeader = []string{
	"id", "type", "title", "file",
	"pages_in_source_start", "pages_in_source_end", "page_count",
	"population", "source_program",
}

// WriteCSV persists the tabular projection to path: the header, one row for
// the narrative body, then one row per TLF in scan order.
func (m *Manifest) WriteCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create manifest csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	n := m.Narrative
	narrativeRow := []string{
		"narrative_body", "narrative", "", n.File,
		strconv.Itoa(n.PagesInSource.Start()), strconv.Itoa(n.PagesInSource.End()),
		strconv.Itoa(n.PageCount), "", "",
	}
	if err := w.Write(narrativeRow); err != nil {
		return fmt.Errorf("failed to write narrative row: %w", err)
	}

	for _, tlf := range m.TLFs {
		row := []string{
			tlf.ID, tlf.Type, tlf.Title, tlf.File,
			strconv.Itoa(tlf.PagesInSource.Start()), strconv.Itoa(tlf.PagesInSource.End()),
			strconv.Itoa(tlf.PageCount), tlf.Population, tlf.SourceProgram,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", tlf.ID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush manifest csv: %w", err)
	}
	return nil
}

var (
	// ErrMissing marks a manifest that is not on disk.
	ErrMissing = errors.New("manifest missing")

	// ErrCorrupt marks a manifest that is unparseable or violates the
	// manifest schema.
	ErrCorrupt = errors.New("manifest corrupt")
)

// Load reads and verifies a persisted manifest. Absent files yield
// ErrMissing; unparseable or schema-violating content yields ErrCorrupt.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissing, path)
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	if err := validateSchema(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return &m, nil
}
