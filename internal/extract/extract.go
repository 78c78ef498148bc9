// Package extract orchestrates a full CSR extraction run: narrative body,
// TLF segmentation, per-TLF sub-documents and text, and the manifest.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/tlfsplit/internal/manifest"
	"github.com/jackzampolin/tlfsplit/internal/outdir"
	"github.com/jackzampolin/tlfsplit/internal/pdfio"
	"github.com/jackzampolin/tlfsplit/internal/segment"
)

// Request contains the parameters for one extraction run.
type Request struct {
	SourcePath string
	OutputDir  string

	// DryRun performs the full scan and manifest construction in memory
	// but suppresses every filesystem write.
	DryRun bool

	// NoText skips the per-range plain-text output.
	NoText bool

	// FallbackPdftotext enables the pdftotext fallback for page text.
	FallbackPdftotext bool

	// Logger for progress updates; defaults to slog.Default.
	Logger *slog.Logger
}

// Result contains the outcome of a successful extraction run.
type Result struct {
	Manifest *manifest.Manifest
	Tables   int
	Figures  int
	TLFPages int
	Warnings int

	// TerminatedAt is the source page that carried the References/
	// Appendices heading, 0 when the document ended without one.
	TerminatedAt int
}

// Source is the slice of the PDF collaborator the driver needs.
type Source interface {
	PageCount() int
	PageText(pageNum int) (string, error)
	ExtractPages(first, last int, outPath string) error
}

// Run extracts the CSR at req.SourcePath into req.OutputDir.
func Run(ctx context.Context, req Request) (*Result, error) {
	if _, err := os.Stat(req.SourcePath); err != nil {
		return nil, fmt.Errorf("source file not found: %s", req.SourcePath)
	}

	doc, err := pdfio.Open(req.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open source document: %w", err)
	}
	defer doc.Close()
	doc.FallbackPdftotext = req.FallbackPdftotext

	return run(ctx, doc, req)
}

// run is the driver body, split out so tests can substitute the document.
func run(ctx context.Context, doc Source, req Request) (*Result, error) {
	log := req.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("run_id", uuid.New().String()[:8])

	totalPages := doc.PageCount()
	sourceName := filepath.Base(req.SourcePath)

	// Structural check before any output directory mutation.
	if totalPages < manifest.MinSourcePages {
		return nil, fmt.Errorf("document has too few pages (%d): a CSR needs at least %d", totalPages, manifest.MinSourcePages)
	}

	dir := outdir.New(req.OutputDir)
	if !req.DryRun {
		if err := dir.EnsureExists(!req.NoText); err != nil {
			return nil, err
		}
	}

	log.Info("extracting narrative body", "pages", fmt.Sprintf("1-%d", manifest.NarrativePageCount))
	if !req.DryRun {
		out := dir.Resolve(outdir.NarrativePDFRef())
		if err := doc.ExtractPages(1, manifest.NarrativePageCount, out); err != nil {
			return nil, fmt.Errorf("failed to extract narrative body: %w", err)
		}
		if !req.NoText {
			writeRangeText(doc, 1, manifest.NarrativePageCount, dir.NarrativeText(), log)
		}
	}

	res := segment.Scan(doc, manifest.FirstTLFPage, totalPages, log)

	if !req.DryRun {
		for _, rec := range res.Records {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			out := dir.Resolve(outdir.TLFPDFRef(rec.ID))
			if err := doc.ExtractPages(rec.FirstPage, rec.LastPage, out); err != nil {
				return nil, fmt.Errorf("failed to extract %s: %w", rec.ID, err)
			}
			if !req.NoText {
				writeRangeText(doc, rec.FirstPage, rec.LastPage, dir.TLFText(rec.ID), log)
			}
		}
	}

	m := manifest.Build(sourceName, totalPages, res, time.Now())

	if !req.DryRun {
		if err := m.WriteJSON(dir.ManifestPath()); err != nil {
			return nil, err
		}
		if err := m.WriteCSV(dir.ManifestCSVPath()); err != nil {
			return nil, err
		}
	}

	log.Info("extraction complete",
		"tlfs", len(res.Records),
		"tables", res.Tables(),
		"figures", res.Figures(),
		"warnings", res.Warnings)

	return &Result{
		Manifest:     m,
		Tables:       res.Tables(),
		Figures:      res.Figures(),
		TLFPages:     res.TLFPages(),
		Warnings:     res.Warnings,
		TerminatedAt: res.TerminatedAt,
	}, nil
}

// writeRangeText writes the concatenated text of pages [first, last] to path,
// with a relative page separator between pages. A failed extraction is
// recovered by writing a placeholder marker so the run can continue.
func writeRangeText(doc Source, first, last int, path string, log *slog.Logger) {
	text, err := renderRangeText(doc, first, last)
	if err != nil {
		log.Warn("failed to extract text", "path", path, "error", err)
		text = fmt.Sprintf("[TEXT EXTRACTION FAILED ON PAGE %d]", first)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		log.Warn("failed to write text file", "path", path, "error", err)
	}
}

func renderRangeText(doc Source, first, last int) (string, error) {
	var b strings.Builder
	for page := first; page <= last; page++ {
		text, err := doc.PageText(page)
		if err != nil {
			return "", err
		}
		b.WriteString(text)
		if page < last {
			// Separator numbering is relative to the sub-extract, so
			// the second page of any range is "Page 2".
			fmt.Fprintf(&b, "\n--- Page %d ---\n", page-first+2)
		}
	}
	return b.String(), nil
}

// Summary renders the human-readable extraction summary. Dry-run and real
// runs produce identical summaries because it is derived purely from the
// in-memory result.
func (r *Result) Summary() string {
	var b strings.Builder
	m := r.Manifest

	b.WriteString("\n=== Extraction Summary ===\n")
	fmt.Fprintf(&b, "Source: %s (%d pages)\n", m.SourceFile, m.SourcePages)
	fmt.Fprintf(&b, "Narrative: pages %d-%d -> %s\n",
		m.Narrative.PagesInSource.Start(), m.Narrative.PagesInSource.End(), m.Narrative.File)

	figures := "figures"
	if r.Figures == 1 {
		figures = "figure"
	}
	fmt.Fprintf(&b, "TLFs extracted: %d (%d tables, %d %s)\n", len(m.TLFs), r.Tables, r.Figures, figures)
	fmt.Fprintf(&b, "Total TLF pages: %d\n", r.TLFPages)
	fmt.Fprintf(&b, "Warnings: %d\n\n", r.Warnings)

	for _, tlf := range m.TLFs {
		fmt.Fprintf(&b, "%-14s %-6s %s\n", tlf.ID, fmt.Sprintf("(%dp)", tlf.PageCount), tlf.Title)
	}
	return b.String()
}
