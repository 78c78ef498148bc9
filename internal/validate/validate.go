// Package validate re-checks a finished extraction from disk. It trusts
// nothing from the extraction run: the manifest is re-read, every referenced
// file is re-probed, and the page-range invariants are re-derived, so damage
// introduced after extraction is caught too.
package validate

import (
	"fmt"
	"os"
	"strings"

	"github.com/jackzampolin/tlfsplit/internal/manifest"
	"github.com/jackzampolin/tlfsplit/internal/outdir"
	"github.com/jackzampolin/tlfsplit/internal/pdfio"
)

// Check names, in report order.
const (
	CheckFilesExist     = "files_exist"
	CheckFilesNonEmpty  = "files_non_empty"
	CheckPageCountMatch = "page_count_match"
	CheckNoPageGaps     = "no_page_gaps"
	CheckNoPageOverlaps = "no_page_overlaps"
	CheckNarrativeOK    = "narrative_ok"
	CheckPDFsReadable   = "pdfs_readable"
)

var checkOrder = []string{
	CheckFilesExist,
	CheckFilesNonEmpty,
	CheckPageCountMatch,
	CheckNoPageGaps,
	CheckNoPageOverlaps,
	CheckNarrativeOK,
	CheckPDFsReadable,
}

// PageCounter probes a PDF and returns its page count. An error means the
// file is unreadable as a PDF.
type PageCounter func(path string) (int, error)

// Options tunes a validation run.
type Options struct {
	// PageCount overrides the PDF probe; defaults to pdfio.PageCount.
	PageCount PageCounter
}

// Report is the accumulated outcome of all checks.
type Report struct {
	results  map[string]bool
	Messages []string

	// TLFCount is the number of TLF records in the manifest.
	TLFCount int

	// NarrativePages is the manifest's narrative page count.
	NarrativePages int

	// CoveredStart/CoveredEnd span the pages the TLF records cover,
	// both zero when the manifest lists no TLFs.
	CoveredStart int
	CoveredEnd   int
}

func newReport() *Report {
	r := &Report{results: make(map[string]bool, len(checkOrder))}
	for _, name := range checkOrder {
		r.results[name] = true
	}
	return r
}

func (r *Report) fail(check, format string, args ...any) {
	r.results[check] = false
	r.Messages = append(r.Messages, fmt.Sprintf(format, args...))
}

// Check reports whether the named check passed.
func (r *Report) Check(name string) bool {
	return r.results[name]
}

// Passed reports whether every check passed.
func (r *Report) Passed() bool {
	for _, ok := range r.results {
		if !ok {
			return false
		}
	}
	return true
}

// PassedCount returns how many of the checks passed.
func (r *Report) PassedCount() int {
	n := 0
	for _, ok := range r.results {
		if ok {
			n++
		}
	}
	return n
}

// TotalChecks returns the number of checks a run performs.
func (r *Report) TotalChecks() int {
	return len(r.results)
}

// Run validates the extraction under outputDir against its manifest.
// A missing or corrupt manifest is fatal for validation and returned as an
// error (manifest.ErrMissing / manifest.ErrCorrupt); every other finding is
// accumulated in the report.
func Run(outputDir string, opts Options) (*Report, error) {
	pageCount := opts.PageCount
	if pageCount == nil {
		pageCount = pdfio.PageCount
	}

	dir := outdir.New(outputDir)
	m, err := manifest.Load(dir.ManifestPath())
	if err != nil {
		return nil, err
	}

	r := newReport()
	r.TLFCount = len(m.TLFs)
	r.NarrativePages = m.Narrative.PageCount
	if len(m.TLFs) > 0 {
		r.CoveredStart = m.TLFs[0].PagesInSource.Start()
		r.CoveredEnd = m.TLFs[len(m.TLFs)-1].PagesInSource.End()
	}

	checkNarrative(r, dir, m, pageCount)
	checkTLFs(r, dir, m, pageCount)

	return r, nil
}

func checkNarrative(r *Report, dir *outdir.Dir, m *manifest.Manifest, pageCount PageCounter) {
	path := dir.Resolve(m.Narrative.File)

	info, err := os.Stat(path)
	if err != nil {
		r.fail(CheckNarrativeOK, "Narrative body missing: %s", path)
		r.results[CheckFilesExist] = false
		return
	}
	if info.Size() == 0 {
		r.fail(CheckNarrativeOK, "Narrative body is empty: %s", path)
		r.results[CheckFilesNonEmpty] = false
		return
	}

	count, err := pageCount(path)
	if err != nil {
		r.fail(CheckNarrativeOK, "Narrative body is unreadable: %s", path)
		r.results[CheckPDFsReadable] = false
		return
	}
	if count != m.Narrative.PageCount {
		r.fail(CheckNarrativeOK, "Narrative page count mismatch: %d != %d", count, m.Narrative.PageCount)
	}
}

func checkTLFs(r *Report, dir *outdir.Dir, m *manifest.Manifest, pageCount PageCounter) {
	expectedNext := 0
	for _, tlf := range m.TLFs {
		start, end := tlf.PagesInSource.Start(), tlf.PagesInSource.End()
		if expectedNext != 0 {
			if start > expectedNext {
				r.fail(CheckNoPageGaps, "Page gap before %s (expected %d, got %d)", tlf.ID, expectedNext, start)
			} else if start < expectedNext {
				r.fail(CheckNoPageOverlaps, "Page overlap at %s (expected %d, got %d)", tlf.ID, expectedNext, start)
			}
		}
		expectedNext = end + 1

		path := dir.Resolve(tlf.File)
		info, err := os.Stat(path)
		if err != nil {
			r.fail(CheckFilesExist, "File missing for %s: %s", tlf.ID, path)
			continue
		}
		if info.Size() == 0 {
			r.fail(CheckFilesNonEmpty, "File empty for %s: %s", tlf.ID, path)
			continue
		}

		count, err := pageCount(path)
		if err != nil {
			r.fail(CheckPDFsReadable, "File unreadable for %s: %s", tlf.ID, path)
			continue
		}
		if count != tlf.PageCount {
			r.fail(CheckPageCountMatch, "Page count mismatch: %s has %d pages but manifest says %d",
				baseName(tlf.File), count, tlf.PageCount)
		}
	}
}

func baseName(ref string) string {
	if i := strings.LastIndexByte(ref, '/'); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

// Summary renders the human-readable validation block: one line per passing
// check, itemized failure messages, and the final verdict.
func (r *Report) Summary() string {
	var b strings.Builder
	b.WriteString("\n=== Validation ===\n")

	if r.Check(CheckFilesExist) {
		fmt.Fprintf(&b, "✅ All %d TLF files exist\n", r.TLFCount)
	}
	if r.Check(CheckFilesNonEmpty) {
		b.WriteString("✅ All files non-empty\n")
	}
	if r.Check(CheckPageCountMatch) {
		b.WriteString("✅ Page counts consistent\n")
	}
	if r.Check(CheckNoPageGaps) {
		if r.TLFCount > 0 {
			fmt.Fprintf(&b, "✅ No page gaps in Section 14 (pages %d-%d covered)\n", r.CoveredStart, r.CoveredEnd)
		} else {
			b.WriteString("✅ No page gaps in Section 14\n")
		}
	}
	if r.Check(CheckNoPageOverlaps) {
		b.WriteString("✅ No page overlaps\n")
	}
	if r.Check(CheckNarrativeOK) {
		fmt.Fprintf(&b, "✅ Narrative body OK (%d pages)\n", r.NarrativePages)
	}
	if r.Check(CheckPDFsReadable) {
		b.WriteString("✅ All PDFs readable\n")
	}

	for _, msg := range r.Messages {
		b.WriteString("❌ " + msg + "\n")
	}

	if r.Passed() {
		fmt.Fprintf(&b, "\nValidation PASSED (%d/%d checks)\n", r.PassedCount(), r.TotalChecks())
	} else {
		fmt.Fprintf(&b, "\nValidation FAILED (%d/%d checks passed)\n", r.PassedCount(), r.TotalChecks())
	}
	return b.String()
}
