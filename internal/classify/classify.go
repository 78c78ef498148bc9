// Package classify decides what a CSR page is: the start of a Table/Figure,
// a continuation, or the start of the back matter that ends the TLF section.
//
// Everything here is pure string matching on linearized page text. The ICH E3
// document family uses fixed boilerplate headings and footers, so anchoring
// to line position (top of page / bottom of page) and case-insensitive
// literal prefixes is robust to PDF text-extraction noise without any layout
// analysis.
package classify

import (
	"regexp"
	"strings"

	"github.com/jackzampolin/tlfsplit/internal/pagetext"
)

// Kind distinguishes tables from figures.
type Kind string

const (
	KindTable  Kind = "table"
	KindFigure Kind = "figure"
)

const (
	// headLines is how many leading lines are searched for the TLF heading
	// and the population line.
	headLines = 10

	// footerLines is how many trailing lines are searched (bottom-up) for
	// the source-program footer.
	footerLines = 15

	// terminationLines is how many leading lines are searched for a
	// References/Appendices heading.
	terminationLines = 20
)

// headingRe matches Section 14 TLF headings, e.g. "Table 14.1.1" or
// "Figure 14-2".
var headingRe = regexp.MustCompile(`^(?i)(Table|Figure)\s*14[.\-][\d.\-]+`)

// Identity is the structured heading of a TLF's first page.
type Identity struct {
	ID            string // raw heading line, case preserved
	Kind          Kind
	Title         string // line following the heading, empty if none
	Population    string // from a "Population:" line, empty if none
	SourceProgram string // from a "Source:" footer, empty if none
}

// Classify extracts a TLF identity from one page's text.
// It returns nil when the page carries no recognizable TLF heading.
func Classify(raw string) *Identity {
	lines := pagetext.Lines(raw)

	idx := -1
	var ident Identity
	for i, line := range pagetext.Head(lines, headLines) {
		if headingRe.MatchString(line) {
			idx = i
			ident.ID = line
			ident.Kind = KindFigure
			if strings.Contains(strings.ToLower(line), "table") {
				ident.Kind = KindTable
			}
			break
		}
	}
	if idx == -1 {
		return nil
	}

	if idx+1 < len(lines) {
		ident.Title = lines[idx+1]
	}
	ident.Population = population(lines)
	ident.SourceProgram = sourceProgram(lines)
	return &ident
}

// IsTermination reports whether a page opens the References or Appendices
// section, which bounds the TLF section from below.
func IsTermination(raw string) bool {
	for _, line := range pagetext.Head(pagetext.Lines(raw), terminationLines) {
		upper := strings.ToUpper(line)
		if upper == "15." || upper == "16." ||
			strings.HasPrefix(upper, "15. REFERENCE") ||
			strings.HasPrefix(upper, "16. APPEND") {
			return true
		}
	}
	return false
}

func population(lines []string) string {
	for _, line := range pagetext.Head(lines, headLines) {
		if strings.HasPrefix(strings.ToLower(line), "population:") {
			_, value, _ := strings.Cut(line, ":")
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// twoSpaces splits footer values like "prog1.sas   02JUN2023" into columns.
var twoSpaces = regexp.MustCompile(`\s{2,}`)

func sourceProgram(lines []string) string {
	tail := pagetext.Tail(lines, footerLines)
	for i := len(tail) - 1; i >= 0; i-- {
		line := tail[i]
		if !strings.HasPrefix(strings.ToLower(line), "source:") {
			continue
		}
		value := strings.TrimSpace(line[len("source:"):])
		parts := twoSpaces.Split(value, -1)
		if len(parts) > 0 {
			return parts[0]
		}
		return ""
	}
	return ""
}
