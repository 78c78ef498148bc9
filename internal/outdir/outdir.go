// Package outdir models the extraction output directory layout.
package outdir

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// PDFDirName is the subdirectory for extracted PDF sub-documents.
	PDFDirName = "pdf"

	// TextDirName is the subdirectory for extracted plain text.
	TextDirName = "text"

	// ManifestName is the structured manifest file name.
	ManifestName = "manifest.json"

	// ManifestCSVName is the tabular manifest projection file name.
	ManifestCSVName = "manifest.csv"

	// NarrativeBase is the base name for the narrative body outputs.
	NarrativeBase = "narrative_body"
)

// Dir represents an extraction output directory.
type Dir struct {
	path string
}

// New creates a Dir rooted at path.
func New(path string) *Dir {
	return &Dir{path: path}
}

// Path returns the root path of the output directory.
func (d *Dir) Path() string {
	return d.path
}

// Resolve returns the on-disk path for a manifest-relative file reference
// like "pdf/Table_14.1.1.pdf".
func (d *Dir) Resolve(rel string) string {
	return filepath.Join(d.path, filepath.FromSlash(rel))
}

// ManifestPath returns the path to manifest.json.
func (d *Dir) ManifestPath() string {
	return filepath.Join(d.path, ManifestName)
}

// ManifestCSVPath returns the path to manifest.csv.
func (d *Dir) ManifestCSVPath() string {
	return filepath.Join(d.path, ManifestCSVName)
}

// NarrativePDFRef returns the manifest-relative narrative PDF reference.
// References use forward slashes regardless of platform, so manifests are
// portable across machines.
func NarrativePDFRef() string {
	return PDFDirName + "/" + NarrativeBase + ".pdf"
}

// TLFPDFRef returns the manifest-relative PDF reference for a TLF id.
func TLFPDFRef(id string) string {
	return PDFDirName + "/" + SanitizeID(id) + ".pdf"
}

// NarrativeText returns the on-disk path of the narrative text file.
func (d *Dir) NarrativeText() string {
	return filepath.Join(d.path, TextDirName, NarrativeBase+".txt")
}

// TLFText returns the on-disk path of a TLF's text file.
func (d *Dir) TLFText(id string) string {
	return filepath.Join(d.path, TextDirName, SanitizeID(id)+".txt")
}

// EnsureExists creates the output directory tree. Text dir creation is
// skipped when withText is false.
func (d *Dir) EnsureExists(withText bool) error {
	if err := os.MkdirAll(filepath.Join(d.path, PDFDirName), 0o755); err != nil {
		return fmt.Errorf("failed to create pdf directory: %w", err)
	}
	if withText {
		if err := os.MkdirAll(filepath.Join(d.path, TextDirName), 0o755); err != nil {
			return fmt.Errorf("failed to create text directory: %w", err)
		}
	}
	return nil
}

// SanitizeID derives a filesystem-safe base name from a TLF id: spaces
// become underscores and embedded newlines are removed. The mapping is
// deterministic so a manifest and a re-run always agree on file names.
func SanitizeID(id string) string {
	id = strings.ReplaceAll(id, " ", "_")
	return strings.ReplaceAll(id, "\n", "")
}
