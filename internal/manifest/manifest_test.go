package manifest

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackzampolin/tlfsplit/internal/classify"
	"github.com/jackzampolin/tlfsplit/internal/segment"
)

func sampleResult() *segment.Result {
	return &segment.Result{
		Records: []*segment.Record{
			{
				ID: "Table 14.1.1", Kind: classify.KindTable, Title: "Demographics",
				Population: "Safety", SourceProgram: "prog1.sas",
				FirstPage: 43, LastPage: 44, PageCount: 2,
			},
			{
				ID: "Figure 14.2.1", Kind: classify.KindFigure, Title: "Kaplan-Meier Plot",
				FirstPage: 45, LastPage: 45, PageCount: 1,
			},
		},
	}
}

func TestBuild(t *testing.T) {
	now := time.Date(2024, 6, 2, 10, 30, 45, 987654321, time.UTC)
	m := Build("csr.pdf", 60, sampleResult(), now)

	if m.SourceFile != "csr.pdf" || m.SourcePages != 60 {
		t.Errorf("unexpected source fields: %s %d", m.SourceFile, m.SourcePages)
	}
	if m.ExtractionDate != "2024-06-02T10:30:45Z" {
		t.Errorf("expected second-precision UTC timestamp, got %s", m.ExtractionDate)
	}

	n := m.Narrative
	if n.File != "pdf/narrative_body.pdf" || n.PagesInSource != (PageRange{1, 42}) || n.PageCount != 42 {
		t.Errorf("unexpected narrative record: %+v", n)
	}

	if len(m.TLFs) != 2 {
		t.Fatalf("expected 2 TLFs, got %d", len(m.TLFs))
	}
	first := m.TLFs[0]
	if first.File != "pdf/Table_14.1.1.pdf" {
		t.Errorf("unexpected file ref: %s", first.File)
	}
	if first.Type != "table" || first.PagesInSource != (PageRange{43, 44}) || first.PageCount != 2 {
		t.Errorf("unexpected TLF record: %+v", first)
	}
	if m.TLFs[1].Type != "figure" {
		t.Errorf("expected figure type, got %s", m.TLFs[1].Type)
	}
}

func TestBuild_LocalTimeNormalizedToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	now := time.Date(2024, 6, 2, 12, 0, 0, 0, loc)
	m := Build("csr.pdf", 60, &segment.Result{}, now)
	if m.ExtractionDate != "2024-06-02T10:00:00Z" {
		t.Errorf("expected UTC timestamp, got %s", m.ExtractionDate)
	}
}

func TestWriteJSONAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	m := Build("csr.pdf", 60, sampleResult(), time.Now())

	if err := m.WriteJSON(path); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.SourceFile != m.SourceFile || len(loaded.TLFs) != len(m.TLFs) {
		t.Errorf("round-trip mismatch: %+v", loaded)
	}
	if loaded.TLFs[0].SourceProgram != "prog1.sas" {
		t.Errorf("expected source program to survive round-trip, got %q", loaded.TLFs[0].SourceProgram)
	}

	// source_program must be omitted from JSON when absent.
	data, _ := os.ReadFile(path)
	if strings.Count(string(data), "source_program") != 1 {
		t.Errorf("source_program should appear exactly once:\n%s", data)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "manifest.json"))
		if !errors.Is(err, ErrMissing) {
			t.Errorf("expected ErrMissing, got %v", err)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "manifest.json")
		os.WriteFile(path, []byte("{not json"), 0o644)
		_, err := Load(path)
		if !errors.Is(err, ErrCorrupt) {
			t.Errorf("expected ErrCorrupt, got %v", err)
		}
	})

	t.Run("schema violation", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "manifest.json")
		// Valid JSON but missing required fields and with a bad type enum.
		os.WriteFile(path, []byte(`{"source_file":"x.pdf","tlfs":[{"id":"T","type":"listing"}]}`), 0o644)
		_, err := Load(path)
		if !errors.Is(err, ErrCorrupt) {
			t.Errorf("expected ErrCorrupt, got %v", err)
		}
	})
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.csv")
	m := Build("csr.pdf", 60, sampleResult(), time.Now())

	if err := m.WriteCSV(path); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open csv: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse csv: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header + narrative + 2 TLF rows, got %d", len(rows))
	}

	wantHeader := strings.Join(CSVHeader, ",")
	if strings.Join(rows[0], ",") != wantHeader {
		t.Errorf("unexpected header: %v", rows[0])
	}

	narrative := rows[1]
	if narrative[0] != "narrative_body" || narrative[1] != "narrative" || narrative[2] != "" {
		t.Errorf("unexpected narrative row: %v", narrative)
	}
	if narrative[4] != "1" || narrative[5] != "42" || narrative[6] != "42" {
		t.Errorf("unexpected narrative pages: %v", narrative)
	}

	tlf := rows[2]
	if tlf[0] != "Table 14.1.1" || tlf[4] != "43" || tlf[5] != "44" || tlf[6] != "2" {
		t.Errorf("unexpected TLF row: %v", tlf)
	}
	if tlf[7] != "Safety" || tlf[8] != "prog1.sas" {
		t.Errorf("unexpected TLF metadata: %v", tlf)
	}
}
