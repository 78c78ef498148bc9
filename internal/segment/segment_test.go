package segment

import (
	"fmt"
	"log/slog"
	"testing"

	"github.com/jackzampolin/tlfsplit/internal/classify"
)

func discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// fakeSource maps source page numbers to page text.
type fakeSource map[int]string

func (f fakeSource) PageText(pageNum int) (string, error) {
	text, ok := f[pageNum]
	if !ok {
		return "", fmt.Errorf("no text for page %d", pageNum)
	}
	return text, nil
}

func TestScanner_Step(t *testing.T) {
	t.Run("heading page opens record", func(t *testing.T) {
		s := NewScanner(discard())
		if !s.Step(43, "Table 14.1.1\nDemographics\nPopulation: Safety\nbody\nSource:   prog1.sas   02JUN2023") {
			t.Fatal("expected scan to continue")
		}
		res := s.Finish()
		if len(res.Records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(res.Records))
		}
		rec := res.Records[0]
		if rec.ID != "Table 14.1.1" || rec.Kind != classify.KindTable {
			t.Errorf("unexpected identity: %+v", rec)
		}
		if rec.Title != "Demographics" || rec.Population != "Safety" || rec.SourceProgram != "prog1.sas" {
			t.Errorf("unexpected metadata: %+v", rec)
		}
		if rec.FirstPage != 43 || rec.LastPage != 43 || rec.PageCount != 1 {
			t.Errorf("unexpected page range: %+v", rec)
		}
	})

	t.Run("headingless page extends open record", func(t *testing.T) {
		s := NewScanner(discard())
		s.Step(43, "Table 14.1.1\nDemographics")
		s.Step(44, "Age (years)  mean  61.2")
		res := s.Finish()
		rec := res.Records[0]
		if rec.LastPage != 44 || rec.PageCount != 2 {
			t.Errorf("expected extension to page 44, got %+v", rec)
		}
	})

	t.Run("repeated heading extends open record", func(t *testing.T) {
		s := NewScanner(discard())
		s.Step(43, "Table 14.1.1\nDemographics")
		s.Step(44, "Table 14.1.1\nDemographics (continued)")
		res := s.Finish()
		if len(res.Records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(res.Records))
		}
		if res.Records[0].LastPage != 44 || res.Records[0].PageCount != 2 {
			t.Errorf("expected extension, got %+v", res.Records[0])
		}
	})

	t.Run("new heading opens new record", func(t *testing.T) {
		s := NewScanner(discard())
		s.Step(43, "Table 14.1.1\nDemographics")
		s.Step(44, "Table 14.1.2\nDisposition")
		res := s.Finish()
		if len(res.Records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(res.Records))
		}
		if res.Records[0].LastPage != 43 {
			t.Errorf("first record should close at 43, got %d", res.Records[0].LastPage)
		}
		if res.Records[1].FirstPage != 44 || res.Records[1].PageCount != 1 {
			t.Errorf("unexpected second record: %+v", res.Records[1])
		}
	})

	t.Run("termination stops scan", func(t *testing.T) {
		s := NewScanner(discard())
		s.Step(43, "Table 14.1.1\nDemographics")
		s.Step(44, "continued body")
		if s.Step(45, "15. REFERENCES") {
			t.Error("expected Step to report termination")
		}
		res := s.Finish()
		if res.TerminatedAt != 45 {
			t.Errorf("expected termination at page 45, got %d", res.TerminatedAt)
		}
		if res.Records[0].LastPage != 44 {
			t.Errorf("TLF section should end at page 44, got %d", res.Records[0].LastPage)
		}
	})

	t.Run("headingless page before first record warns and drops", func(t *testing.T) {
		s := NewScanner(discard())
		s.Step(43, "orphan page with no heading")
		s.Step(44, "Table 14.1.1\nDemographics")
		res := s.Finish()
		if res.Warnings != 1 {
			t.Errorf("expected 1 warning, got %d", res.Warnings)
		}
		if len(res.Records) != 1 || res.Records[0].FirstPage != 44 {
			t.Errorf("orphan page must not join a record: %+v", res.Records)
		}
	})
}

func TestScan(t *testing.T) {
	src := fakeSource{
		43: "Table 14.1.1\nDemographics\nPopulation: Safety\nSource:   prog1.sas   02JUN2023",
		44: "Age (years)  n  62",
		45: "Figure 14.2.1\nKaplan-Meier Plot",
		46: "Table 14.3.1\nAdverse Events",
		47: "Table 14.3.1\nAdverse Events (continued)",
		48: "15. REFERENCES",
		49: "Smith et al 2019",
	}

	res := Scan(src, 43, 49, discard())

	if res.TerminatedAt != 48 {
		t.Errorf("expected termination at 48, got %d", res.TerminatedAt)
	}
	if len(res.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(res.Records))
	}
	if res.Tables() != 2 || res.Figures() != 1 {
		t.Errorf("expected 2 tables and 1 figure, got %d/%d", res.Tables(), res.Figures())
	}
	if res.TLFPages() != 5 {
		t.Errorf("expected 5 TLF pages, got %d", res.TLFPages())
	}

	// Ranges must be gap-free, non-overlapping and in order, covering 43
	// through the page before termination.
	next := 43
	for _, rec := range res.Records {
		if rec.FirstPage != next {
			t.Errorf("record %s starts at %d, expected %d", rec.ID, rec.FirstPage, next)
		}
		if rec.PageCount != rec.LastPage-rec.FirstPage+1 {
			t.Errorf("record %s page count %d != range %d-%d", rec.ID, rec.PageCount, rec.FirstPage, rec.LastPage)
		}
		next = rec.LastPage + 1
	}
	if next != res.TerminatedAt {
		t.Errorf("records cover through %d, expected through %d", next-1, res.TerminatedAt-1)
	}
}

func TestScan_UnreadablePageExtendsOpenRecord(t *testing.T) {
	src := fakeSource{
		43: "Table 14.1.1\nDemographics",
		// page 44 missing: PageText returns an error
		45: "Table 14.1.2\nDisposition",
	}

	res := Scan(src, 43, 45, discard())

	if len(res.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(res.Records))
	}
	if res.Records[0].LastPage != 44 {
		t.Errorf("unreadable page should extend the open record, got last page %d", res.Records[0].LastPage)
	}
}

func TestScan_NoTermination(t *testing.T) {
	src := fakeSource{
		43: "Table 14.1.1\nDemographics",
		44: "body",
	}

	res := Scan(src, 43, 44, discard())

	if res.TerminatedAt != 0 {
		t.Errorf("expected no termination, got %d", res.TerminatedAt)
	}
	if res.Records[0].LastPage != 44 || res.Records[0].PageCount != 2 {
		t.Errorf("open record at EOF must be finalized as-is: %+v", res.Records[0])
	}
}
