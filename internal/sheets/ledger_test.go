package sheets

import (
	"errors"
	"testing"

	"github.com/justsurfingit/Agentic-Job-Applier/internal/status"
)

func headerRow() []interface{} {
	row := make([]interface{}, len(Header))
	for i, h := range Header {
		row[i] = h
	}
	return row
}

func TestParseRows(t *testing.T) {
	values := [][]interface{}{
		headerRow(),
		{"JOB-1", "Globex", "Backend Engineer", "Not Applied", "", "", "", "", "https://www.linkedin.com/jobs/view/1", "High"},
		// Short row: the sheet omits trailing empty cells.
		{"JOB-2", "Initech", "Data Analyst", "Applied"},
	}

	jobs, err := ParseRows(values)
	if err != nil {
		t.Fatalf("ParseRows: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("got %d jobs, want 2", len(jobs))
	}

	first := jobs[0]
	if first.RowIndex != 2 || first.JobID != "JOB-1" || first.Status != status.NotApplied {
		t.Errorf("unexpected first row: %+v", first)
	}
	if first.JobURL != "https://www.linkedin.com/jobs/view/1" || first.Priority != "High" {
		t.Errorf("column mapping broken: %+v", first)
	}

	second := jobs[1]
	if second.RowIndex != 3 || second.Status != status.Applied {
		t.Errorf("unexpected second row: %+v", second)
	}
	if second.JobURL != "" || second.Notes != "" {
		t.Errorf("short row must be padded with empty cells: %+v", second)
	}
}

func TestParseRowsHeaderOnly(t *testing.T) {
	jobs, err := ParseRows([][]interface{}{headerRow()})
	if err != nil {
		t.Fatalf("ParseRows: %v", err)
	}
	if len(jobs) != 0 {
		t.Errorf("got %d jobs, want 0", len(jobs))
	}
}

func TestParseRowsRejectsBadSchema(t *testing.T) {
	cases := [][][]interface{}{
		{},                                  // empty sheet
		{{"Job_ID", "Company"}},             // truncated header
		{append(headerRow()[:9], "Extra")},  // renamed last column
		{{"ID", "Company", "Position", "Status", "Applied_Date", "Last_Checked", "Application_ID", "Notes", "Job_URL", "Priority"}},
	}
	for i, values := range cases {
		if _, err := ParseRows(values); !errors.Is(err, ErrSchema) {
			t.Errorf("case %d: want ErrSchema, got %v", i, err)
		}
	}
}

func TestFilterByStatus(t *testing.T) {
	values := [][]interface{}{
		headerRow(),
		{"JOB-1", "A", "P1", "Not Applied"},
		{"JOB-2", "B", "P2", "Applied"},
		{"JOB-3", "C", "P3", "Under Review"},
		{"JOB-4", "D", "P4", "Not Applied"},
		{"JOB-5", "E", "P5", "totally bogus"},
	}
	jobs, err := ParseRows(values)
	if err != nil {
		t.Fatalf("ParseRows: %v", err)
	}

	pending := FilterByStatus(jobs, status.NotApplied)
	if len(pending) != 2 || pending[0].JobID != "JOB-1" || pending[1].JobID != "JOB-4" {
		t.Errorf("filter must preserve sheet order: %+v", pending)
	}

	active := FilterByStatus(jobs, status.Applied, status.UnderReview)
	if len(active) != 2 {
		t.Errorf("got %d active jobs, want 2", len(active))
	}

	all := FilterByStatus(jobs)
	if len(all) != 5 {
		t.Errorf("empty filter must return every row, got %d", len(all))
	}
}

func TestBuildBatchData(t *testing.T) {
	updates := []RowUpdate{
		{RowIndex: 2, Fields: map[string]string{
			ColStatus:      "Applied",
			ColAppliedDate: "2026-09-01",
			ColNotes:       "Submitted via LinkedIn Easy Apply",
		}},
		{RowIndex: 5, Fields: map[string]string{
			ColLastChecked: "2026-09-01",
		}},
	}

	data := BuildBatchData(updates)
	if len(data) != 4 {
		t.Fatalf("got %d value ranges, want 4", len(data))
	}

	wantRanges := []string{"Jobs!D2", "Jobs!E2", "Jobs!H2", "Jobs!F5"}
	for i, want := range wantRanges {
		if data[i].Range != want {
			t.Errorf("range %d = %q, want %q", i, data[i].Range, want)
		}
	}
	if got := data[0].Values[0][0]; got != "Applied" {
		t.Errorf("D2 value = %v, want Applied", got)
	}
}
