package sheets

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/justsurfingit/Agentic-Job-Applier/internal/models"
	"github.com/justsurfingit/Agentic-Job-Applier/internal/status"
	sheetsapi "google.golang.org/api/sheets/v4"
)

const (
	sheetName = "Jobs"
	readRange = sheetName + "!A:J"
)

// Column letters for batch updates. The 10-column layout is fixed;
// VerifySchema refuses to run against anything else.
const (
	ColStatus        = "D"
	ColAppliedDate   = "E"
	ColLastChecked   = "F"
	ColApplicationID = "G"
	ColNotes         = "H"
)

// Header is the exact first row the Jobs sheet must carry.
var Header = []string{
	"Job_ID", "Company", "Position", "Status", "Applied_Date",
	"Last_Checked", "Application_ID", "Notes", "Job_URL", "Priority",
}

// ErrWrite marks a failed batch update. The current pass is done at
// that point; the next scheduled pass re-reads the sheet and retries.
var ErrWrite = errors.New("ledger write failed")

// ErrSchema marks a sheet whose header row does not match Header.
var ErrSchema = errors.New("unexpected sheet schema")

// RowUpdate is a partial update of one sheet row: column letter -> value.
type RowUpdate struct {
	RowIndex int
	Fields   map[string]string
}

// Ledger reads and writes the external Jobs sheet.
type Ledger struct {
	svc           *sheetsapi.Service
	spreadsheetID string
}

func New(svc *sheetsapi.Service, spreadsheetID string) *Ledger {
	return &Ledger{svc: svc, spreadsheetID: spreadsheetID}
}

// VerifySchema checks the header row before any workflow runs, so a
// reorganised sheet fails loudly at startup instead of corrupting rows.
func (l *Ledger) VerifySchema(ctx context.Context) error {
	resp, err := l.svc.Spreadsheets.Values.
		Get(l.spreadsheetID, sheetName+"!A1:J1").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("reading sheet header: %w", err)
	}
	if len(resp.Values) == 0 {
		return fmt.Errorf("%w: header row is empty", ErrSchema)
	}
	return checkHeader(resp.Values[0])
}

// ReadJobs reads the full sheet and returns rows whose status is in
// filter, preserving sheet order. An empty filter returns every row.
func (l *Ledger) ReadJobs(ctx context.Context, filter ...status.Status) ([]models.JobRecord, error) {
	resp, err := l.svc.Spreadsheets.Values.
		Get(l.spreadsheetID, readRange).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading jobs sheet: %w", err)
	}

	jobs, err := ParseRows(resp.Values)
	if err != nil {
		return nil, err
	}
	jobs = FilterByStatus(jobs, filter...)

	log.Printf("Read %d jobs (filter=%v) from sheet", len(jobs), filter)
	return jobs, nil
}

// WriteUpdates applies all accumulated row changes in a single
// batchUpdate call, so a pass either lands all its writes or none.
func (l *Ledger) WriteUpdates(ctx context.Context, updates []RowUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	req := &sheetsapi.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             BuildBatchData(updates),
	}
	if _, err := l.svc.Spreadsheets.Values.
		BatchUpdate(l.spreadsheetID, req).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	log.Printf("Updated %d sheet row(s)", len(updates))
	return nil
}

// checkHeader compares a raw header row against Header.
func checkHeader(row []interface{}) error {
	if len(row) != len(Header) {
		return fmt.Errorf("%w: got %d columns, want %d", ErrSchema, len(row), len(Header))
	}
	for i, cell := range row {
		got := strings.TrimSpace(fmt.Sprint(cell))
		if got != Header[i] {
			return fmt.Errorf("%w: column %d is %q, want %q", ErrSchema, i+1, got, Header[i])
		}
	}
	return nil
}

// ParseRows turns the raw A:J value grid into job records. Row 1 is the
// header; short rows are padded with empty cells like the sheet UI does.
func ParseRows(values [][]interface{}) ([]models.JobRecord, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: sheet is empty", ErrSchema)
	}
	if err := checkHeader(values[0]); err != nil {
		return nil, err
	}
	if len(values) < 2 {
		log.Println("No data found in sheet (only header row)")
		return nil, nil
	}

	jobs := make([]models.JobRecord, 0, len(values)-1)
	for i, raw := range values[1:] {
		row := padRow(raw, len(Header))
		jobs = append(jobs, models.JobRecord{
			RowIndex:      i + 2, // 1-based, row 1 is the header
			JobID:         row[0],
			Company:       row[1],
			Position:      row[2],
			Status:        status.Status(strings.TrimSpace(row[3])),
			AppliedDate:   row[4],
			LastChecked:   row[5],
			ApplicationID: row[6],
			Notes:         row[7],
			JobURL:        row[8],
			Priority:      row[9],
		})
	}
	return jobs, nil
}

// FilterByStatus keeps rows whose status matches any of filter,
// preserving order. Sheet order is the processing-order tie-break.
func FilterByStatus(jobs []models.JobRecord, filter ...status.Status) []models.JobRecord {
	if len(filter) == 0 {
		return jobs
	}
	var out []models.JobRecord
	for _, j := range jobs {
		for _, want := range filter {
			if j.Status == want {
				out = append(out, j)
				break
			}
		}
	}
	return out
}

// BuildBatchData expands row updates into one ValueRange per cell.
func BuildBatchData(updates []RowUpdate) []*sheetsapi.ValueRange {
	var data []*sheetsapi.ValueRange
	for _, u := range updates {
		// Deterministic order keeps the request stable for tests.
		for _, col := range []string{ColStatus, ColAppliedDate, ColLastChecked, ColApplicationID, ColNotes} {
			v, ok := u.Fields[col]
			if !ok {
				continue
			}
			data = append(data, &sheetsapi.ValueRange{
				Range:  fmt.Sprintf("%s!%s%d", sheetName, col, u.RowIndex),
				Values: [][]interface{}{{v}},
			})
		}
	}
	return data
}

func padRow(raw []interface{}, width int) []string {
	row := make([]string, width)
	for i := 0; i < width && i < len(raw); i++ {
		row[i] = fmt.Sprint(raw[i])
	}
	return row
}
