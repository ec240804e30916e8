package finance

import (
	"strings"
	"testing"
	"time"

	"projectfin-backend/internal/models"
)

func sampleTransaction() models.Transaction {
	approver := models.User{ID: 1, Name: "Admin", Email: "admin@test.local"}
	return models.Transaction{
		ID:          7,
		Type:        models.TypeExpense,
		Amount:      99.5,
		Description: "laptops, docks and cables",
		Date:        time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC),
		Category:    models.CategoryEquipment,
		ProjectID:   3,
		Project:     models.Project{ID: 3, Name: "Alpha"},
		CompanyID:   2,
		Company:     models.Company{ID: 2, Name: "Acme"},
		Status:      models.StatusApproved,
		CreatedBy:   models.User{ID: 4, Name: "Uma", Email: "uma@test.local"},
		ApprovedBy:  &approver,
	}
}

func TestBuildExportRecords_Placeholders(t *testing.T) {
	tx := models.Transaction{
		ID:     1,
		Type:   models.TypeIncome,
		Status: models.StatusPending,
	}

	records := BuildExportRecords([]models.Transaction{tx})
	if len(records) != 1 {
		t.Fatalf("got %d records", len(records))
	}
	r := records[0]

	if r.Project != PlaceholderUnknownProject {
		t.Errorf("project = %q, want %q", r.Project, PlaceholderUnknownProject)
	}
	if r.Company != PlaceholderUnknownCompany {
		t.Errorf("company = %q, want %q", r.Company, PlaceholderUnknownCompany)
	}
	if r.CreatedBy != PlaceholderUnknownUser {
		t.Errorf("createdBy = %q, want %q", r.CreatedBy, PlaceholderUnknownUser)
	}
	if r.ApprovedBy != PlaceholderNotApproved {
		t.Errorf("approvedBy = %q, want %q", r.ApprovedBy, PlaceholderNotApproved)
	}
}

func TestBuildExportRecords_UserDisplay(t *testing.T) {
	records := BuildExportRecords([]models.Transaction{sampleTransaction()})
	r := records[0]

	if r.CreatedBy != "Uma (uma@test.local)" {
		t.Errorf("createdBy = %q", r.CreatedBy)
	}
	if r.ApprovedBy != "Admin (admin@test.local)" {
		t.Errorf("approvedBy = %q", r.ApprovedBy)
	}
	if r.Project != "Alpha" || r.Company != "Acme" {
		t.Errorf("refs = %q / %q", r.Project, r.Company)
	}
}

func TestWriteCSV_HeaderOrder(t *testing.T) {
	csv := WriteCSV(nil)
	if csv != strings.Join(ExportFields, ",") {
		t.Errorf("header = %q", csv)
	}
}

// parseCSVLine undoes the export quoting: fields containing the delimiter
// are wrapped in quotes with embedded quotes doubled.
func parseCSVLine(line string) []string {
	var fields []string
	var cur strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case inQuotes && ch == '"' && i+1 < len(line) && line[i+1] == '"':
			cur.WriteByte('"')
			i++
		case ch == '"':
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	fields = append(fields, cur.String())
	return fields
}

func TestWriteCSV_QuotingRoundTrip(t *testing.T) {
	tx := sampleTransaction()
	tx.Notes = `approved by "finance", see thread`
	records := BuildExportRecords([]models.Transaction{tx})

	lines := strings.Split(WriteCSV(records), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}

	parsed := parseCSVLine(lines[1])
	want := records[0].row()
	if len(parsed) != len(want) {
		t.Fatalf("parsed %d fields, want %d", len(parsed), len(want))
	}
	for i := range want {
		if parsed[i] != want[i] {
			t.Errorf("field %s = %q, want %q", ExportFields[i], parsed[i], want[i])
		}
	}
}

func TestWriteXLSX(t *testing.T) {
	records := BuildExportRecords([]models.Transaction{sampleTransaction()})
	buf, err := WriteXLSX(records)
	if err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("xlsx output is empty")
	}
}

func TestWritePDF(t *testing.T) {
	records := BuildExportRecords([]models.Transaction{sampleTransaction()})
	buf, err := WritePDF(records)
	if err != nil {
		t.Fatalf("WritePDF: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("pdf output is empty")
	}
}
