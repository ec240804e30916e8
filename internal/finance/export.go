package finance

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"projectfin-backend/internal/apperr"
	"projectfin-backend/internal/models"

	"github.com/phpdave11/gofpdf"
	"github.com/xuri/excelize/v2"
)

// Placeholder strings for absent references. These are part of the export
// contract, not incidental.
const (
	PlaceholderUnknownProject = "Unknown Project"
	PlaceholderUnknownCompany = "Unknown Company"
	PlaceholderUnknownUser    = "Unknown User"
	PlaceholderNotApproved    = "Not Approved"
)

// ExportFields is the fixed column order of every tabular export format.
var ExportFields = []string{
	"id", "type", "amount", "description", "date", "category",
	"project", "company", "status", "createdBy", "approvedBy",
	"notes", "createdAt", "updatedAt",
}

type ExportRecord struct {
	ID          uint                        `json:"id"`
	Type        models.TransactionType      `json:"type"`
	Amount      float64                     `json:"amount"`
	Description string                      `json:"description"`
	Date        string                      `json:"date"`
	Category    models.TransactionCategory  `json:"category"`
	Project     string                      `json:"project"`
	Company     string                      `json:"company"`
	Status      models.TransactionStatus    `json:"status"`
	CreatedBy   string                      `json:"createdBy"`
	ApprovedBy  string                      `json:"approvedBy"`
	Notes       string                      `json:"notes"`
	CreatedAt   string                      `json:"createdAt"`
	UpdatedAt   string                      `json:"updatedAt"`
}

func userDisplay(u *models.User, placeholder string) string {
	if u == nil || u.ID == 0 {
		return placeholder
	}
	return fmt.Sprintf("%s (%s)", u.Name, u.Email)
}

// BuildExportRecords flattens transactions (with preloaded references) into
// export rows.
func BuildExportRecords(txs []models.Transaction) []ExportRecord {
	records := make([]ExportRecord, 0, len(txs))
	for _, tx := range txs {
		project := PlaceholderUnknownProject
		if tx.Project.ID != 0 {
			project = tx.Project.Name
		}
		company := PlaceholderUnknownCompany
		if tx.Company.ID != 0 {
			company = tx.Company.Name
		}

		records = append(records, ExportRecord{
			ID:          tx.ID,
			Type:        tx.Type,
			Amount:      tx.Amount,
			Description: tx.Description,
			Date:        tx.Date.Format(time.RFC3339),
			Category:    tx.Category,
			Project:     project,
			Company:     company,
			Status:      tx.Status,
			CreatedBy:   userDisplay(&tx.CreatedBy, PlaceholderUnknownUser),
			ApprovedBy:  userDisplay(tx.ApprovedBy, PlaceholderNotApproved),
			Notes:       tx.Notes,
			CreatedAt:   tx.CreatedAt.Format(time.RFC3339),
			UpdatedAt:   tx.UpdatedAt.Format(time.RFC3339),
		})
	}
	return records
}

func (r ExportRecord) row() []string {
	return []string{
		strconv.FormatUint(uint64(r.ID), 10),
		string(r.Type),
		strconv.FormatFloat(r.Amount, 'f', -1, 64),
		r.Description,
		r.Date,
		string(r.Category),
		r.Project,
		r.Company,
		string(r.Status),
		r.CreatedBy,
		r.ApprovedBy,
		r.Notes,
		r.CreatedAt,
		r.UpdatedAt,
	}
}

// csvField quotes a value only when it contains the delimiter, doubling any
// embedded quote characters. Newlines inside a field are quoted as well so
// multi-line notes stay parseable.
func csvField(v string) string {
	if strings.ContainsAny(v, ",\n\"") {
		return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
	}
	return v
}

// WriteCSV renders the records as delimited text: one header row in the
// fixed field order, then one row per record.
func WriteCSV(records []ExportRecord) string {
	lines := make([]string, 0, len(records)+1)
	lines = append(lines, strings.Join(ExportFields, ","))

	for _, r := range records {
		fields := r.row()
		for i, v := range fields {
			fields[i] = csvField(v)
		}
		lines = append(lines, strings.Join(fields, ","))
	}

	return strings.Join(lines, "\n")
}

// WriteXLSX renders the records as a spreadsheet with the same column order.
func WriteXLSX(records []ExportRecord) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for col, name := range ExportFields {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, apperr.Internal("xlsx export failed", err)
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return nil, apperr.Internal("xlsx export failed", err)
		}
	}

	for rowIdx, r := range records {
		for col, v := range r.row() {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				return nil, apperr.Internal("xlsx export failed", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, apperr.Internal("xlsx export failed", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, apperr.Internal("xlsx export failed", err)
	}
	return buf, nil
}

// WritePDF renders the records as a landscape table.
func WritePDF(records []ExportRecord) (*bytes.Buffer, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.AddPage()

	colWidth := 277.0 / float64(len(ExportFields))

	pdf.SetFont("Helvetica", "B", 7)
	for _, name := range ExportFields {
		pdf.CellFormat(colWidth, 6, name, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 7)
	for _, r := range records {
		for _, v := range r.row() {
			pdf.CellFormat(colWidth, 6, v, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, apperr.Internal("pdf export failed", err)
	}
	return &buf, nil
}
