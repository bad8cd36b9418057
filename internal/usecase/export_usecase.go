package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"contact-manager-backend/internal/domain"
	"contact-manager-backend/pkg/apperror"
	"contact-manager-backend/pkg/audit"
	"contact-manager-backend/pkg/logger"

	"github.com/xuri/excelize/v2"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCSV  = "text/csv"
)

type exportUsecase struct {
	repo  domain.ContactRepository
	audit *audit.Logger
	now   func() time.Time
}

// NewExportUsecase creates the export service. auditLog may be nil.
func NewExportUsecase(repo domain.ContactRepository, auditLog *audit.Logger) domain.ExportUsecase {
	return &exportUsecase{repo: repo, audit: auditLog, now: time.Now}
}

// ExportContacts renders every contact as an xlsx or csv attachment.
func (u *exportUsecase) ExportContacts(ctx context.Context, req domain.ExportRequest) (*domain.ExportFile, error) {
	columns, err := exportColumns(req.Columns)
	if err != nil {
		return nil, err
	}

	format := strings.ToLower(strings.TrimSpace(req.Format))
	if format != "" && format != "xlsx" && format != "csv" {
		return nil, apperror.BadRequest(fmt.Sprintf("unsupported export format: %s", req.Format))
	}

	contacts, err := u.repo.List(ctx)
	if err != nil {
		logger.Log.Error("Error retrieving contacts for export", "error", err)
		return nil, apperror.Internal("Error retrieving contacts", err)
	}

	u.audit.Log(ctx, audit.Event{
		Event:   audit.EventDataExport,
		Details: map[string]string{"format": formatOrDefault(format), "rows": strconv.Itoa(len(contacts))},
	})

	stamp := u.now().Format("20060102_150405")
	if format == "csv" {
		data, err := exportCSV(contacts, columns)
		if err != nil {
			return nil, apperror.Internal("Error exporting contacts", err)
		}
		return &domain.ExportFile{
			Filename:    fmt.Sprintf("contacts_%s.csv", stamp),
			ContentType: contentTypeCSV,
			Data:        data,
		}, nil
	}

	data, err := exportExcel(contacts, columns)
	if err != nil {
		logger.Log.Error("Error writing contact workbook", "error", err)
		return nil, apperror.Internal("Error exporting contacts", err)
	}
	return &domain.ExportFile{
		Filename:    fmt.Sprintf("contacts_%s.xlsx", stamp),
		ContentType: contentTypeXLSX,
		Data:        data,
	}, nil
}

func formatOrDefault(format string) string {
	if format == "" {
		return "xlsx"
	}
	return format
}

// exportColumns defaults to every column and drops repeats.
func exportColumns(requested []string) ([]string, error) {
	if len(requested) == 0 {
		return domain.ExportableColumns, nil
	}

	valid := make(map[string]bool, len(domain.ExportableColumns))
	for _, col := range domain.ExportableColumns {
		valid[col] = true
	}

	seen := make(map[string]bool)
	columns := make([]string, 0, len(requested))
	for _, col := range requested {
		col = strings.TrimSpace(col)
		if !valid[col] {
			return nil, apperror.BadRequest(fmt.Sprintf("invalid export column: %s", col))
		}
		if !seen[col] {
			seen[col] = true
			columns = append(columns, col)
		}
	}
	return columns, nil
}

var columnHeaders = map[string]string{
	"contactID": "ID",
	"name":      "NAME",
	"address":   "ADDRESS",
	"tel":       "TELEPHONE",
	"mobile":    "MOBILE",
	"email":     "EMAIL",
	"country":   "COUNTRY",
}

// headerRow labels columns the same way for every format.
func headerRow(columns []string) []string {
	labels := make([]string, len(columns))
	for i, col := range columns {
		labels[i] = columnHeaders[col]
	}
	return labels
}

func fieldValue(c domain.Contact, col string) string {
	switch col {
	case "contactID":
		return strconv.FormatInt(c.ID, 10)
	case "name":
		return c.Name
	case "address":
		return c.Address
	case "tel":
		return c.Telephone
	case "mobile":
		return c.Mobile
	case "email":
		return c.Email
	case "country":
		return c.Country
	}
	return ""
}

func exportExcel(contacts []domain.Contact, columns []string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Contacts"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	for i, label := range headerRow(columns) {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, label)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(columns), 1)
	f.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	for rowIdx, contact := range contacts {
		for colIdx, col := range columns {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if col == "contactID" {
				f.SetCellValue(sheetName, cell, contact.ID)
				continue
			}
			// Phone numbers stay text so leading zeros survive.
			f.SetCellStr(sheetName, cell, fieldValue(contact, col))
		}
	}

	for i := range columns {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 20)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func exportCSV(contacts []domain.Contact, columns []string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(headerRow(columns)); err != nil {
		return nil, err
	}
	row := make([]string, len(columns))
	for _, contact := range contacts {
		for i, col := range columns {
			row[i] = fieldValue(contact, col)
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
