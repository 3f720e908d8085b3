package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fotoforma/backoffice/internal/models"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Exporter renders expense listings as CSV or XLSX for the finance team.
type Exporter struct {
	logger *zap.Logger
}

// NewExporter creates a new report exporter.
func NewExporter(logger *zap.Logger) *Exporter {
	return &Exporter{logger: logger}
}

var reportHeader = []string{
	"Numero CI", "Kind", "Department", "Vendor", "Description",
	"Amount", "Payment Method", "Due Date", "Settlement Date", "Status",
}

// WriteCSV writes the expense report in CSV form. Amounts are rendered in
// major units with two decimals so spreadsheets read them as numbers.
func (e *Exporter) WriteCSV(w io.Writer, expenses []*models.Expense) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(reportHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, expense := range expenses {
		row := []string{
			strconv.FormatInt(expense.NumeroCI, 10),
			expense.Kind,
			expense.Department,
			expense.VendorName,
			expense.Description,
			FormatAmount(expense.AmountCents),
			expense.PaymentMethod,
			expense.DueDate,
			expense.SettlementDate,
			expense.Status,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the expense report as a spreadsheet with a totals row.
func (e *Exporter) WriteXLSX(w io.Writer, expenses []*models.Expense) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Expenses"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		e.logger.Warn("Failed to drop default sheet", zap.Error(err))
	}

	for col, title := range reportHeader {
		e.setCell(f, sheet, cellRef(col, 1), title)
	}

	var totalCents int64
	for i, expense := range expenses {
		row := i + 2
		e.setCell(f, sheet, cellRef(0, row), expense.NumeroCI)
		e.setCell(f, sheet, cellRef(1, row), expense.Kind)
		e.setCell(f, sheet, cellRef(2, row), expense.Department)
		e.setCell(f, sheet, cellRef(3, row), expense.VendorName)
		e.setCell(f, sheet, cellRef(4, row), expense.Description)
		e.setCell(f, sheet, cellRef(5, row), FormatAmount(expense.AmountCents))
		e.setCell(f, sheet, cellRef(6, row), expense.PaymentMethod)
		e.setCell(f, sheet, cellRef(7, row), expense.DueDate)
		e.setCell(f, sheet, cellRef(8, row), expense.SettlementDate)
		e.setCell(f, sheet, cellRef(9, row), expense.Status)
		totalCents += expense.AmountCents
	}

	totalRow := len(expenses) + 2
	e.setCell(f, sheet, cellRef(4, totalRow), "TOTAL")
	e.setCell(f, sheet, cellRef(5, totalRow), FormatAmount(totalCents))

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write spreadsheet: %w", err)
	}
	return nil
}

func (e *Exporter) setCell(f *excelize.File, sheet, cell string, value interface{}) {
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		e.logger.Warn("Failed to set cell value",
			zap.String("sheet", sheet),
			zap.String("cell", cell),
			zap.Error(err))
	}
}

// cellRef builds an A1-style reference from zero-based column and one-based row.
func cellRef(col, row int) string {
	name, _ := excelize.ColumnNumberToName(col + 1)
	return fmt.Sprintf("%s%d", name, row)
}

// FormatAmount renders minor currency units as "1234.56".
func FormatAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	var b strings.Builder
	b.WriteString(sign)
	b.WriteString(strconv.FormatInt(cents/100, 10))
	b.WriteString(".")
	b.WriteString(fmt.Sprintf("%02d", cents%100))
	return b.String()
}
