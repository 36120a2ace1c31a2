package expense

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

var exportHeaders = []string{
	"Date", "Employee", "Category", "Description", "Merchant", "Amount", "Currency",
	"Converted Amount", "Exchange Rate", "Status", "Payment Method", "Submitted At",
}

func exportRow(e *Expense) []string {
	submitted := ""
	if e.SubmittedAt != nil {
		submitted = e.SubmittedAt.Format("2006-01-02 15:04")
	}
	return []string{
		e.Date.Format("2006-01-02"),
		e.Employee.Hex(),
		e.Category,
		e.Description,
		e.MerchantName,
		strconv.FormatFloat(e.Amount, 'f', 2, 64),
		e.Currency,
		strconv.FormatFloat(e.ConvertedAmount, 'f', 2, 64),
		strconv.FormatFloat(e.ExchangeRate, 'f', 4, 64),
		string(e.Status),
		e.PaymentMethod,
		submitted,
	}
}

// ExportXLSX renders expenses as an Excel workbook.
func ExportXLSX(expenses []Expense) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Expenses"
	f.SetSheetName("Sheet1", sheet)

	for col, header := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		endCell, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
		f.SetCellStyle(sheet, "A1", endCell, style)
	}

	for i := range expenses {
		for col, value := range exportRow(&expenses[i]) {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}

// ExportCSV renders expenses as CSV with a header row.
func ExportCSV(expenses []Expense) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportHeaders); err != nil {
		return nil, err
	}
	for i := range expenses {
		if err := w.Write(exportRow(&expenses[i])); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return &buf, nil
}
