package budget

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// WriteVarianceXLSX renders a variance report as a two-sheet workbook, one
// sheet of lines and one of category rollups.
func WriteVarianceXLSX(w io.Writer, report VarianceReport) error {
	f := excelize.NewFile()
	defer f.Close()

	const lineSheet = "Variance"
	if err := f.SetSheetName("Sheet1", lineSheet); err != nil {
		return err
	}
	header := []any{"Code", "Account", "Category", "Budget YTD", "Actual YTD", "Variance", "Variance %", "Status"}
	if err := f.SetSheetRow(lineSheet, "A1", &header); err != nil {
		return err
	}
	for i, lv := range report.Lines {
		cell := fmt.Sprintf("A%d", i+2)
		row := []any{lv.AccountCode, lv.AccountName, lv.Category, lv.BudgetYTD, lv.ActualYTD, lv.Variance, lv.VariancePct, string(lv.Status)}
		if err := f.SetSheetRow(lineSheet, cell, &row); err != nil {
			return err
		}
	}

	const catSheet = "Categories"
	if _, err := f.NewSheet(catSheet); err != nil {
		return err
	}
	catHeader := []any{"Category", "Budget YTD", "Actual YTD", "Variance", "Variance %", "Status"}
	if err := f.SetSheetRow(catSheet, "A1", &catHeader); err != nil {
		return err
	}
	for i, cv := range report.Categories {
		cell := fmt.Sprintf("A%d", i+2)
		row := []any{cv.Category, cv.BudgetYTD, cv.ActualYTD, cv.Variance, cv.VariancePct, string(cv.Status)}
		if err := f.SetSheetRow(catSheet, cell, &row); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}
