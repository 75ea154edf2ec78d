package reports

import (
	"encoding/csv"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// WriteTrialBalanceCSV streams the trial balance in CSV form with
// locale-formatted amounts.
func WriteTrialBalanceCSV(w io.Writer, tb TrialBalance) error {
	printer := message.NewPrinter(language.English)
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"code", "name", "type", "debit", "credit"}); err != nil {
		return err
	}
	for _, row := range tb.Rows {
		record := []string{
			row.Code,
			row.Name,
			row.Type,
			printer.Sprintf("%.2f", row.Debit),
			printer.Sprintf("%.2f", row.Credit),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	if err := cw.Write([]string{"", "Total", "",
		printer.Sprintf("%.2f", tb.TotalDebit),
		printer.Sprintf("%.2f", tb.TotalCredit)}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
