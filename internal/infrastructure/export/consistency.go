package export

import (
	"fmt"
	"io"

	"github.com/maillots/storefront/internal/application/reconciliation"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the consistency workbook
const (
	StatusSheet  = "Statuts"
	AmountSheet  = "Montants"
	SummarySheet = "Résumé"
)

// ContentType is the MIME type of an xlsx workbook
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	statusHeader  = []any{"Commande", "Statut paiement commande", "Statut paiement", "Statut attendu"}
	amountHeader  = []any{"Commande", "Total commande", "Montant paiement", "Différence"}
	summaryHeader = []any{"Paires vérifiées", "Écarts de statut", "Écarts de montant"}
)

// ConsistencyWorkbook lays the report out in one sheet per mismatch kind
// plus a summary
func ConsistencyWorkbook(report *reconciliation.ConsistencyReport) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, err
	}
	if err := writeRows(f, SummarySheet, summaryHeader, [][]any{{
		report.PairsChecked,
		len(report.StatusMismatches),
		len(report.AmountMismatches),
	}}); err != nil {
		return nil, err
	}

	statusRows := make([][]any, 0, len(report.StatusMismatches))
	for _, m := range report.StatusMismatches {
		statusRows = append(statusRows, []any{
			m.OrderNumber,
			string(m.OrderPaymentStatus),
			string(m.PaymentStatus),
			string(m.ExpectedPaymentStatus),
		})
	}
	if _, err := f.NewSheet(StatusSheet); err != nil {
		return nil, err
	}
	if err := writeRows(f, StatusSheet, statusHeader, statusRows); err != nil {
		return nil, err
	}

	amountRows := make([][]any, 0, len(report.AmountMismatches))
	for _, m := range report.AmountMismatches {
		amountRows = append(amountRows, []any{
			m.OrderNumber,
			m.OrderTotal.InexactFloat64(),
			m.PaymentAmount.InexactFloat64(),
			m.Difference.InexactFloat64(),
		})
	}
	if _, err := f.NewSheet(AmountSheet); err != nil {
		return nil, err
	}
	if err := writeRows(f, AmountSheet, amountHeader, amountRows); err != nil {
		return nil, err
	}
	return f, nil
}

func writeRows(f *excelize.File, sheet string, header []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}

// WriteConsistencyReport streams the workbook to w
func WriteConsistencyReport(w io.Writer, report *reconciliation.ConsistencyReport) error {
	f, err := ConsistencyWorkbook(report)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// SaveConsistencyReport writes the workbook to path
func SaveConsistencyReport(path string, report *reconciliation.ConsistencyReport) error {
	f, err := ConsistencyWorkbook(report)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
