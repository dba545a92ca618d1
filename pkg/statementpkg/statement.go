// Package statementpkg renders an account statement as a PDF document.
package statementpkg

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/go-petr/bank-backoffice/internal/domain"
)

// Write renders the account header and its transaction history to w as PDF.
// Transactions must already be ordered by time ascending.
func Write(w io.Writer, account domain.Account, transactions []domain.Transaction) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Account Statement")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Account number: %d", account.AccountNumber))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Balance: %s", account.Balance))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Generated: %s", time.Now().UTC().Format(time.RFC3339)))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(50, 8, "Time", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, "Type", "1", 0, "L", false, 0, "")
	pdf.CellFormat(35, 8, "Amount", "1", 0, "R", false, 0, "")
	pdf.CellFormat(70, 8, "Remarks", "1", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)

	running := decimal.Zero

	for _, txn := range transactions {
		amount, err := decimal.NewFromString(txn.Amount)
		if err != nil {
			return fmt.Errorf("transaction %s has malformed amount %q: %w", txn.ID, txn.Amount, err)
		}

		if txn.Type == domain.TransactionTypeWithdraw {
			running = running.Sub(amount)
		} else {
			running = running.Add(amount)
		}

		pdf.CellFormat(50, 7, txn.Time.UTC().Format("2006-01-02 15:04:05"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, string(txn.Type), "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 7, txn.Amount, "1", 0, "R", false, 0, "")
		pdf.CellFormat(70, 7, txn.Remarks, "1", 1, "L", false, 0, "")
	}

	pdf.Ln(5)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 8, fmt.Sprintf("Net movement: %s", running.String()))

	return pdf.Output(w)
}
