// Package export flattens the sales journal into a spreadsheet, one row per
// invoice line. A downstream consumer of the frozen Invoice shape; it never
// recomputes totals from live stock.
package export

import (
	"fmt"
	"time"

	"go-pos-ledger/internal/model"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Sales"

var header = []string{
	"Invoice No", "Date", "Merchant", "Invoice Total", "Invoice VAT",
	"Item", "Unit Price", "Qty", "Line Total", "Line VAT",
}

// Filename returns a dated export file name.
func Filename(ts time.Time) string {
	return fmt.Sprintf("sales_detailed_%s.xlsx", ts.Format("2006-01-02"))
}

// WriteXLSX renders the given invoices. Line VAT is apportioned from the
// invoice's own frozen figures, not recomputed from any rate literal, so
// historical invoices committed under a different rate stay truthful.
func WriteXLSX(invoices []model.Invoice) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(sheetName, 1, 1, bold); err != nil {
		return nil, err
	}

	row := 2
	for _, inv := range invoices {
		for _, line := range inv.Items {
			lineTotal := line.LineTotal()
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return nil, err
			}
			values := []interface{}{
				inv.ID,
				inv.Date.Format(time.RFC3339),
				inv.MerchantName,
				inv.Total.StringFixed(2),
				inv.VAT.StringFixed(2),
				line.Name,
				line.UnitPrice.StringFixed(2),
				line.Qty,
				lineTotal.StringFixed(2),
				lineVAT(inv, lineTotal).StringFixed(2),
			}
			if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
				return nil, err
			}
			row++
		}
	}

	if row > 2 {
		last, err := excelize.CoordinatesToCellName(len(header), row-1)
		if err != nil {
			return nil, err
		}
		err = f.AutoFilter(sheetName, "A1:"+last, nil)
		if err != nil {
			return nil, err
		}
	}
	return f, nil
}

func lineVAT(inv model.Invoice, lineTotal decimal.Decimal) decimal.Decimal {
	if inv.Subtotal.IsZero() {
		return decimal.Zero
	}
	return lineTotal.Mul(inv.VAT).Div(inv.Subtotal)
}
