// Package receipt renders a committed invoice as a printable 80mm-style
// text slip and as a QR payload. Everything comes from the invoice's frozen
// figures; the renderer never recomputes tax.
package receipt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"go-pos-ledger/internal/model"

	qrcode "github.com/skip2/go-qrcode"
)

const width = 40

// Render returns the plain-text receipt body.
func Render(inv model.Invoice) string {
	var b strings.Builder

	center(&b, "SALES INVOICE")
	center(&b, "#"+inv.ID)
	center(&b, "Merchant: "+inv.MerchantName)
	center(&b, "Date: "+inv.Date.Format("2006-01-02 15:04"))
	rule(&b, '=')

	fmt.Fprintf(&b, "%-20s %5s %12s\n", "Item", "Qty", "Price")
	rule(&b, '-')
	for _, line := range inv.Items {
		name := line.Name
		// truncate by runes, not bytes; item names may be non-ASCII
		if r := []rune(name); len(r) > 20 {
			name = string(r[:20])
		}
		fmt.Fprintf(&b, "%-20s %5d %12s\n", name, line.Qty, line.UnitPrice.StringFixed(2))
	}
	rule(&b, '-')

	fmt.Fprintf(&b, "%-26s %12s\n", "Subtotal", inv.Subtotal.StringFixed(2))
	fmt.Fprintf(&b, "%-26s %12s\n", "VAT", inv.VAT.StringFixed(2))
	rule(&b, '=')
	fmt.Fprintf(&b, "%-26s %12s\n", "TOTAL", inv.Total.StringFixed(2))
	center(&b, "VAT included")

	return b.String()
}

// QRPayload is the machine-readable summary embedded in the receipt QR.
func QRPayload(inv model.Invoice) string {
	return strings.Join([]string{
		"Invoice No: " + inv.ID,
		"Merchant: " + inv.MerchantName,
		"Date: " + inv.Date.Format("2006-01-02 15:04"),
		"Subtotal: " + inv.Subtotal.StringFixed(2),
		"VAT: " + inv.VAT.StringFixed(2),
		"Total: " + inv.Total.StringFixed(2),
	}, "\n")
}

// QRPNG encodes the payload as a PNG of the given pixel size.
func QRPNG(inv model.Invoice, size int) ([]byte, error) {
	return qrcode.Encode(QRPayload(inv), qrcode.Medium, size)
}

func center(b *strings.Builder, s string) {
	pad := (width - utf8.RuneCountInString(s)) / 2
	if pad < 0 {
		pad = 0
	}
	b.WriteString(strings.Repeat(" ", pad))
	b.WriteString(s)
	b.WriteByte('\n')
}

func rule(b *strings.Builder, ch byte) {
	b.WriteString(strings.Repeat(string(ch), width))
	b.WriteByte('\n')
}
