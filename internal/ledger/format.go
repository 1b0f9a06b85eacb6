package ledger

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ledgerline/ledgerline/internal/coa"
)

var printer = message.NewPrinter(language.English)

// FormatAmount renders a currency amount with grouped digits, e.g. 12,345.00.
func FormatAmount(v float64) string {
	return printer.Sprintf("%.2f", v)
}

// FormatBalance renders a balance with a Dr/Cr suffix relative to the
// account's normal side. Presentation only; the numeric balance is the
// contract.
func FormatBalance(v float64, side coa.NormalSide) string {
	suffix := "Dr"
	if (side == coa.SideCredit) == (v >= 0) {
		suffix = "Cr"
	}
	return printer.Sprintf("%.2f %s", math.Abs(v), suffix)
}
