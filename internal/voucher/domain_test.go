package voucher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ledgerline/ledgerline/internal/coa"
)

func TestTypePrefix(t *testing.T) {
	require.Equal(t, "DV", TypeDebit.Prefix())
	require.Equal(t, "CV", TypeCredit.Prefix())
	require.Equal(t, "CN", TypeContra.Prefix())
	require.Equal(t, "JV", TypeJournal.Prefix())
	require.False(t, Type("PAYMENT").Valid())
}

func TestFormatNumber(t *testing.T) {
	require.Equal(t, "DV-2025-0042", FormatNumber(TypeDebit, 2025, 42))
	require.Equal(t, "JV-2024-0001", FormatNumber(TypeJournal, 2024, 1))
	require.Equal(t, "CV-2025-12345", FormatNumber(TypeCredit, 2025, 12345))
}

func TestFiscalYear(t *testing.T) {
	cases := []struct {
		name       string
		date       time.Time
		startMonth time.Month
		want       int
	}{
		{"calendar year", time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC), time.January, 2025},
		{"april start before boundary", time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC), time.April, 2024},
		{"april start on boundary", time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), time.April, 2025},
		{"april start after boundary", time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC), time.April, 2025},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, FiscalYear(tc.date, tc.startMonth))
		})
	}
}

func TestClassifyContra(t *testing.T) {
	require.Equal(t, ContraDeposit, Classify(coa.KindCash, coa.KindBank))
	require.Equal(t, ContraWithdrawal, Classify(coa.KindBank, coa.KindCash))
	require.Equal(t, ContraTransfer, Classify(coa.KindBank, coa.KindBank))
	require.Equal(t, ContraTransfer, Classify(coa.KindCash, coa.KindCash))
}

func TestAmountsEqualTwoDecimalPlaces(t *testing.T) {
	require.True(t, amountsEqual(500, 500))
	require.True(t, amountsEqual(0.1+0.2, 0.3))
	require.False(t, amountsEqual(500, 499.99))
	require.False(t, amountsEqual(100.005, 100.014))
}

func TestVoucherLegAmounts(t *testing.T) {
	simple := Voucher{Type: TypeDebit, Amount: 250}
	require.Equal(t, 250.0, simple.DebitAmount())
	require.Equal(t, 250.0, simple.CreditAmount())

	journal := Voucher{Type: TypeJournal, DrAmount: 75, CrAmount: 75}
	require.Equal(t, 75.0, journal.DebitAmount())
	require.Equal(t, 75.0, journal.CreditAmount())
}
