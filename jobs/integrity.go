package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ledgerline/ledgerline/internal/reports"
)

// IntegrityReporter is the slice of the report compiler the scan needs.
type IntegrityReporter interface {
	TrialBalance(ctx context.Context, from, to time.Time, projectID *int64) (reports.TrialBalance, error)
	BalanceSheet(ctx context.Context, asOn time.Time, projectID *int64) (reports.BalanceSheet, error)
}

// IntegrityRecorder publishes scan results.
type IntegrityRecorder interface {
	SetTrialBalanceDifference(diff float64)
}

// NewIntegrityScanHandler builds the Asynq handler for the ledger integrity
// scan. A nonzero trial balance difference means the posting layer has a
// defect; it is logged and exported, never fatal, so the scan keeps running.
func NewIntegrityScanHandler(logger *slog.Logger, reporter IntegrityReporter, recorder IntegrityRecorder) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload IntegrityScanPayload
		if len(t.Payload()) > 0 {
			if err := json.Unmarshal(t.Payload(), &payload); err != nil {
				return asynq.SkipRetry
			}
		}
		to := payload.To
		if to.IsZero() {
			to = time.Now()
		}

		tb, err := reporter.TrialBalance(ctx, payload.From, to, nil)
		if err != nil {
			return err
		}
		if recorder != nil {
			recorder.SetTrialBalanceDifference(tb.Difference)
		}
		if !tb.IsBalanced {
			logger.Error("trial balance out of balance",
				slog.Float64("difference", tb.Difference),
				slog.Float64("total_debit", tb.TotalDebit),
				slog.Float64("total_credit", tb.TotalCredit))
		}

		bs, err := reporter.BalanceSheet(ctx, to, nil)
		if err != nil {
			return err
		}
		if !bs.Totals.IsBalanced {
			logger.Error("balance sheet out of balance",
				slog.Float64("difference", bs.Totals.Difference))
		}

		logger.Info("ledger integrity scan completed",
			slog.Bool("trial_balance_ok", tb.IsBalanced),
			slog.Bool("balance_sheet_ok", bs.Totals.IsBalanced))
		return nil
	}
}
