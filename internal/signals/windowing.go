package signals

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/spendsense/internal/domain"
	"github.com/dvloznov/spendsense/internal/store"
)

// Partitioner computes rolling window boundaries relative to a reference date
// and fetches the transactions that fall inside them.
type Partitioner struct {
	txs       store.TransactionStore
	reference civil.Date
}

// NewPartitioner creates a window partitioner. The reference date stands in
// for "today"; windows end the day before it.
func NewPartitioner(txs store.TransactionStore, reference civil.Date) *Partitioner {
	return &Partitioner{txs: txs, reference: reference}
}

// Reference returns the partitioner's reference date.
func (p *Partitioner) Reference() civil.Date {
	return p.reference
}

// Window returns the boundaries for the given window type. The range is
// inclusive on both ends and excludes the reference date: a 30d window is
// [reference-30, reference-1].
func (p *Partitioner) Window(window domain.WindowType) (domain.Window, error) {
	if !window.Valid() {
		return domain.Window{}, &domain.InvalidWindowError{WindowType: string(window)}
	}
	end := p.reference.AddDays(-1)
	start := end.AddDays(-(window.Days() - 1))
	return domain.Window{Start: start, End: end}, nil
}

// TransactionsInWindow fetches the user's non-pending transactions inside the
// window, ordered by date. A user with no transactions yields an empty slice.
func (p *Partitioner) TransactionsInWindow(ctx context.Context, userID string, window domain.WindowType) ([]domain.Transaction, error) {
	w, err := p.Window(window)
	if err != nil {
		return nil, err
	}
	txs, err := p.txs.TransactionsInRange(ctx, userID, w.Start, w.End, false)
	if err != nil {
		return nil, fmt.Errorf("TransactionsInWindow: fetching transactions: %w", err)
	}
	return txs, nil
}

// DataSpan returns the earliest and latest transaction dates for a user and
// the total span in days (inclusive). totalDays is 0 for a user with no
// transactions.
func (p *Partitioner) DataSpan(ctx context.Context, userID string) (earliest, latest civil.Date, totalDays int, err error) {
	earliest, latest, ok, err := p.txs.DataSpan(ctx, userID)
	if err != nil {
		return civil.Date{}, civil.Date{}, 0, fmt.Errorf("DataSpan: %w", err)
	}
	if !ok {
		return civil.Date{}, civil.Date{}, 0, nil
	}
	return earliest, latest, latest.DaysSince(earliest) + 1, nil
}

// DataAgeDays returns the number of days between the user's earliest
// transaction and the reference date, or 0 when the user has no transactions.
func (p *Partitioner) DataAgeDays(ctx context.Context, userID string) (int, error) {
	earliest, _, totalDays, err := p.DataSpan(ctx, userID)
	if err != nil {
		return 0, err
	}
	if totalDays == 0 {
		return 0, nil
	}
	return p.reference.DaysSince(earliest), nil
}
