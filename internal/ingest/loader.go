package ingest

import (
	"context"
	"fmt"

	"github.com/dvloznov/spendsense/internal/domain"
)

// Sink receives generated datasets. Both the BigQuery repository and the
// in-process store implement it.
type Sink interface {
	InsertUsers(ctx context.Context, users []domain.User) error
	InsertAccounts(ctx context.Context, accounts []domain.Account) error
	InsertTransactions(ctx context.Context, txs []domain.Transaction) error
	InsertLiabilities(ctx context.Context, liabilities []domain.Liability) error
}

// Load writes a dataset into the sink. Users and accounts go first so
// transaction rows never reference missing parents.
func Load(ctx context.Context, sink Sink, ds Dataset) error {
	if err := sink.InsertUsers(ctx, ds.Users); err != nil {
		return fmt.Errorf("Load: users: %w", err)
	}
	if err := sink.InsertAccounts(ctx, ds.Accounts); err != nil {
		return fmt.Errorf("Load: accounts: %w", err)
	}
	if err := sink.InsertLiabilities(ctx, ds.Liabilities); err != nil {
		return fmt.Errorf("Load: liabilities: %w", err)
	}
	if err := sink.InsertTransactions(ctx, ds.Transactions); err != nil {
		return fmt.Errorf("Load: transactions: %w", err)
	}
	return nil
}
