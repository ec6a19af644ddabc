package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

// InsertAccountsWithClient inserts a batch of AccountRow into
// spendsense.accounts using the provided BigQuery client.
func InsertAccountsWithClient(ctx context.Context, client *bigquery.Client, rows []*AccountRow) error {
	if len(rows) == 0 {
		return nil
	}
	inserter := client.Dataset(datasetID).Table(accountsTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertAccounts: inserting rows: %w", err)
	}
	return nil
}

// ListAccountsByUserWithClient retrieves all accounts belonging to a user.
func ListAccountsByUserWithClient(ctx context.Context, client *bigquery.Client, userID string) ([]*AccountRow, error) {
	q := client.Query(`
		SELECT account_id, user_id, type, subtype,
		       balance_available, balance_current, balance_limit, iso_currency_code
		FROM ` + datasetID + `.` + accountsTable + `
		WHERE user_id = @user_id
		ORDER BY account_id
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListAccountsByUser: query read: %w", err)
	}

	var rows []*AccountRow
	for {
		var r AccountRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListAccountsByUser: iterating rows: %w", err)
		}
		rows = append(rows, &r)
	}
	return rows, nil
}

// InsertLiabilitiesWithClient inserts a batch of LiabilityRow into
// spendsense.liabilities using the provided BigQuery client.
func InsertLiabilitiesWithClient(ctx context.Context, client *bigquery.Client, rows []*LiabilityRow) error {
	if len(rows) == 0 {
		return nil
	}
	inserter := client.Dataset(datasetID).Table(liabilitiesTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertLiabilities: inserting rows: %w", err)
	}
	return nil
}

// ListLiabilitiesByUserWithClient retrieves liability records for all of a
// user's accounts.
func ListLiabilitiesByUserWithClient(ctx context.Context, client *bigquery.Client, userID string) ([]*LiabilityRow, error) {
	q := client.Query(`
		SELECT l.liability_id, l.account_id, l.apr, l.minimum_payment,
		       l.last_payment, l.is_overdue, l.next_payment_due, l.last_statement_balance
		FROM ` + datasetID + `.` + liabilitiesTable + ` l
		INNER JOIN ` + datasetID + `.` + accountsTable + ` a
		  ON l.account_id = a.account_id
		WHERE a.user_id = @user_id
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListLiabilitiesByUser: query read: %w", err)
	}

	var rows []*LiabilityRow
	for {
		var r LiabilityRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListLiabilitiesByUser: iterating rows: %w", err)
		}
		rows = append(rows, &r)
	}
	return rows, nil
}
