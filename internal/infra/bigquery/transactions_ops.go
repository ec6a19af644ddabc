package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"google.golang.org/api/iterator"
)

// InsertTransactionsWithClient inserts a batch of TransactionRow into
// spendsense.transactions using the provided BigQuery client.
func InsertTransactionsWithClient(ctx context.Context, client *bigquery.Client, rows []*TransactionRow) error {
	if len(rows) == 0 {
		return nil
	}
	inserter := client.Dataset(datasetID).Table(transactionsTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertTransactions: inserting rows: %w", err)
	}
	return nil
}

// QueryTransactionsInRangeWithClient queries a user's transactions with
// start <= date <= end, ordered by date ascending. Pending transactions are
// excluded unless includePending is set.
func QueryTransactionsInRangeWithClient(ctx context.Context, client *bigquery.Client, userID string, start, end civil.Date, includePending bool) ([]*TransactionRow, error) {
	q := client.Query(`
		SELECT transaction_id, account_id, user_id, date, amount,
		       merchant_name, payment_channel, category_labels, pending
		FROM ` + datasetID + `.` + transactionsTable + `
		WHERE user_id = @user_id
		  AND date >= @start_date
		  AND date <= @end_date
		  AND (pending = FALSE OR @include_pending)
		ORDER BY date, transaction_id
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "start_date", Value: start.String()},
		{Name: "end_date", Value: end.String()},
		{Name: "include_pending", Value: includePending},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("QueryTransactionsInRange: query read: %w", err)
	}

	var rows []*TransactionRow
	for {
		var r TransactionRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("QueryTransactionsInRange: iterating rows: %w", err)
		}
		rows = append(rows, &r)
	}
	return rows, nil
}

// QueryDataSpanWithClient returns the earliest and latest non-pending
// transaction dates for a user. ok is false when the user has none.
func QueryDataSpanWithClient(ctx context.Context, client *bigquery.Client, userID string) (earliest, latest civil.Date, ok bool, err error) {
	q := client.Query(`
		SELECT MIN(date) AS earliest, MAX(date) AS latest
		FROM ` + datasetID + `.` + transactionsTable + `
		WHERE user_id = @user_id
		  AND pending = FALSE
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return civil.Date{}, civil.Date{}, false, fmt.Errorf("QueryDataSpan: query read: %w", err)
	}

	var row struct {
		Earliest bigquery.NullDate `bigquery:"earliest"`
		Latest   bigquery.NullDate `bigquery:"latest"`
	}
	err = it.Next(&row)
	if err == iterator.Done || (err == nil && !row.Earliest.Valid) {
		return civil.Date{}, civil.Date{}, false, nil
	}
	if err != nil {
		return civil.Date{}, civil.Date{}, false, fmt.Errorf("QueryDataSpan: iterating rows: %w", err)
	}
	return row.Earliest.Date, row.Latest.Date, true, nil
}
