package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

// InsertSignalWithClient appends one SignalRow to spendsense.signals. Rows
// are never updated: freshness is decided at read time by computed_at.
func InsertSignalWithClient(ctx context.Context, client *bigquery.Client, row *SignalRow) error {
	inserter := client.Dataset(datasetID).Table(signalsTable).Inserter()
	if err := inserter.Put(ctx, []*SignalRow{row}); err != nil {
		return fmt.Errorf("InsertSignal: inserting row: %w", err)
	}
	return nil
}

// FindFreshSignalWithClient returns the newest signal row for (user, window)
// with computed_at after notBefore, or (nil, nil) when none qualifies.
func FindFreshSignalWithClient(ctx context.Context, client *bigquery.Client, userID, windowType string, notBefore time.Time) (*SignalRow, error) {
	q := client.Query(`
		SELECT signal_id, user_id, window_type, computed_at, bundle_json
		FROM ` + datasetID + `.` + signalsTable + `
		WHERE user_id = @user_id
		  AND window_type = @window_type
		  AND computed_at > @not_before
		ORDER BY computed_at DESC
		LIMIT 1
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "window_type", Value: windowType},
		{Name: "not_before", Value: notBefore.UTC()},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("FindFreshSignal: query read: %w", err)
	}

	var row SignalRow
	err = it.Next(&row)
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FindFreshSignal: iterating rows: %w", err)
	}
	return &row, nil
}
