package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

// InsertUsersWithClient inserts a batch of UserRow into spendsense.users
// using the provided BigQuery client.
func InsertUsersWithClient(ctx context.Context, client *bigquery.Client, rows []*UserRow) error {
	if len(rows) == 0 {
		return nil
	}
	inserter := client.Dataset(datasetID).Table(usersTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertUsers: inserting rows: %w", err)
	}
	return nil
}

// FindUserWithClient retrieves a user by ID. Returns (nil, nil) when the
// user does not exist.
func FindUserWithClient(ctx context.Context, client *bigquery.Client, userID string) (*UserRow, error) {
	q := client.Query(`
		SELECT user_id, consent_status, consent_timestamp, last_updated
		FROM ` + datasetID + `.` + usersTable + `
		WHERE user_id = @user_id
		ORDER BY last_updated DESC
		LIMIT 1
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("FindUser: query read: %w", err)
	}

	var row UserRow
	err = it.Next(&row)
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FindUser: iterating rows: %w", err)
	}
	return &row, nil
}

// ListUserIDsWithClient returns every known user ID in ascending order.
func ListUserIDsWithClient(ctx context.Context, client *bigquery.Client) ([]string, error) {
	q := client.Query(`
		SELECT DISTINCT user_id
		FROM ` + datasetID + `.` + usersTable + `
		ORDER BY user_id
	`)

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListUserIDs: query read: %w", err)
	}

	var ids []string
	for {
		var row struct {
			UserID string `bigquery:"user_id"`
		}
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListUserIDs: iterating rows: %w", err)
		}
		ids = append(ids, row.UserID)
	}
	return ids, nil
}

// SetConsentWithClient updates a user's consent flag and timestamp.
func SetConsentWithClient(ctx context.Context, client *bigquery.Client, userID string, status bool, at time.Time) error {
	q := client.Query(`
		UPDATE ` + datasetID + `.` + usersTable + `
		SET consent_status = @status,
		    consent_timestamp = @timestamp,
		    last_updated = @now
		WHERE user_id = @user_id
	`)
	timestamp := ""
	if status {
		timestamp = at.UTC().Format(time.RFC3339)
	}
	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: status},
		{Name: "timestamp", Value: timestamp},
		{Name: "now", Value: at.UTC()},
		{Name: "user_id", Value: userID},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("SetConsent: running update: %w", err)
	}
	jobStatus, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("SetConsent: waiting for job: %w", err)
	}
	if err := jobStatus.Err(); err != nil {
		return fmt.Errorf("SetConsent: update failed: %w", err)
	}
	return nil
}
