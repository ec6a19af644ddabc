package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

// InsertRecommendationsWithClient inserts a batch of RecommendationRow into
// spendsense.recommendations using the provided BigQuery client.
func InsertRecommendationsWithClient(ctx context.Context, client *bigquery.Client, rows []*RecommendationRow) error {
	if len(rows) == 0 {
		return nil
	}
	inserter := client.Dataset(datasetID).Table(recommendationsTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertRecommendations: inserting rows: %w", err)
	}
	return nil
}

// ListRecommendationsByUserWithClient retrieves a user's stored
// recommendations, newest first, skipping tombstoned rows.
func ListRecommendationsByUserWithClient(ctx context.Context, client *bigquery.Client, userID string) ([]*RecommendationRow, error) {
	q := client.Query(`
		SELECT recommendation_id, user_id, persona_name, type, title,
		       rationale, offer_type, disclosure, generated_at, deleted
		FROM ` + datasetID + `.` + recommendationsTable + `
		WHERE user_id = @user_id
		  AND deleted = FALSE
		ORDER BY generated_at DESC, recommendation_id
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListRecommendationsByUser: query read: %w", err)
	}

	var rows []*RecommendationRow
	for {
		var r RecommendationRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListRecommendationsByUser: iterating rows: %w", err)
		}
		rows = append(rows, &r)
	}
	return rows, nil
}

// DeleteRecommendationsByUserWithClient tombstones all of a user's
// recommendations. Every read path filters on the deleted flag, so the
// effect is immediate.
func DeleteRecommendationsByUserWithClient(ctx context.Context, client *bigquery.Client, userID string) error {
	q := client.Query(`
		UPDATE ` + datasetID + `.` + recommendationsTable + `
		SET deleted = TRUE
		WHERE user_id = @user_id
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("DeleteRecommendationsByUser: running update: %w", err)
	}
	jobStatus, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("DeleteRecommendationsByUser: waiting for job: %w", err)
	}
	if err := jobStatus.Err(); err != nil {
		return fmt.Errorf("DeleteRecommendationsByUser: update failed: %w", err)
	}
	return nil
}
