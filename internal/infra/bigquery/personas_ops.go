package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

// InsertPersonaAssignmentWithClient appends one PersonaRow to
// spendsense.personas. The history is append-only.
func InsertPersonaAssignmentWithClient(ctx context.Context, client *bigquery.Client, row *PersonaRow) error {
	inserter := client.Dataset(datasetID).Table(personasTable).Inserter()
	if err := inserter.Put(ctx, []*PersonaRow{row}); err != nil {
		return fmt.Errorf("InsertPersonaAssignment: inserting row: %w", err)
	}
	return nil
}

// FindCurrentAssignmentWithClient returns the user's latest persona
// assignment, or (nil, nil) when the user has never been assigned.
func FindCurrentAssignmentWithClient(ctx context.Context, client *bigquery.Client, userID string) (*PersonaRow, error) {
	q := client.Query(`
		SELECT assignment_id, user_id, persona_name, priority_level,
		       signal_strength, trace_json, assigned_at
		FROM ` + datasetID + `.` + personasTable + `
		WHERE user_id = @user_id
		ORDER BY assigned_at DESC
		LIMIT 1
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("FindCurrentAssignment: query read: %w", err)
	}

	var row PersonaRow
	err = it.Next(&row)
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FindCurrentAssignment: iterating rows: %w", err)
	}
	return &row, nil
}

// ListAssignmentHistoryWithClient returns a user's full assignment history,
// newest first.
func ListAssignmentHistoryWithClient(ctx context.Context, client *bigquery.Client, userID string) ([]*PersonaRow, error) {
	q := client.Query(`
		SELECT assignment_id, user_id, persona_name, priority_level,
		       signal_strength, trace_json, assigned_at
		FROM ` + datasetID + `.` + personasTable + `
		WHERE user_id = @user_id
		ORDER BY assigned_at DESC
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListAssignmentHistory: query read: %w", err)
	}

	var rows []*PersonaRow
	for {
		var r PersonaRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListAssignmentHistory: iterating rows: %w", err)
		}
		rows = append(rows, &r)
	}
	return rows, nil
}
