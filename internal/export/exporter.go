package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/spendsense/internal/domain"
	"github.com/dvloznov/spendsense/internal/store"
)

// HistorySource reads the append-only persona assignment history.
type HistorySource interface {
	AssignmentHistory(ctx context.Context, userID string) ([]domain.PersonaAssignment, error)
}

// Exporter builds JSONL reports from stored assignments and recommendations
// and uploads them to an object store.
type Exporter struct {
	history HistorySource
	recs    store.RecommendationStore
	objects ObjectStore
	now     func() time.Time
	log     zerolog.Logger
}

// NewExporter wires an exporter against the given sources and object store.
func NewExporter(history HistorySource, recs store.RecommendationStore, objects ObjectStore, log zerolog.Logger) *Exporter {
	return &Exporter{
		history: history,
		recs:    recs,
		objects: objects,
		now:     time.Now,
		log:     log.With().Str("component", "exporter").Logger(),
	}
}

// ExportAssignments uploads every listed user's full assignment history,
// decision traces included, as one JSONL object. It returns the object name.
func (e *Exporter) ExportAssignments(ctx context.Context, bucket string, userIDs []string) (string, error) {
	var buf bytes.Buffer
	rows := 0
	for _, userID := range userIDs {
		history, err := e.history.AssignmentHistory(ctx, userID)
		if err != nil {
			return "", fmt.Errorf("ExportAssignments: history for %s: %w", userID, err)
		}
		for _, a := range history {
			if err := writeJSONLine(&buf, a); err != nil {
				return "", fmt.Errorf("ExportAssignments: encode assignment %s: %w", a.AssignmentID, err)
			}
			rows++
		}
	}

	objectName := e.objectName("assignments")
	if err := e.objects.Upload(ctx, bucket, objectName, buf.Bytes()); err != nil {
		return "", fmt.Errorf("ExportAssignments: upload %s: %w", objectName, err)
	}

	e.log.Info().
		Str("bucket", bucket).
		Str("object", objectName).
		Int("rows", rows).
		Msg("assignment report uploaded")
	return objectName, nil
}

// ExportRecommendations uploads every listed user's active recommendations
// as one JSONL object. Revoked users contribute no rows because their
// recommendations are deleted on revocation. It returns the object name.
func (e *Exporter) ExportRecommendations(ctx context.Context, bucket string, userIDs []string) (string, error) {
	var buf bytes.Buffer
	rows := 0
	for _, userID := range userIDs {
		recs, err := e.recs.RecommendationsByUser(ctx, userID)
		if err != nil {
			return "", fmt.Errorf("ExportRecommendations: recommendations for %s: %w", userID, err)
		}
		for _, rec := range recs {
			if err := writeJSONLine(&buf, rec); err != nil {
				return "", fmt.Errorf("ExportRecommendations: encode recommendation %s: %w", rec.RecommendationID, err)
			}
			rows++
		}
	}

	objectName := e.objectName("recommendations")
	if err := e.objects.Upload(ctx, bucket, objectName, buf.Bytes()); err != nil {
		return "", fmt.Errorf("ExportRecommendations: upload %s: %w", objectName, err)
	}

	e.log.Info().
		Str("bucket", bucket).
		Str("object", objectName).
		Int("rows", rows).
		Msg("recommendation report uploaded")
	return objectName, nil
}

// VerifyReport fetches an uploaded report back and returns its line count.
func (e *Exporter) VerifyReport(ctx context.Context, gcsURI string) (int, error) {
	data, err := e.objects.Fetch(ctx, gcsURI)
	if err != nil {
		return 0, fmt.Errorf("VerifyReport: %w", err)
	}
	return bytes.Count(data, []byte("\n")), nil
}

func (e *Exporter) objectName(kind string) string {
	return fmt.Sprintf("exports/%s/%s.jsonl", kind, e.now().UTC().Format("20060102T150405Z"))
}

func writeJSONLine(buf *bytes.Buffer, v interface{}) error {
	line, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(line)
	buf.WriteByte('\n')
	return nil
}
