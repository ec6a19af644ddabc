package export

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dvloznov/spendsense/internal/domain"
	"github.com/dvloznov/spendsense/internal/logger"
	"github.com/dvloznov/spendsense/internal/store/memory"
)

// fakeObjectStore records uploads in memory and serves them back by URI.
type fakeObjectStore struct {
	objects map[string][]byte // "bucket/object" -> data
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func (f *fakeObjectStore) Upload(ctx context.Context, bucketName, objectName string, data []byte) error {
	f.objects[bucketName+"/"+objectName] = data
	return nil
}

func (f *fakeObjectStore) Fetch(ctx context.Context, gcsURI string) ([]byte, error) {
	key := strings.TrimPrefix(gcsURI, "gs://")
	data, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("object not found: %s", gcsURI)
	}
	return data, nil
}

func newTestExporter(st *memory.Store, objects ObjectStore) *Exporter {
	e := NewExporter(st, st, objects, logger.NewWithWriter(nil))
	e.now = func() time.Time {
		return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	}
	return e
}

func TestExportAssignments_WritesOneLinePerAssignment(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	objects := newFakeObjectStore()

	for i, userID := range []string{"user_001", "user_001", "user_002"} {
		err := st.SaveAssignment(ctx, domain.PersonaAssignment{
			AssignmentID: fmt.Sprintf("assign-%d", i),
			UserID:       userID,
			Persona:      domain.PersonaHighUtilization,
			AssignedAt:   time.Date(2025, 6, 1+i, 0, 0, 0, 0, time.UTC),
			Trace: domain.DecisionTrace{
				Reason: domain.ReasonSingleMatch,
			},
		})
		if err != nil {
			t.Fatalf("SaveAssignment: %v", err)
		}
	}

	exp := newTestExporter(st, objects)
	objectName, err := exp.ExportAssignments(ctx, "reports", []string{"user_001", "user_002", "user_unknown"})
	if err != nil {
		t.Fatalf("ExportAssignments: %v", err)
	}
	if objectName != "exports/assignments/20250615T120000Z.jsonl" {
		t.Errorf("object name = %q", objectName)
	}

	data, ok := objects.objects["reports/"+objectName]
	if !ok {
		t.Fatal("report was not uploaded")
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("report has %d lines, want 3", len(lines))
	}

	// Each line must round-trip as a full assignment with its trace.
	var first domain.PersonaAssignment
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("unmarshal first line: %v", err)
	}
	if first.UserID != "user_001" {
		t.Errorf("first line user = %q, want user_001", first.UserID)
	}
	if first.Trace.Reason != domain.ReasonSingleMatch {
		t.Errorf("first line trace reason = %q, want %q", first.Trace.Reason, domain.ReasonSingleMatch)
	}
}

func TestExportRecommendations_SkipsDeletedRows(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	objects := newFakeObjectStore()

	st.PutUser(domain.User{UserID: "user_001", ConsentStatus: true})
	st.PutUser(domain.User{UserID: "user_002", ConsentStatus: true})
	for _, userID := range []string{"user_001", "user_002"} {
		err := st.SaveRecommendations(ctx, []domain.Recommendation{{
			RecommendationID: userID + "-rec",
			UserID:           userID,
			Type:             domain.ContentEducation,
			Title:            "Understanding Credit Utilization",
		}})
		if err != nil {
			t.Fatalf("SaveRecommendations: %v", err)
		}
	}
	if err := st.DeleteRecommendationsByUser(ctx, "user_002"); err != nil {
		t.Fatalf("DeleteRecommendationsByUser: %v", err)
	}

	exp := newTestExporter(st, objects)
	objectName, err := exp.ExportRecommendations(ctx, "reports", []string{"user_001", "user_002"})
	if err != nil {
		t.Fatalf("ExportRecommendations: %v", err)
	}

	data := objects.objects["reports/"+objectName]
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 1 {
		t.Fatalf("report has %d lines, want 1", len(lines))
	}
	if !strings.Contains(lines[0], "user_001-rec") {
		t.Errorf("surviving line = %q, want user_001's recommendation", lines[0])
	}
}

func TestVerifyReport_CountsLines(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	objects := newFakeObjectStore()
	objects.objects["reports/exports/assignments/x.jsonl"] = []byte("{}\n{}\n")

	exp := newTestExporter(st, objects)
	n, err := exp.VerifyReport(ctx, "gs://reports/exports/assignments/x.jsonl")
	if err != nil {
		t.Fatalf("VerifyReport: %v", err)
	}
	if n != 2 {
		t.Errorf("line count = %d, want 2", n)
	}
}
