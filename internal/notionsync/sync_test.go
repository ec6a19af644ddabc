package notionsync

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/spendsense/internal/domain"
	"github.com/dvloznov/spendsense/internal/store/memory"
)

// fakeNotion keeps pages in memory and records created/archived page IDs.
type fakeNotion struct {
	pages    []notionapi.Page
	created  []string
	archived []string
	nextID   int
}

func (f *fakeNotion) CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
	f.nextID++
	page := notionapi.Page{
		ID:         notionapi.ObjectID(fmt.Sprintf("page-%d", f.nextID)),
		Properties: properties,
	}
	f.pages = append(f.pages, page)
	f.created = append(f.created, string(page.ID))
	return &page, nil
}

func (f *fakeNotion) UpdatePage(ctx context.Context, pageID string, properties notionapi.Properties) (*notionapi.Page, error) {
	return &notionapi.Page{ID: notionapi.ObjectID(pageID), Properties: properties}, nil
}

func (f *fakeNotion) QueryDatabase(ctx context.Context, databaseID string, filter *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	return &notionapi.DatabaseQueryResponse{Results: f.pages, HasMore: false}, nil
}

func (f *fakeNotion) DeletePage(ctx context.Context, pageID string) error {
	f.archived = append(f.archived, pageID)
	return nil
}

// titlePage builds a page carrying only the given title property, the way
// QueryDatabase returns pages from a review database.
func titlePage(pageID, property, value string) notionapi.Page {
	return notionapi.Page{
		ID: notionapi.ObjectID(pageID),
		Properties: notionapi.Properties{
			property: &notionapi.TitleProperty{
				Title: []notionapi.RichText{{PlainText: value}},
			},
		},
	}
}

func TestSyncAssignments_CreatesCurrentAndArchivesStale(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	older := domain.PersonaAssignment{
		AssignmentID: "assign-old",
		UserID:       "user_001",
		Persona:      domain.PersonaCreditBuilder,
		AssignedAt:   time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	current := domain.PersonaAssignment{
		AssignmentID:   "assign-new",
		UserID:         "user_001",
		Persona:        domain.PersonaHighUtilization,
		PriorityLevel:  1,
		SignalStrength: 0.8,
		AssignedAt:     time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, a := range []domain.PersonaAssignment{older, current} {
		if err := st.SaveAssignment(ctx, a); err != nil {
			t.Fatalf("SaveAssignment: %v", err)
		}
	}

	// The board still shows the superseded assignment.
	notion := &fakeNotion{pages: []notionapi.Page{titlePage("stale-page", "Assignment ID", "assign-old")}}

	if err := SyncAssignments(ctx, st, notion, "db", []string{"user_001", "user_nobody"}, false); err != nil {
		t.Fatalf("SyncAssignments: %v", err)
	}

	if len(notion.archived) != 1 || notion.archived[0] != "stale-page" {
		t.Errorf("archived = %v, want [stale-page]", notion.archived)
	}
	if len(notion.created) != 1 {
		t.Fatalf("created %d pages, want 1", len(notion.created))
	}

	props := notion.pages[len(notion.pages)-1].Properties
	persona, ok := props["Persona"].(notionapi.SelectProperty)
	if !ok || persona.Select.Name != string(domain.PersonaHighUtilization) {
		t.Errorf("created page persona = %+v, want %s", props["Persona"], domain.PersonaHighUtilization)
	}
}

func TestSyncAssignments_DryRunTouchesNothing(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	err := st.SaveAssignment(ctx, domain.PersonaAssignment{
		AssignmentID: "assign-1",
		UserID:       "user_001",
		Persona:      domain.PersonaSavingsBuilder,
		AssignedAt:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("SaveAssignment: %v", err)
	}

	notion := &fakeNotion{pages: []notionapi.Page{titlePage("stale-page", "Assignment ID", "assign-gone")}}

	if err := SyncAssignments(ctx, st, notion, "db", []string{"user_001"}, true); err != nil {
		t.Fatalf("SyncAssignments: %v", err)
	}
	if len(notion.created) != 0 || len(notion.archived) != 0 {
		t.Errorf("dry run created %v and archived %v, want neither", notion.created, notion.archived)
	}
}

func TestSyncRecommendations_ArchivesRevokedUsersRows(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	st.PutUser(domain.User{UserID: "user_001", ConsentStatus: true})
	err := st.SaveRecommendations(ctx, []domain.Recommendation{{
		RecommendationID: "rec-1",
		UserID:           "user_001",
		Persona:          domain.PersonaSubscriptionHeavy,
		Type:             domain.ContentEducation,
		Title:            "Auditing Your Subscriptions",
		GeneratedAt:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}})
	if err != nil {
		t.Fatalf("SaveRecommendations: %v", err)
	}

	// A previous sync put a page up for a user who has since revoked.
	notion := &fakeNotion{pages: []notionapi.Page{titlePage("revoked-page", "Recommendation ID", "rec-revoked")}}

	if err := SyncRecommendations(ctx, st, notion, "db", []string{"user_001", "user_002"}, false); err != nil {
		t.Fatalf("SyncRecommendations: %v", err)
	}

	if len(notion.archived) != 1 || notion.archived[0] != "revoked-page" {
		t.Errorf("archived = %v, want [revoked-page]", notion.archived)
	}
	if len(notion.created) != 1 {
		t.Fatalf("created %d pages, want 1", len(notion.created))
	}
}

func TestSyncRecommendations_SkipsExistingPages(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	st.PutUser(domain.User{UserID: "user_001", ConsentStatus: true})
	err := st.SaveRecommendations(ctx, []domain.Recommendation{{
		RecommendationID: "rec-1",
		UserID:           "user_001",
		Type:             domain.ContentEducation,
		Title:            "Understanding Credit Utilization",
	}})
	if err != nil {
		t.Fatalf("SaveRecommendations: %v", err)
	}

	notion := &fakeNotion{pages: []notionapi.Page{titlePage("existing", "Recommendation ID", "rec-1")}}

	if err := SyncRecommendations(ctx, st, notion, "db", []string{"user_001"}, false); err != nil {
		t.Fatalf("SyncRecommendations: %v", err)
	}
	if len(notion.created) != 0 {
		t.Errorf("created = %v, want no new pages", notion.created)
	}
	if len(notion.archived) != 0 {
		t.Errorf("archived = %v, want none", notion.archived)
	}
}
