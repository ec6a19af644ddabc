package notionsync

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/spendsense/internal/logger"
	"github.com/dvloznov/spendsense/internal/store"
)

// SyncAssignments mirrors each listed user's current persona assignment into
// the Notion review database. Pages for superseded or unknown assignments are
// archived, so the board shows exactly one row per assigned user.
func SyncAssignments(ctx context.Context, personas store.PersonaStore, notionClient NotionService, notionDBID string, userIDs []string, dryRun bool) error {
	log := logger.FromContext(ctx)

	log.Info().
		Bool("dry_run", dryRun).
		Int("user_count", len(userIDs)).
		Msg("Starting assignment sync to Notion")

	// Collect the current assignment for every listed user.
	var assignments []struct {
		id    string
		props notionapi.Properties
	}
	validAssignmentIDs := make(map[string]bool)
	for _, userID := range userIDs {
		a, ok, err := personas.CurrentAssignment(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load current assignment for %s: %w", userID, err)
		}
		if !ok {
			continue
		}
		validAssignmentIDs[a.AssignmentID] = true
		assignments = append(assignments, struct {
			id    string
			props notionapi.Properties
		}{a.AssignmentID, AssignmentToNotionProperties(a)})
	}

	log.Info().Int("assignment_count", len(assignments)).Msg("Retrieved current assignments from storage")

	// Query all existing assignments from Notion
	notionPages, err := queryAllNotionPages(ctx, notionClient, notionDBID)
	if err != nil {
		return fmt.Errorf("failed to query Notion pages: %w", err)
	}

	log.Info().Int("notion_page_count", len(notionPages)).Msg("Retrieved existing Notion pages")

	// Build map of existing assignment IDs in Notion (for deduplication)
	existingAssignmentIDs := make(map[string]bool)
	for _, page := range notionPages {
		id := extractTitleID(page, "Assignment ID")
		if id != "" {
			existingAssignmentIDs[id] = true
		}
	}

	deleted := deleteStalePages(ctx, notionClient, notionPages, "Assignment ID", validAssignmentIDs, dryRun)

	var created, skipped int
	for _, a := range assignments {
		if existingAssignmentIDs[a.id] {
			skipped++
			continue
		}

		if dryRun {
			log.Info().
				Str("assignment_id", a.id).
				Msg("[DRY RUN] Would create Notion page for assignment")
			created++
			continue
		}

		page, err := notionClient.CreatePage(ctx, notionDBID, a.props)
		if err != nil {
			log.Warn().
				Err(err).
				Str("assignment_id", a.id).
				Msg("Failed to create Notion page for assignment")
			continue
		}

		log.Info().
			Str("assignment_id", a.id).
			Str("page_id", string(page.ID)).
			Msg("Created Notion page for assignment")
		created++
	}

	log.Info().
		Int("deleted", deleted).
		Int("created", created).
		Int("skipped", skipped).
		Int("total", len(assignments)).
		Msg("Assignment sync completed")

	return nil
}

// SyncRecommendations mirrors each listed user's active recommendations into
// the Notion review database. Recommendations deleted in storage - including
// those removed by consent revocation - have their Notion pages archived.
func SyncRecommendations(ctx context.Context, recs store.RecommendationStore, notionClient NotionService, notionDBID string, userIDs []string, dryRun bool) error {
	log := logger.FromContext(ctx)

	log.Info().
		Bool("dry_run", dryRun).
		Int("user_count", len(userIDs)).
		Msg("Starting recommendation sync to Notion")

	var active []struct {
		id    string
		props notionapi.Properties
	}
	validRecommendationIDs := make(map[string]bool)
	for _, userID := range userIDs {
		userRecs, err := recs.RecommendationsByUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load recommendations for %s: %w", userID, err)
		}
		for _, rec := range userRecs {
			validRecommendationIDs[rec.RecommendationID] = true
			active = append(active, struct {
				id    string
				props notionapi.Properties
			}{rec.RecommendationID, RecommendationToNotionProperties(rec)})
		}
	}

	log.Info().Int("recommendation_count", len(active)).Msg("Retrieved active recommendations from storage")

	notionPages, err := queryAllNotionPages(ctx, notionClient, notionDBID)
	if err != nil {
		return fmt.Errorf("failed to query Notion pages: %w", err)
	}

	log.Info().Int("notion_page_count", len(notionPages)).Msg("Retrieved existing Notion pages")

	existingRecommendationIDs := make(map[string]bool)
	for _, page := range notionPages {
		id := extractTitleID(page, "Recommendation ID")
		if id != "" {
			existingRecommendationIDs[id] = true
		}
	}

	deleted := deleteStalePages(ctx, notionClient, notionPages, "Recommendation ID", validRecommendationIDs, dryRun)

	var created, skipped int
	for _, rec := range active {
		if existingRecommendationIDs[rec.id] {
			skipped++
			continue
		}

		if dryRun {
			log.Info().
				Str("recommendation_id", rec.id).
				Msg("[DRY RUN] Would create Notion page for recommendation")
			created++
			continue
		}

		page, err := notionClient.CreatePage(ctx, notionDBID, rec.props)
		if err != nil {
			log.Warn().
				Err(err).
				Str("recommendation_id", rec.id).
				Msg("Failed to create Notion page for recommendation")
			continue
		}

		log.Info().
			Str("recommendation_id", rec.id).
			Str("page_id", string(page.ID)).
			Msg("Created Notion page for recommendation")
		created++
	}

	log.Info().
		Int("deleted", deleted).
		Int("created", created).
		Int("skipped", skipped).
		Int("total", len(active)).
		Msg("Recommendation sync completed")

	return nil
}

// deleteStalePages archives every Notion page whose title ID is missing or
// not in the valid set. Failures are logged and skipped so one bad page does
// not block the rest of the sync.
func deleteStalePages(ctx context.Context, notionClient NotionService, pages []notionapi.Page, titleProperty string, validIDs map[string]bool, dryRun bool) int {
	log := logger.FromContext(ctx)

	var deleted int
	for _, page := range pages {
		id := extractTitleID(page, titleProperty)
		if id != "" && validIDs[id] {
			continue
		}

		if dryRun {
			log.Info().
				Str("id", id).
				Str("page_id", string(page.ID)).
				Msg("[DRY RUN] Would delete stale Notion page")
			deleted++
			continue
		}

		if err := notionClient.DeletePage(ctx, string(page.ID)); err != nil {
			log.Warn().
				Err(err).
				Str("id", id).
				Str("page_id", string(page.ID)).
				Msg("Failed to delete stale Notion page")
			continue
		}
		log.Info().
			Str("id", id).
			Str("page_id", string(page.ID)).
			Msg("Deleted stale Notion page")
		deleted++
	}
	return deleted
}

// queryAllNotionPages queries all pages from a Notion database and returns them.
// Handles pagination automatically.
func queryAllNotionPages(ctx context.Context, notionClient NotionService, databaseID string) ([]notionapi.Page, error) {
	var allPages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{
			PageSize: 100,
		}

		// Only set StartCursor if we have a cursor value
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := notionClient.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAllNotionPages: %w", err)
		}

		allPages = append(allPages, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return allPages, nil
}

// extractTitleID extracts the named title property from a Notion page.
// Returns empty string if not found.
func extractTitleID(page notionapi.Page, property string) string {
	if prop, ok := page.Properties[property]; ok {
		if title, ok := prop.(*notionapi.TitleProperty); ok {
			if len(title.Title) > 0 {
				return title.Title[0].PlainText
			}
		}
	}
	return ""
}
