package notionsync

import (
	"time"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/spendsense/internal/domain"
)

// AssignmentToNotionProperties converts a persona assignment to Notion
// properties for the Assignments review database. The decision trace fields
// that operators review most often (reason, tie breaker, data window) are
// lifted into their own columns.
func AssignmentToNotionProperties(a domain.PersonaAssignment) notionapi.Properties {
	props := notionapi.Properties{
		"Assignment ID": notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: a.AssignmentID,
					},
				},
			},
		},
		"User ID": notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: a.UserID,
					},
				},
			},
		},
		"Persona": notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: string(a.Persona),
			},
		},
		"Priority": notionapi.NumberProperty{
			Number: float64(a.PriorityLevel),
		},
		"Signal Strength": notionapi.NumberProperty{
			Number: a.SignalStrength,
		},
		"Assigned At": notionapi.DateProperty{
			Date: &notionapi.DateObject{
				Start: notionDate(a.AssignedAt),
			},
		},
	}

	if a.Trace.Reason != "" {
		props["Reason"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: string(a.Trace.Reason),
			},
		}
	}

	if a.Trace.TieBreaker != "" {
		props["Tie Breaker"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: string(a.Trace.TieBreaker),
			},
		}
	}

	if a.Trace.WindowType != "" {
		props["Data Window"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: string(a.Trace.WindowType),
			},
		}
	}

	if a.Trace.DataAvailability != "" {
		props["Data Tier"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: string(a.Trace.DataAvailability),
			},
		}
	}

	return props
}

// RecommendationToNotionProperties converts a recommendation to Notion
// properties for the Recommendations review database.
func RecommendationToNotionProperties(rec domain.Recommendation) notionapi.Properties {
	props := notionapi.Properties{
		"Recommendation ID": notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: rec.RecommendationID,
					},
				},
			},
		},
		"User ID": notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: rec.UserID,
					},
				},
			},
		},
		"Persona": notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: string(rec.Persona),
			},
		},
		"Type": notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: string(rec.Type),
			},
		},
		"Title": notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: rec.Title,
					},
				},
			},
		},
	}

	if rec.Rationale != "" {
		props["Rationale"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: rec.Rationale,
					},
				},
			},
		}
	}

	if rec.OfferType != "" {
		props["Offer Type"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: rec.OfferType,
			},
		}
	}

	if !rec.GeneratedAt.IsZero() {
		props["Generated At"] = notionapi.DateProperty{
			Date: &notionapi.DateObject{
				Start: notionDate(rec.GeneratedAt),
			},
		}
	}

	return props
}

func notionDate(t time.Time) *notionapi.Date {
	d := notionapi.Date(t)
	return &d
}
