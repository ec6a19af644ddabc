package recommend

import (
	"testing"

	"github.com/dvloznov/spendsense/internal/domain"
)

func TestEducationItems(t *testing.T) {
	personas := []domain.Persona{
		domain.PersonaHighUtilization,
		domain.PersonaVariableIncome,
		domain.PersonaCreditBuilder,
		domain.PersonaSubscriptionHeavy,
		domain.PersonaSavingsBuilder,
		domain.PersonaWelcome,
	}
	for _, p := range personas {
		items := EducationItems(p, DefaultEducationCount)
		if len(items) != 5 {
			t.Errorf("EducationItems(%s) = %d items, want 5", p, len(items))
		}
		for _, item := range items {
			if item.Persona != p {
				t.Errorf("item %q tagged %s, want %s", item.Title, item.Persona, p)
			}
			if item.Title == "" || item.Description == "" {
				t.Errorf("item for %s has empty fields: %+v", p, item)
			}
		}
	}
}

func TestEducationItems_CountAndUnknownPersona(t *testing.T) {
	if got := EducationItems(domain.PersonaWelcome, 2); len(got) != 2 {
		t.Errorf("count 2 returned %d items", len(got))
	}
	if got := EducationItems(domain.Persona("Mystery"), 5); len(got) != 0 {
		t.Errorf("unknown persona returned %d items, want 0", len(got))
	}
}
