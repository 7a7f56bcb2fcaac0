package pipeline

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/relaymind/autopilot/internal/model"
	"github.com/relaymind/autopilot/internal/store"
)

// Guard checks candidates against persisted entities before insertion. It
// only reads; the caller decides whether to persist.
type Guard struct {
	store store.Store
}

// NewGuard creates a deduplication guard over the given store.
func NewGuard(st store.Store) *Guard {
	return &Guard{store: st}
}

// IsDuplicate reports whether the candidate already exists for the user.
//
// Leads are duplicates when an existing lead has the same email or the same
// name — exact, case-sensitive comparison, by a linear scan. Tasks and
// meetings rely on the per-purpose processed flag instead of content
// matching. Invoices and expenses get no dedup at all: every qualifying
// email can produce a new draft.
//
// For a duplicate lead it also returns the matching lead's ID so the caller
// can record the correspondence.
func (g *Guard) IsDuplicate(ctx context.Context, userID string, cand *model.Candidate) (bool, string, error) {
	if cand.Kind != model.KindLead || cand.Lead == nil {
		return false, "", nil
	}

	existing, err := g.store.ListLeads(ctx, userID)
	if err != nil {
		return false, "", eris.Wrap(err, "dedup: list leads")
	}
	for _, lead := range existing {
		if lead.Email == cand.Lead.Email || lead.Name == cand.Lead.Name {
			return true, lead.ID, nil
		}
	}
	return false, "", nil
}
