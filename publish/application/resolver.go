package application

import (
	"github.com/frankhjung/blogspot-publishing/publish/domain"
)

// ResolveTitle matches the desired title against the posts already on the
// blog. Comparison is exact and case sensitive.
//
// Only a single matching draft authorizes an update. More than one matching
// draft is ambiguous and surfaces for manual resolution rather than being
// guessed at. A live or scheduled post with the title is reported as a
// non-draft match so the caller can apply its conflict policy; it is never
// selected for mutation here.
func ResolveTitle(posts []*domain.Post, title string) (domain.Resolution, error) {
	var draftIDs []string
	var nonDraft *domain.Post

	for _, p := range posts {
		if p.Title != title {
			continue
		}
		if p.Status == domain.StatusDraft {
			draftIDs = append(draftIDs, p.ID)
		} else if nonDraft == nil {
			nonDraft = p
		}
	}

	switch {
	case len(draftIDs) > 1:
		return domain.Resolution{}, &domain.AmbiguousTitleError{Title: title, PostIDs: draftIDs}
	case len(draftIDs) == 1:
		return domain.Resolution{Kind: domain.MatchDraft, PostID: draftIDs[0], Status: domain.StatusDraft}, nil
	case nonDraft != nil:
		return domain.Resolution{Kind: domain.MatchNonDraft, PostID: nonDraft.ID, Status: nonDraft.Status}, nil
	}
	return domain.Resolution{Kind: domain.NoMatch}, nil
}
