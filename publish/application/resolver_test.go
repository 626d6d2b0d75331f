package application

import (
	"errors"
	"testing"

	"github.com/frankhjung/blogspot-publishing/publish/domain"
)

func TestResolveTitle(t *testing.T) {
	tests := []struct {
		name     string
		posts    []*domain.Post
		title    string
		expected domain.Resolution
	}{
		{
			name:     "Empty blog",
			posts:    nil,
			title:    "My Post",
			expected: domain.Resolution{Kind: domain.NoMatch},
		},
		{
			name: "No matching title",
			posts: []*domain.Post{
				{ID: "1", Title: "Something Else", Status: domain.StatusDraft},
			},
			title:    "My Post",
			expected: domain.Resolution{Kind: domain.NoMatch},
		},
		{
			name: "Single draft match",
			posts: []*domain.Post{
				{ID: "1", Title: "Other", Status: domain.StatusLive},
				{ID: "2", Title: "My Post", Status: domain.StatusDraft},
			},
			title:    "My Post",
			expected: domain.Resolution{Kind: domain.MatchDraft, PostID: "2", Status: domain.StatusDraft},
		},
		{
			name: "Comparison is case sensitive",
			posts: []*domain.Post{
				{ID: "1", Title: "my post", Status: domain.StatusDraft},
			},
			title:    "My Post",
			expected: domain.Resolution{Kind: domain.NoMatch},
		},
		{
			name: "Live post match",
			posts: []*domain.Post{
				{ID: "1", Title: "My Post", Status: domain.StatusLive},
			},
			title:    "My Post",
			expected: domain.Resolution{Kind: domain.MatchNonDraft, PostID: "1", Status: domain.StatusLive},
		},
		{
			name: "Scheduled post match",
			posts: []*domain.Post{
				{ID: "1", Title: "My Post", Status: domain.StatusScheduled},
			},
			title:    "My Post",
			expected: domain.Resolution{Kind: domain.MatchNonDraft, PostID: "1", Status: domain.StatusScheduled},
		},
		{
			name: "Draft match wins over non-draft match",
			posts: []*domain.Post{
				{ID: "1", Title: "My Post", Status: domain.StatusLive},
				{ID: "2", Title: "My Post", Status: domain.StatusDraft},
			},
			title:    "My Post",
			expected: domain.Resolution{Kind: domain.MatchDraft, PostID: "2", Status: domain.StatusDraft},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ResolveTitle(tt.posts, tt.title)
			if err != nil {
				t.Fatalf("ResolveTitle() unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("ResolveTitle() = %+v, want %+v", result, tt.expected)
			}
		})
	}
}

func TestResolveTitleAmbiguousDrafts(t *testing.T) {
	posts := []*domain.Post{
		{ID: "1", Title: "My Post", Status: domain.StatusDraft},
		{ID: "2", Title: "My Post", Status: domain.StatusDraft},
	}

	_, err := ResolveTitle(posts, "My Post")
	var ambiguous *domain.AmbiguousTitleError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("ResolveTitle() error = %v, want AmbiguousTitleError", err)
	}
	if len(ambiguous.PostIDs) != 2 {
		t.Errorf("AmbiguousTitleError.PostIDs = %v, want both draft IDs", ambiguous.PostIDs)
	}
	if domain.StageOf(err) != domain.StageResolve {
		t.Errorf("StageOf() = %q, want %q", domain.StageOf(err), domain.StageResolve)
	}
}
