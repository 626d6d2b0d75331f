package domain

import "context"

// BlogRepository defines the interface for the remote blog platform.
// This allows the application to be decoupled from a specific implementation.
type BlogRepository interface {
	// ValidateCredentials exchanges the stored credentials for a short-lived
	// access token without touching the posts endpoint. Stale credentials
	// surface here, before any post is listed or written.
	ValidateCredentials(ctx context.Context) error

	// ListPosts returns every post the platform exposes for the blog,
	// drafts included, across all result pages.
	ListPosts(ctx context.Context) ([]*Post, error)

	// InsertDraft creates a new post in DRAFT status and returns it with
	// its platform-assigned ID. It never creates a live post.
	InsertDraft(ctx context.Context, post *Post) (*Post, error)

	// UpdatePost replaces the content and labels of the post identified by
	// post.ID, leaving its title and status untouched.
	UpdatePost(ctx context.Context, post *Post) (*Post, error)
}
