package domain

// ResolutionKind classifies the outcome of matching a desired title against
// the posts already on the blog.
type ResolutionKind string

const (
	// NoMatch means no existing post carries the title; the run creates a
	// new draft.
	NoMatch ResolutionKind = "no-match"

	// MatchDraft means exactly one draft carries the title; the run updates
	// it in place. This is the only resolution that authorizes an update.
	MatchDraft ResolutionKind = "match-draft"

	// MatchNonDraft means the title belongs to a live or scheduled post.
	// Those are never mutated; what happens next is a policy decision.
	MatchNonDraft ResolutionKind = "match-non-draft"
)

// Resolution is the outcome of a title lookup against the blog.
type Resolution struct {
	Kind   ResolutionKind
	PostID string
	Status PostStatus
}
