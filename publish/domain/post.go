package domain

// PostStatus is the lifecycle state the platform reports for a post.
type PostStatus string

const (
	StatusDraft     PostStatus = "DRAFT"
	StatusLive      PostStatus = "LIVE"
	StatusScheduled PostStatus = "SCHEDULED"
)

// Post represents a post on the target blog.
// The platform assigns the ID; the title acts as the natural key for the
// publish workflow, so within one blog at most one draft should carry a
// given title.
type Post struct {
	ID      string
	Title   string
	Content string
	Labels  []string
	Status  PostStatus
	URL     string
}

// PublishRequest is the input for one pipeline run. It is built once at the
// process boundary and discarded when the run ends; nothing is persisted
// between runs.
type PublishRequest struct {
	SourceFile string
	Title      string
	Labels     []string
	BlogID     string
	DryRun     bool
}
