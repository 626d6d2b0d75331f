package application

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/frankhjung/blogspot-publishing/publish/domain"
)

// ConflictPolicy decides what happens when the requested title already
// belongs to a live or scheduled post. Those posts are never mutated either
// way; the policy only controls whether the run fails or creates a parallel
// draft next to them.
type ConflictPolicy string

const (
	ConflictFail        ConflictPolicy = "fail"
	ConflictCreateDraft ConflictPolicy = "create-draft"
)

// Action is what a pipeline run did, or would do under dry run.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
)

// Result reports the outcome of one pipeline run.
type Result struct {
	Action Action
	PostID string
	URL    string
	DryRun bool
}

// Pipeline performs one publish run: render the source document, normalize
// and inline the HTML, resolve the title against the blog, then create or
// update a draft. Each run is independent; re-running with an unchanged
// title converges on the same post instead of duplicating it.
type Pipeline struct {
	repo     domain.BlogRepository
	renderer Renderer
	policy   ConflictPolicy
}

func NewPipeline(repo domain.BlogRepository, renderer Renderer, policy ConflictPolicy) *Pipeline {
	return &Pipeline{
		repo:     repo,
		renderer: renderer,
		policy:   policy,
	}
}

// Run executes the publish workflow for a single request. Local input
// problems (render failures, missing image assets) surface before the first
// network call; credential problems surface before the posts endpoint is
// touched.
func (p *Pipeline) Run(ctx context.Context, req *domain.PublishRequest) (*Result, error) {
	content, err := p.prepareContent(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := p.repo.ValidateCredentials(ctx); err != nil {
		return nil, err
	}

	posts, err := p.repo.ListPosts(ctx)
	if err != nil {
		return nil, &domain.StageError{Stage: domain.StageResolve, Err: err}
	}

	resolution, err := ResolveTitle(posts, req.Title)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("title", req.Title).
		Str("resolution", string(resolution.Kind)).
		Str("post_id", resolution.PostID).
		Int("existing_posts", len(posts)).
		Msg("Resolved title against blog")

	switch resolution.Kind {
	case domain.MatchDraft:
		return p.update(ctx, req, resolution.PostID, content)
	case domain.MatchNonDraft:
		if p.policy != ConflictCreateDraft {
			return nil, &domain.ConflictError{Title: req.Title, PostID: resolution.PostID, Status: resolution.Status}
		}
		log.Warn().
			Str("title", req.Title).
			Str("post_id", resolution.PostID).
			Str("status", string(resolution.Status)).
			Msg("Title already published, creating a parallel draft")
		return p.create(ctx, req, content)
	default:
		return p.create(ctx, req, content)
	}
}

// prepareContent renders the source document and applies the two local
// transformations: shell extraction and image inlining.
func (p *Pipeline) prepareContent(ctx context.Context, req *domain.PublishRequest) (string, error) {
	workDir, err := os.MkdirTemp("", "blogspot-publish-")
	if err != nil {
		return "", &domain.StageError{Stage: domain.StageRender, Err: err}
	}
	defer os.RemoveAll(workDir)

	rendered := filepath.Join(workDir, "rendered.html")
	if err := p.renderer.Render(ctx, req.SourceFile, rendered); err != nil {
		return "", err
	}

	raw, err := os.ReadFile(rendered)
	if err != nil {
		return "", &domain.RenderError{Source: req.SourceFile, Err: err}
	}

	normalized, err := NormalizeHTML(raw)
	if err != nil {
		return "", err
	}

	inlined, err := InlineLocalImages(normalized, filepath.Dir(req.SourceFile))
	if err != nil {
		return "", err
	}

	log.Debug().
		Int("rendered_bytes", len(raw)).
		Int("publish_bytes", len(inlined)).
		Msg("Prepared post content")
	return string(inlined), nil
}

func (p *Pipeline) create(ctx context.Context, req *domain.PublishRequest, content string) (*Result, error) {
	if req.DryRun {
		log.Info().Str("title", req.Title).Msg("Dry run, would create a new draft")
		return &Result{Action: ActionCreated, DryRun: true}, nil
	}

	created, err := p.repo.InsertDraft(ctx, &domain.Post{
		Title:   req.Title,
		Content: content,
		Labels:  req.Labels,
	})
	if err != nil {
		return nil, &domain.StageError{Stage: domain.StagePublish, Err: err}
	}

	log.Info().Str("post_id", created.ID).Str("url", created.URL).Msg("Created draft")
	return &Result{Action: ActionCreated, PostID: created.ID, URL: created.URL}, nil
}

func (p *Pipeline) update(ctx context.Context, req *domain.PublishRequest, postID string, content string) (*Result, error) {
	if req.DryRun {
		log.Info().Str("title", req.Title).Str("post_id", postID).Msg("Dry run, would update existing draft")
		return &Result{Action: ActionUpdated, PostID: postID, DryRun: true}, nil
	}

	updated, err := p.repo.UpdatePost(ctx, &domain.Post{
		ID:      postID,
		Content: content,
		Labels:  req.Labels,
	})
	if err != nil {
		return nil, &domain.StageError{Stage: domain.StagePublish, Err: err}
	}

	log.Info().Str("post_id", updated.ID).Str("url", updated.URL).Msg("Updated draft")
	return &Result{Action: ActionUpdated, PostID: updated.ID, URL: updated.URL}, nil
}
