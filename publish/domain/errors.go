package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Stage identifies which part of the pipeline an error belongs to. Every
// fatal error maps to exactly one stage so the process can report which step
// failed and exit with a stage-specific code.
type Stage string

const (
	StageConfig  Stage = "config"
	StageRender  Stage = "render"
	StageAuth    Stage = "auth"
	StageResolve Stage = "resolve"
	StagePublish Stage = "publish"
)

// RenderError indicates the authored document could not be turned into a
// single HTML artifact. No publish is attempted.
type RenderError struct {
	Source string
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Source, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// AuthError indicates the credential exchange was rejected. It is never
// retried automatically; stale credentials require human remediation.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("credential exchange rejected: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// AssetMissingError indicates the HTML references a local image that cannot
// be read. Raised before any network call so a run never publishes broken
// image links.
type AssetMissingError struct {
	Ref  string // src attribute as written in the HTML
	Path string // resolved filesystem path
	Err  error
}

func (e *AssetMissingError) Error() string {
	return fmt.Sprintf("image %q not readable at %s: %v", e.Ref, e.Path, e.Err)
}

func (e *AssetMissingError) Unwrap() error { return e.Err }

// AmbiguousTitleError indicates more than one draft carries the requested
// title. The workflow never guesses which one to update.
type AmbiguousTitleError struct {
	Title   string
	PostIDs []string
}

func (e *AmbiguousTitleError) Error() string {
	return fmt.Sprintf("title %q matches %d drafts (%s); resolve manually",
		e.Title, len(e.PostIDs), strings.Join(e.PostIDs, ", "))
}

// ConflictError indicates the title belongs to a post that is already live
// or scheduled and the conflict policy forbids creating a parallel draft.
type ConflictError struct {
	Title  string
	PostID string
	Status PostStatus
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("title %q belongs to %s post %s, refusing to touch it",
		e.Title, e.Status, e.PostID)
}

// StageError tags an otherwise untyped error with the pipeline stage that
// produced it.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// StageOf maps an error to the pipeline stage it belongs to. Errors with no
// intrinsic stage default to publish, the last step a run reaches.
func StageOf(err error) Stage {
	var (
		renderErr    *RenderError
		authErr      *AuthError
		assetErr     *AssetMissingError
		ambiguousErr *AmbiguousTitleError
		conflictErr  *ConflictError
		stageErr     *StageError
	)
	switch {
	case errors.As(err, &renderErr):
		return StageRender
	case errors.As(err, &assetErr):
		return StageRender
	case errors.As(err, &authErr):
		return StageAuth
	case errors.As(err, &ambiguousErr):
		return StageResolve
	case errors.As(err, &conflictErr):
		return StagePublish
	case errors.As(err, &stageErr):
		return stageErr.Stage
	}
	return StagePublish
}
