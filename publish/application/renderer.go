package application

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/frankhjung/blogspot-publishing/publish/domain"
)

// Renderer turns an authored source document into a single HTML artifact at
// outputPath. The artifact must be self-contained apart from local image
// references, which the publisher inlines afterwards.
type Renderer interface {
	Render(ctx context.Context, sourcePath string, outputPath string) error
}

// documentRenderer dispatches on the source extension: HTML passes through,
// Markdown is rendered natively, and anything else is handed to an external
// converter command when one is configured.
type documentRenderer struct {
	converter string // command template with {input} and {output} placeholders
}

// NewRenderer creates a Renderer. converter may be empty, in which case only
// HTML and Markdown sources are accepted.
func NewRenderer(converter string) Renderer {
	return &documentRenderer{converter: converter}
}

func (r *documentRenderer) Render(ctx context.Context, sourcePath string, outputPath string) error {
	switch strings.ToLower(filepath.Ext(sourcePath)) {
	case ".html", ".htm":
		return r.renderPassthrough(sourcePath, outputPath)
	case ".md", ".markdown":
		return r.renderMarkdown(sourcePath, outputPath)
	default:
		return r.renderExternal(ctx, sourcePath, outputPath)
	}
}

func (r *documentRenderer) renderPassthrough(sourcePath string, outputPath string) error {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return &domain.RenderError{Source: sourcePath, Err: err}
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return &domain.RenderError{Source: sourcePath, Err: err}
	}
	return nil
}

func (r *documentRenderer) renderMarkdown(sourcePath string, outputPath string) error {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return &domain.RenderError{Source: sourcePath, Err: err}
	}

	html, err := RenderMarkdown(data)
	if err != nil {
		return &domain.RenderError{Source: sourcePath, Err: err}
	}

	if err := os.WriteFile(outputPath, html, 0o644); err != nil {
		return &domain.RenderError{Source: sourcePath, Err: err}
	}
	return nil
}

// renderExternal runs the configured converter command. The command is split
// on whitespace and the {input}/{output} placeholders are substituted per
// argument, so paths with spaces survive.
func (r *documentRenderer) renderExternal(ctx context.Context, sourcePath string, outputPath string) error {
	if r.converter == "" {
		return &domain.RenderError{
			Source: sourcePath,
			Err:    fmt.Errorf("unsupported source format %q and no converter configured", filepath.Ext(sourcePath)),
		}
	}

	parts := strings.Fields(r.converter)
	args := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ReplaceAll(p, "{input}", sourcePath)
		p = strings.ReplaceAll(p, "{output}", outputPath)
		args = append(args, p)
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return &domain.RenderError{
			Source: sourcePath,
			Err:    fmt.Errorf("converter %q failed: %w: %s", args[0], err, strings.TrimSpace(string(out))),
		}
	}
	log.Debug().Str("converter", args[0]).Str("output", outputPath).Msg("External converter finished")

	if _, err := os.Stat(outputPath); err != nil {
		return &domain.RenderError{
			Source: sourcePath,
			Err:    fmt.Errorf("converter %q produced no output: %w", args[0], err),
		}
	}
	return nil
}

// IsMarkdownSource reports whether the path looks like a Markdown document,
// which is the only format a title can be defaulted from.
func IsMarkdownSource(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}
