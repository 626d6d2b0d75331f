package application

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/frankhjung/blogspot-publishing/publish/domain"
)

func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRenderPassthroughHTML(t *testing.T) {
	source := writeSource(t, "post.html", "<p>already html</p>")
	output := filepath.Join(t.TempDir(), "out.html")

	if err := NewRenderer("").Render(context.Background(), source, output); err != nil {
		t.Fatalf("Render() unexpected error: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "<p>already html</p>" {
		t.Errorf("Render() output = %q, want passthrough", data)
	}
}

func TestRenderMarkdownSource(t *testing.T) {
	source := writeSource(t, "post.md", "# Hello\n\nBody text.")
	output := filepath.Join(t.TempDir(), "out.html")

	if err := NewRenderer("").Render(context.Background(), source, output); err != nil {
		t.Fatalf("Render() unexpected error: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Hello</h1>") {
		t.Errorf("Render() output missing rendered heading:\n%s", data)
	}
}

func TestRenderMissingSource(t *testing.T) {
	err := NewRenderer("").Render(context.Background(), filepath.Join(t.TempDir(), "gone.md"), filepath.Join(t.TempDir(), "out.html"))

	var renderErr *domain.RenderError
	if !errors.As(err, &renderErr) {
		t.Fatalf("Render() error = %v, want RenderError", err)
	}
	if domain.StageOf(err) != domain.StageRender {
		t.Errorf("StageOf() = %q, want %q", domain.StageOf(err), domain.StageRender)
	}
}

func TestRenderUnsupportedFormatWithoutConverter(t *testing.T) {
	source := writeSource(t, "post.Rmd", "---\ntitle: x\n---\ntext")

	err := NewRenderer("").Render(context.Background(), source, filepath.Join(t.TempDir(), "out.html"))

	var renderErr *domain.RenderError
	if !errors.As(err, &renderErr) {
		t.Fatalf("Render() error = %v, want RenderError", err)
	}
}

func TestRenderExternalConverter(t *testing.T) {
	source := writeSource(t, "post.rst", "<p>converted elsewhere</p>")
	output := filepath.Join(t.TempDir(), "out.html")

	if err := NewRenderer("cp {input} {output}").Render(context.Background(), source, output); err != nil {
		t.Fatalf("Render() unexpected error: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "<p>converted elsewhere</p>" {
		t.Errorf("Render() output = %q, want converter result", data)
	}
}

func TestRenderExternalConverterFailure(t *testing.T) {
	source := writeSource(t, "post.rst", "text")

	err := NewRenderer("false {input} {output}").Render(context.Background(), source, filepath.Join(t.TempDir(), "out.html"))

	var renderErr *domain.RenderError
	if !errors.As(err, &renderErr) {
		t.Fatalf("Render() error = %v, want RenderError", err)
	}
}

func TestIsMarkdownSource(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"post.md", true},
		{"post.markdown", true},
		{"POST.MD", true},
		{"post.html", false},
		{"post.Rmd", false},
		{"post", false},
	}

	for _, tt := range tests {
		if got := IsMarkdownSource(tt.path); got != tt.expected {
			t.Errorf("IsMarkdownSource(%q) = %v, want %v", tt.path, got, tt.expected)
		}
	}
}
