package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("BLOGSPOT_CLIENT_ID", "client-id")
	t.Setenv("BLOGSPOT_CLIENT_SECRET", "client-secret")
	t.Setenv("BLOGSPOT_REFRESH_TOKEN", "refresh-token")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load([]string{"--source-file", "post.md", "--blog-id", "b1"})
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.OnConflict != "fail" {
		t.Errorf("OnConflict = %q, want %q", cfg.OnConflict, "fail")
	}
	if time.Duration(cfg.Timeout) != 120*time.Second {
		t.Errorf("Timeout = %s, want 120s", cfg.Timeout)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.Retry.MaxRetries != 4 {
		t.Errorf("Retry.MaxRetries = %d, want 4", cfg.Retry.MaxRetries)
	}
	if time.Duration(cfg.Retry.InitialInterval) != 500*time.Millisecond {
		t.Errorf("Retry.InitialInterval = %s, want 500ms", cfg.Retry.InitialInterval)
	}
}

func TestLoadMissingRequiredFields(t *testing.T) {
	// No flags, no environment: every required field should be named.
	for _, name := range []string{"BLOGSPOT_CLIENT_ID", "BLOGSPOT_CLIENT_SECRET", "BLOGSPOT_REFRESH_TOKEN"} {
		t.Setenv(name, "")
	}

	_, err := Load(nil)
	if err == nil {
		t.Fatal("Load() error = nil, want missing-field error")
	}

	for _, want := range []string{"source-file", "blog-id", "BLOGSPOT_CLIENT_ID", "BLOGSPOT_CLIENT_SECRET", "BLOGSPOT_REFRESH_TOKEN"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Load() error %q does not name %q", err, want)
		}
	}
}

func TestLoadTitleRequiredForNonMarkdown(t *testing.T) {
	setRequiredEnv(t)

	_, err := Load([]string{"--source-file", "post.html", "--blog-id", "b1"})
	if err == nil || !strings.Contains(err.Error(), "title") {
		t.Errorf("Load() error = %v, want missing title for HTML source", err)
	}

	if _, err := Load([]string{"--source-file", "post.md", "--blog-id", "b1"}); err != nil {
		t.Errorf("Load() unexpected error for Markdown source: %v", err)
	}
}

func TestLoadEnvironmentOverlay(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BLOGSPOT_SOURCE_FILE", "env.md")
	t.Setenv("BLOGSPOT_BLOG_ID", "env-blog")
	t.Setenv("BLOGSPOT_LABELS", "a, b ,,c")
	t.Setenv("BLOGSPOT_TIMEOUT", "30s")
	t.Setenv("BLOGSPOT_DRY_RUN", "true")
	t.Setenv("BLOGSPOT_RETRY_MAX_RETRIES", "2")
	t.Setenv("BLOGSPOT_RETRY_INITIAL_INTERVAL", "250ms")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.SourceFile != "env.md" || cfg.BlogID != "env-blog" {
		t.Errorf("Load() = %q/%q, want values from environment", cfg.SourceFile, cfg.BlogID)
	}
	if !reflect.DeepEqual(cfg.Labels, []string{"a", "b", "c"}) {
		t.Errorf("Labels = %v, want trimmed, non-empty entries", cfg.Labels)
	}
	if time.Duration(cfg.Timeout) != 30*time.Second {
		t.Errorf("Timeout = %s, want 30s from BLOGSPOT_TIMEOUT", cfg.Timeout)
	}
	if !cfg.DryRun {
		t.Error("DryRun = false, want true from BLOGSPOT_DRY_RUN")
	}
	if cfg.Retry.MaxRetries != 2 || time.Duration(cfg.Retry.InitialInterval) != 250*time.Millisecond {
		t.Errorf("Retry = %+v, want the environment values", cfg.Retry)
	}
	if cfg.ClientID.Value() != "client-id" {
		t.Errorf("ClientID.Value() = %q, want the raw secret", cfg.ClientID.Value())
	}
}

func TestLoadRejectsMalformedEnvironmentValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "Bad timeout", key: "BLOGSPOT_TIMEOUT", value: "soon"},
		{name: "Bad dry run", key: "BLOGSPOT_DRY_RUN", value: "yep"},
		{name: "Bad max retries", key: "BLOGSPOT_RETRY_MAX_RETRIES", value: "many"},
		{name: "Bad initial interval", key: "BLOGSPOT_RETRY_INITIAL_INTERVAL", value: "quick"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load([]string{"--source-file", "post.md", "--blog-id", "b1"})
			if err == nil || !strings.Contains(err.Error(), tt.key) {
				t.Errorf("Load() error = %v, want rejection naming %s", err, tt.key)
			}
		})
	}
}

func TestLoadFlagsBeatFileAndEnvironment(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("BLOGSPOT_BLOG_ID", "env-blog")

	configFile := filepath.Join(t.TempDir(), "publish.yaml")
	yaml := "blog_id: file-blog\non_conflict: create-draft\ntimeout: 10s\nretry:\n  max_retries: 1\n  initial_interval: 50ms\n"
	if err := os.WriteFile(configFile, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load([]string{
		"--config", configFile,
		"--source-file", "post.md",
		"--blog-id", "flag-blog",
	})
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.BlogID != "flag-blog" {
		t.Errorf("BlogID = %q, want the flag value", cfg.BlogID)
	}
	if cfg.OnConflict != "create-draft" {
		t.Errorf("OnConflict = %q, want the file value", cfg.OnConflict)
	}
	if time.Duration(cfg.Timeout) != 10*time.Second {
		t.Errorf("Timeout = %s, want the file value 10s", cfg.Timeout)
	}
	if cfg.Retry.MaxRetries != 1 || time.Duration(cfg.Retry.InitialInterval) != 50*time.Millisecond {
		t.Errorf("Retry = %+v, want the file values", cfg.Retry)
	}
}

func TestLoadRejectsInvalidConflictPolicy(t *testing.T) {
	setRequiredEnv(t)

	_, err := Load([]string{"--source-file", "post.md", "--blog-id", "b1", "--on-conflict", "overwrite"})
	if err == nil || !strings.Contains(err.Error(), "on-conflict") {
		t.Errorf("Load() error = %v, want invalid policy rejection", err)
	}
}

func TestSecretRedaction(t *testing.T) {
	secret := Secret("super-secret-token")

	for _, rendered := range []string{
		fmt.Sprint(secret),
		fmt.Sprintf("%v", secret),
		fmt.Sprintf("%s", secret),
	} {
		if strings.Contains(rendered, "super-secret-token") {
			t.Errorf("secret leaked through formatting: %q", rendered)
		}
		if rendered != "[redacted]" {
			t.Errorf("formatted secret = %q, want %q", rendered, "[redacted]")
		}
	}

	if Secret("").String() != "" {
		t.Errorf("empty secret renders as %q, want empty", Secret("").String())
	}
	if secret.Value() != "super-secret-token" {
		t.Errorf("Value() = %q, want the raw secret", secret.Value())
	}
}

func TestSplitLabels(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []string
	}{
		{
			name:     "Simple list",
			raw:      "go,ci,blog",
			expected: []string{"go", "ci", "blog"},
		},
		{
			name:     "Whitespace and empties dropped",
			raw:      " go , ,ci,",
			expected: []string{"go", "ci"},
		},
		{
			name:     "Empty input",
			raw:      "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitLabels(tt.raw); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("SplitLabels(%q) = %v, want %v", tt.raw, got, tt.expected)
			}
		})
	}
}
