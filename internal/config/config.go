// Package config builds the strongly-typed run configuration from defaults,
// an optional YAML file, environment variables, and command-line flags, in
// that order. Secrets come from the environment only.
package config

import (
	"flag"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/frankhjung/blogspot-publishing/publish/application"
)

// Secret is an opaque credential value. It prints redacted so credentials
// cannot leak through logs or error messages.
type Secret string

func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "[redacted]"
}

// Value returns the underlying secret for use at the API boundary.
func (s Secret) Value() string { return string(s) }

// Duration wraps time.Duration so YAML values like "500ms" parse.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) String() string { return time.Duration(d).String() }

// Config is the complete configuration for one publish run. It is validated
// at the process boundary; nothing network-facing happens on an invalid one.
type Config struct {
	SourceFile string        `yaml:"source_file"`
	Title      string        `yaml:"title"`
	Labels     []string      `yaml:"labels"`
	BlogID     string        `yaml:"blog_id"`
	OnConflict string        `yaml:"on_conflict" default:"fail"`
	DryRun     bool          `yaml:"dry_run"`
	Timeout    Duration      `yaml:"timeout" default:"120s"`
	LogLevel   string        `yaml:"log_level" default:"info"`
	Converter  string        `yaml:"converter"`
	Retry      RetryConfig   `yaml:"retry"`

	// Secrets are never read from the YAML file.
	ClientID     Secret `yaml:"-"`
	ClientSecret Secret `yaml:"-"`
	RefreshToken Secret `yaml:"-"`
}

type RetryConfig struct {
	MaxRetries      int           `yaml:"max_retries" default:"4"`
	InitialInterval Duration      `yaml:"initial_interval" default:"500ms"`
}

const envPrefix = "BLOGSPOT_"

// Load assembles the configuration from the given command-line arguments and
// the process environment.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	applyDefaults(cfg)

	fs := flag.NewFlagSet("blogspot-publish", flag.ContinueOnError)
	var (
		configPath = fs.String("config", "", "optional YAML config file with non-secret defaults")
		sourceFile = fs.String("source-file", "", "path to the authored document")
		title      = fs.String("title", "", "post title (defaults to the first heading of a Markdown source)")
		labels     = fs.String("labels", "", "comma-separated labels applied to the post")
		blogID     = fs.String("blog-id", "", "target blog identifier")
		onConflict = fs.String("on-conflict", "", "policy when the title belongs to a live or scheduled post (fail|create-draft)")
		dryRun     = fs.Bool("dry-run", false, "resolve and report without creating or updating anything")
		timeout    = fs.Duration("timeout", 0, "overall run timeout")
		logLevel   = fs.String("log-level", "", "log level (trace|debug|info|warn|error)")
		converter  = fs.String("converter", "", "external converter command with {input} and {output} placeholders")
	)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	// Flags that were set explicitly win over file and environment.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "source-file":
			cfg.SourceFile = *sourceFile
		case "title":
			cfg.Title = *title
		case "labels":
			cfg.Labels = SplitLabels(*labels)
		case "blog-id":
			cfg.BlogID = *blogID
		case "on-conflict":
			cfg.OnConflict = *onConflict
		case "dry-run":
			cfg.DryRun = *dryRun
		case "timeout":
			cfg.Timeout = Duration(*timeout)
		case "log-level":
			cfg.LogLevel = *logLevel
		case "converter":
			cfg.Converter = *converter
		}
	})

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	for name, set := range map[string]func(string) error{
		"SOURCE_FILE":   func(v string) error { cfg.SourceFile = v; return nil },
		"TITLE":         func(v string) error { cfg.Title = v; return nil },
		"LABELS":        func(v string) error { cfg.Labels = SplitLabels(v); return nil },
		"BLOG_ID":       func(v string) error { cfg.BlogID = v; return nil },
		"ON_CONFLICT":   func(v string) error { cfg.OnConflict = v; return nil },
		"LOG_LEVEL":     func(v string) error { cfg.LogLevel = v; return nil },
		"CONVERTER":     func(v string) error { cfg.Converter = v; return nil },
		"CLIENT_ID":     func(v string) error { cfg.ClientID = Secret(v); return nil },
		"CLIENT_SECRET": func(v string) error { cfg.ClientSecret = Secret(v); return nil },
		"REFRESH_TOKEN": func(v string) error { cfg.RefreshToken = Secret(v); return nil },
		"DRY_RUN": func(v string) error {
			parsed, err := strconv.ParseBool(v)
			if err != nil {
				return err
			}
			cfg.DryRun = parsed
			return nil
		},
		"TIMEOUT": func(v string) error {
			parsed, err := time.ParseDuration(v)
			if err != nil {
				return err
			}
			cfg.Timeout = Duration(parsed)
			return nil
		},
		"RETRY_MAX_RETRIES": func(v string) error {
			parsed, err := strconv.Atoi(v)
			if err != nil {
				return err
			}
			cfg.Retry.MaxRetries = parsed
			return nil
		},
		"RETRY_INITIAL_INTERVAL": func(v string) error {
			parsed, err := time.ParseDuration(v)
			if err != nil {
				return err
			}
			cfg.Retry.InitialInterval = Duration(parsed)
			return nil
		},
	} {
		v, ok := os.LookupEnv(envPrefix + name)
		if !ok || v == "" {
			continue
		}
		if err := set(v); err != nil {
			return fmt.Errorf("invalid %s%s value %q: %w", envPrefix, name, v, err)
		}
	}
	return nil
}

func (c *Config) validate() error {
	var missing []string
	if c.SourceFile == "" {
		missing = append(missing, "source-file")
	}
	if c.BlogID == "" {
		missing = append(missing, "blog-id")
	}
	if c.ClientID == "" {
		missing = append(missing, envPrefix+"CLIENT_ID")
	}
	if c.ClientSecret == "" {
		missing = append(missing, envPrefix+"CLIENT_SECRET")
	}
	if c.RefreshToken == "" {
		missing = append(missing, envPrefix+"REFRESH_TOKEN")
	}
	if c.Title == "" && !application.IsMarkdownSource(c.SourceFile) {
		missing = append(missing, "title")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	switch c.OnConflict {
	case "fail", "create-draft":
	default:
		return fmt.Errorf("invalid on-conflict policy %q, want fail or create-draft", c.OnConflict)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry max_retries must not be negative, got %d", c.Retry.MaxRetries)
	}
	if c.Retry.InitialInterval <= 0 {
		return fmt.Errorf("retry initial_interval must be positive, got %s", c.Retry.InitialInterval)
	}
	return nil
}

// SplitLabels parses a comma-separated label list, trimming whitespace and
// dropping empty entries.
func SplitLabels(raw string) []string {
	var labels []string
	for _, l := range strings.Split(raw, ",") {
		l = strings.TrimSpace(l)
		if l != "" {
			labels = append(labels, l)
		}
	}
	return labels
}

// applyDefaults walks the struct and fills zero fields from their `default`
// tags.
func applyDefaults(config interface{}) {
	v := reflect.ValueOf(config)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.IsValid() || !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct {
			applyDefaults(field.Addr().Interface())
			continue
		}

		defaultValue := fieldType.Tag.Get("default")
		if defaultValue == "" {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(defaultValue)
		case reflect.Bool:
			if val, err := strconv.ParseBool(defaultValue); err == nil {
				field.SetBool(val)
			}
		case reflect.Int, reflect.Int64:
			if val, err := strconv.ParseInt(defaultValue, 10, 64); err == nil {
				field.SetInt(val)
			} else if dur, derr := time.ParseDuration(defaultValue); derr == nil {
				field.SetInt(int64(dur))
			}
		}
	}
}
