package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/frankhjung/blogspot-publishing/internal/config"
	"github.com/frankhjung/blogspot-publishing/internal/logger"
	"github.com/frankhjung/blogspot-publishing/publish/application"
	"github.com/frankhjung/blogspot-publishing/publish/domain"
	"github.com/frankhjung/blogspot-publishing/shared/blogger"
)

const (
	exitOK = iota
	exitConfig
	exitRender
	exitAuth
	exitResolve
	exitPublish
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// A .env file is optional; CI injects the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return exitConfig
	}

	logger.New(cfg.LogLevel)

	title, err := resolveTitle(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return exitConfig
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Timeout))
	defer cancel()

	client := blogger.NewClient(ctx, blogger.Credentials{
		ClientID:     cfg.ClientID.Value(),
		ClientSecret: cfg.ClientSecret.Value(),
		RefreshToken: cfg.RefreshToken.Value(),
	}, cfg.BlogID, blogger.WithRetryPolicy(blogger.RetryPolicy{
		MaxRetries:      uint64(cfg.Retry.MaxRetries),
		InitialInterval: time.Duration(cfg.Retry.InitialInterval),
	}))

	pipeline := application.NewPipeline(
		client,
		application.NewRenderer(cfg.Converter),
		application.ConflictPolicy(cfg.OnConflict),
	)

	result, err := pipeline.Run(ctx, &domain.PublishRequest{
		SourceFile: cfg.SourceFile,
		Title:      title,
		Labels:     cfg.Labels,
		BlogID:     cfg.BlogID,
		DryRun:     cfg.DryRun,
	})
	if err != nil {
		stage := domain.StageOf(err)
		log.Error().Err(err).Str("stage", string(stage)).Msg("Publish run failed")
		fmt.Fprintf(os.Stderr, "%s: %v\n", stage, err)
		return exitCode(stage)
	}

	log.Info().
		Str("action", string(result.Action)).
		Str("post_id", result.PostID).
		Str("url", result.URL).
		Bool("dry_run", result.DryRun).
		Msg("Publish run complete")
	return exitOK
}

// resolveTitle falls back to the first top-level heading of a Markdown
// source when no title was supplied. Config validation already guarantees a
// title is present for non-Markdown sources.
func resolveTitle(cfg *config.Config) (string, error) {
	if cfg.Title != "" {
		return cfg.Title, nil
	}

	source, err := os.ReadFile(cfg.SourceFile)
	if err != nil {
		return "", fmt.Errorf("reading %s for title: %w", cfg.SourceFile, err)
	}

	title := application.ExtractMarkdownTitle(source)
	if title == "" {
		return "", fmt.Errorf("no title given and %s has no top-level heading", cfg.SourceFile)
	}
	log.Debug().Str("title", title).Msg("Defaulted title from source heading")
	return title, nil
}

func exitCode(stage domain.Stage) int {
	switch stage {
	case domain.StageConfig:
		return exitConfig
	case domain.StageRender:
		return exitRender
	case domain.StageAuth:
		return exitAuth
	case domain.StageResolve:
		return exitResolve
	}
	return exitPublish
}
