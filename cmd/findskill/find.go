package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/findskill/pkg/auth"
	"github.com/jingkaihe/findskill/pkg/config"
	"github.com/jingkaihe/findskill/pkg/github"
	"github.com/jingkaihe/findskill/pkg/logger"
	"github.com/jingkaihe/findskill/pkg/presenter"
	"github.com/jingkaihe/findskill/pkg/skills"
)

const retryDelay = time.Second

// FindConfig holds the per-invocation output options
type FindConfig struct {
	LocalOnly bool
	Format    string
	Fetch     bool
}

func getFindConfigFromFlags(cmd *cobra.Command) *FindConfig {
	fc := &FindConfig{Format: string(formatText)}

	fc.LocalOnly, _ = cmd.Flags().GetBool("local-only")
	fc.Fetch, _ = cmd.Flags().GetBool("fetch")
	if format, err := cmd.Flags().GetString("format"); err == nil {
		fc.Format = format
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		fc.Format = string(formatJSON)
	}
	return fc
}

func newGitHubClient(ctx context.Context, cfg config.GitHubConfig, tokens *auth.TokenResolver) (*github.Client, error) {
	token, _ := tokens.Token(ctx)
	logger.G(ctx).WithField("origin", tokens.Origin()).Debug("resolved GitHub credentials")

	return github.NewClient(ctx, token,
		github.WithAPIURL(cfg.APIURL),
		github.WithRawURL(cfg.RawURL),
		github.WithTimeout(cfg.Timeout),
		github.WithRetry(cfg.RetryAttempts, retryDelay),
	)
}

// buildStrategies returns the local source followed by the remote strategies
// when remote search is enabled, and the raw fetcher for remote documents.
func buildStrategies(ctx context.Context, fc *FindConfig, cfg *config.Config) ([]skills.Strategy, skills.RawFetcher, error) {
	local, err := skills.NewLocalSource(cfg.LocalPaths, skills.WithIgnorePatterns(cfg.Ignore...))
	if err != nil {
		return nil, nil, err
	}
	logger.G(ctx).WithField("roots", local.Roots()).Debug("local skill roots")
	strategies := []skills.Strategy{local}

	if fc.LocalOnly || !cfg.GitHub.Enabled {
		return strategies, nil, nil
	}

	client, err := newGitHubClient(ctx, cfg.GitHub, auth.NewTokenResolver())
	if err != nil {
		return nil, nil, err
	}
	remote, err := skills.NewRemoteSource(client,
		skills.WithTopic(cfg.GitHub.Topic),
		skills.WithRepos(cfg.GitHub.Repos...),
		skills.WithRemoteIgnorePatterns(cfg.Ignore...),
	)
	if err != nil {
		return nil, nil, err
	}
	return append(strategies, remote.Strategies()...), client, nil
}

func runFind(ctx context.Context, query string, fc *FindConfig, cfg *config.Config, p *presenter.TerminalPresenter) error {
	format, err := parseFormat(fc.Format)
	if err != nil {
		return err
	}

	strategies, raw, err := buildStrategies(ctx, fc, cfg)
	if err != nil {
		return err
	}

	report, err := skills.NewFinder(cfg.Limit, strategies...).Find(ctx, query)
	if err != nil {
		return err
	}
	for _, d := range report.Diagnostics {
		p.Warning(d.Error())
	}

	switch {
	case format != formatText:
		return renderStructured(p.Output(), format, report.Candidates)
	case len(report.Candidates) == 0:
		renderNoResults(p, query)
	case fc.Fetch:
		renderDocuments(ctx, p, skills.NewFetcher(raw), report.Candidates)
	default:
		renderList(p, query, report.Candidates)
	}
	return nil
}
