package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/jingkaihe/findskill/pkg/logger"
	"github.com/jingkaihe/findskill/pkg/presenter"
	"github.com/jingkaihe/findskill/pkg/skills"
)

type outputFormat string

const (
	formatText outputFormat = "text"
	formatJSON outputFormat = "json"
	formatYAML outputFormat = "yaml"

	// displayDescriptionLength caps descriptions in the text listing
	displayDescriptionLength = 120
)

func parseFormat(s string) (outputFormat, error) {
	switch f := outputFormat(s); f {
	case formatText, formatJSON, formatYAML:
		return f, nil
	case "":
		return formatText, nil
	default:
		return "", errors.Errorf("unsupported output format %q, expected text, json or yaml", s)
	}
}

// documentFetcher retrieves the SKILL.md of a result
type documentFetcher interface {
	Fetch(ctx context.Context, c skills.Candidate) (string, error)
}

// renderStructured writes every candidate field. An empty result is an empty
// list, never null.
func renderStructured(w io.Writer, format outputFormat, candidates []skills.Candidate) error {
	if candidates == nil {
		candidates = []skills.Candidate{}
	}

	switch format {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(candidates); err != nil {
			return errors.Wrap(err, "failed to encode results as YAML")
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(candidates), "failed to encode results as JSON")
	}
}

func renderNoResults(p *presenter.TerminalPresenter, query string) {
	p.Info(fmt.Sprintf("No skills found for: %s", query))
	p.Info("Try broader terms, or create the skill yourself.")
}

func renderList(p *presenter.TerminalPresenter, query string, candidates []skills.Candidate) {
	p.Section(fmt.Sprintf("Found %d skill(s) for \"%s\":", len(candidates), query))
	p.Info("")
	for i, c := range candidates {
		p.Info(fmt.Sprintf("%d. %s", i+1, c.Name))
		p.Info(fmt.Sprintf("   Location: %s", c.Location))
		p.Info(fmt.Sprintf("   Description: %s", skills.Truncate(c.Description, displayDescriptionLength, "...")))
		p.Info("")
	}
}

// renderDocuments prints the full SKILL.md of each candidate. A document that
// cannot be fetched is reported in place and the rest are still printed.
func renderDocuments(ctx context.Context, p *presenter.TerminalPresenter, fetcher documentFetcher, candidates []skills.Candidate) {
	for i, c := range candidates {
		p.Separator()
		p.Section(fmt.Sprintf("[%d] %s (%s)", i+1, c.Name, c.Source))
		p.Info(fmt.Sprintf("Location: %s", c.Location))
		p.Separator()

		content, err := fetcher.Fetch(ctx, c)
		if err != nil {
			logger.G(ctx).WithError(err).WithField("location", c.Location).Debug("failed to fetch skill document")
			p.Info("[Could not fetch SKILL.md content]")
		} else {
			p.Info(content)
		}
		p.Info("")
	}
}
