package skills

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jingkaihe/findskill/pkg/logger"
	"github.com/jingkaihe/findskill/pkg/telemetry"
)

// ErrNoUsableSource is returned when no strategy has anything to search,
// e.g. remote search is off and none of the local roots exist.
var ErrNoUsableSource = errors.New("no usable skill source: no local skill directory exists and remote search is disabled")

// Report is the outcome of one search.
type Report struct {
	Query      string
	Candidates []Candidate
	// Diagnostics lists the non-fatal failures worth showing to the user.
	Diagnostics []*StrategyError
}

// Finder runs strategies one after another and aggregates their results.
type Finder struct {
	strategies []Strategy
	limit      int
}

// NewFinder creates a Finder. Strategies are run in the given order; the
// final ordering is still decided by source priority.
func NewFinder(limit int, strategies ...Strategy) *Finder {
	return &Finder{
		strategies: strategies,
		limit:      limit,
	}
}

// Find searches every available strategy for query.
func (f *Finder) Find(ctx context.Context, query string) (*Report, error) {
	var available []Strategy
	for _, s := range f.strategies {
		if s.Available() {
			available = append(available, s)
		}
	}
	if len(available) == 0 {
		return nil, ErrNoUsableSource
	}

	report := &Report{Query: query}
	var all []Candidate
	for _, s := range available {
		result := f.run(ctx, s, query)
		all = append(all, result.Candidates...)

		if result.Quiet {
			if err := result.Err(); err != nil {
				logger.G(ctx).WithError(err).WithField("source", s.Source()).Debug("ignoring expected search failure")
			}
			continue
		}
		report.Diagnostics = append(report.Diagnostics, result.Failures()...)
	}

	report.Candidates = Aggregate(all, f.limit)
	return report, nil
}

func (f *Finder) run(ctx context.Context, s Strategy, query string) StrategyResult {
	ctx, span := telemetry.StartSpan(ctx, "skills."+string(s.Source()),
		attribute.String("skills.query", query),
	)
	ctx = logger.WithComponent(ctx, string(s.Source()))

	result := s.Search(ctx, query)

	span.SetAttributes(attribute.Int("skills.candidates", len(result.Candidates)))
	telemetry.EndSpan(span, result.Err())
	return result
}
