package skills

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Strategy is one discovery source. Search never fails as a whole: errors
// are classified inside the returned StrategyResult so that a broken source
// contributes an empty list instead of aborting the others.
type Strategy interface {
	Source() Source
	// Available reports whether the strategy has anything to search at all.
	Available() bool
	Search(ctx context.Context, query string) StrategyResult
}

// StrategyError describes a failed call made by a strategy.
type StrategyError struct {
	Source Source
	Target string // repository or endpoint the call was aimed at
	Err    error
}

func (e *StrategyError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("%s: failed to search %s: %v", e.Source, e.Target, e.Err)
	}
	return fmt.Sprintf("%s: search failed: %v", e.Source, e.Err)
}

func (e *StrategyError) Unwrap() error {
	return e.Err
}

// StrategyResult is the outcome of a single strategy run.
type StrategyResult struct {
	Source     Source
	Candidates []Candidate
	Errors     *multierror.Error
	// Quiet marks failures as expected; they are kept for debugging but
	// never reported as diagnostics.
	Quiet bool
}

// Err returns the accumulated failures, or nil.
func (r *StrategyResult) Err() error {
	return r.Errors.ErrorOrNil()
}

func (r *StrategyResult) fail(target string, err error) {
	r.Errors = multierror.Append(r.Errors, &StrategyError{
		Source: r.Source,
		Target: target,
		Err:    err,
	})
}

// Failures returns each recorded failure as a StrategyError.
func (r *StrategyResult) Failures() []*StrategyError {
	if r.Errors == nil {
		return nil
	}
	failures := make([]*StrategyError, 0, len(r.Errors.Errors))
	for _, err := range r.Errors.Errors {
		if se, ok := err.(*StrategyError); ok {
			failures = append(failures, se)
		}
	}
	return failures
}
