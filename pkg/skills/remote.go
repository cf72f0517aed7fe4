package skills

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/gobwas/glob"

	"github.com/jingkaihe/findskill/pkg/github"
	"github.com/jingkaihe/findskill/pkg/logger"
)

const (
	// DefaultTopic tags repositories that publish Agent Skills
	DefaultTopic = "agentskills"

	searchPageSize = 10
	headRef        = "HEAD"
)

// GitHubAPI is the subset of the GitHub client used by the remote strategies.
type GitHubAPI interface {
	ListContents(ctx context.Context, fullName string) ([]github.ContentEntry, error)
	SearchRepositories(ctx context.Context, query string, perPage int) ([]github.Repository, error)
	SearchCode(ctx context.Context, query string, perPage int) ([]github.CodeResult, error)
	FetchRaw(ctx context.Context, owner, repo, ref, path string) (string, error)
}

// RemoteSource searches GitHub with three strategies of decreasing trust:
// explicitly configured repositories, a topic-filtered repository search
// and a best-effort code search for SKILL.md files.
type RemoteSource struct {
	api    GitHubAPI
	topic  string
	repos  []string
	ignore []glob.Glob
}

// RemoteOption configures a RemoteSource
type RemoteOption func(*RemoteSource) error

// WithTopic sets the repository topic used by the topic search
func WithTopic(topic string) RemoteOption {
	return func(r *RemoteSource) error {
		r.topic = topic
		return nil
	}
}

// WithRepos sets the repositories, as owner/name, searched first
func WithRepos(repos ...string) RemoteOption {
	return func(r *RemoteSource) error {
		r.repos = repos
		return nil
	}
}

// WithRemoteIgnorePatterns skips configured-repository directories whose
// name matches any glob. Hidden directories are always skipped.
func WithRemoteIgnorePatterns(patterns ...string) RemoteOption {
	return func(r *RemoteSource) error {
		compiled, err := compilePatterns(patterns)
		if err != nil {
			return err
		}
		r.ignore = compiled
		return nil
	}
}

// NewRemoteSource creates a RemoteSource backed by api
func NewRemoteSource(api GitHubAPI, opts ...RemoteOption) (*RemoteSource, error) {
	r := &RemoteSource{
		api:   api,
		topic: DefaultTopic,
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Strategies returns the remote strategies in priority order.
func (r *RemoteSource) Strategies() []Strategy {
	return []Strategy{
		&configuredStrategy{r},
		&topicStrategy{r},
		&codeStrategy{r},
	}
}

// SearchConfigured looks for matching skills in the top-level directories of
// every configured repository. A repository that cannot be listed is
// recorded as a failure and the rest are still searched.
func (r *RemoteSource) SearchConfigured(ctx context.Context, query string) StrategyResult {
	result := StrategyResult{Source: SourceRemoteConfigured}

	for _, fullName := range r.repos {
		log := logger.G(ctx).WithField("repo", fullName)

		owner, repo, err := github.SplitRepo(fullName)
		if err != nil {
			result.fail(fullName, err)
			continue
		}

		entries, err := r.api.ListContents(ctx, fullName)
		if err != nil {
			result.fail(fullName, err)
			continue
		}

		for _, entry := range entries {
			if !entry.IsDir() || strings.HasPrefix(entry.Name, ".") || matchesAny(r.ignore, entry.Name) {
				continue
			}

			content, err := r.api.FetchRaw(ctx, owner, repo, headRef, path.Join(entry.Name, SkillFileName))
			if err != nil {
				log.WithError(err).WithField("dir", entry.Name).Debug("no skill document in directory")
				continue
			}

			meta, ok := ParseMetadata(content)
			if !ok || !meta.Matches(query) {
				continue
			}

			location := fmt.Sprintf("%s/%s/%s/tree/%s/%s", github.WebURL, owner, repo, headRef, entry.Name)
			result.Candidates = append(result.Candidates, meta.Candidate(location, SourceRemoteConfigured))
		}
	}

	return result
}

// SearchTopic runs a repository search restricted to the configured topic.
// Candidates come straight from the search response.
func (r *RemoteSource) SearchTopic(ctx context.Context, query string) StrategyResult {
	result := StrategyResult{Source: SourceRemoteTopic}

	repos, err := r.api.SearchRepositories(ctx, fmt.Sprintf("%s topic:%s", query, r.topic), searchPageSize)
	if err != nil {
		result.fail("", err)
		return result
	}

	for _, repo := range repos {
		if repo.Name == "" {
			continue
		}
		result.Candidates = append(result.Candidates, Candidate{
			Name:        repo.Name,
			Description: Truncate(repo.Description, MaxDescriptionLength, ""),
			Location:    repo.HTMLURL,
			Source:      SourceRemoteTopic,
		})
	}
	return result
}

// SearchCode searches the code index for SKILL.md files mentioning query.
// Code search usually requires authentication, so its failures are expected
// and the result is marked Quiet.
func (r *RemoteSource) SearchCode(ctx context.Context, query string) StrategyResult {
	result := StrategyResult{Source: SourceRemoteCode, Quiet: true}

	hits, err := r.api.SearchCode(ctx, fmt.Sprintf("%s filename:%s", query, SkillFileName), searchPageSize)
	if err != nil {
		result.fail("", err)
		return result
	}

	for _, hit := range hits {
		location := hit.HTMLURL
		if location == "" {
			location = hit.Repository.HTMLURL
		}
		result.Candidates = append(result.Candidates, Candidate{
			Name:        codeResultName(hit),
			Description: Truncate(fmt.Sprintf("Found in %s: %s", hit.Repository.FullName, hit.Path), MaxDescriptionLength, ""),
			Location:    location,
			Source:      SourceRemoteCode,
		})
	}
	return result
}

// codeResultName names a hit after the directory holding the SKILL.md, or
// after the repository when the file sits at its root.
func codeResultName(hit github.CodeResult) string {
	if dir := path.Dir(hit.Path); dir != "." && dir != "/" {
		return path.Base(dir)
	}
	if hit.Repository.Name != "" {
		return hit.Repository.Name
	}
	return "unknown"
}

type configuredStrategy struct{ r *RemoteSource }

func (s *configuredStrategy) Source() Source  { return SourceRemoteConfigured }
func (s *configuredStrategy) Available() bool { return len(s.r.repos) > 0 }
func (s *configuredStrategy) Search(ctx context.Context, query string) StrategyResult {
	return s.r.SearchConfigured(ctx, query)
}

type topicStrategy struct{ r *RemoteSource }

func (s *topicStrategy) Source() Source  { return SourceRemoteTopic }
func (s *topicStrategy) Available() bool { return s.r.topic != "" }
func (s *topicStrategy) Search(ctx context.Context, query string) StrategyResult {
	return s.r.SearchTopic(ctx, query)
}

type codeStrategy struct{ r *RemoteSource }

func (s *codeStrategy) Source() Source  { return SourceRemoteCode }
func (s *codeStrategy) Available() bool { return true }
func (s *codeStrategy) Search(ctx context.Context, query string) StrategyResult {
	return s.r.SearchCode(ctx, query)
}
