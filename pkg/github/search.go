package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/avast/retry-go/v4"
	"github.com/google/go-github/v57/github"
	"github.com/pkg/errors"

	"github.com/jingkaihe/findskill/pkg/logger"
)

// maxRawSize caps how much of a raw file is read
const maxRawSize = 1 << 20

// ContentEntry is one item of a repository directory listing
type ContentEntry struct {
	Name string
	Path string
	Type string // "dir", "file", "symlink" or "submodule"
}

// IsDir reports whether the entry is a directory
func (e ContentEntry) IsDir() bool {
	return e.Type == "dir"
}

// Repository is the subset of repository fields used for discovery
type Repository struct {
	Name        string
	FullName    string
	Description string
	HTMLURL     string
}

// CodeResult is a single code search hit
type CodeResult struct {
	Path       string
	HTMLURL    string
	Repository Repository
}

// StatusError reports an unexpected HTTP status from the raw content host
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// IsNotFound reports whether err is a 404 from either the API or the raw host.
func IsNotFound(err error) bool {
	return statusCode(err) == http.StatusNotFound
}

func statusCode(err error) int {
	var apiErr *github.ErrorResponse
	if errors.As(err, &apiErr) && apiErr.Response != nil {
		return apiErr.Response.StatusCode
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

// isRetryable only retries server errors. Rate limits, auth failures and
// timeouts are returned immediately.
func isRetryable(err error) bool {
	return statusCode(err) >= http.StatusInternalServerError
}

func (c *Client) withRetry(ctx context.Context, operation string, fn func() error) error {
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			logger.G(ctx).WithError(err).
				WithField("operation", operation).
				WithField("attempt", n+1).
				WithField("max_attempts", c.attempts).
				Debug("retrying GitHub call")
		}),
	)
}

// ListContents lists the top-level entries of a repository given as owner/name.
func (c *Client) ListContents(ctx context.Context, fullName string) ([]ContentEntry, error) {
	owner, repo, err := SplitRepo(fullName)
	if err != nil {
		return nil, err
	}

	var dir []*github.RepositoryContent
	err = c.withRetry(ctx, "list_contents", func() error {
		var err error
		_, dir, _, err = c.client.Repositories.GetContents(ctx, owner, repo, "", nil)
		return err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list contents of %s", fullName)
	}

	entries := make([]ContentEntry, 0, len(dir))
	for _, item := range dir {
		entries = append(entries, ContentEntry{
			Name: item.GetName(),
			Path: item.GetPath(),
			Type: item.GetType(),
		})
	}
	return entries, nil
}

// SearchRepositories runs a repository search and returns the first page.
func (c *Client) SearchRepositories(ctx context.Context, query string, perPage int) ([]Repository, error) {
	opts := &github.SearchOptions{ListOptions: github.ListOptions{PerPage: perPage}}

	var result *github.RepositoriesSearchResult
	err := c.withRetry(ctx, "search_repositories", func() error {
		var err error
		result, _, err = c.client.Search.Repositories(ctx, query, opts)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "repository search failed")
	}

	repos := make([]Repository, 0, len(result.Repositories))
	for _, r := range result.Repositories {
		repos = append(repos, toRepository(r))
	}
	return repos, nil
}

// SearchCode runs a code search and returns the first page.
func (c *Client) SearchCode(ctx context.Context, query string, perPage int) ([]CodeResult, error) {
	opts := &github.SearchOptions{ListOptions: github.ListOptions{PerPage: perPage}}

	var result *github.CodeSearchResult
	err := c.withRetry(ctx, "search_code", func() error {
		var err error
		result, _, err = c.client.Search.Code(ctx, query, opts)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "code search failed")
	}

	hits := make([]CodeResult, 0, len(result.CodeResults))
	for _, r := range result.CodeResults {
		hits = append(hits, CodeResult{
			Path:       r.GetPath(),
			HTMLURL:    r.GetHTMLURL(),
			Repository: toRepository(r.GetRepository()),
		})
	}
	return hits, nil
}

func toRepository(r *github.Repository) Repository {
	return Repository{
		Name:        r.GetName(),
		FullName:    r.GetFullName(),
		Description: r.GetDescription(),
		HTMLURL:     r.GetHTMLURL(),
	}
}

// RawURL returns the raw content URL of path at ref.
func (c *Client) RawURL(owner, repo, ref, path string) (string, error) {
	return url.JoinPath(c.rawURL, owner, repo, ref, path)
}

// FetchRaw downloads a file from the raw content host.
func (c *Client) FetchRaw(ctx context.Context, owner, repo, ref, path string) (string, error) {
	rawURL, err := c.RawURL(owner, repo, ref, path)
	if err != nil {
		return "", errors.Wrap(err, "failed to build raw content URL")
	}

	var content string
	err = c.withRetry(ctx, "fetch_raw", func() error {
		var err error
		content, err = c.get(ctx, rawURL)
		return err
	})
	return content, err
}

func (c *Client) get(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "failed to fetch %s", rawURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRawSize))
	if err != nil {
		return "", errors.Wrapf(err, "failed to read %s", rawURL)
	}
	return string(body), nil
}
