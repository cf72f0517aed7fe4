// Package github wraps the GitHub REST API and raw content host for skill
// discovery: directory listings, repository and code search, and raw file
// retrieval, all sharing one timeout-bounded HTTP client.
package github

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/jingkaihe/findskill/pkg/logger"
)

const (
	// DefaultAPIURL is the public GitHub REST endpoint
	DefaultAPIURL = "https://api.github.com/"
	// DefaultRawURL serves raw file contents addressed by owner/repo/ref/path
	DefaultRawURL = "https://raw.githubusercontent.com/"
	// WebURL is the browsable GitHub host used in candidate locations
	WebURL = "https://github.com"
	// DefaultTimeout bounds every single request
	DefaultTimeout = 10 * time.Second
	// UserAgent identifies findskill to GitHub
	UserAgent = "findskill"
)

// Client wraps the GitHub API client with raw content access
type Client struct {
	client     *github.Client
	httpClient *http.Client
	rawURL     string
	attempts   uint
	retryDelay time.Duration
}

type clientOptions struct {
	apiURL     string
	rawURL     string
	timeout    time.Duration
	attempts   uint
	retryDelay time.Duration
	transport  http.RoundTripper
}

// Option configures a Client
type Option func(*clientOptions)

// WithAPIURL points the client at a different REST endpoint
func WithAPIURL(apiURL string) Option {
	return func(o *clientOptions) {
		o.apiURL = apiURL
	}
}

// WithRawURL points raw content fetches at a different host
func WithRawURL(rawURL string) Option {
	return func(o *clientOptions) {
		o.rawURL = rawURL
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = timeout
	}
}

// WithRetry sets how many times a call is attempted when GitHub answers with
// a server error, and the pause between attempts. One attempt disables retries.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(o *clientOptions) {
		if attempts < 1 {
			attempts = 1
		}
		o.attempts = uint(attempts)
		o.retryDelay = delay
	}
}

// WithTransport replaces the underlying round tripper
func WithTransport(rt http.RoundTripper) Option {
	return func(o *clientOptions) {
		o.transport = rt
	}
}

// NewClient creates a GitHub client. An empty token yields an
// unauthenticated client subject to the lower anonymous rate limits.
func NewClient(ctx context.Context, token string, opts ...Option) (*Client, error) {
	log := logger.G(ctx)

	o := &clientOptions{
		apiURL:     DefaultAPIURL,
		rawURL:     DefaultRawURL,
		timeout:    DefaultTimeout,
		attempts:   1,
		retryDelay: 500 * time.Millisecond,
		transport:  http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(o)
	}

	transport := o.transport
	if token == "" {
		log.Info("No GitHub token provided - API rate limits will be restricted")
	} else {
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
			Base:   transport,
		}
		log.Debug("GitHub client initialized with authentication")
	}

	httpClient := &http.Client{
		Timeout:   o.timeout,
		Transport: transport,
	}

	client := github.NewClient(httpClient)
	client.UserAgent = UserAgent

	baseURL, err := url.Parse(withTrailingSlash(o.apiURL))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid GitHub API URL %q", o.apiURL)
	}
	client.BaseURL = baseURL

	if _, err := url.Parse(o.rawURL); err != nil {
		return nil, errors.Wrapf(err, "invalid raw content URL %q", o.rawURL)
	}

	return &Client{
		client:     client,
		httpClient: httpClient,
		rawURL:     withTrailingSlash(o.rawURL),
		attempts:   o.attempts,
		retryDelay: o.retryDelay,
	}, nil
}

// SplitRepo splits an "owner/name" identifier.
func SplitRepo(fullName string) (owner, repo string, err error) {
	owner, repo, found := strings.Cut(strings.Trim(fullName, "/"), "/")
	if !found || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", errors.Errorf("invalid repository %q, expected owner/name", fullName)
	}
	return owner, repo, nil
}

func withTrailingSlash(u string) string {
	if strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}
