// Package auth resolves the optional GitHub token used for remote search.
package auth

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/jingkaihe/findskill/pkg/logger"
)

// TokenKeys are looked up in order, both in the .env file and the environment.
var TokenKeys = []string{"GITHUB_TOKEN", "GH_TOKEN"}

const (
	// OriginNone is reported when neither a .env file nor the environment
	// holds a token
	OriginNone = "none"
	// OriginEnv is reported when the token came from the process environment
	OriginEnv = "environment"
)

// DefaultEnvFileLocations returns the .env files consulted for a token, most
// specific first: the working directory, the user's ~/.agent-skills, the
// directory two levels above the executable and the executable's own directory.
func DefaultEnvFileLocations() []string {
	var locations []string
	if cwd, err := os.Getwd(); err == nil {
		locations = append(locations, filepath.Join(cwd, ".env"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(home, ".agent-skills", ".env"))
	}
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		locations = append(locations,
			filepath.Join(dir, "..", "..", ".env"),
			filepath.Join(dir, ".env"),
		)
	}
	return locations
}

// TokenResolver looks up a GitHub token once and memoizes the outcome,
// including the outcome that no token exists.
type TokenResolver struct {
	locations []string
	lookupEnv func(string) (string, bool)
	readFile  func(filenames ...string) (map[string]string, error)

	mu       sync.Mutex
	resolved bool
	token    string
	origin   string
}

// TokenOption configures a TokenResolver
type TokenOption func(*TokenResolver)

// WithEnvFiles replaces the .env files searched for a token
func WithEnvFiles(locations ...string) TokenOption {
	return func(r *TokenResolver) {
		r.locations = locations
	}
}

// WithLookupEnv replaces the process environment lookup
func WithLookupEnv(fn func(string) (string, bool)) TokenOption {
	return func(r *TokenResolver) {
		r.lookupEnv = fn
	}
}

// WithEnvFileReader replaces the .env parser
func WithEnvFileReader(fn func(filenames ...string) (map[string]string, error)) TokenOption {
	return func(r *TokenResolver) {
		r.readFile = fn
	}
}

// NewTokenResolver creates a resolver using the default locations, the
// process environment and ReadEnvFile.
func NewTokenResolver(opts ...TokenOption) *TokenResolver {
	r := &TokenResolver{
		locations: DefaultEnvFileLocations(),
		lookupEnv: os.LookupEnv,
		readFile:  ReadEnvFile,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Token returns the GitHub token and whether one was found. Only the first
// existing .env file is read; the environment is consulted after it.
func (r *TokenResolver) Token(ctx context.Context) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.resolved {
		r.token, r.origin = r.resolve(ctx)
		r.resolved = true
	}
	return r.token, r.token != ""
}

// Origin reports where the token came from: a .env path, "environment" or
// "none". It is empty until Token has been called.
func (r *TokenResolver) Origin() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.origin
}

func (r *TokenResolver) resolve(ctx context.Context) (string, string) {
	log := logger.G(ctx)

	if path := r.firstEnvFile(); path != "" {
		values, err := r.readFile(path)
		if err != nil {
			log.WithError(err).WithField("path", path).Warn("failed to read env file")
		} else if token := firstValue(values); token != "" {
			return token, path
		}
	}

	for _, key := range TokenKeys {
		if token, ok := r.lookupEnv(key); ok && token != "" {
			return token, OriginEnv
		}
	}
	return "", OriginNone
}

func (r *TokenResolver) firstEnvFile() string {
	for _, location := range r.locations {
		if info, err := os.Stat(location); err == nil && !info.IsDir() {
			return location
		}
	}
	return ""
}

func firstValue(values map[string]string) string {
	for _, key := range TokenKeys {
		if v := values[key]; v != "" {
			return v
		}
	}
	return ""
}

// ReadEnvFile parses KEY=value lines with godotenv. Blank lines, comments and
// lines that godotenv rejects are skipped instead of discarding the file.
func ReadEnvFile(filenames ...string) (map[string]string, error) {
	values := map[string]string{}
	for _, filename := range filenames {
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", filename)
		}
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") || !strings.Contains(line, "=") {
				continue
			}
			parsed, err := godotenv.Unmarshal(line)
			if err != nil {
				continue
			}
			for k, v := range parsed {
				values[k] = v
			}
		}
	}
	return values, nil
}
