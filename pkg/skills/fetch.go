package skills

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"regexp"

	"github.com/pkg/errors"

	"github.com/jingkaihe/findskill/pkg/logger"
)

var (
	// ErrDocumentNotFound is returned when a local skill has no SKILL.md
	ErrDocumentNotFound = errors.New("SKILL.md not found")
	// ErrUnfetchable is returned for locations that cannot be mapped to raw content
	ErrUnfetchable = errors.New("location cannot be fetched")

	repoRootPattern = regexp.MustCompile(`^https://github\.com/([^/]+)/([^/]+?)/?$`)
	refPathPattern  = regexp.MustCompile(`^https://github\.com/([^/]+)/([^/]+)/(blob|tree)/([^/]+)/(.+)$`)
)

// RawFetcher retrieves a file from the raw content host
type RawFetcher interface {
	FetchRaw(ctx context.Context, owner, repo, ref, path string) (string, error)
}

// RawRef addresses a file on the raw content host.
type RawRef struct {
	Owner string
	Repo  string
	Ref   string
	Path  string
}

// ParseRawRef maps a browsable GitHub URL to the SKILL.md it refers to.
// Two shapes are recognised: a bare repository root, which assumes the main
// branch, and a blob or tree URL, which keeps its ref.
func ParseRawRef(location string) (RawRef, bool) {
	if m := repoRootPattern.FindStringSubmatch(location); m != nil {
		return RawRef{Owner: m[1], Repo: m[2], Ref: "main", Path: SkillFileName}, true
	}

	if m := refPathPattern.FindStringSubmatch(location); m != nil {
		p := m[5]
		if m[3] == "tree" && path.Base(p) != SkillFileName {
			p = path.Join(p, SkillFileName)
		}
		return RawRef{Owner: m[1], Repo: m[2], Ref: m[4], Path: p}, true
	}

	return RawRef{}, false
}

// alternate swaps between the two common default branch names.
func (r RawRef) alternate() (RawRef, bool) {
	switch r.Ref {
	case "main":
		r.Ref = "master"
	case "master":
		r.Ref = "main"
	default:
		return r, false
	}
	return r, true
}

// Fetcher retrieves the full SKILL.md of a Candidate for display.
type Fetcher struct {
	raw RawFetcher
}

// NewFetcher creates a Fetcher. raw may be nil, in which case only local
// candidates can be fetched.
func NewFetcher(raw RawFetcher) *Fetcher {
	return &Fetcher{raw: raw}
}

// Fetch returns the SKILL.md content of c.
func (f *Fetcher) Fetch(ctx context.Context, c Candidate) (string, error) {
	if c.Source.IsLocal() {
		return readLocalDocument(c.Location)
	}

	ref, ok := ParseRawRef(c.Location)
	if !ok || f.raw == nil {
		return "", errors.Wrapf(ErrUnfetchable, "%s", c.Location)
	}

	content, err := f.raw.FetchRaw(ctx, ref.Owner, ref.Repo, ref.Ref, ref.Path)
	if err == nil {
		return content, nil
	}

	if alt, ok := ref.alternate(); ok {
		logger.G(ctx).WithError(err).
			WithField("location", c.Location).
			WithField("ref", alt.Ref).
			Debug("retrying fetch on alternate default branch")
		if content, altErr := f.raw.FetchRaw(ctx, alt.Owner, alt.Repo, alt.Ref, alt.Path); altErr == nil {
			return content, nil
		}
	}

	return "", errors.Wrapf(err, "failed to fetch %s", c.Location)
}

func readLocalDocument(dir string) (string, error) {
	content, err := os.ReadFile(filepath.Join(dir, SkillFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrapf(ErrDocumentNotFound, "%s", dir)
		}
		return "", errors.Wrap(err, "failed to read skill file")
	}
	return string(content), nil
}
