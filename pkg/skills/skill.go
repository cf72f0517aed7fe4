// Package skills discovers Agent Skills across local directories and GitHub.
// A skill is a directory holding a SKILL.md file whose frontmatter names and
// describes it. Sources are searched in trust order and their matches merged
// into one deduplicated list where local skills always win.
package skills

import "unicode/utf8"

const (
	// SkillFileName is the metadata document every skill directory carries.
	SkillFileName = "SKILL.md"

	// MaxDescriptionLength caps descriptions at extraction time.
	MaxDescriptionLength = 300

	// DefaultLimit is the result cap used when the caller passes zero.
	DefaultLimit = 10
)

// Source tags where a Candidate was discovered.
type Source string

// Sources in descending trust order.
const (
	SourceLocal            Source = "local"
	SourceRemoteConfigured Source = "remote-configured"
	SourceRemoteTopic      Source = "remote-topic"
	SourceRemoteCode       Source = "remote-code"
)

var sourcePriority = map[Source]int{
	SourceLocal:            0,
	SourceRemoteConfigured: 1,
	SourceRemoteTopic:      2,
	SourceRemoteCode:       3,
}

// Priority returns the rank of the source; lower ranks are more trusted.
// Unknown sources sort last.
func (s Source) Priority() int {
	if p, ok := sourcePriority[s]; ok {
		return p
	}
	return len(sourcePriority)
}

// IsLocal reports whether the source is the local filesystem
func (s Source) IsLocal() bool {
	return s == SourceLocal
}

// Candidate is one discovered skill. It is passed by value and never mutated
// after construction.
type Candidate struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Location    string `json:"location" yaml:"location"` // absolute path or GitHub URL
	Source      Source `json:"source" yaml:"source"`
}

// Truncate shortens s to at most n runes. When suffix is non-empty and the
// string was cut, suffix is appended after the n runes.
func Truncate(s string, n int, suffix string) string {
	if n < 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + suffix
}
