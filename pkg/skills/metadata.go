package skills

import "strings"

const frontmatterDelimiter = "---"

// Metadata holds the flat key/value pairs of a SKILL.md frontmatter block.
type Metadata map[string]string

// ParseMetadata extracts the frontmatter block at the head of content.
//
// Only unindented "key: value" lines are read; nested YAML is ignored on
// purpose. The block must open at byte zero and be closed by the next
// delimiter, and it must carry a non-empty name. Otherwise ok is false.
func ParseMetadata(content string) (Metadata, bool) {
	if !strings.HasPrefix(content, frontmatterDelimiter) {
		return nil, false
	}

	rest := content[len(frontmatterDelimiter):]
	end := strings.Index(rest, frontmatterDelimiter)
	if end == -1 {
		return nil, false
	}

	meta := Metadata{}
	for _, line := range strings.Split(rest[:end], "\n") {
		if line == "" || line[0] == ' ' || line[0] == '\t' {
			continue
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		meta[key] = unquote(strings.TrimSpace(value))
	}

	if meta.Name() == "" {
		return nil, false
	}
	return meta, true
}

// unquote strips one layer of matching single or double quotes.
func unquote(v string) string {
	if len(v) >= 2 {
		first, last := v[0], v[len(v)-1]
		if first == last && (first == '"' || first == '\'') {
			return v[1 : len(v)-1]
		}
	}
	return v
}

// Name returns the skill name
func (m Metadata) Name() string {
	return m["name"]
}

// Description returns the skill description, empty when absent
func (m Metadata) Description() string {
	return m["description"]
}

// Matches reports whether query occurs, case-insensitively, in the name or
// description.
func (m Metadata) Matches(query string) bool {
	searchable := strings.ToLower(m.Name() + " " + m.Description())
	return strings.Contains(searchable, strings.ToLower(query))
}

// Candidate builds a Candidate from the metadata with the description capped.
func (m Metadata) Candidate(location string, source Source) Candidate {
	return Candidate{
		Name:        m.Name(),
		Description: Truncate(m.Description(), MaxDescriptionLength, ""),
		Location:    location,
		Source:      source,
	}
}
