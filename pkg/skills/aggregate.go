package skills

import (
	"slices"
	"sort"
	"strings"
)

// Aggregate merges candidates from every source into the final result list.
//
// Candidates are ordered by source priority, keeping each source's own
// order, then deduplicated by lowercased name and cut to limit. A limit of
// zero or less means DefaultLimit. Dedup happens before truncation.
func Aggregate(candidates []Candidate, limit int) []Candidate {
	if limit <= 0 {
		limit = DefaultLimit
	}

	ordered := slices.Clone(candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Source.Priority() < ordered[j].Source.Priority()
	})

	deduped := Dedupe(ordered)
	if len(deduped) > limit {
		deduped = deduped[:limit]
	}
	return deduped
}

// Dedupe collapses candidates sharing a lowercased name. The first seen
// entry is kept, except that a local candidate replaces a remote one in
// place, whatever order they arrive in.
func Dedupe(candidates []Candidate) []Candidate {
	index := make(map[string]int, len(candidates))
	deduped := make([]Candidate, 0, len(candidates))

	for _, c := range candidates {
		key := strings.ToLower(c.Name)
		if i, seen := index[key]; seen {
			if c.Source.IsLocal() && !deduped[i].Source.IsLocal() {
				deduped[i] = c
			}
			continue
		}
		index[key] = len(deduped)
		deduped = append(deduped, c)
	}
	return deduped
}
