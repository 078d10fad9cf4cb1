// Package jobs turns prompts and source images into generation requests
// and submits them sequentially: build the effective parameters, name the
// output, call the backend, post-process, save.
package jobs

import (
	"fmt"
	"strings"
)

// SubstringMatch resolves item to exactly one element of candidates by
// case-insensitive substring match. Zero matches and multiple matches
// are both errors; the ambiguous case lists every candidate hit so the
// user can narrow the substring.
func SubstringMatch(item string, candidates []string, kind string) (string, error) {
	needle := strings.ToLower(item)
	var matches []string
	for _, c := range candidates {
		if strings.Contains(strings.ToLower(c), needle) {
			matches = append(matches, c)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", fmt.Errorf("jobs: %s '%s' not found on server", kind, item)
	default:
		return "", fmt.Errorf("jobs: ambiguous %s '%s', matches:\n  %s",
			kind, item, strings.Join(matches, "\n  "))
	}
}
