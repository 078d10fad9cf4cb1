package wildcards

import (
	"fmt"
	"math/rand"
	"regexp"
	"sort"
	"strings"
)

var (
	wildcardRe = regexp.MustCompile(`__([a-zA-Z0-9_./-]+?)__`)
	variantRe  = regexp.MustCompile(`\{[^{}]*\}`)
)

// maxDepth bounds wildcard recursion so a self-referencing collection
// fails instead of looping.
const maxDepth = 32

// Generator produces random expansions of a prompt template.
type Generator struct {
	m   *Manager
	rng *rand.Rand
}

// NewGenerator returns a Generator drawing from m. The seed makes runs
// reproducible; pass a time-based seed for variety.
func NewGenerator(m *Manager, seed int64) *Generator {
	return &Generator{m: m, rng: rand.New(rand.NewSource(seed))}
}

// Generate expands the prompt count times, each time resolving every
// __wildcard__ and {a|b} variant independently at random.
func (g *Generator) Generate(prompt string, count int) ([]string, error) {
	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		expanded, err := g.expand(prompt, 0)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded)
	}
	return out, nil
}

func (g *Generator) expand(text string, depth int) (string, error) {
	if depth > maxDepth {
		return "", fmt.Errorf("wildcards: recursion too deep expanding %q", text)
	}

	// Innermost variants first, so nested {a|{b|c}} resolves inside out.
	for variantRe.MatchString(text) {
		text = variantRe.ReplaceAllStringFunc(text, func(match string) string {
			options := strings.Split(match[1:len(match)-1], "|")
			return options[g.rng.Intn(len(options))]
		})
	}

	var expandErr error
	replaced := wildcardRe.ReplaceAllStringFunc(text, func(match string) string {
		name := strings.Trim(match, "_")
		values := g.m.Values(name)
		if len(values) == 0 {
			expandErr = fmt.Errorf("wildcards: no collection named '%s'", name)
			return match
		}
		return values[g.rng.Intn(len(values))]
	})
	if expandErr != nil {
		return "", expandErr
	}

	// Chosen values may themselves contain wildcards or variants.
	if replaced != text {
		return g.expand(replaced, depth+1)
	}
	return replaced, nil
}

// Expansions returns every unique expansion of the expression,
// recursively resolving wildcards and variants combinatorially. Order is
// sorted for stable output.
func (m *Manager) Expansions(expr string) ([]string, error) {
	seen := make(map[string]bool)
	if err := m.expandAll(expr, 0, seen); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

func (m *Manager) expandAll(text string, depth int, seen map[string]bool) error {
	if depth > maxDepth {
		return fmt.Errorf("wildcards: recursion too deep expanding %q", text)
	}

	if loc := variantRe.FindStringIndex(text); loc != nil {
		body := text[loc[0]+1 : loc[1]-1]
		for _, option := range strings.Split(body, "|") {
			if err := m.expandAll(text[:loc[0]]+option+text[loc[1]:], depth+1, seen); err != nil {
				return err
			}
		}
		return nil
	}

	if loc := wildcardRe.FindStringSubmatchIndex(text); loc != nil {
		name := text[loc[2]:loc[3]]
		values := m.Values(name)
		if len(values) == 0 {
			return fmt.Errorf("wildcards: no collection named '%s'", name)
		}
		for _, value := range values {
			if err := m.expandAll(text[:loc[0]]+value+text[loc[1]:], depth+1, seen); err != nil {
				return err
			}
		}
		return nil
	}

	seen[text] = true
	return nil
}
