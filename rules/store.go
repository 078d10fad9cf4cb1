package rules

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"swarmgen/core"
)

// builtinRules is the compiled-in rule set, mirroring the presets the tool
// ships with. See rules.yaml for the override story.
//
//go:embed rules.yaml
var builtinRules []byte

// DefaultRuleName is the special rule whose host/port keys seed the
// backend address. It is never submitted as generation parameters.
const DefaultRuleName = "default"

// Store holds the loaded built-in and user rules.
//
// Rules are immutable once loaded; Get returns defensive copies of the
// parameter maps so callers can merge freely.
type Store struct {
	builtin map[string]Rule
	user    map[string]Rule
}

// Load reads the built-in rule set plus any user rules under dir:
// dir/rules.yaml and dir/rules.d/*.yaml. A missing directory or file is
// not an error; malformed YAML is.
//
// Each file is a mapping of rule name to a flat key/value body.
func Load(dir string) (*Store, error) {
	builtin, err := parseRuleFile(builtinRules, true)
	if err != nil {
		// The embedded file is part of the build; failing to parse it is
		// a programming error, not a user error.
		return nil, fmt.Errorf("rules: built-in rule set is invalid: %w", err)
	}

	s := &Store{
		builtin: builtin,
		user:    make(map[string]Rule),
	}

	if dir == "" {
		return s, nil
	}

	paths := []string{filepath.Join(dir, "rules.yaml")}
	if extra, err := filepath.Glob(filepath.Join(dir, "rules.d", "*.yaml")); err == nil {
		sort.Strings(extra)
		paths = append(paths, extra...)
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("rules: reading %s: %w", path, err)
		}
		parsed, err := parseRuleFile(data, false)
		if err != nil {
			return nil, fmt.Errorf("rules: parsing %s: %w", path, err)
		}
		for name, rule := range parsed {
			// Later files win within the user layer, matching the sorted
			// load order of rules.d.
			s.user[name] = rule
		}
	}

	return s, nil
}

// parseRuleFile unmarshals one rule file: a mapping of rule name to flat
// parameter body.
func parseRuleFile(data []byte, builtin bool) (map[string]Rule, error) {
	var raw map[string]Params
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	out := make(map[string]Rule, len(raw))
	for name, params := range raw {
		if params == nil {
			params = make(Params)
		}
		out[name] = Rule{Name: name, Params: params, Builtin: builtin}
	}
	return out, nil
}

// Get returns the rule with the given name. A user rule shadows a built-in
// rule of the same name. Unknown names fail with core.NotFoundError.
func (s *Store) Get(name string) (Rule, error) {
	if rule, ok := s.user[name]; ok {
		return Rule{Name: rule.Name, Params: rule.Params.Clone(), Builtin: false}, nil
	}
	if rule, ok := s.builtin[name]; ok {
		return Rule{Name: rule.Name, Params: rule.Params.Clone(), Builtin: true}, nil
	}
	return Rule{}, core.ErrRuleNotFound(name)
}

// Has reports whether a rule with the given name exists in either layer.
func (s *Store) Has(name string) bool {
	_, inUser := s.user[name]
	_, inBuiltin := s.builtin[name]
	return inUser || inBuiltin
}

// Names returns all rule names, sorted, with shadowed built-ins listed
// once. The special 'default' rule is included.
func (s *Store) Names() []string {
	seen := make(map[string]bool)
	for name := range s.builtin {
		seen[name] = true
	}
	for name := range s.user {
		seen[name] = true
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultHost returns the host from the 'default' rule, or "" if unset.
func (s *Store) DefaultHost() string {
	return s.defaultString("host")
}

// DefaultPort returns the port from the 'default' rule, or "" if unset.
func (s *Store) DefaultPort() string {
	return s.defaultString("port")
}

func (s *Store) defaultString(key string) string {
	rule, err := s.Get(DefaultRuleName)
	if err != nil {
		return ""
	}
	switch v := rule.Params[key].(type) {
	case string:
		return v
	case int:
		return fmt.Sprintf("%d", v)
	default:
		return ""
	}
}
