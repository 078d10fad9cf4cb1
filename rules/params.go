// Package rules implements named generation-parameter presets ("rules")
// and their resolution into one effective parameter set.
//
// A rule is a flat mapping from parameter name to a string, number, or
// boolean value. Rules come from two places: a built-in set compiled into
// the binary, and user-defined YAML files under the per-user config
// directory. A user rule shadows a built-in rule of the same name.
package rules

import "sort"

// UnsetValue is the sentinel a later rule can assign to a key to delete it
// from the merged parameter set instead of overriding it.
const UnsetValue = "unset"

// reservedKeys are consumed client-side and must never reach the backend.
// 'rounding' and 'fix_resolution' drive aspect-ratio math; 'host' and
// 'port' address the server itself; 'swarm_version' appears in recovered
// image metadata and generates server-side warnings if submitted back.
var reservedKeys = []string{
	"swarm_version",
	"rounding",
	"fix_resolution",
	"host",
	"port",
}

// Params is one flat set of generation parameters. Values are the YAML
// scalar kinds: string, int, float64, or bool. Merging never coerces
// types; a later string value simply replaces an earlier numeric one.
type Params map[string]any

// Clone returns a shallow copy. Values are scalars, so a shallow copy is
// a full copy.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Keys returns the parameter names in sorted order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// StripReserved removes the client-side-only keys in place and returns p.
func (p Params) StripReserved() Params {
	for _, k := range reservedKeys {
		delete(p, k)
	}
	return p
}

// Merge merges parameter sets key-wise, last write wins. A value equal to
// UnsetValue deletes a previously merged key. The inputs are not modified.
func Merge(sets ...Params) Params {
	out := make(Params)
	for _, set := range sets {
		for k, v := range set {
			if s, ok := v.(string); ok && s == UnsetValue {
				delete(out, k)
				continue
			}
			out[k] = v
		}
	}
	return out
}

// Rule is a named, immutable parameter preset.
type Rule struct {
	// Name identifies the rule in the store.
	Name string

	// Params is the rule body. Callers must not mutate it; use Clone.
	Params Params

	// Builtin is true for rules compiled into the binary.
	Builtin bool
}
