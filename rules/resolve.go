package rules

// Resolve merges a base rule, overlay rules, and explicit overrides into
// one effective parameter set.
//
// Precedence, lowest to highest:
//  1. the base rule (user layer beats built-in on a name collision)
//  2. overlays, in the order given (later overlays win on key collision)
//  3. explicit command-line key=value overrides
//
// All rule names are validated before any merging happens: an unknown name
// fails with core.NotFoundError and no partial mapping is ever returned.
// Merging is key-wise last-write-wins with no type coercion; the special
// value "unset" deletes a previously merged key.
//
// base may be empty to start from nothing (overrides-only invocations).
func (s *Store) Resolve(base string, overlays []string, overrides map[string]string) (Params, error) {
	var seed Params
	if base != "" {
		rule, err := s.Get(base)
		if err != nil {
			return nil, err
		}
		seed = rule.Params
	}
	return s.ResolveOnto(seed, overlays, overrides)
}

// ResolveOnto is Resolve with an existing parameter set (typically
// recovered from a source image's metadata) as the lowest layer. An "unset"
// value in an overlay deletes the corresponding seed key.
func (s *Store) ResolveOnto(seed Params, overlays []string, overrides map[string]string) (Params, error) {
	// Validate every overlay before building the result, so a bad name in
	// the middle of the list cannot leave a half-applied merge.
	overlayRules := make([]Rule, 0, len(overlays))
	for _, name := range overlays {
		rule, err := s.Get(name)
		if err != nil {
			return nil, err
		}
		overlayRules = append(overlayRules, rule)
	}

	sets := make([]Params, 0, len(overlayRules)+2)
	if seed != nil {
		sets = append(sets, seed)
	}
	for _, rule := range overlayRules {
		sets = append(sets, rule.Params)
	}
	if len(overrides) > 0 {
		explicit := make(Params, len(overrides))
		for k, v := range overrides {
			explicit[k] = v
		}
		sets = append(sets, explicit)
	}

	return Merge(sets...), nil
}
