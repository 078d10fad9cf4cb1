package jobs

import "strings"

// Section confinement codes the server understands.
const (
	confineGlobal = "0"
	confineBase   = "5"
	confineRefine = "1"
)

// ApplyLoras merges -l/--loras arguments into the parameter set.
//
// Each argument is a substring of a LoRA model name, optionally suffixed
// with ":<strength>" and a section restriction, e.g. "zelda:0.8:base".
// resolve maps the substring to a full model name (SubstringMatch against
// the server's LoRA list).
//
// On a re-generation the parameters may already carry LoRAs recovered
// from the source image; an argument naming one of those is skipped so
// the same LoRA is not applied twice.
func ApplyLoras(params map[string]any, loraArgs []string, resolve func(name string) (string, error)) error {
	if len(loraArgs) == 0 {
		return nil
	}

	loras := asStringSlice(params["loras"])
	weights := asStringSlice(params["loraweights"])

	for _, arg := range loraArgs {
		name, weight := arg, "1"
		if i := strings.Index(arg, ":"); i >= 0 {
			name, weight = arg[:i], arg[i+1:]
		}
		if containsString(loras, name) {
			continue
		}
		full, err := resolve(name)
		if err != nil {
			return err
		}
		loras = append(loras, full)
		weights = append(weights, weight)
	}

	// Confinement entries are only added for the new weights; entries
	// recovered from a source image keep their positions.
	confine := asStringSlice(params["lorasectionconfinement"])
	useConfine := len(confine) > 0
	for i := len(confine); i < len(weights); i++ {
		weight, section, found := strings.Cut(weights[i], ":")
		if !found {
			confine = append(confine, confineGlobal)
			continue
		}
		weights[i] = weight
		if section == "base" {
			confine = append(confine, confineBase)
		} else {
			confine = append(confine, confineRefine)
		}
		useConfine = true
	}

	params["loras"] = loras
	params["loraweights"] = weights
	if useConfine {
		params["lorasectionconfinement"] = confine
	}
	return nil
}

// ApplyLUT sets the PostRender LUT parameters from a "-L name[:strength]"
// argument. resolve maps the name substring to a full LUT name.
func ApplyLUT(params map[string]any, lutArg string, resolve func(name string) (string, error)) error {
	if lutArg == "" {
		return nil
	}
	name, strength := lutArg, "1.0"
	if i := strings.Index(lutArg, ":"); i >= 0 {
		name, strength = lutArg[:i], lutArg[i+1:]
	}
	full, err := resolve(name)
	if err != nil {
		return err
	}
	params["lutname"] = full
	params["lutlutstrength"] = strength
	params["lutlogspace"] = false
	return nil
}

// containsString reports whether any element of list contains the
// substring. Recovered LoRA lists hold full model paths while the
// argument is a substring, so equality is too strict here.
func containsString(list []string, substr string) bool {
	needle := strings.ToLower(substr)
	for _, item := range list {
		if strings.Contains(strings.ToLower(item), needle) {
			return true
		}
	}
	return false
}
