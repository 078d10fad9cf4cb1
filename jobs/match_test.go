package jobs

import (
	"strings"
	"testing"
)

func TestSubstringMatch(t *testing.T) {
	models := []string{
		"sd_xl_base_1.0.safetensors",
		"sd_xl_refiner_1.0.safetensors",
		"z_image_turbo_bf16.safetensors",
	}

	tests := []struct {
		name    string
		item    string
		want    string
		wantErr string
	}{
		{
			name: "unique substring",
			item: "turbo",
			want: "z_image_turbo_bf16.safetensors",
		},
		{
			name: "case insensitive",
			item: "TURBO",
			want: "z_image_turbo_bf16.safetensors",
		},
		{
			name:    "ambiguous",
			item:    "sd_xl",
			wantErr: "ambiguous",
		},
		{
			name:    "no match",
			item:    "flux",
			wantErr: "not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SubstringMatch(tt.item, models, "model")
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("SubstringMatch() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("SubstringMatch() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestApplyLoras(t *testing.T) {
	resolve := func(name string) (string, error) {
		return "LoRA/" + name + ".safetensors", nil
	}

	t.Run("fresh params", func(t *testing.T) {
		params := map[string]any{}
		err := ApplyLoras(params, []string{"detail", "zelda:0.8:base", "grain:0.5"}, resolve)
		if err != nil {
			t.Fatalf("ApplyLoras() error: %v", err)
		}

		loras := params["loras"].([]string)
		if len(loras) != 3 || loras[1] != "LoRA/zelda.safetensors" {
			t.Errorf("loras = %v", loras)
		}
		weights := params["loraweights"].([]string)
		if weights[0] != "1" || weights[1] != "0.8" || weights[2] != "0.5" {
			t.Errorf("loraweights = %v", weights)
		}
		confine := params["lorasectionconfinement"].([]string)
		if confine[0] != "0" || confine[1] != "5" || confine[2] != "0" {
			t.Errorf("lorasectionconfinement = %v", confine)
		}
	})

	t.Run("no section confinement when unused", func(t *testing.T) {
		params := map[string]any{}
		if err := ApplyLoras(params, []string{"detail"}, resolve); err != nil {
			t.Fatalf("ApplyLoras() error: %v", err)
		}
		if _, ok := params["lorasectionconfinement"]; ok {
			t.Error("confinement set for a global-only LoRA")
		}
	})

	t.Run("re-gen dedupe", func(t *testing.T) {
		params := map[string]any{
			"loras":       []any{"LoRA/detail.safetensors"},
			"loraweights": []any{"0.7"},
		}
		if err := ApplyLoras(params, []string{"detail:0.9"}, resolve); err != nil {
			t.Fatalf("ApplyLoras() error: %v", err)
		}
		loras := params["loras"].([]string)
		if len(loras) != 1 {
			t.Errorf("duplicate LoRA added: %v", loras)
		}
	})

	t.Run("refine section", func(t *testing.T) {
		params := map[string]any{}
		if err := ApplyLoras(params, []string{"x:0.5:refine"}, resolve); err != nil {
			t.Fatalf("ApplyLoras() error: %v", err)
		}
		confine := params["lorasectionconfinement"].([]string)
		if confine[0] != "1" {
			t.Errorf("confinement = %v, want [1]", confine)
		}
	})
}

func TestApplyLUT(t *testing.T) {
	resolve := func(name string) (string, error) {
		return "kodak.cube", nil
	}

	params := map[string]any{}
	if err := ApplyLUT(params, "kodak:0.6", resolve); err != nil {
		t.Fatalf("ApplyLUT() error: %v", err)
	}
	if params["lutname"] != "kodak.cube" {
		t.Errorf("lutname = %v", params["lutname"])
	}
	if params["lutlutstrength"] != "0.6" {
		t.Errorf("lutlutstrength = %v", params["lutlutstrength"])
	}
	if params["lutlogspace"] != false {
		t.Errorf("lutlogspace = %v", params["lutlogspace"])
	}

	empty := map[string]any{}
	if err := ApplyLUT(empty, "", resolve); err != nil {
		t.Fatalf("ApplyLUT() with empty arg error: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("empty arg modified params: %v", empty)
	}
}

func TestValueHelpers(t *testing.T) {
	if !truthy(true) || !truthy("true") || !truthy("1") || !truthy(1) {
		t.Error("truthy() false negatives")
	}
	if truthy(false) || truthy("false") || truthy("") || truthy(nil) || truthy(0) {
		t.Error("truthy() false positives")
	}

	if n, ok := asInt(float64(1024)); !ok || n != 1024 {
		t.Errorf("asInt(float64) = %d, %v", n, ok)
	}
	if n, ok := asInt("768"); !ok || n != 768 {
		t.Errorf("asInt(string) = %d, %v", n, ok)
	}
	if _, ok := asInt("wide"); ok {
		t.Error("asInt() accepted a non-number")
	}

	if f, ok := asFloat("2.0"); !ok || f != 2.0 {
		t.Errorf("asFloat(string) = %v, %v", f, ok)
	}

	got := asStringSlice([]any{"a", "b"})
	if len(got) != 2 || got[0] != "a" {
		t.Errorf("asStringSlice([]any) = %v", got)
	}
	if got := asStringSlice("a,b"); len(got) != 2 || got[1] != "b" {
		t.Errorf("asStringSlice(string) = %v", got)
	}
	if got := asStringSlice(nil); got != nil {
		t.Errorf("asStringSlice(nil) = %v", got)
	}
}
