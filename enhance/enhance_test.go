package enhance

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestSplitSpan(t *testing.T) {
	tests := []struct {
		name       string
		prompt     string
		wantPre    string
		wantInner  string
		wantSuffix string
		wantFound  bool
	}{
		{
			name:      "no markers",
			prompt:    "a cat on a mat",
			wantInner: "a cat on a mat",
		},
		{
			name:       "marked span",
			prompt:     "masterpiece, @< a cat on a mat >@ 8k, detailed",
			wantPre:    "masterpiece,",
			wantInner:  "a cat on a mat",
			wantSuffix: "8k, detailed",
			wantFound:  true,
		},
		{
			name:      "span only",
			prompt:    "@<just this>@",
			wantInner: "just this",
			wantFound: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pre, inner, suffix, found := SplitSpan(tt.prompt)
			if found != tt.wantFound {
				t.Fatalf("found = %v, want %v", found, tt.wantFound)
			}
			if pre != tt.wantPre || inner != tt.wantInner || suffix != tt.wantSuffix {
				t.Errorf("SplitSpan() = (%q, %q, %q), want (%q, %q, %q)",
					pre, inner, suffix, tt.wantPre, tt.wantInner, tt.wantSuffix)
			}
		})
	}
}

func TestCleanResponse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "think block stripped",
			in:   "let me reason about this\n</think>\nA majestic cat.",
			want: "A majestic cat.",
		},
		{
			name: "seed think block stripped",
			in:   "reasoning</seed:think>A cat.",
			want: "A cat.",
		},
		{
			name: "multiline flattened",
			in:   "  A cat\non a mat.  ",
			want: "A cat on a mat.",
		},
		{
			name: "plain response untouched",
			in:   "A cat on a mat.",
			want: "A cat on a mat.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanResponse(tt.in); got != tt.want {
				t.Errorf("CleanResponse(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoadPrompts(t *testing.T) {
	t.Run("defaults only", func(t *testing.T) {
		p, err := LoadPrompts("")
		if err != nil {
			t.Fatalf("LoadPrompts() error: %v", err)
		}
		text, ok := p.Get(DefaultPromptName)
		if !ok || !strings.Contains(text, "Prompt optimizer") {
			t.Error("built-in default prompt missing")
		}
		if len(p.Names()) != 0 {
			t.Errorf("Names() = %v, want empty", p.Names())
		}
	})

	t.Run("user prompts", func(t *testing.T) {
		dir := t.TempDir()
		content := "anime: |\n  Rewrite as an anime scene.\nterse: |\n  Shorten the prompt.\n"
		if err := os.WriteFile(filepath.Join(dir, "prompts.yaml"), []byte(content), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}

		p, err := LoadPrompts(dir)
		if err != nil {
			t.Fatalf("LoadPrompts() error: %v", err)
		}
		if got := p.Names(); !reflect.DeepEqual(got, []string{"anime", "terse"}) {
			t.Errorf("Names() = %v", got)
		}
		if text, ok := p.Get("anime"); !ok || !strings.Contains(text, "anime scene") {
			t.Errorf("Get(anime) = %q, %v", text, ok)
		}
	})

	t.Run("missing file is fine", func(t *testing.T) {
		if _, err := LoadPrompts(t.TempDir()); err != nil {
			t.Errorf("LoadPrompts() error: %v", err)
		}
	})
}

func TestEnhanceLine(t *testing.T) {
	var gotSystem, gotUser string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		gotSystem = req.Messages[0].Content
		gotUser = req.Messages[1].Content

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "thinking...\n</think>\nA detailed cat\nportrait."}},
			},
		})
	}))
	defer srv.Close()

	e, err := New(Config{BaseURL: srv.URL + "/v1", Model: "test-model"})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	got, err := e.EnhanceLine(context.Background(), "SYSTEM", "prefix @<a cat>@ suffix")
	if err != nil {
		t.Fatalf("EnhanceLine() error: %v", err)
	}

	if gotSystem != "SYSTEM" {
		t.Errorf("system prompt = %q", gotSystem)
	}
	if gotUser != "a cat" {
		t.Errorf("user message = %q, want just the marked span", gotUser)
	}
	if got != "prefix A detailed cat portrait. suffix" {
		t.Errorf("EnhanceLine() = %q", got)
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(Config{Model: "m"}); err == nil {
		t.Error("New() without base URL should fail")
	}
	if _, err := New(Config{BaseURL: "http://localhost:1234/v1"}); err == nil {
		t.Error("New() without model should fail")
	}
}
