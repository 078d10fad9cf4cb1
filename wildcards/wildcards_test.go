package wildcards

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func testManager(t *testing.T, files map[string]string) *Manager {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager() error: %v", err)
	}
	return m
}

func TestManagerLoading(t *testing.T) {
	m := testManager(t, map[string]string{
		"colors.txt":        "red\ngreen\n\n# a comment\nblue\n",
		"animals/cats.txt":  "tabby\nsiamese\n",
		"notes.md":          "ignored\n",
	})

	wantNames := []string{"animals/cats", "colors"}
	if got := m.Names(); !reflect.DeepEqual(got, wantNames) {
		t.Errorf("Names() = %v, want %v", got, wantNames)
	}

	wantColors := []string{"red", "green", "blue"}
	if got := m.Values("colors"); !reflect.DeepEqual(got, wantColors) {
		t.Errorf("Values(colors) = %v, want %v", got, wantColors)
	}
	if m.Has("notes") {
		t.Error("non-txt file loaded as a collection")
	}
}

func TestManagerMissingDir(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("NewManager() on missing dir error: %v", err)
	}
	if len(m.Names()) != 0 {
		t.Errorf("Names() = %v, want empty", m.Names())
	}
}

func TestGenerateResolvesWildcards(t *testing.T) {
	m := testManager(t, map[string]string{
		"colors.txt": "red\nblue\n",
	})
	g := NewGenerator(m, 42)

	out, err := g.Generate("a __colors__ door", 10)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if len(out) != 10 {
		t.Fatalf("got %d prompts, want 10", len(out))
	}
	for _, prompt := range out {
		if prompt != "a red door" && prompt != "a blue door" {
			t.Errorf("unexpected expansion %q", prompt)
		}
	}
}

func TestGenerateDeterministicWithSeed(t *testing.T) {
	files := map[string]string{"colors.txt": "red\nblue\ngreen\nyellow\n"}

	first, err := NewGenerator(testManager(t, files), 7).Generate("__colors__ {matte|glossy}", 20)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	second, err := NewGenerator(testManager(t, files), 7).Generate("__colors__ {matte|glossy}", 20)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("same seed produced different output")
	}
}

func TestGenerateRecursive(t *testing.T) {
	m := testManager(t, map[string]string{
		"outer.txt": "__inner__ house\n",
		"inner.txt": "tiny\n",
	})
	out, err := NewGenerator(m, 1).Generate("__outer__", 1)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if out[0] != "tiny house" {
		t.Errorf("expansion = %q, want 'tiny house'", out[0])
	}
}

func TestGenerateUnknownWildcard(t *testing.T) {
	m := testManager(t, nil)
	if _, err := NewGenerator(m, 1).Generate("__nothing__", 1); err == nil {
		t.Error("Generate() with unknown wildcard should fail")
	}
}

func TestGenerateSelfReferenceFails(t *testing.T) {
	m := testManager(t, map[string]string{"loop.txt": "__loop__\n"})
	if _, err := NewGenerator(m, 1).Generate("__loop__", 1); err == nil {
		t.Error("Generate() on self-referencing collection should fail")
	}
}

func TestGenerateNestedVariants(t *testing.T) {
	m := testManager(t, nil)
	out, err := NewGenerator(m, 3).Generate("{a|{b|c}}", 20)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	for _, got := range out {
		if got != "a" && got != "b" && got != "c" {
			t.Errorf("unexpected variant expansion %q", got)
		}
	}
}

func TestExpansions(t *testing.T) {
	m := testManager(t, map[string]string{
		"colors.txt": "red\nblue\n",
	})

	got, err := m.Expansions("a {big|small} __colors__ dog")
	if err != nil {
		t.Fatalf("Expansions() error: %v", err)
	}
	want := []string{
		"a big blue dog",
		"a big red dog",
		"a small blue dog",
		"a small red dog",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expansions() = %v, want %v", got, want)
	}
}

func TestNamesWithRefs(t *testing.T) {
	m := testManager(t, map[string]string{
		"plain.txt":  "red\n",
		"nested.txt": "a __plain__ thing\nplain value\n",
	})

	refs := m.NamesWithRefs()
	if _, ok := refs["plain"]; ok {
		t.Error("collection without references listed")
	}
	if got := refs["nested"]; len(got) != 1 || !strings.Contains(got[0], "__plain__") {
		t.Errorf("refs[nested] = %v", got)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "space before comma",
			in:   "red , blue",
			want: "red, blue",
		},
		{
			name: "missing space after comma",
			in:   "red,blue",
			want: "red, blue",
		},
		{
			name: "collapsed spaces",
			in:   "red   blue",
			want: "red blue",
		},
		{
			name: "doubled periods",
			in:   "end. . next",
			want: "end. next",
		},
		{
			name: "newlines flattened",
			in:   "line one \nline two",
			want: "line one line two",
		},
		{
			name: "sentence capitalization",
			in:   "first. second",
			want: "first. Second",
		},
		{
			name: "missing space after period",
			in:   "first.second",
			want: "first. Second",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
