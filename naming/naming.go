// Package naming produces output filenames for generated and converted
// images: template expansion plus three allocation modes (sequence,
// fixed set, pass-through).
package naming

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"swarmgen/core"
)

// DefaultTemplate is the filename template used when none is given.
const DefaultTemplate = "$pre-$set-$seq.$ext"

// Default values for the template variables.
const (
	DefaultPre = "genai"
	DefaultSet = "img"
	DefaultPad = 4
)

var (
	hasSeqRe = regexp.MustCompile(`\$\{?seq\}?`)
	hasExtRe = regexp.MustCompile(`\..+$`)
)

// Vars holds the values substituted into a filename template.
type Vars struct {
	Pre string // $pre, a prefix naming the tool or project
	Set string // $set, a name for this batch of images
	Seq int    // $seq, the sequence counter, zero-padded to Pad digits
	Pad int    // zero-padding width for $seq
	Ext string // $ext, extension without the dot
}

// DefaultVars returns Vars with the stock prefix, set name, padding, and a
// counter starting at 1.
func DefaultVars(ext string) Vars {
	return Vars{Pre: DefaultPre, Set: DefaultSet, Seq: 1, Pad: DefaultPad, Ext: ext}
}

// HasSeq reports whether the template contains the $seq variable. A
// template without it yields one fixed name, which the sequence mode is
// allowed to overwrite.
func HasSeq(template string) bool {
	return hasSeqRe.MatchString(template)
}

// Format expands a filename template. Supported variables, in $var or
// ${var} form: pre, set, seq, ext, ymd, hms. Unknown variables are left
// untouched. A template with no extension gets ".$ext" appended.
func Format(template string, vars Vars, now time.Time) string {
	if !hasExtRe.MatchString(template) {
		template += ".$ext"
	}
	seq := fmt.Sprintf("%0*d", vars.Pad, vars.Seq)
	pairs := []string{
		"${pre}", vars.Pre, "$pre", vars.Pre,
		"${set}", vars.Set, "$set", vars.Set,
		"${seq}", seq, "$seq", seq,
		"${ext}", vars.Ext, "$ext", vars.Ext,
		"${ymd}", now.Format("20060102"), "$ymd", now.Format("20060102"),
		"${hms}", now.Format("150405"), "$hms", now.Format("150405"),
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// Namer hands out output paths one at a time.
type Namer interface {
	// Next returns the next output path.
	Next() (string, error)

	// NextExt is Next with the extension overridden for this one output.
	NextExt(ext string) (string, error)
}

// Sequence allocates names from a template and an incrementing counter.
// The counter starts at the lowest value whose expansion names no existing
// file, then increments per output, so repeated calls within one run never
// return the same path twice. A template without $seq short-circuits the
// search and returns the same fixed name every time.
type Sequence struct {
	Template string
	Vars     Vars

	// Exists reports whether a candidate path is already taken. Defaults
	// to an os.Stat check.
	Exists func(path string) bool

	now    func() time.Time
	issued map[string]bool
}

// NewSequence returns a Sequence for the given template and variables.
func NewSequence(template string, vars Vars) *Sequence {
	if template == "" {
		template = DefaultTemplate
	}
	return &Sequence{
		Template: template,
		Vars:     vars,
		Exists:   fileExists,
		now:      time.Now,
		issued:   make(map[string]bool),
	}
}

// Next returns the next unused output path and advances the counter.
func (s *Sequence) Next() (string, error) {
	return s.NextExt(s.Vars.Ext)
}

// NextExt is Next with the extension variable overridden for this one
// output. Per-file operations like rename keep each source's extension
// while sharing the counter.
func (s *Sequence) NextExt(ext string) (string, error) {
	vars := s.Vars
	vars.Ext = ext
	now := s.now()

	name := Format(s.Template, vars, now)
	if !HasSeq(s.Template) {
		// Fixed name; bumping the counter would loop forever.
		return name, nil
	}
	for s.Exists(name) || s.issued[name] {
		vars.Seq++
		name = Format(s.Template, vars, now)
	}
	s.issued[name] = true
	s.Vars.Seq = vars.Seq + 1
	return name, nil
}

var _ Namer = (*Sequence)(nil)

// FixedSet hands out an explicit ordered list of names, one per output.
type FixedSet struct {
	names []string
	next  int
}

// NewFixedSet returns a FixedSet over the given names.
func NewFixedSet(names []string) *FixedSet {
	return &FixedSet{names: names}
}

// Next returns the next name in order, or ExhaustedNamesError once every
// supplied name has been consumed.
func (f *FixedSet) Next() (string, error) {
	if f.next >= len(f.names) {
		return "", core.ErrExhaustedNames(len(f.names))
	}
	name := f.names[f.next]
	f.next++
	return name, nil
}

// NextExt returns the next name in order. Explicit names carry their own
// extension, so the override is ignored.
func (f *FixedSet) NextExt(string) (string, error) {
	return f.Next()
}

var _ Namer = (*FixedSet)(nil)

// SwapExt returns src with its extension replaced. ext is given without
// the dot.
func SwapExt(src, ext string) string {
	return strings.TrimSuffix(src, filepath.Ext(src)) + "." + ext
}

// EnsureWritable returns a CollisionError if path already exists and
// overwriting was not requested.
func EnsureWritable(path string, force bool) error {
	if force {
		return nil
	}
	if fileExists(path) {
		return core.ErrCollision(path)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
