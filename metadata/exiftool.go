package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"swarmgen/logging"
)

// EXIF tag names used for JPEG metadata.
const (
	// TagUserComment carries the generation parameter JSON.
	TagUserComment = "EXIF:UserComment"

	// TagDocumentName records the source image of a re-generation.
	TagDocumentName = "EXIF:DocumentName"
)

// Exiftool wraps the exiftool binary for the JPEG metadata operations
// the standard library has no native support for.
type Exiftool struct {
	path string
	log  *logging.Logger
}

// NewExiftool returns a wrapper around the exiftool binary at path. The
// bare name "exiftool" resolves through PATH at call time.
func NewExiftool(path string, log *logging.Logger) *Exiftool {
	if path == "" {
		path = "exiftool"
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &Exiftool{path: path, log: log.Named("exiftool")}
}

// ReadUserComment returns the EXIF UserComment of a JPEG file, or ""
// when the file carries none.
func (e *Exiftool) ReadUserComment(ctx context.Context, file string) (string, error) {
	out, err := exec.CommandContext(ctx, e.path, "-j", "-UserComment", file).Output()
	if err != nil {
		return "", fmt.Errorf("metadata: exiftool read on %s: %w", file, err)
	}

	var records []map[string]any
	if err := json.Unmarshal(out, &records); err != nil {
		return "", fmt.Errorf("metadata: parsing exiftool output for %s: %w", file, err)
	}
	if len(records) == 0 {
		return "", nil
	}
	if comment, ok := records[0]["UserComment"].(string); ok {
		return comment, nil
	}
	return "", nil
}

// WriteTags sets EXIF tags on a file in place. Tag names use exiftool's
// group:name form, e.g. "EXIF:UserComment".
func (e *Exiftool) WriteTags(ctx context.Context, file string, tags map[string]string) error {
	if len(tags) == 0 {
		return nil
	}
	args := writeTagArgs(file, tags)

	e.log.Debugw("setting tags", "file", file, "tags", len(tags))
	if out, err := exec.CommandContext(ctx, e.path, args...).CombinedOutput(); err != nil {
		return fmt.Errorf("metadata: exiftool write on %s: %w: %s", file, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// writeTagArgs builds the exiftool argument list for WriteTags. The file
// keeps its timestamps and no "_original" backup is left behind.
func writeTagArgs(file string, tags map[string]string) []string {
	args := []string{"-overwrite_original", "-preserve"}

	names := make([]string, 0, len(tags))
	for name := range tags {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		args = append(args, fmt.Sprintf("-%s=%s", name, tags[name]))
	}
	return append(args, file)
}
