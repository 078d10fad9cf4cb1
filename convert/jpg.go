package convert

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"swarmgen/metadata"
	"swarmgen/naming"
)

// FileOptions adjusts a single PNG-to-JPG conversion.
type FileOptions struct {
	// Quality is the JPEG quality, DefaultJPEGQuality when 0.
	Quality int

	// ResizePct optionally shrinks the image to a percentage of its size.
	ResizePct int

	// Force overwrites an existing target file.
	Force bool
}

// ConvertFile converts one PNG file to JPG next to it, carrying the full
// generation metadata (including sui_extra_data) into the EXIF
// UserComment. Returns the target path.
func ConvertFile(ctx context.Context, tool *metadata.Exiftool, src string, opts FileOptions) (string, error) {
	target := naming.SwapExt(src, "jpg")
	if err := naming.EnsureWritable(target, opts.Force); err != nil {
		return "", err
	}

	params, err := metadata.FileParams(ctx, tool, src, true)
	if err != nil {
		return "", err
	}
	var meta string
	if len(params) > 0 {
		encoded, err := json.Marshal(params)
		if err != nil {
			return "", fmt.Errorf("convert: encoding metadata for %s: %w", src, err)
		}
		meta = string(encoded)
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("convert: reading %s: %w", src, err)
	}

	ops := Ops{
		Meta:        meta,
		ResizePct:   opts.ResizePct,
		JPEG:        true,
		JPEGQuality: opts.Quality,
	}
	if err := ApplyBytes(ctx, tool, data, ops, target); err != nil {
		return "", err
	}
	return target, nil
}
