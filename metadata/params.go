package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SUIParamsKey is the JSON key holding the actual generation parameters
// inside the metadata blob SwarmUI embeds in its images.
const SUIParamsKey = "sui_image_params"

// ParseGenerationJSON extracts generation parameters from the metadata
// JSON found in an image. With verbose set, the whole blob (including
// sui_extra_data and version info) is returned instead of just the
// parameter object.
func ParseGenerationJSON(text string, verbose bool) (map[string]any, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	var blob map[string]any
	if err := json.Unmarshal([]byte(text), &blob); err != nil {
		return nil, fmt.Errorf("metadata: parsing generation JSON: %w", err)
	}
	if verbose {
		return blob, nil
	}
	if params, ok := blob[SUIParamsKey].(map[string]any); ok {
		return params, nil
	}
	// Plain parameter JSON without the wrapper, e.g. a hand-written file.
	return blob, nil
}

// FileParams loads generation parameters from a file: a .json parameter
// file, the 'parameters' chunk of a .png, or the EXIF UserComment of a
// .jpg/.jpeg. Files without embedded parameters yield an empty map.
func FileParams(ctx context.Context, tool *Exiftool, path string, verbose bool) (map[string]any, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("metadata: reading %s: %w", path, err)
		}
		var params map[string]any
		if err := json.Unmarshal(data, &params); err != nil {
			return nil, fmt.Errorf("metadata: parsing %s: %w", path, err)
		}
		return params, nil

	case ".png":
		text, err := ReadPNGParameters(path)
		if err != nil {
			return nil, err
		}
		params, err := ParseGenerationJSON(text, verbose)
		if err != nil {
			return nil, fmt.Errorf("metadata: %s: %w", path, err)
		}
		if params == nil {
			params = map[string]any{}
		}
		return params, nil

	case ".jpg", ".jpeg":
		if tool == nil {
			return nil, fmt.Errorf("metadata: JPEG support requires exiftool")
		}
		text, err := tool.ReadUserComment(ctx, path)
		if err != nil {
			return nil, err
		}
		params, err := ParseGenerationJSON(text, verbose)
		if err != nil {
			return nil, fmt.Errorf("metadata: %s: %w", path, err)
		}
		if params == nil {
			params = map[string]any{}
		}
		return params, nil

	default:
		return nil, fmt.Errorf("metadata: unsupported file type '%s'", filepath.Ext(path))
	}
}

// IsParamsFile reports whether the path names a file type FileParams can
// read. Used to tell prompt arguments from source files.
func IsParamsFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}
