// Package wallpaper rotates desktop wallpapers from image directories at
// a fixed interval, one directory per display, reloading when a
// directory's contents change.
package wallpaper

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".gif":  true,
	".tiff": true,
	".tif":  true,
	".heic": true,
}

// DirState fingerprints a directory: its modification time plus the
// number of image files directly inside it. A changed fingerprint
// triggers a reload.
type DirState struct {
	ModTime time.Time
	Count   int
}

// ScanDir returns the absolute paths of all image files directly inside
// dir, sorted. An empty result is an error: a rotation with nothing to
// rotate is a misconfiguration.
func ScanDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("wallpaper: reading %s: %w", dir, err)
	}

	var images []string
	for _, entry := range entries {
		if entry.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		abs, err := filepath.Abs(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("wallpaper: resolving %s: %w", entry.Name(), err)
		}
		images = append(images, abs)
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("wallpaper: no image files found in '%s'", dir)
	}
	sort.Strings(images)
	return images, nil
}

// State returns the current fingerprint of a directory.
func State(dir string) (DirState, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return DirState{}, fmt.Errorf("wallpaper: stat %s: %w", dir, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return DirState{}, fmt.Errorf("wallpaper: reading %s: %w", dir, err)
	}
	count := 0
	for _, entry := range entries {
		if !entry.IsDir() && imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			count++
		}
	}
	return DirState{ModTime: info.ModTime(), Count: count}, nil
}
