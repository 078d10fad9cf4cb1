package wallpaper

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"swarmgen/logging"
)

// OsascriptSetter sets wallpapers on macOS through System Events.
type OsascriptSetter struct {
	log *logging.Logger
}

// NewOsascriptSetter returns the macOS wallpaper setter.
func NewOsascriptSetter(log *logging.Logger) *OsascriptSetter {
	if log == nil {
		log = logging.NewNop()
	}
	return &OsascriptSetter{log: log.Named("osascript")}
}

var _ Setter = (*OsascriptSetter)(nil)

// Set points the desktop picture of one display at imagePath. System
// Events numbers desktops from 1.
func (s *OsascriptSetter) Set(ctx context.Context, imagePath string, display int) error {
	script := fmt.Sprintf(
		`tell application "System Events" to tell desktop %d to set picture to %q`,
		display+1, imagePath)

	out, err := exec.CommandContext(ctx, "osascript", "-e", script).CombinedOutput()
	if err != nil {
		return fmt.Errorf("wallpaper: osascript: %w: %s", err, strings.TrimSpace(string(out)))
	}
	s.log.Debugw("wallpaper set", "display", display+1, "image", imagePath)
	return nil
}

// ProfilerCounter counts connected displays with system_profiler.
type ProfilerCounter struct{}

var _ DisplayCounter = (ProfilerCounter{})

// Count parses the display section of system_profiler output. Each
// connected display reports one Resolution line. Falls back to a single
// display when the tool is unavailable.
func (ProfilerCounter) Count(ctx context.Context) (int, error) {
	out, err := exec.CommandContext(ctx, "system_profiler", "SPDisplaysDataType").Output()
	if err != nil {
		return 1, nil
	}
	count := strings.Count(string(out), "Resolution:")
	if count < 1 {
		count = 1
	}
	return count, nil
}
