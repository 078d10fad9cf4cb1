package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"swarmgen/wallpaper"
)

type wallpaperOptions struct {
	Interval time.Duration
	Sort     bool
	Displays []int
	Seed     int64
}

func newWallpaperCommand(app *App) *cobra.Command {
	opts := &wallpaperOptions{}

	cmd := &cobra.Command{
		Use:   "wallpaper <directories...>",
		Short: "Rotate desktop wallpapers from image directories (macOS)",
		Long: `Rotate desktop wallpapers at a fixed interval, one directory per
display; with fewer directories than displays, the last one repeats.
Runs in the foreground until interrupted; 'install' registers it as a
user service instead.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wopts := rotationOptions(opts, args)
			if !wallpaper.Interactive() {
				return wallpaper.RunService(wopts, app.Log)
			}
			rotator, err := wallpaper.NewRotator(cmd.Context(),
				wallpaper.NewOsascriptSetter(app.Log), wallpaper.ProfilerCounter{}, wopts, app.Log)
			if err != nil {
				return err
			}
			if err := rotator.Run(cmd.Context()); err != context.Canceled {
				return err
			}
			return nil
		},
	}

	f := cmd.PersistentFlags()
	f.DurationVarP(&opts.Interval, "interval", "i", 30*time.Second, "time between wallpaper changes")
	f.BoolVarP(&opts.Sort, "sort", "s", false, "sort images instead of shuffling")
	f.IntSliceVar(&opts.Displays, "display", nil, "only affect these displays (1-based, repeatable)")
	f.Int64Var(&opts.Seed, "seed", 0, "shuffle seed; 0 seeds from the clock")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "install <directories...>",
			Short: "Install the rotation as a user service",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return wallpaper.Install(rotationOptions(opts, args), app.Log)
			},
		},
		&cobra.Command{
			Use:   "uninstall",
			Short: "Remove the installed rotation service",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return wallpaper.Uninstall(app.Log)
			},
		},
	)
	return cmd
}

func rotationOptions(opts *wallpaperOptions, dirs []string) wallpaper.Options {
	displays := make([]int, 0, len(opts.Displays))
	for _, d := range opts.Displays {
		if d > 0 {
			displays = append(displays, d-1)
		}
	}
	return wallpaper.Options{
		Dirs:     dirs,
		Interval: opts.Interval,
		Sort:     opts.Sort,
		Displays: displays,
		Seed:     opts.Seed,
	}
}
