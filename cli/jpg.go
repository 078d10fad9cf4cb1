package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"swarmgen/convert"
	"swarmgen/core"
	"swarmgen/naming"
)

func newJPGCommand(app *App) *cobra.Command {
	var (
		dryRun bool
		resize int
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "jpg <files...>",
		Short: "Convert PNG files to JPG, preserving metadata and optionally resizing",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tool := app.exiftool()
			out := cmd.OutOrStdout()

			for _, file := range args {
				if dryRun {
					fmt.Fprintf(out, "%s %s\n", file, naming.SwapExt(file, "jpg"))
					continue
				}
				target, err := convert.ConvertFile(cmd.Context(), tool, file, convert.FileOptions{
					Quality:   app.Opts.JPEGQuality,
					ResizePct: resize,
					Force:     force,
				})
				if err != nil {
					return wrapExit(core.ExitCodeError, fmt.Sprintf("converting %s", file), err)
				}
				fmt.Fprintln(out, target)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "just print the before/after filenames")
	cmd.Flags().IntVarP(&resize, "resize", "r", 100, "percentage to resize the image to (default: no change)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing target file")
	return cmd
}
