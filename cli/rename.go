package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"swarmgen/core"
)

func newRenameCommand(app *App) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "rename <files...>",
		Short: "Rename files to the --pre/--set/--seq template, keeping extensions",
		Long: `Rename files to a consistent format based on the filename template
and the --pre, --set, and --seq variables. Each file keeps its own
extension; the sequence counter advances per file and never lands on an
existing name.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			namer := app.namer("")
			out := cmd.OutOrStdout()

			for _, file := range args {
				ext := strings.TrimPrefix(filepath.Ext(file), ".")
				target, err := namer.NextExt(ext)
				if err != nil {
					return err
				}
				if dryRun {
					fmt.Fprintf(out, "%s %s\n", file, target)
					continue
				}
				if err := os.Rename(file, target); err != nil {
					return wrapExit(core.ExitCodeError,
						fmt.Sprintf("renaming '%s' to '%s'", file, target), err)
				}
				fmt.Fprintln(out, target)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "just print the before/after filenames")
	return cmd
}
