package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"swarmgen/convert"
	"swarmgen/core"
	"swarmgen/jobs"
	"swarmgen/naming"
)

type genOptions struct {
	Model         string
	Loras         []string
	Rules         []string
	Params        []string
	Names         []string
	SaveOnServer  bool
	DryRun        bool
	LUTName       string
	UnsharpMask   bool
	UnsharpParams string
	CountStdin    int
}

func newGenCommand(app *App) *cobra.Command {
	opts := &genOptions{}

	cmd := &cobra.Command{
		Use:   "gen [sources...]",
		Short: "Generate images with common parameters and different prompts",
		Long: `Generate images with common parameters and different prompts.

If an argument is a filename, all generation metadata is read from it
(PNG, JPG, and JSON files are accepted) and used as the parameters for a
new image. Non-file arguments are treated as prompts, one image each.
With no arguments, one-line prompts are read from STDIN.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen(cmd, app, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.Model, "model", "m", "",
		"case-insensitive unique substring of the base model to render with")
	f.StringArrayVarP(&opts.Loras, "loras", "l", nil,
		`LoRA substring; append ":0.x" for strength and ":base" or ":refine" to confine it`)
	f.StringArrayVarP(&opts.Rules, "rules", "r", nil,
		"rule names to overlay (comma-separated or repeated)")
	f.StringArrayVarP(&opts.Params, "params", "p", nil,
		"explicit parameters as k=v (comma-separated or repeated), highest precedence")
	f.StringArrayVarP(&opts.Names, "names", "N", nil,
		"explicit output filenames used in order instead of the template; the run fails once they are exhausted")
	f.BoolVarP(&opts.SaveOnServer, "save-on-server", "s", false,
		"keep a server-side copy; by default only the downloaded copy exists")
	f.BoolVarP(&opts.DryRun, "dry-run", "n", false,
		"print the parameters that would be used instead of generating")
	f.StringVarP(&opts.LUTName, "lut-name", "L", "",
		`PostRender LUT substring, ":0.x" for reduced strength`)
	f.BoolVarP(&opts.UnsharpMask, "unsharp-mask", "u", false,
		"apply an unsharp mask to images before saving")
	f.StringVarP(&opts.UnsharpParams, "unsharp-params", "U", "0.65/65/5",
		"unsharp mask parameters as radius/percentage/threshold")
	f.IntVarP(&opts.CountStdin, "count-stdin", "c", 0,
		"expected number of STDIN lines; used only for the summary")

	return cmd
}

func runGen(cmd *cobra.Command, app *App, opts *genOptions, args []string) error {
	overrides, err := parseOverrides(splitCommaArgs(opts.Params))
	if err != nil {
		return err
	}
	if app.Opts.FixResolution {
		overrides["fix_resolution"] = "true"
	}

	var unsharp *convert.Unsharp
	if opts.UnsharpMask {
		u, err := convert.ParseUnsharp(opts.UnsharpParams)
		if err != nil {
			return usageError("bad --unsharp-params: %v", err)
		}
		unsharp = &u
	}

	inputs := args
	if len(inputs) == 0 {
		if inputs, err = readLines(cmd.InOrStdin()); err != nil {
			return err
		}
	}
	if len(inputs) == 0 {
		return usageError("nothing to generate: pass prompts or source files, or pipe prompts on STDIN")
	}

	store, err := app.ruleStore()
	if err != nil {
		return err
	}
	client, err := app.client(store)
	if err != nil {
		return err
	}
	ext := "png"
	if app.Opts.JPEGOutput {
		ext = "jpg"
	}
	var namer naming.Namer = app.namer(ext)
	if names := splitCommaArgs(opts.Names); len(names) > 0 {
		namer = naming.NewFixedSet(names)
	}
	sub, err := jobs.NewSubmitter(client, store, namer, app.exiftool(), app.Log, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	summary, runErr := sub.Run(cmd.Context(), inputs, jobs.Options{
		Model:        opts.Model,
		Loras:        splitCommaArgs(opts.Loras),
		LUT:          opts.LUTName,
		Rules:        splitCommaArgs(opts.Rules),
		Overrides:    overrides,
		Aspect:       app.Opts.Aspect,
		Sidelength:   app.Opts.Sidelength,
		Unsharp:      unsharp,
		JPEGOutput:   app.Opts.JPEGOutput,
		JPEGQuality:  app.Opts.JPEGQuality,
		SaveOnServer: opts.SaveOnServer,
		DryRun:       opts.DryRun,
	})

	printSummary(cmd.ErrOrStderr(), summary.Completed, summary.Failed)
	if runErr != nil {
		return wrapExit(core.ExitCodeError, "generation aborted", runErr)
	}
	// Per-unit backend failures are reported above but do not change the
	// exit code.
	return nil
}

// parseOverrides turns k=v arguments into an override map.
func parseOverrides(args []string) (map[string]string, error) {
	overrides := make(map[string]string, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return nil, usageError("bad parameter '%s': expected k=v", arg)
		}
		overrides[k] = v
	}
	return overrides, nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cli: reading stdin: %w", err)
	}
	return lines, nil
}

// printSummary writes the colored run summary to stderr, keeping stdout
// clean for artifact paths.
func printSummary(w io.Writer, completed, failed int) {
	ok := color.New(color.FgGreen)
	bad := color.New(color.FgRed, color.Bold)

	ok.Fprintf(w, "%d generated", completed)
	if failed > 0 {
		fmt.Fprint(w, ", ")
		bad.Fprintf(w, "%d failed", failed)
	}
	fmt.Fprintln(w)
}
