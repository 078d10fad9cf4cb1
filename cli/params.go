package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"swarmgen/core"
	"swarmgen/metadata"
)

type paramsOptions struct {
	JSON       bool
	Verbose    bool
	PromptOnly bool
}

func newParamsCommand(app *App) *cobra.Command {
	opts := &paramsOptions{}

	cmd := &cobra.Command{
		Use:     "params <files...>",
		Aliases: []string{"prompt"},
		Short:   "Dump generation parameters from JSON, PNG, and JPG files",
		Long: `Dump generation parameters from JSON, PNG, and JPG files.

Invoked as 'prompt', prints just the prompt of each file, one per line.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.CalledAs() == "prompt" {
				opts.PromptOnly = true
			}
			// --verbose keeps the whole metadata document, which only
			// makes sense as JSON.
			opts.Verbose = app.Opts.Verbose
			if opts.Verbose {
				opts.JSON = true
			}
			return runParams(cmd, app, opts, args)
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&opts.JSON, "json", "j", false, "JSON output instead of the default K=V")
	f.BoolVarP(&opts.PromptOnly, "prompt", "p", false, "print just the prompt(s), one per line")

	return cmd
}

func runParams(cmd *cobra.Command, app *App, opts *paramsOptions, files []string) error {
	tool := app.exiftool()
	out := cmd.OutOrStdout()

	var collected []map[string]any
	for _, file := range files {
		params, err := fileParams(cmd, app, tool, file, opts.Verbose)
		if err != nil {
			return err
		}
		if len(params) == 0 {
			continue
		}

		switch {
		case opts.PromptOnly:
			if prompt, ok := params["prompt"]; ok {
				fmt.Fprintln(out, prompt)
			}
		case opts.JSON:
			params["_filename"] = file
			collected = append(collected, params)
		default:
			fmt.Fprintf(out, "filename=%s\n", file)
			for _, k := range sortedKeys(params) {
				fmt.Fprintf(out, "%s=%v\n", k, params[k])
			}
			if len(files) > 1 {
				fmt.Fprintln(out)
			}
		}
	}

	if len(collected) > 0 {
		var payload any = collected
		if len(collected) == 1 {
			payload = collected[0]
		}
		encoded, err := json.MarshalIndent(payload, "", "    ")
		if err != nil {
			return fmt.Errorf("cli: encoding parameters: %w", err)
		}
		fmt.Fprintln(out, string(encoded))
	}
	return nil
}

func fileParams(cmd *cobra.Command, app *App, tool *metadata.Exiftool, file string, verbose bool) (map[string]any, error) {
	params, err := metadata.FileParams(cmd.Context(), tool, file, verbose)
	if err != nil {
		return nil, wrapExit(core.ExitCodeError, fmt.Sprintf("reading %s", file), err)
	}
	return params, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
