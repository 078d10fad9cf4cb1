package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"swarmgen/core"
	"swarmgen/swarmapi"
)

func newRulesCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List rule names from the built-in set and the user config directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.ruleStore()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range store.Names() {
				if !app.Opts.Verbose {
					fmt.Fprintln(out, name)
					continue
				}
				rule, err := store.Get(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "[%s]\n", name)
				for _, k := range rule.Params.Keys() {
					fmt.Fprintf(out, "%s=%v\n", k, rule.Params[k])
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	return cmd
}

var civitaiURLRe = regexp.MustCompile(`(https://civitai\.com/[^"]+)"`)

func newModelsCommand(app *App) *cobra.Command {
	var modelType string

	cmd := &cobra.Command{
		Use:   "models [search]",
		Short: "List models available on the server",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.sessionClient(cmd)
			if err != nil {
				return err
			}
			models, err := client.ListModels(cmd.Context(), swarmapi.SubtypeForType(modelType))
			if err != nil {
				return wrapExit(core.ExitCodeError, "listing models", err)
			}

			out := cmd.OutOrStdout()
			for _, model := range models {
				if len(args) > 0 && !modelMatches(model, args[0]) {
					continue
				}
				if !app.Opts.Verbose {
					name := strings.TrimSuffix(model.Name, filepath.Ext(model.Name))
					fmt.Fprintln(out, name)
					continue
				}
				fmt.Fprintln(out, model.Title)
				for _, kv := range [][2]string{
					{"name", model.Name},
					{"architecture", model.Architecture},
					{"compat_class", model.CompatClass},
					{"resolution", model.Resolution},
					{"trigger_phrase", model.TriggerPhrase},
				} {
					if kv[1] != "" {
						fmt.Fprintf(out, "    %s=%s\n", kv[0], kv[1])
					}
				}
				if m := civitaiURLRe.FindStringSubmatch(model.Description); m != nil {
					fmt.Fprintf(out, "    url=%s\n", m[1])
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&modelType, "type", "t", "base", "model type: base, lora, or vae")
	return cmd
}

func modelMatches(model swarmapi.Model, search string) bool {
	needle := strings.ToLower(search)
	for _, hay := range []string{model.Name, model.Architecture, model.CompatClass} {
		if hay != "" && strings.Contains(strings.ToLower(hay), needle) {
			return true
		}
	}
	return false
}

func newLUTsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "luts [search]",
		Short: "List PostRender LUTs available on the server",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.sessionClient(cmd)
			if err != nil {
				return err
			}
			luts, err := client.ListLUTs(cmd.Context())
			if err != nil {
				return wrapExit(core.ExitCodeError, "listing LUTs", err)
			}
			out := cmd.OutOrStdout()
			for _, lut := range luts {
				if len(args) > 0 && !strings.Contains(strings.ToLower(lut), strings.ToLower(args[0])) {
					continue
				}
				fmt.Fprintln(out, lut)
			}
			return nil
		},
	}
	return cmd
}

func newStatusCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print server and backend status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.sessionClient(cmd)
			if err != nil {
				return err
			}
			status, err := client.CurrentStatus(cmd.Context())
			if err != nil {
				return wrapExit(core.ExitCodeError, "fetching status", err)
			}
			out := cmd.OutOrStdout()
			for _, raw := range []json.RawMessage{status.Server, status.Backends} {
				if len(raw) == 0 {
					continue
				}
				var buf bytes.Buffer
				if err := json.Indent(&buf, raw, "", "    "); err != nil {
					return fmt.Errorf("cli: formatting status: %w", err)
				}
				fmt.Fprintln(out, buf.String())
			}
			return nil
		},
	}
}

// sessionClient builds the backend client and establishes a session,
// the precondition for every listing endpoint.
func (a *App) sessionClient(cmd *cobra.Command) (*swarmapi.Client, error) {
	store, err := a.ruleStore()
	if err != nil {
		return nil, err
	}
	client, err := a.client(store)
	if err != nil {
		return nil, err
	}
	if _, err := client.NewSession(cmd.Context()); err != nil {
		return nil, wrapExit(core.ExitCodeError, "creating session", err)
	}
	return client, nil
}
