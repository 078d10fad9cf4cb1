package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"swarmgen/core"
	"swarmgen/enhance"
)

type enhanceOptions struct {
	ShowPrompts bool
	ListModels  bool
	Model       string
	Temperature float32
	MaxTokens   int
}

func newEnhanceCommand(app *App) *cobra.Command {
	opts := &enhanceOptions{}

	cmd := &cobra.Command{
		Use:   "enhance [sysprompt]",
		Short: "Rewrite terse prompts into detailed ones through a local LLM",
		Long: `Rewrite prompts read from STDIN, one per line, through an
OpenAI-compatible local server (LM Studio by default). The optional
argument names a system prompt from prompts.yaml in the config
directory; without it the built-in optimizer prompt is used.

Text between @< and >@ markers is rewritten in place, with everything
outside the markers reattached verbatim.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnhance(cmd, app, opts, args)
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&opts.ShowPrompts, "show-prompts", "s", false, "list configured system prompt names")
	f.BoolVarP(&opts.ListModels, "list", "l", false, "list models the server has available")
	f.StringVarP(&opts.Model, "model", "m", "", "model identifier to request")
	f.Float32VarP(&opts.Temperature, "temperature", "t", 0.75, "sampling temperature")
	f.IntVarP(&opts.MaxTokens, "tokens", "T", 1000, "maximum tokens per response")

	return cmd
}

func runEnhance(cmd *cobra.Command, app *App, opts *enhanceOptions, args []string) error {
	out := cmd.OutOrStdout()

	prompts, err := enhance.LoadPrompts(app.Cfg.RulesDir)
	if err != nil {
		return err
	}
	if opts.ShowPrompts {
		for _, name := range prompts.Names() {
			fmt.Fprintln(out, name)
		}
		return nil
	}

	model := opts.Model
	if model == "" {
		model = app.Cfg.EnhanceModel
	}
	enhancer, err := enhance.New(enhance.Config{
		BaseURL:     app.Cfg.EnhanceURL,
		Model:       model,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		Logger:      app.Log,
	})
	if err != nil {
		return err
	}

	if opts.ListModels {
		ids, err := enhancer.ListModels(cmd.Context())
		if err != nil {
			return wrapExit(core.ExitCodeError, "listing models", err)
		}
		for _, id := range ids {
			fmt.Fprintln(out, id)
		}
		return nil
	}

	systemPrompt, _ := prompts.Get(enhance.DefaultPromptName)
	if len(args) > 0 {
		text, ok := prompts.Get(args[0])
		if !ok {
			return usageError("system prompt '%s' not found; run 'swarmgen enhance --show-prompts'", args[0])
		}
		systemPrompt = text
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		result, err := enhancer.EnhanceLine(cmd.Context(), systemPrompt, line)
		if err != nil {
			return wrapExit(core.ExitCodeError, "enhancing prompt", err)
		}
		fmt.Fprintln(out, result)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("cli: reading stdin: %w", err)
	}
	return nil
}
