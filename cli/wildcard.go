package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"swarmgen/wildcards"
)

type wildcardOptions struct {
	ListRefs   bool
	Count      int
	Directory  string
	AllValues  bool
	Everything bool
	Tee        bool
	Seed       int64
}

func newWildcardCommand(app *App) *cobra.Command {
	opts := &wildcardOptions{}

	cmd := &cobra.Command{
		Use:   "wildcard [prompts...]",
		Short: "Generate randomized prompts from wildcard files and {a|b} variants",
		Long: `Generate randomized prompts. __name__ references draw a random value
from name.txt in the wildcard directory, recursively; {a|b|c} groups
pick one inline variant. Output is normalized to one line per prompt.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWildcard(cmd, app, opts, args)
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&opts.ListRefs, "wildcards", "w", false,
		"list wildcard collections containing nested wildcard references; with --verbose, list every collection")
	f.IntVarP(&opts.Count, "count", "c", 1, "number of prompts to generate")
	f.StringVarP(&opts.Directory, "directory", "d", "",
		`directory to load wildcard files from (default ".")`)
	f.BoolVarP(&opts.AllValues, "all", "a", false,
		"dump all values for the named wildcard (does not recurse)")
	f.BoolVarP(&opts.Everything, "everything", "A", false,
		"dump all unique expansions of the given expression (recurses)")
	f.BoolVarP(&opts.Tee, "tee", "t", false, "tee the output to STDERR, so you can see it and pipe it")
	f.Int64Var(&opts.Seed, "seed", 0, "random seed; 0 seeds from the clock")

	return cmd
}

func runWildcard(cmd *cobra.Command, app *App, opts *wildcardOptions, args []string) error {
	dir := opts.Directory
	if dir == "" {
		dir = app.Cfg.WildcardDir
	}
	manager, err := wildcards.NewManager(dir)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	switch {
	case opts.ListRefs:
		if app.Opts.Verbose {
			for _, name := range manager.Names() {
				fmt.Fprintln(out, name)
			}
			return nil
		}
		refs := manager.NamesWithRefs()
		names := make([]string, 0, len(refs))
		for name := range refs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintln(out, name)
			for _, value := range refs[name] {
				fmt.Fprintln(out, "    "+value)
			}
		}
		return nil

	case opts.AllValues:
		if len(args) == 0 {
			return usageError("--all needs a wildcard name")
		}
		for _, name := range args {
			if !manager.Has(name) {
				return usageError("unknown wildcard '%s'", name)
			}
			values := append([]string(nil), manager.Values(name)...)
			sort.Strings(values)
			for _, value := range values {
				fmt.Fprintln(out, value)
			}
		}
		return nil

	case opts.Everything:
		if len(args) == 0 {
			return usageError("--everything needs a wildcard expression")
		}
		for _, expr := range args {
			expansions, err := manager.Expansions(expr)
			if err != nil {
				return err
			}
			for _, value := range expansions {
				fmt.Fprintln(out, value)
			}
		}
		return nil
	}

	if len(args) == 0 {
		return usageError("nothing to generate: pass a prompt template")
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gen := wildcards.NewGenerator(manager, seed)

	prompt := strings.Join(args, " ")
	results, err := gen.Generate(prompt, opts.Count)
	if err != nil {
		return err
	}
	writer := io.Writer(out)
	if opts.Tee {
		writer = io.MultiWriter(out, cmd.ErrOrStderr())
	}
	for _, result := range results {
		fmt.Fprintln(writer, wildcards.Normalize(result))
	}
	return nil
}
