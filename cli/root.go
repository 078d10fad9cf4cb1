// Package cli implements the swarmgen command tree.
//
// root.go defines the root command and its persistent flags, plus the
// shared helpers subcommands use to reach the rule store and the
// backend client. The host/port precedence is: flags, then environment,
// then the 'default' rule, then compiled-in defaults.
package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"swarmgen/core"
	"swarmgen/logging"
	"swarmgen/metadata"
	"swarmgen/naming"
	"swarmgen/rules"
	"swarmgen/swarmapi"
)

// RootOptions holds the persistent flags shared by subcommands.
type RootOptions struct {
	Host string
	Port string

	// Aspect is an "X:Y" ratio or "WxH" resolution.
	Aspect string

	// Sidelength is the model pixel budget as "pixels/divisor".
	Sidelength string

	// FixResolution rounds dimensions up to /64 and crops afterwards.
	FixResolution bool

	// JPEGOutput saves jpg instead of png, after any client-side
	// post-processing.
	JPEGOutput bool

	// JPEGQuality is the jpg conversion quality.
	JPEGQuality int

	// Filename template variables.
	Template string
	Pre      string
	Set      string
	Seq      int
	Pad      int

	Verbose bool
}

// App carries the pieces every subcommand needs.
type App struct {
	Cfg  *core.Config
	Log  *logging.Logger
	Opts *RootOptions
}

// NewRootCommand builds the swarmgen command tree.
func NewRootCommand(cfg *core.Config, log *logging.Logger) *cobra.Command {
	if log == nil {
		log = logging.NewNop()
	}
	app := &App{Cfg: cfg, Log: log, Opts: &RootOptions{}}

	cmd := &cobra.Command{
		Use:   "swarmgen",
		Short: "Rule-driven image generation against a SwarmUI server",
		Long: `swarmgen automates an image-generation workflow: named parameter
rules, filename templating, batch submission, metadata extraction,
PNG-to-JPG conversion, wildcard prompts, and LLM prompt enhancement.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&app.Opts.Host, "host", "", "server name or IP address")
	pf.StringVar(&app.Opts.Port, "port", "", "port the server is listening on")
	pf.StringVar(&app.Opts.Aspect, "aspect", "", "aspect ratio as X:Y or a specific WxH pixel resolution")
	pf.StringVar(&app.Opts.Sidelength, "sidelength", "", `model sidelength as pixels/divisor (default "1024/64")`)
	pf.BoolVarP(&app.Opts.FixResolution, "fix-resolution", "f", false,
		"round resolution up to the nearest /64, then crop after generating")
	pf.BoolVar(&app.Opts.JPEGOutput, "jpeg-output", false,
		"save JPG output instead of PNG, after client-side post-processing")
	pf.IntVarP(&app.Opts.JPEGQuality, "jpeg-quality", "J", 0, "JPEG conversion quality (default 85)")
	pf.StringVar(&app.Opts.Template, "template", naming.DefaultTemplate,
		"filename template; variables: pre, set, seq, ext, ymd, hms")
	pf.StringVar(&app.Opts.Pre, "pre", naming.DefaultPre, `template variable "pre"`)
	pf.StringVar(&app.Opts.Set, "set", naming.DefaultSet, `template variable "set"`)
	pf.IntVar(&app.Opts.Seq, "seq", 1, `template variable "seq" initial value (auto-increments)`)
	pf.IntVar(&app.Opts.Pad, "pad", naming.DefaultPad, `zero-padding length for "seq"`)
	pf.BoolVarP(&app.Opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(
		newGenCommand(app),
		newParamsCommand(app),
		newRulesCommand(app),
		newModelsCommand(app),
		newLUTsCommand(app),
		newStatusCommand(app),
		newRenameCommand(app),
		newJPGCommand(app),
		newAspectCommand(app),
		newWildcardCommand(app),
		newEnhanceCommand(app),
		newWallpaperCommand(app),
	)
	return cmd
}

// ruleStore loads the built-in rules plus the user override directory.
func (a *App) ruleStore() (*rules.Store, error) {
	return rules.Load(a.Cfg.RulesDir)
}

// client builds the backend client, resolving host and port from flags,
// environment, and the rule store's 'default' section.
func (a *App) client(store *rules.Store) (*swarmapi.Client, error) {
	host := a.Opts.Host
	if host == "" {
		host = os.Getenv("SWARM_HOST")
	}
	if host == "" && store != nil {
		host = store.DefaultHost()
	}
	if host == "" {
		host = core.DefaultSwarmHost
	}

	port := a.Opts.Port
	if port == "" {
		port = os.Getenv("SWARM_PORT")
	}
	if port == "" && store != nil {
		port = store.DefaultPort()
	}
	if port == "" {
		port = core.DefaultSwarmPort
	}

	return swarmapi.NewClient(swarmapi.ClientConfig{
		Host:            host,
		Port:            port,
		Timeout:         a.Cfg.HTTPTimeout,
		GenerateTimeout: a.Cfg.GenerateTimeout,
		Logger:          a.Log,
	})
}

// namer builds the filename allocator from the template flags.
func (a *App) namer(ext string) *naming.Sequence {
	return naming.NewSequence(a.Opts.Template, naming.Vars{
		Pre: a.Opts.Pre,
		Set: a.Opts.Set,
		Seq: a.Opts.Seq,
		Pad: a.Opts.Pad,
		Ext: ext,
	})
}

// exiftool returns the external metadata tool wrapper.
func (a *App) exiftool() *metadata.Exiftool {
	return metadata.NewExiftool(a.Cfg.ExiftoolPath, a.Log)
}

// splitCommaArgs expands repeated flag values that may themselves hold
// comma-separated entries, e.g. -r sdxl,2k -r vary15.
func splitCommaArgs(args []string) []string {
	var out []string
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
