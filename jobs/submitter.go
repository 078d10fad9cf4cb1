package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"swarmgen/aspect"
	"swarmgen/convert"
	"swarmgen/core"
	"swarmgen/logging"
	"swarmgen/metadata"
	"swarmgen/naming"
	"swarmgen/rules"
	"swarmgen/swarmapi"
)

// Options holds the per-run generation settings from the command line.
type Options struct {
	// Model is a substring of the base model to render with.
	Model string

	// Loras are LoRA substrings with optional ":strength[:section]".
	Loras []string

	// LUT is a PostRender LUT substring with optional ":strength".
	LUT string

	// Rules are rule names overlaid on each unit's parameters.
	Rules []string

	// Overrides are explicit key=value parameters, highest precedence.
	Overrides map[string]string

	// Aspect is an "X:Y" ratio or "WxH" resolution; empty keeps the
	// dimensions from the rules or source image.
	Aspect string

	// Sidelength is a "pixels/divisor" budget for aspect sizing. Empty
	// falls back to the sidelength/rounding parameters themselves.
	Sidelength string

	// Unsharp enables the unsharp-mask post-processing step.
	Unsharp *convert.Unsharp

	// JPEGOutput saves jpg instead of png.
	JPEGOutput bool

	// JPEGQuality is the jpg quality, convert.DefaultJPEGQuality when 0.
	JPEGQuality int

	// SaveOnServer keeps a server-side copy of each image.
	SaveOnServer bool

	// DryRun prints each unit's output name and parameters instead of
	// generating.
	DryRun bool
}

// Job is one unit of work: a prompt or source image plus its resolved
// parameters and output path.
type Job struct {
	// ID correlates log lines for this unit.
	ID uuid.UUID

	// Input is the prompt text or source file path as given.
	Input string

	// Source is the source image basename for re-generations, "".
	Source string

	// Params is the effective parameter set, reserved keys included.
	Params map[string]any

	// Crop recovers the requested resolution after a /64 fix-up.
	Crop aspect.Crop

	// OutPath is where the artifact will be saved.
	OutPath string
}

// Summary reports how a run went. Per-unit backend failures are counted
// here and do not affect the process exit code.
type Summary struct {
	Completed int
	Failed    int
	Artifacts []string
}

// Submitter runs generation jobs against one backend, strictly one at a
// time. There is no retry: a failed unit is either skipped (backend
// error) or aborts the run (connectivity).
type Submitter struct {
	Client *swarmapi.Client
	Store  *rules.Store
	Tool   *metadata.Exiftool
	Namer  naming.Namer
	Log    *logging.Logger

	// Out receives dry-run output and per-unit progress lines.
	Out io.Writer

	// cached server lists, fetched at most once per run
	baseModels []string
	loraModels []string
	luts       []string
}

// NewSubmitter wires a Submitter. client, store, and namer are required.
func NewSubmitter(client *swarmapi.Client, store *rules.Store, namer naming.Namer, tool *metadata.Exiftool, log *logging.Logger, out io.Writer) (*Submitter, error) {
	if client == nil {
		return nil, fmt.Errorf("jobs: client cannot be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("jobs: rule store cannot be nil")
	}
	if namer == nil {
		return nil, fmt.Errorf("jobs: namer cannot be nil")
	}
	if log == nil {
		log = logging.NewNop()
	}
	if out == nil {
		out = io.Discard
	}
	return &Submitter{
		Client: client,
		Store:  store,
		Tool:   tool,
		Namer:  namer,
		Log:    log.Named("jobs"),
		Out:    out,
	}, nil
}

// Run processes inputs in order. Each input is either a prompt or a path
// to a params-bearing file (PNG, JPG, JSON). The returned error is nil
// unless a fatal condition (unknown rule, connectivity failure) stopped
// the run; per-unit backend failures only show up in the Summary.
func (s *Submitter) Run(ctx context.Context, inputs []string, opts Options) (*Summary, error) {
	summary := &Summary{}

	if _, err := s.Client.NewSession(ctx); err != nil {
		return summary, err
	}

	for _, input := range inputs {
		job, err := s.prepare(ctx, input, opts)
		if err != nil {
			return summary, err
		}

		if opts.DryRun {
			if err := s.printDryRun(job); err != nil {
				return summary, err
			}
			summary.Completed++
			continue
		}

		if err := s.generate(ctx, job, opts); err != nil {
			if core.IsFatal(err) {
				return summary, err
			}
			s.Log.Warnw("job failed",
				"job_id", job.ID.String(),
				"input", job.Input,
				"error", err.Error())
			fmt.Fprintf(s.Out, "FAILED: %s: %v\n", job.Input, err)
			summary.Failed++
			continue
		}

		s.Log.Infow("job complete",
			"job_id", job.ID.String(),
			"output", job.OutPath)
		fmt.Fprintln(s.Out, job.OutPath)
		summary.Completed++
		summary.Artifacts = append(summary.Artifacts, job.OutPath)
	}

	return summary, nil
}

// prepare builds the effective parameters and output path for one input.
// All failures here are fatal: they are user errors (unknown rule, bad
// aspect) or connectivity errors from the model list fetch.
func (s *Submitter) prepare(ctx context.Context, input string, opts Options) (*Job, error) {
	job := &Job{ID: uuid.New(), Input: input}

	var seed rules.Params
	if fileExists(input) && metadata.IsParamsFile(input) {
		params, err := metadata.FileParams(ctx, s.Tool, input, false)
		if err != nil {
			return nil, err
		}
		// The previous generation's delivery preferences would override
		// this run's own.
		delete(params, "imageformat")
		delete(params, "donotsave")
		job.Source = filepath.Base(input)
		params["personalnote"] = job.Source
		seed = params
	} else {
		seed = rules.Params{"prompt": input}
	}

	params, err := s.Store.ResolveOnto(seed, opts.Rules, opts.Overrides)
	if err != nil {
		return nil, err
	}

	if opts.Model != "" {
		full, err := s.matchModel(ctx, opts.Model)
		if err != nil {
			return nil, err
		}
		params["model"] = full
	}
	if err := ApplyLoras(params, opts.Loras, func(name string) (string, error) {
		return s.matchLora(ctx, name)
	}); err != nil {
		return nil, err
	}
	if err := ApplyLUT(params, opts.LUT, func(name string) (string, error) {
		return s.matchLUT(ctx, name)
	}); err != nil {
		return nil, err
	}

	if opts.Aspect != "" {
		if err := applyAspect(params, opts.Aspect, opts.Sidelength); err != nil {
			return nil, err
		}
	}
	job.Crop = applyResolutionFix(params)

	ext := "png"
	if opts.JPEGOutput {
		ext = "jpg"
	}
	out, err := s.Namer.NextExt(ext)
	if err != nil {
		return nil, err
	}
	job.OutPath = out
	job.Params = params
	return job, nil
}

// generate submits one prepared job and saves its artifact.
func (s *Submitter) generate(ctx context.Context, job *Job, opts Options) error {
	body := rules.Params(job.Params).Clone().StripReserved()

	ref, err := s.Client.GenerateText2Image(ctx, body, swarmapi.GenerateOptions{
		SaveOnServer: opts.SaveOnServer,
	})
	if err != nil {
		return err
	}
	data, err := s.Client.DownloadImage(ctx, ref)
	if err != nil {
		return err
	}

	ops := convert.Ops{
		Crop:        job.Crop,
		Unsharp:     opts.Unsharp,
		JPEG:        opts.JPEGOutput,
		JPEGQuality: opts.JPEGQuality,
		Source:      job.Source,
	}
	return convert.ApplyBytes(ctx, s.Tool, data, ops, job.OutPath)
}

func (s *Submitter) printDryRun(job *Job) error {
	encoded, err := json.MarshalIndent(job.Params, "", "    ")
	if err != nil {
		return fmt.Errorf("jobs: encoding dry-run parameters: %w", err)
	}
	fmt.Fprintf(s.Out, "output file: %s\n", job.OutPath)
	fmt.Fprintf(s.Out, "session_id: %s\n", s.Client.SessionID())
	fmt.Fprintf(s.Out, "%s\n", encoded)
	return nil
}

func (s *Submitter) matchModel(ctx context.Context, name string) (string, error) {
	if s.baseModels == nil {
		models, err := s.Client.ListModels(ctx, swarmapi.SubtypeStableDiffusion)
		if err != nil {
			return "", err
		}
		s.baseModels = modelNames(models)
	}
	return SubstringMatch(name, s.baseModels, "model")
}

func (s *Submitter) matchLora(ctx context.Context, name string) (string, error) {
	if s.loraModels == nil {
		models, err := s.Client.ListModels(ctx, swarmapi.SubtypeLoRA)
		if err != nil {
			return "", err
		}
		s.loraModels = modelNames(models)
	}
	return SubstringMatch(name, s.loraModels, "LoRA")
}

func (s *Submitter) matchLUT(ctx context.Context, name string) (string, error) {
	if s.luts == nil {
		luts, err := s.Client.ListLUTs(ctx)
		if err != nil {
			return "", err
		}
		s.luts = luts
	}
	return SubstringMatch(name, s.luts, "LUT")
}

// applyAspect sets width/height from an aspect argument. The pixel budget
// comes from the explicit sidelength argument when given, else from the
// sidelength/rounding parameters carried by the rules or source image.
func applyAspect(params map[string]any, aspectArg, sidelengthArg string) error {
	side, rounding := 1024, 64
	if sidelengthArg != "" {
		var err error
		if side, rounding, err = aspect.ParseSidelength(sidelengthArg); err != nil {
			return err
		}
	} else if v, ok := asInt(params["sidelength"]); ok {
		side = v
		if r, ok := asInt(params["rounding"]); ok {
			rounding = r
		}
	}

	width, height, err := aspect.Pixels(aspectArg, side, rounding)
	if err != nil {
		return err
	}
	params["width"] = width
	params["height"] = height
	return nil
}

// applyResolutionFix rounds width/height up to /64 when the parameters
// ask for it, returning the crop that restores the requested size. A
// refiner upscale scales the crop to the refined output's coordinates.
func applyResolutionFix(params map[string]any) aspect.Crop {
	if !truthy(params["fix_resolution"]) {
		return aspect.Crop{}
	}
	width, okW := asInt(params["width"])
	height, okH := asInt(params["height"])
	if !okW || !okH {
		return aspect.Crop{}
	}

	newW, newH, crop := aspect.FixResolution(width, height)
	if crop.IsZero() {
		return crop
	}
	if mul, ok := asFloat(params["refinerupscale"]); ok && mul > 0 {
		crop = crop.Scaled(mul)
	}
	params["width"] = newW
	params["height"] = newH
	return crop
}

func modelNames(models []swarmapi.Model) []string {
	names := make([]string, len(models))
	for i, m := range models {
		names[i] = m.Name
	}
	return names
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
