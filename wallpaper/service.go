package wallpaper

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kardianos/service"

	"swarmgen/logging"
)

// Program implements service.Interface so rotation can run as a managed
// background service (launchd on macOS, systemd on Linux).
type Program struct {
	opts Options
	log  *logging.Logger

	ctx    context.Context
	cancel context.CancelFunc
	exit   chan struct{}
}

// NewProgram wraps rotation options into a service program.
func NewProgram(opts Options, log *logging.Logger) *Program {
	if log == nil {
		log = logging.NewNop()
	}
	return &Program{opts: opts, log: log}
}

var _ service.Interface = (*Program)(nil)

// Start begins rotation in a goroutine and returns immediately, as the
// service runtime requires.
func (p *Program) Start(s service.Service) error {
	p.ctx, p.cancel = context.WithCancel(context.Background())
	p.exit = make(chan struct{})

	go p.run()
	return nil
}

// Stop signals shutdown and waits for the rotation loop to finish.
func (p *Program) Stop(s service.Service) error {
	p.cancel()

	select {
	case <-p.exit:
	case <-time.After(30 * time.Second):
		return fmt.Errorf("wallpaper: timeout waiting for rotation to stop")
	}
	return nil
}

func (p *Program) run() {
	defer close(p.exit)

	rotator, err := NewRotator(p.ctx, NewOsascriptSetter(p.log), ProfilerCounter{}, p.opts, p.log)
	if err != nil {
		p.log.Warnw("rotation not started", "error", err.Error())
		return
	}
	_ = rotator.Run(p.ctx)
}

// ServiceConfig describes the installed service. The rotation options
// are baked into the service arguments at install time.
func ServiceConfig(opts Options) *service.Config {
	args := []string{"wallpaper"}
	args = append(args, opts.Dirs...)
	if opts.Interval > 0 {
		args = append(args, "--interval", opts.Interval.String())
	}
	if opts.Sort {
		args = append(args, "--sort")
	}
	for _, d := range opts.Displays {
		args = append(args, "--display", strconv.Itoa(d+1))
	}

	return &service.Config{
		Name:        "swarmgen-wallpaper",
		DisplayName: "swarmgen wallpaper rotation",
		Description: "Rotates desktop wallpapers from image directories: " + strings.Join(opts.Dirs, ", "),
		Arguments:   args,
	}
}

// Install registers the rotation as a system service.
func Install(opts Options, log *logging.Logger) error {
	s, err := service.New(NewProgram(opts, log), ServiceConfig(opts))
	if err != nil {
		return fmt.Errorf("wallpaper: creating service: %w", err)
	}
	if err := s.Install(); err != nil {
		return fmt.Errorf("wallpaper: installing service: %w", err)
	}
	return nil
}

// Uninstall removes the installed service.
func Uninstall(log *logging.Logger) error {
	s, err := service.New(NewProgram(Options{Dirs: []string{"."}}, log), ServiceConfig(Options{}))
	if err != nil {
		return fmt.Errorf("wallpaper: creating service: %w", err)
	}
	if err := s.Uninstall(); err != nil {
		return fmt.Errorf("wallpaper: uninstalling service: %w", err)
	}
	return nil
}

// RunService hands control to the service runtime. Used when the
// process was started by the service manager rather than interactively.
func RunService(opts Options, log *logging.Logger) error {
	s, err := service.New(NewProgram(opts, log), ServiceConfig(opts))
	if err != nil {
		return fmt.Errorf("wallpaper: creating service: %w", err)
	}
	if err := s.Run(); err != nil {
		return fmt.Errorf("wallpaper: service run: %w", err)
	}
	return nil
}

// Interactive reports whether the process is running in a terminal
// instead of under the service manager.
func Interactive() bool {
	return service.Interactive()
}
