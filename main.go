package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/joho/godotenv"

	"swarmgen/cli"
	"swarmgen/core"
	"swarmgen/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	// A missing .env is the normal case; environment variables and flags
	// still apply.
	_ = godotenv.Load()

	cfg, err := core.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "swarmgen: %v\n", err)
		return core.ExitCodeError
	}

	logger, err := logging.NewLogger(cfg.DevMode, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "swarmgen: failed to initialize logger: %v\n", err)
		return core.ExitCodeError
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var signalCode atomic.Int32
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		sig, ok := <-sigChan
		if !ok {
			return
		}
		if sig == syscall.SIGTERM {
			signalCode.Store(core.ExitCodeSIGTERM)
		} else {
			signalCode.Store(core.ExitCodeSIGINT)
		}
		logger.Infow("shutting down on signal", "signal", sig.String())
		cancel()
	}()

	root := cli.NewRootCommand(cfg, logger)
	err = root.ExecuteContext(ctx)

	if code := int(signalCode.Load()); code != 0 {
		return code
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.GetExitCode(err)
	}
	return core.ExitCodeSuccess
}
