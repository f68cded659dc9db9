package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vk/runexp/internal/app"
	"github.com/vk/runexp/internal/cli"
	"github.com/vk/runexp/internal/executor"
	"github.com/vk/runexp/internal/hcl"
)

// exitInterrupted is the conventional status for a run stopped by SIGINT.
const exitInterrupted = 130

// main is the entrypoint for the runexp application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stdin, os.Stdout, os.Stderr, os.Args[1:])
	stop()

	// The real main function handles errors and exit codes.
	if err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, stdin io.Reader, outW, errW io.Writer, args []string) error {
	appConfig, shouldExit, err := cli.Parse(args, stdin, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	// Instantiate the concrete HCL loader to pass to the app.
	loader := hcl.NewLoader()
	runexpApp, err := app.NewApp(outW, errW, appConfig, loader)
	if err != nil {
		return err
	}

	if _, err := runexpApp.Run(ctx); err != nil {
		if errors.Is(err, executor.ErrInterrupted) {
			return &cli.ExitError{Code: exitInterrupted, Message: "Interrupted"}
		}
		return err
	}
	return nil
}
