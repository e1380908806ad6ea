// Package main is the entry point for the packsmith build service.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"github.com/spf13/pflag"
	"go.trai.ch/packsmith/cmd/packsmith/commands"
	"go.trai.ch/packsmith/internal/adapters/config"
	"go.trai.ch/packsmith/internal/app"
	_ "go.trai.ch/packsmith/internal/wiring"
)

// configEnv names the configuration file when no --config flag is given.
const configEnv = "PACKSMITH_CONFIG"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, stdout io.Writer) int {
	// 0. Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 1. The config file must be known before the graph is built.
	ctx = config.WithPath(ctx, configPath(args))

	// 2. Initialize application components. Every run builds its own graph.
	components, _, err := graft.ExecuteFor[*app.Components](ctx, graft.DisableCache())
	if err != nil {
		// Logger is not available yet if initialization failed
		// Write directly to stderr
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return 1
	}
	defer func() {
		if err := components.App.Close(context.WithoutCancel(ctx)); err != nil {
			components.Logger.Error(err)
		}
	}()

	// 3. Interface - CLI
	cli := commands.New(components.App)
	cli.SetArgs(args)
	cli.SetOutput(stdout)

	// 4. Execution
	if err := cli.Execute(ctx); err != nil {
		components.Logger.Error(err)
		return 1
	}
	return 0
}

// configPath scans args for --config without failing on the subcommand flags,
// falling back to PACKSMITH_CONFIG.
func configPath(args []string) string {
	fs := pflag.NewFlagSet("packsmith", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Usage = func() {}
	fs.SetOutput(io.Discard)
	path := fs.StringP("config", "c", "", "")
	_ = fs.Parse(args)

	if *path != "" {
		return *path
	}
	return os.Getenv(configEnv)
}
