package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"dceseed/internal/app/bootstrap"
	"dceseed/internal/platform/config"
	"dceseed/internal/platform/logging"
)

// Seeder process entrypoint.
// Data flow:
// 1) Load config (env, then optional TOML file).
// 2) Build app wiring (store + queue adapters + use cases).
// 3) Seed one remittance document with its content declarations.
// 4) In serve mode, keep the queue client warm and serve the status API.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout io.Writer, stderr io.Writer) int {
	flags := flag.NewFlagSet("seeder", flag.ContinueOnError)
	flags.SetOutput(stderr)
	count := flags.Int("count", 0, "content declarations per remittance document (default from config)")
	mode := flags.String("mode", "", "run mode: once | serve (default from config)")
	configPath := flags.String("config", "", "TOML config file (overrides SEED_CONFIG_FILE)")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	path := *configPath
	if path == "" {
		path = os.Getenv("SEED_CONFIG_FILE")
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return 2
	}
	if *mode != "" {
		cfg.RunMode = strings.ToLower(strings.TrimSpace(*mode))
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(stderr, "invalid config: %v\n", err)
			return 2
		}
	}

	var countOverride *int
	flags.Visit(func(f *flag.Flag) {
		if f.Name == "count" {
			countOverride = count
		}
	})

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, stderr)
	app, err := bootstrap.BuildSeeder(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "bootstrap seeder failed: %v\n", err)
		return 1
	}
	defer func() {
		if err := app.Close(); err != nil {
			fmt.Fprintf(stderr, "seeder shutdown close failed: %v\n", err)
		}
	}()

	seedRun, err := app.Seed(ctx, countOverride)
	if seedRun.Document.ID != "" {
		for _, line := range seedRun.Summary() {
			fmt.Fprintln(stdout, line)
		}
	}
	failed := err != nil || !seedRun.Succeeded()
	if err != nil {
		fmt.Fprintf(stderr, "seed run failed: %v\n", err)
	}

	if failed {
		return 1
	}
	if !app.Serving() {
		return 0
	}
	if err := app.Serve(ctx); err != nil {
		fmt.Fprintf(stderr, "seeder stopped with error: %v\n", err)
		return 1
	}
	return 0
}
