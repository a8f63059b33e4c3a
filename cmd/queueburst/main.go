package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"dceseed/internal/app/bootstrap"
	"dceseed/internal/platform/config"
	"dceseed/internal/platform/logging"
)

// Queue burst entrypoint: sends sample messages into one FIFO group.
//
//	queueburst [-count N] [-group ID] [-delay 1s] [count [group [delay]]]
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout io.Writer, stderr io.Writer) int {
	flags := flag.NewFlagSet("queueburst", flag.ContinueOnError)
	flags.SetOutput(stderr)
	count := flags.Int("count", 0, "messages to send (default from config)")
	group := flags.String("group", "", "message group id (default from config)")
	delay := flags.Duration("delay", 0, "pause between messages (default from config)")
	configPath := flags.String("config", "", "TOML config file (overrides SEED_CONFIG_FILE)")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	var overrides bootstrap.BurstOverrides
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "count":
			overrides.Count = count
		case "group":
			overrides.GroupID = group
		case "delay":
			overrides.Delay = delay
		}
	})
	if *count < 0 || *delay < 0 {
		fmt.Fprintln(stderr, "count and delay must not be negative")
		return 2
	}

	positional := flags.Args()
	if len(positional) > 3 {
		fmt.Fprintf(stderr, "unexpected arguments %q\n", positional[3:])
		return 2
	}
	if len(positional) > 0 {
		n, err := strconv.Atoi(positional[0])
		if err != nil || n < 0 {
			fmt.Fprintf(stderr, "invalid message count %q\n", positional[0])
			return 2
		}
		overrides.Count = &n
	}
	if len(positional) > 1 {
		groupID := positional[1]
		overrides.GroupID = &groupID
	}
	if len(positional) > 2 {
		d, err := parseDelay(positional[2])
		if err != nil {
			fmt.Fprintf(stderr, "invalid delay %q: %v\n", positional[2], err)
			return 2
		}
		overrides.Delay = &d
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

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, stderr)
	app, err := bootstrap.BuildBurst(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "bootstrap queueburst failed: %v\n", err)
		return 1
	}
	defer func() {
		if err := app.Close(); err != nil {
			fmt.Fprintf(stderr, "queueburst shutdown close failed: %v\n", err)
		}
	}()

	result, err := app.Run(ctx, overrides)
	if result.QueueURL != "" {
		fmt.Fprintf(stdout, "queue: %s\n", result.QueueURL)
	}
	for _, outcome := range result.Outcomes {
		if outcome.Err != nil {
			fmt.Fprintf(stdout, "message %d failed: %v\n", outcome.Index, outcome.Err)
			continue
		}
		fmt.Fprintf(stdout, "message %d sent: %s\n", outcome.Index, outcome.MessageID)
	}
	fmt.Fprintf(stdout, "sent %d, failed %d\n", result.SuccessCount(), result.ErrorCount())
	if err != nil {
		fmt.Fprintf(stderr, "burst failed: %v\n", err)
		return 1
	}
	if result.ErrorCount() > 0 {
		return 1
	}
	return 0
}

// parseDelay accepts bare milliseconds ("250") or a duration ("250ms", "1s").
func parseDelay(value string) (time.Duration, error) {
	var d time.Duration
	if ms, err := strconv.Atoi(value); err == nil {
		d = time.Duration(ms) * time.Millisecond
	} else {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return 0, err
		}
		d = parsed
	}
	if d < 0 {
		return 0, fmt.Errorf("must not be negative")
	}
	return d, nil
}
