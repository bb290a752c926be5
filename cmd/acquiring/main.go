package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"sberbank-acquiring/internal/config"
	"sberbank-acquiring/internal/logger"
	"sberbank-acquiring/internal/tracer"
	"sberbank-acquiring/pkg/acquiring"
)

const (
	exitOK = iota
	exitConfig
	exitNetwork
	exitAction
)

var jsonAPI = jsoniter.Config{
	EscapeHTML:  false,
	SortMapKeys: true,
	UseNumber:   true,
}.Froze()

// syncLogs flushes buffered log entries; swapped in tests.
var syncLogs = logger.Sync

func main() {
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "usage: acquiring <action> [key=value ...]")
		flag.PrintDefaults()
	}
	flag.Parse()

	// os.Exit skips deferred calls, so start owns all cleanup.
	os.Exit(start(flag.Args(), os.Stdout))
}

func start(args []string, out io.Writer) int {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitConfig
	}

	if cfg.Verbose {
		logger.SetDebug(cfg.AppEnv)
	} else {
		logger.Init(cfg.AppEnv)
	}
	defer syncLogs()

	shutdown, err := tracer.Setup(cfg.Tracing)
	if err != nil {
		logger.L().Error("Failed to set up tracing", zap.Error(err))
		return exitConfig
	}
	defer func() { _ = shutdown(context.Background()) }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return run(ctx, cfg, args, out)
}

func run(ctx context.Context, cfg *config.Config, args []string, out io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "action is required")
		return exitConfig
	}

	data, err := parseData(args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitConfig
	}

	client, err := acquiring.NewClient(cfg.Settings())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitConfig
	}

	resp, err := client.Execute(ctx, args[0], data)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCode(err)
	}

	enc := jsonAPI.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitConfig
	}
	return exitOK
}

func exitCode(err error) int {
	switch {
	case acquiring.IsNetworkError(err):
		return exitNetwork
	case acquiring.IsActionError(err):
		return exitAction
	default:
		return exitConfig
	}
}

// parseData turns key=value arguments into action data. Repeated keys keep the last value.
func parseData(args []string) (map[string]any, error) {
	data := make(map[string]any, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid argument %q, expected key=value", arg)
		}
		data[key] = value
	}
	return data, nil
}
