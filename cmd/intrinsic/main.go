package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/intrinsic/internal/app"
	"github.com/ternarybob/intrinsic/internal/common"
)

// Exit codes.
const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles  configPaths
	envFile      = flag.String("env", ".env", "Environment file loaded before configuration")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")

	// crashDir receives crash reports for panics that escape the batch runner.
	crashDir = "logs"
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: intrinsic [flags] SYMBOL [SYMBOL ...]\n\n")
		fmt.Fprintf(flag.CommandLine.Output(), "SYMBOL is CODE, EXCHANGE:CODE or EXCHANGE.CODE; @INDEX expands an index.\n\n")
		flag.PrintDefaults()
	}
}

func main() {
	os.Exit(run())
}

func run() (code int) {
	defer func() {
		if r := recover(); r != nil {
			path, err := common.WriteCrashFile(crashDir, r, string(debug.Stack()), time.Now())
			if err == nil {
				fmt.Fprintf(os.Stderr, "\n!!! FATAL CRASH - Report saved to: %s !!!\n", path)
			}
			fmt.Fprintf(os.Stderr, "Panic: %v\n", r)
			code = exitFailed
		}
	}()

	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("Intrinsic version %s\n", common.GetFullVersion())
		return exitOK
	}

	symbols := flag.Args()
	if len(symbols) == 0 {
		flag.Usage()
		return exitUsage
	}

	// Startup sequence:
	// 1. .env (so env overrides can see it)
	// 2. config: defaults -> files -> env
	// 3. logger, banner
	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load %s: %v\n", *envFile, err)
		}
	}

	if len(configFiles) == 0 {
		configFiles = common.DiscoverConfigPaths()
	}

	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		arbor.NewLogger().Error().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration")
		return exitUsage
	}

	if config.Logging.FilePath != "" {
		crashDir = filepath.Dir(config.Logging.FilePath)
	}

	logger := common.SetupLogger(config)
	common.PrintBanner(config, logger)

	logger.Debug().
		Strs("config_files", configFiles).
		Str("base_url", config.EODHD.BaseURL).
		Str("default_exchange", config.EODHD.DefaultExchange).
		Str("log_level", config.Logging.Level).
		Msg("Resolved configuration (sanitized)")

	application, err := app.New(config, logger, os.Stdout)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize application")
		return exitUsage
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close application")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := application.Run(ctx, symbols)
	if err != nil {
		logger.Error().Err(err).Strs("symbols", symbols).Msg("Failed to resolve tickers")
		return exitFailed
	}

	if !summary.OK() {
		return exitFailed
	}
	return exitOK
}
