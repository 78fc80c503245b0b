package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/cursus/internal/app"
	"github.com/ternarybob/cursus/internal/common"
	"github.com/ternarybob/cursus/internal/server"
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
	serverPort   = flag.Int("port", 0, "Server port (overrides config)")
	serverHost   = flag.String("host", "", "Server host (overrides config)")
	workflowFile = flag.String("workflow", "", "Workflow file path (overrides config)")
	restarted    = flag.Bool("restart", false, "Treat this run as a restart of a completed workflow")
	showVersion  = flag.Bool("version", false, "Print version information")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("Cursus version %s\n", common.GetVersion())
		os.Exit(0)
	}

	// Startup sequence (REQUIRED ORDER):
	// 1. Load config (defaults -> file1 -> file2 -> ... -> env)
	// 2. Apply CLI overrides (highest priority)
	// 3. Initialize logger
	// 4. Print banner
	var err error

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("cursus.toml"); err == nil {
			configFiles = append(configFiles, "cursus.toml")
		}
	}

	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}
	common.ApplyFlagOverrides(config, *serverPort, *serverHost, *workflowFile)

	logger := common.SetupLogger(config)
	common.InstallCrashHandler("./logs")
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 1<<16)
			n := runtime.Stack(buf, false)
			crashPath := common.WriteCrashFile(r, string(buf[:n]))
			logger.Error().
				Str("crash_file", crashPath).
				Msg("Fatal error - crash file written")
			common.Stop()
			os.Exit(1)
		}
	}()

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
		os.Exit(1)
	}
	application.Scheduler.SetRestarted(*restarted)

	common.PrintBanner(config, application.Workflow.Name, logger)

	httpServer := server.New(application)
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("HTTP server failed")
		}
	}()

	ctx, cancel := context.WithCancel(application.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info().Str("signal", sig.String()).Msg("Signal received, stopping")
		cancel()
	}()

	exitCode := 0
	if err := application.Scheduler.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("Scheduler terminated abnormally")
		exitCode = 1
	}

	common.PrintShutdownBanner(logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("HTTP shutdown incomplete")
	}
	application.Shutdown()
	common.Stop()
	os.Exit(exitCode)
}
