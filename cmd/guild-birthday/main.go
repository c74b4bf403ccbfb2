package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/tartampluch/guild-birthday/internal/announce"
	"github.com/tartampluch/guild-birthday/internal/config"
	"github.com/tartampluch/guild-birthday/internal/engine"
	"github.com/tartampluch/guild-birthday/internal/messages"
	"github.com/tartampluch/guild-birthday/internal/server"
	"github.com/tartampluch/guild-birthday/internal/store"
	"github.com/tartampluch/guild-birthday/internal/worker"
)

// main is the application entry point.
// It delegates execution to runMain to ensure that deferred function calls
// (like closing log files) are executed before the process terminates.
// os.Exit() does not run defers, so we must return an integer code first.
func main() {
	os.Exit(runMain())
}

// runMain manages the application lifecycle, argument parsing, and exit codes.
// Returns config.ExitCodeSuccess on success, config.ExitCodeError on failure.
func runMain() int {
	showVersion := flag.Bool(config.FlagVersion, false, config.FlagDescVersion)
	debugMode := flag.Bool(config.FlagDebug, false, config.FlagDescDebug)
	envFile := flag.String(config.FlagEnvFile, "", config.FlagDescEnvFile)
	flag.Parse()

	if *showVersion {
		printVersion()
		return config.ExitCodeSuccess
	}

	// Structured logging goes up early to capture startup issues.
	logCloser := setupLogging(*debugMode)
	if logCloser != nil {
		defer func() {
			_ = logCloser.Close() // Best effort close
		}()
	}

	// Root context cancels on SIGINT (Ctrl+C) or SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logStartupInfo()

	if err := run(ctx, *envFile); err != nil && err != context.Canceled {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// run wires the dependencies and drives the feed server and the daily worker
// until the context is cancelled.
func run(ctx context.Context, envFile string) error {
	settings := config.Load(envFile)
	if err := settings.Validate(); err != nil {
		return err
	}

	repo, err := store.Open(settings.DatabasePath)
	if err != nil {
		return err
	}
	defer func() { _ = repo.Close() }()

	loc, err := messages.New(settings.Language)
	if err != nil {
		return err
	}

	svc := engine.NewService(repo, repo)
	svc.Messages = loc.EngineMessages()

	publisher, err := newPublisher(settings)
	if err != nil {
		return err
	}
	defer func() { _ = publisher.Close() }()

	feedServer := server.NewFeedServer(settings.Addr(), svc, repo)
	announcer := worker.New(svc, repo, publisher, feedServer, engine.RealClock{})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return feedServer.Start(gctx) })
	g.Go(func() error { return announcer.Run(gctx) })
	return g.Wait()
}

// newPublisher connects the AMQP client, or a no-op when announcements are
// not configured.
func newPublisher(settings *config.Settings) (announce.Publisher, error) {
	if !settings.AnnouncementsEnabled() {
		slog.Info(config.MsgAnnounceOff, config.LogKeyComponent, config.CompMain)
		return announce.NopPublisher{}, nil
	}
	return announce.NewClient(settings.AMQPURL, settings.AMQPExchange, settings.AMQPQueue)
}

// printVersion outputs the build information to stdout and exits.
func printVersion() {
	fmt.Printf(config.MsgVersionOutput,
		config.AppName,
		config.Version,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging configures the default slog logger.
func setupLogging(debugMode bool) io.Closer {
	var writers []io.Writer
	var logFile *os.File

	writers = append(writers, os.Stdout)

	// Also log to a file in the user's cache directory when possible.
	if logPath, err := getLogFilePath(); err == nil {
		// O_TRUNC resets logs on restart to prevent indefinite growth.
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}

	logger := slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), opts))
	slog.SetDefault(logger)

	if logFile == nil {
		return nil
	}
	return logFile
}

// getLogFilePath determines the platform-specific cache directory for logs.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}
