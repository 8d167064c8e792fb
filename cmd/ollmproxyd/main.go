package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/marrowgate/ollm/internal/backend"
	"github.com/marrowgate/ollm/internal/config"
	"github.com/marrowgate/ollm/internal/logger"
	"github.com/marrowgate/ollm/internal/proxy"
	"github.com/marrowgate/ollm/internal/util"
	"github.com/marrowgate/ollm/internal/version"
)

func main() {
	startTime := time.Now()
	vlog := log.New(log.Writer(), "", 0)

	flags := parseFlags()

	if flags.showVersion {
		version.PrintVersionInfo(true, vlog)
		os.Exit(0)
	}
	version.PrintVersionInfo(false, vlog)

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	applyFlagOverrides(cfg, flags)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logInstance, styledLogger, cleanup, err := logger.NewWithTheme(&logger.Config{
		Level:      cfg.Logging.Level,
		LogDir:     cfg.Logging.LogDir,
		Theme:      cfg.Logging.Theme,
		MaxSize:    cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAgeDays,
		FileOutput: cfg.Logging.FileOutput,
		Enabled:    cfg.Proxy.LogEnabled,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()
	slog.SetDefault(logInstance)

	styledLogger.Info("initialising", "version", version.Version, "pid", os.Getpid(),
		"backend_url", cfg.Proxy.BackendURL, "backend_mode", cfg.Proxy.BackendMode, "listen", cfg.Server.Listen)

	if err := checkListenAddr(cfg.Server.Listen); err != nil {
		fmt.Fprintf(os.Stderr, "cannot listen on %s: %v\n", cfg.Server.Listen, err)
		os.Exit(1)
	}

	backendClient := backend.New(cfg.Proxy.BackendURL, backend.Mode(cfg.Proxy.BackendMode))
	server := proxy.New(cfg, backendClient, styledLogger)

	httpServer := &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      server.Handler(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSec) * time.Second,
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		styledLogger.Info("shutdown signal received", "signal", sig.String())
		stop()
	}()

	serveErrCh := make(chan error, 1)
	go func() {
		styledLogger.Info("listening", "addr", cfg.Server.Listen)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
			return
		}
		serveErrCh <- nil
	}()

	select {
	case err := <-serveErrCh:
		if err != nil {
			logger.FatalWithLogger(logInstance, "failed to bind listener", "error", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		styledLogger.Error("error during shutdown", "error", err)
	}

	styledLogger.Info("ollmproxyd has shut down", "uptime", time.Since(startTime).String())
}

// checkListenAddr fails fast with a clear message when the configured
// listen address is already bound, instead of letting httpServer.ListenAndServe
// surface a bare "address already in use" once the logger's startup banner
// has already printed.
func checkListenAddr(listen string) error {
	host, portStr, err := net.SplitHostPort(listen)
	if err != nil {
		return err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return err
	}
	if !util.IsPortAvailable(host, port) {
		return fmt.Errorf("port %d is already in use", port)
	}
	return nil
}

type cliFlags struct {
	listen        string
	backendURL    string
	backendMode   string
	configPath    string
	logSet        bool
	logEnabled    bool
	loadTimeout   float64
	reqTimeout    float64
	streamTimeout float64
	showVersion   bool
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.listen, "listen", "", "address to listen on, e.g. :11434")
	flag.StringVar(&f.backendURL, "backend-url", "", "LM Studio / OpenAI-compatible backend base URL")
	flag.StringVar(&f.backendURL, "lmstudio-url", "", "alias for -backend-url")
	flag.StringVar(&f.backendMode, "backend-mode", "", "openai or native")
	flag.StringVar(&f.configPath, "config", "", "path to a YAML config file")
	flag.BoolVar(&f.logEnabled, "log", true, "enable request logging")
	flag.Float64Var(&f.loadTimeout, "load-timeout-seconds", 0, "override load_timeout_seconds")
	flag.Float64Var(&f.reqTimeout, "request-timeout-seconds", 0, "override request_timeout_seconds")
	flag.Float64Var(&f.streamTimeout, "stream-timeout-seconds", 0, "override stream_timeout_seconds")
	flag.BoolVar(&f.showVersion, "version", false, "print version information and exit")
	flag.Parse()

	flag.Visit(func(fl *flag.Flag) {
		if fl.Name == "log" {
			f.logSet = true
		}
	})
	return f
}

func applyFlagOverrides(cfg *config.Config, f cliFlags) {
	if f.listen != "" {
		cfg.Server.Listen = f.listen
	}
	if f.backendURL != "" {
		cfg.Proxy.BackendURL = f.backendURL
	}
	if f.backendMode != "" {
		cfg.Proxy.BackendMode = f.backendMode
	}
	if f.logSet {
		cfg.Proxy.LogEnabled = f.logEnabled
	}
	if f.loadTimeout > 0 {
		cfg.Proxy.LoadTimeoutSeconds = f.loadTimeout
	}
	if f.reqTimeout > 0 {
		cfg.Proxy.RequestTimeoutSeconds = f.reqTimeout
	}
	if f.streamTimeout > 0 {
		cfg.Proxy.StreamTimeoutSeconds = f.streamTimeout
	}
}
