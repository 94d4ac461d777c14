package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nikbrunner/bmr/internal/api"
	"github.com/nikbrunner/bmr/internal/event"
	"github.com/nikbrunner/bmr/internal/resolver"
	"github.com/nikbrunner/bmr/internal/storage"
)

var (
	// Global flags
	verbose    bool
	configPath string

	logger *zap.Logger
	env    *environment
)

// environment is everything a command needs, built once per invocation.
type environment struct {
	cfg      *storage.Config
	bus      *event.Bus
	reporter *event.Reporter
	store    storage.Storage
	client   *api.Client
	resolver *resolver.Resolver
	out      io.Writer
	errOut   io.Writer
}

var rootCmd = &cobra.Command{
	Use:   "bmr",
	Short: "bmr - client for the remote bookmarks and document store",
	Long: `bmr browses, searches and edits the bookmarks kept by the bookmarks
backend and searches and uploads documents in MyDMS.

Configuration is read from ~/.config/bmr/config.yaml, created with defaults
on first use. BMR_BASE_URL and BMR_TOKEN override the file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		logger, err = newLogger(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		store, err := storage.OpenStorage()
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}

		env = newEnvironment(cfg, store, cmd.OutOrStdout(), cmd.ErrOrStderr())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/bmr/config.yaml)")

	rootCmd.AddCommand(
		lsCmd, searchCmd, mvCmd, addCmd, editCmd, rmCmd, pathsCmd, topCmd,
		checkCmd, importCmd, exportCmd,
		docsCmd,
		whoamiCmd, infoCmd, sitesCmd,
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	env.close()
	if logger != nil {
		_ = logger.Sync()
	}
	if err == nil {
		return
	}
	var r reportedError
	if !errors.As(err, &r) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}

func loadConfig() (*storage.Config, error) {
	path := configPath
	if path == "" {
		var err error
		path, err = storage.DefaultConfigFilePath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config path: %w", err)
		}
	}
	return storage.LoadConfig(path)
}

func newLogger(level string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}
	config.Level = zap.NewAtomicLevelAt(lvl)
	return config.Build()
}

func newEnvironment(cfg *storage.Config, store storage.Storage, out, errOut io.Writer) *environment {
	if logger == nil {
		logger = zap.NewNop()
	}
	bus := event.NewBus(logger)
	reporter := event.NewReporter(bus, cfg.NoAccessRedirect())

	client := api.NewClient(api.ClientParams{
		BaseURL:     cfg.BaseURL,
		CoreURL:     cfg.CoreURL,
		MydmsURL:    cfg.MydmsURL,
		Token:       cfg.Token,
		Timeout:     cfg.GetRequestTimeout(),
		LongTimeout: cfg.GetUploadTimeout(),
		Bus:         bus,
		Logger:      logger.Named("api"),
	})

	e := &environment{
		cfg:      cfg,
		bus:      bus,
		reporter: reporter,
		store:    store,
		client:   client,
		out:      out,
		errOut:   errOut,
	}
	e.resolver = resolver.New(resolver.Params{
		Backend:       client,
		Cache:         store,
		Reporter:      reporter,
		Logger:        logger.Named("resolver"),
		ReadLaterPath: cfg.ReadLaterPath,
		PageSize:      cfg.PageSize,
		Debounce:      cfg.GetDebounce(),
	})

	storage.WatchAuth(bus, store, logger)
	subscribe(bus, errOut)
	return e
}

func (e *environment) close() {
	if e == nil {
		return
	}
	e.resolver.Close()
	if c, ok := e.store.(io.Closer); ok {
		_ = c.Close()
	}
}

// reportedError is an error that was already shown through the bus.
type reportedError struct{ err error }

func (r reportedError) Error() string { return r.err.Error() }
func (r reportedError) Unwrap() error { return r.err }

func reported(err error) error {
	if err == nil {
		return nil
	}
	return reportedError{err: err}
}

// fail shows err through the bus and marks it as shown.
func (e *environment) fail(err error) error {
	if err == nil {
		return nil
	}
	e.reporter.Fail(err)
	return reported(err)
}

// openURL opens url in the default browser.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	}
	if cmd != nil {
		_ = cmd.Start()
	}
}
