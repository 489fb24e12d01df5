package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/helmcode/pr-impact/pkg/checklist"
	"github.com/helmcode/pr-impact/pkg/config"
	"github.com/helmcode/pr-impact/pkg/observability"
	"github.com/helmcode/pr-impact/pkg/session"
	"github.com/helmcode/pr-impact/pkg/storage"
)

// App carries what every subcommand shares: global flags, the loaded
// configuration and the logger.
type App struct {
	ConfigFile string
	Verbose    bool

	Out    io.Writer
	ErrOut io.Writer

	cfg    *config.Config
	logger *zap.Logger
}

func NewApp() *App {
	return &App{Out: os.Stdout, ErrOut: os.Stderr}
}

// Setup loads configuration and installs the logger. It runs before every
// subcommand.
func (a *App) Setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(viper.New(), a.ConfigFile)
	if err != nil {
		return err
	}
	if a.Verbose {
		cfg.Logger.Level = "debug"
	}
	a.cfg = cfg
	a.logger = observability.Initialize(cfg.Logger, zapcore.Lock(zapcore.AddSync(a.ErrOut)))
	a.logger.Debug("Configuration loaded", zap.String("backend_url", cfg.BackendURL),
		zap.String("state_dir", cfg.StateDir))
	return nil
}

func (a *App) config() *config.Config {
	if a.cfg == nil {
		a.cfg = config.NewDefaultConfig()
	}
	return a.cfg
}

func (a *App) log() *zap.Logger {
	if a.logger == nil {
		return observability.GetLogger()
	}
	return a.logger
}

// openState opens the state directory and returns it with a session over
// its checklist store.
func (a *App) openState() (*storage.FileKV, *session.Session, error) {
	kv, err := storage.NewFileKV(a.config().StateDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open state directory: %w", err)
	}
	a.log().Debug("Opened state directory", zap.String("dir", kv.Dir()))
	s := session.New(checklist.NewKVStore(kv, a.log()), a.log())
	return kv, s, nil
}

// loadLast opens the state and installs the archived report. With
// allowEmpty, a missing report leaves the session in the no-report phase.
func (a *App) loadLast(allowEmpty bool) (*storage.FileKV, *session.Session, error) {
	kv, s, err := a.openState()
	if err != nil {
		return nil, nil, err
	}
	report, err := session.LoadLast(kv)
	switch {
	case err == nil:
		s.Install(report)
	case allowEmpty && errors.Is(err, session.ErrNoReport):
	default:
		return nil, nil, err
	}
	return kv, s, nil
}

func (a *App) printSuccess(msg string) {
	green := color.New(color.FgGreen)
	green.Fprintf(a.ErrOut, "✓ %s\n", msg)
}
