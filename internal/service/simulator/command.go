package simulator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/findme/internal/config"
	"github.com/oshokin/findme/internal/logger"
	"github.com/oshokin/findme/internal/tick"
)

// Options configures the simulator.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// LogPath is the file receiving log lines, DefaultLogFilename if empty.
	LogPath string
	// Peers is the number of simulated remote tags, DefaultPeers if zero.
	Peers int
	// Verbose writes debug lines to the log file regardless of the configured level.
	Verbose bool
}

const (
	// DefaultLogFilename is the log file used when Options.LogPath is empty.
	DefaultLogFilename = "findme-sim.log"
	// DefaultPeers is the number of simulated remote tags.
	DefaultPeers = 2
	// MaxPeers bounds the simulated remote tags; the last address byte numbers them.
	MaxPeers = 255
	// logFilePermissions is the mode of a created log file.
	logFilePermissions = 0o600
)

// errTooManyPeers is returned when more than MaxPeers remote tags are requested.
var errTooManyPeers = errors.New("too many simulated peers")

// Run starts the simulator and blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts *Options) error {
	peers, err := peerCount(opts.Peers)
	if err != nil {
		return err
	}

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	logPath := opts.LogPath
	if logPath == "" {
		logPath = DefaultLogFilename
	}

	logFile, err := os.OpenFile(filepath.Clean(logPath), os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermissions)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	defer func() {
		_ = logFile.Close()
	}()

	if level, ok := logger.ParseLogLevel(settings.LogLevel); ok {
		logger.SetLevel(level)
	}

	var zapOptions []zap.Option
	if opts.Verbose {
		zapOptions = append(zapOptions, logger.WithLevel(zapcore.DebugLevel))
	}

	logger.SetLogger(logger.NewWithWriter(logFile, nil, zapOptions...))

	ctx = logger.WithName(ctx, "findme-sim")

	m, err := newModel(ctx, settings, tick.NewSystemClock(), peers)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Simulator started", "peers", peers, "log", logPath)

	_, err = tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	if err != nil && !(errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil) {
		return fmt.Errorf("run terminal ui: %w", err)
	}

	logger.Info(ctx, "Simulator stopped")

	return nil
}

// peerCount applies the default to n and checks it against MaxPeers.
func peerCount(n int) (int, error) {
	switch {
	case n <= 0:
		return DefaultPeers, nil
	case n > MaxPeers:
		return 0, fmt.Errorf("simulate %d peers, at most %d: %w", n, MaxPeers, errTooManyPeers)
	default:
		return n, nil
	}
}
