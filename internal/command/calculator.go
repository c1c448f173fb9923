package command

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joeycumines/termcalc/internal/config"
	"github.com/joeycumines/termcalc/internal/evaluator"
	"github.com/joeycumines/termcalc/internal/logging"
	"github.com/joeycumines/termcalc/internal/storage"
)

// contextFactory creates a command's execution context.
type contextFactory func() (context.Context, context.CancelFunc)

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func (f contextFactory) context() (context.Context, context.CancelFunc) {
	if f == nil {
		return signalContext()
	}
	return f()
}

// setupLogging builds the process logger from the flags and config, and
// installs it as the slog default.
func setupLogging(cfg *config.Config, logFile, logLevel string) (*logging.Logger, error) {
	logger, err := logging.Setup(logging.Options{File: logFile, Level: logLevel}, cfg)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger.Logger)
	return logger, nil
}

// newEvaluator returns an evaluator seeded with the [constants] section.
func newEvaluator(cfg *config.Config, logger *slog.Logger) *evaluator.Evaluator {
	opts := []evaluator.Option{evaluator.WithLogger(logger)}
	if cfg != nil && len(cfg.Constants) > 0 {
		opts = append(opts, evaluator.WithConstants(cfg.Constants))
	}
	return evaluator.New(opts...)
}

// openStore returns the backend holding the persisted session. An explicit
// path wins over state.file, which wins over the platform data directory.
// When persistence is disabled the session lives in memory only.
func openStore(cfg *config.Config, path string, noPersist bool) (storage.Backend, error) {
	schema := config.DefaultSchema()
	if noPersist || !schema.ResolveBool(cfg, config.KeyStatePersist) {
		return storage.NewInMemoryBackend(), nil
	}

	if path == "" {
		path = schema.Resolve(cfg, config.KeyStateFile)
	}
	if path == "" {
		var err error
		if path, err = storage.ResolveStatePath(storage.DefaultIdentity); err != nil {
			return nil, fmt.Errorf("failed to resolve state path: %w", err)
		}
	}

	backend, err := storage.NewFileSystemBackend(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open state file %s: %w", path, err)
	}
	return backend, nil
}
