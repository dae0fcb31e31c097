package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/sandeepkv93/eventd/internal/calendar"
	"github.com/sandeepkv93/eventd/internal/config"
	"github.com/sandeepkv93/eventd/internal/logging"
	"github.com/sandeepkv93/eventd/internal/notify"
	"github.com/sandeepkv93/eventd/internal/storage"
)

type logMode int

const (
	// logQuiet writes warnings to stderr unless --verbose is set.
	logQuiet logMode = iota
	// logStderr writes at the configured level to stderr.
	logStderr
	// logFile writes at the configured level to the log file.
	logFile
)

// app is the wiring shared by every command: configuration, logger, the
// state database and the loaded calendar.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	repo    *storage.SQLiteRepository
	cal     *calendar.Calendar
	closers []io.Closer
}

func openApp(ctx context.Context, opts *RootOptions, mode logMode, stderr io.Writer) (*app, error) {
	path := opts.ConfigPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}

	a := &app{cfg: cfg}
	level := cfg.LogLevel
	if mode == logQuiet {
		level = "warn"
	}
	if opts.Verbose {
		level = "debug"
	}
	if mode == logFile {
		logger, closer, err := logging.OpenFile(level, cfg.LogPath())
		if err != nil {
			return nil, WrapExitError(ExitFailure, "open log file", err)
		}
		a.log = logger
		a.closers = append(a.closers, closer)
	} else {
		a.log = logging.New(level, stderr)
	}

	var prefs calendar.Preferences
	repo, err := storage.OpenSQLite(cfg.StateDB)
	if err != nil {
		a.log.Warn("state database unavailable, data file location will not be remembered", "path", cfg.StateDB, "err", err)
	} else {
		a.repo = repo
		a.closers = append(a.closers, repo)
		prefs = repo
	}

	dataPath := opts.DataFile
	if dataPath == "" {
		dataPath = calendar.ResolvePath(ctx, prefs, cfg.DataFile)
	}
	a.cal = calendar.New(dataPath, calendar.Options{Logger: a.log, Prefs: prefs})
	if _, err := a.cal.LoadFromPath(dataPath); err != nil {
		a.Close()
		return nil, classify("load events", err)
	}
	return a, nil
}

func (a *app) notifier() notify.Notifier {
	if !a.cfg.DesktopNotifications {
		return notify.NopNotifier{}
	}
	return notify.New(a.cfg.Notifier, a.log)
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// history returns the delivery history, or nil when the state database is
// unavailable.
func (a *app) history() storage.Repository {
	if a.repo == nil {
		return nil
	}
	return a.repo
}
