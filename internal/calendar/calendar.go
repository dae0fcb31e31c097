// Package calendar is the entry point the presentation layers use to read and
// change events. Every mutating call is durable: the new file contents are
// written before the in-memory store changes, so a failed write leaves both
// the file and the store as they were.
package calendar

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sandeepkv93/eventd/internal/codec"
	"github.com/sandeepkv93/eventd/internal/ics"
	"github.com/sandeepkv93/eventd/internal/importer"
	"github.com/sandeepkv93/eventd/internal/model"
	"github.com/sandeepkv93/eventd/internal/storage"
	"github.com/sandeepkv93/eventd/internal/store"
)

const DataFileName = "calendar_events.dat"

var ErrNoPath = errors.New("calendar: no data file path")

// Preferences remembers values across runs. storage.SQLiteRepository
// satisfies it.
type Preferences interface {
	GetSetting(ctx context.Context, key string) (storage.Setting, error)
	PutSetting(ctx context.Context, key, value string) error
}

type Options struct {
	Logger *slog.Logger
	Prefs  Preferences
	Now    func() time.Time
}

type ImportReport struct {
	Mode     importer.Mode
	Imported int
	Skipped  []*codec.ParseError
}

type Calendar struct {
	store *store.Store
	log   *slog.Logger
	prefs Preferences
	now   func() time.Time

	// writeMu serializes mutations with their file writes. The store lock is
	// never held across I/O.
	writeMu sync.Mutex

	mu    sync.RWMutex
	path  string
	stamp fileStamp
	hooks []func()
}

// fileStamp identifies one version of the data file on disk.
type fileStamp struct {
	modTime int64
	size    int64
}

func statFile(path string) (fileStamp, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{}, false
	}
	return fileStamp{modTime: info.ModTime().UnixNano(), size: info.Size()}, true
}

func New(path string, opts Options) *Calendar {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Calendar{
		store: store.New(),
		log:   opts.Logger,
		prefs: opts.Prefs,
		now:   opts.Now,
		path:  path,
	}
}

// ResolvePath returns the data file remembered in prefs, or fallback when
// nothing usable is stored.
func ResolvePath(ctx context.Context, prefs Preferences, fallback string) string {
	if prefs == nil {
		return fallback
	}
	s, err := prefs.GetSetting(ctx, storage.KeyDataFile)
	if err != nil || strings.TrimSpace(s.Value) == "" {
		return fallback
	}
	return s.Value
}

func (c *Calendar) Path() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.path
}

func (c *Calendar) setPath(path string) {
	c.mu.Lock()
	c.path = path
	c.mu.Unlock()
	c.remember(path)
}

// remember records the on-disk version of path if it is the active file.
func (c *Calendar) remember(path string) {
	st, _ := statFile(path)
	c.mu.Lock()
	if path == c.path {
		c.stamp = st
	}
	c.mu.Unlock()
}

// OnStoreChanged registers fn to run after every successful mutation.
func (c *Calendar) OnStoreChanged(fn func()) {
	c.mu.Lock()
	c.hooks = append(c.hooks, fn)
	c.mu.Unlock()
}

func (c *Calendar) changed() {
	c.mu.RLock()
	hooks := append([]func(){}, c.hooks...)
	c.mu.RUnlock()
	for _, fn := range hooks {
		fn()
	}
}

// CollectDue lets the scheduler sweep the calendar's store.
func (c *Calendar) CollectDue(now time.Time, maxLateness time.Duration) ([]store.Due, int) {
	return c.store.CollectDue(now, maxLateness)
}

func (c *Calendar) EventsOn(date model.Date) []model.Event {
	return c.store.EventsOn(date)
}

func (c *Calendar) Range(from, to model.Date) iter.Seq2[model.Date, model.Event] {
	return c.store.Range(from, to)
}

func (c *Calendar) All() iter.Seq2[model.Date, model.Event] {
	return c.store.All()
}

// Dates lists every date that has at least one event.
func (c *Calendar) Dates() []model.Date {
	return c.store.Dates()
}

func (c *Calendar) Len() int {
	return c.store.Len()
}

// AddEvent builds an event from form input and stores it under date.
func (c *Calendar) AddEvent(date model.Date, title, clock, description string, offsets []int) (model.Event, error) {
	occursAt, err := date.ParseClock(clock)
	if err != nil {
		return model.Event{}, err
	}
	ev, err := model.NewEvent(strings.TrimSpace(title), occursAt, description, offsets)
	if err != nil {
		return model.Event{}, err
	}
	if err := c.Add(ev); err != nil {
		return model.Event{}, err
	}
	return ev, nil
}

// Add stores an already validated event under its own date.
func (c *Calendar) Add(ev model.Event) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	return c.commit("add", func(s *store.Store) error {
		s.Add(ev.Date(), ev)
		return nil
	})
}

// EditEvent replaces oldDate[index] with next. The edited event moves to the
// end of its (possibly new) day.
func (c *Calendar) EditEvent(oldDate model.Date, index int, next model.Event) error {
	if err := next.Validate(); err != nil {
		return err
	}
	return c.commit("edit", func(s *store.Store) error {
		return s.MoveEvent(oldDate, index, next.Date(), next)
	})
}

func (c *Calendar) DeleteEvent(date model.Date, index int) (model.Event, error) {
	var removed model.Event
	err := c.commit("delete", func(s *store.Store) error {
		ev, err := s.RemoveAt(date, index)
		removed = ev
		return err
	})
	return removed, err
}

// LoadFromPath replaces the store with the contents of path and makes path
// the active file. A missing file loads as an empty calendar. Malformed
// lines are skipped and returned.
func (c *Calendar) LoadFromPath(path string) ([]*codec.ParseError, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	res, err := codec.ReadFile(path)
	if err != nil {
		c.log.Error("load events", "path", path, "err", err)
		return nil, err
	}
	c.logSkipped(path, res.Skipped)

	importer.Replace(c.store, res.Seq())
	c.setPath(path)
	c.log.Info("loaded events", "path", path, "count", len(res.Entries), "skipped", len(res.Skipped))
	c.changed()
	return res.Skipped, nil
}

// Save writes the store to the active file.
func (c *Calendar) Save() error {
	return c.SaveToPath(c.Path())
}

// SaveToPath writes the store to path without changing the active file.
func (c *Calendar) SaveToPath(path string) error {
	if path == "" {
		return ErrNoPath
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.saveLocked(path)
}

func (c *Calendar) saveLocked(path string) error {
	data, err := codec.Marshal(c.store)
	if err != nil {
		return err
	}
	if err := codec.WriteFile(path, data); err != nil {
		c.log.Error("save events", "path", path, "err", err)
		return err
	}
	c.remember(path)
	c.log.Debug("saved events", "path", path, "count", c.store.Len())
	return nil
}

// ReloadIfChanged re-reads the active file when another process rewrote it
// since this calendar last read or wrote it. Unchanged events keep their
// delivery state, so a reload never repeats a reminder.
func (c *Calendar) ReloadIfChanged() (bool, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.reloadLocked()
}

func (c *Calendar) reloadLocked() (bool, error) {
	path := c.Path()
	if path == "" {
		return false, nil
	}
	st, ok := statFile(path)
	c.mu.RLock()
	same := st == c.stamp
	c.mu.RUnlock()
	if !ok || same {
		return false, nil
	}

	res, err := codec.ReadFile(path)
	if err != nil {
		return false, err
	}
	c.logSkipped(path, res.Skipped)
	c.store.Reload(res.Seq())
	c.remember(path)
	c.log.Info("reloaded events", "path", path, "count", len(res.Entries), "skipped", len(res.Skipped))
	c.changed()
	return true, nil
}

// Flush is called before exit. Every mutation is already on disk, so an
// existing active file is only re-read, never rewritten; a missing one is
// created from the store.
func (c *Calendar) Flush() error {
	path := c.Path()
	if path == "" {
		return ErrNoPath
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, ok := statFile(path); ok {
		_, err := c.reloadLocked()
		return err
	}
	return c.saveLocked(path)
}

func (c *Calendar) ImportMerge(path string) (ImportReport, error) {
	return c.importFile(importer.ModeMerge, path)
}

func (c *Calendar) ImportReplace(path string) (ImportReport, error) {
	return c.importFile(importer.ModeReplace, path)
}

func (c *Calendar) importFile(mode importer.Mode, path string) (ImportReport, error) {
	report := ImportReport{Mode: mode}
	if _, err := os.Stat(path); err != nil {
		return report, &codec.StorageError{Op: "open", Path: path, Err: err}
	}
	res, err := codec.ReadFile(path)
	if err != nil {
		return report, err
	}
	c.logSkipped(path, res.Skipped)
	report.Skipped = res.Skipped

	err = c.commit("import "+string(mode), func(s *store.Store) error {
		n, err := importer.Apply(mode, s, res.Seq())
		report.Imported = n
		return err
	})
	if err != nil {
		report.Imported = 0
		return report, err
	}
	c.log.Info("imported events", "path", path, "mode", mode, "count", report.Imported)
	return report, nil
}

// ExportTo copies the active file byte for byte to dst. The active file is
// written first if it does not exist yet.
func (c *Calendar) ExportTo(dst string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	src := c.Path()
	if src == "" {
		return ErrNoPath
	}
	data, err := os.ReadFile(src)
	if errors.Is(err, fs.ErrNotExist) {
		if data, err = codec.Marshal(c.store); err != nil {
			return err
		}
		if err := codec.WriteFile(src, data); err != nil {
			return err
		}
		c.remember(src)
	} else if err != nil {
		return &codec.StorageError{Op: "read", Path: src, Err: err}
	}
	if err := codec.WriteFile(dst, data); err != nil {
		return err
	}
	c.log.Info("exported events", "path", dst, "bytes", len(data))
	return nil
}

// ExportICS writes the store as an iCalendar file.
func (c *Calendar) ExportICS(dst string) error {
	var buf bytes.Buffer
	if err := ics.Export(&buf, c.store.All(), c.now()); err != nil {
		return err
	}
	if err := codec.WriteFile(dst, buf.Bytes()); err != nil {
		return err
	}
	c.log.Info("exported calendar", "path", dst, "count", c.store.Len())
	return nil
}

// Relocate moves the data file into dir, switches to it and remembers the
// new location. The old file is left in place.
func (c *Calendar) Relocate(ctx context.Context, dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	newPath := filepath.Join(abs, DataFileName)

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	data, err := os.ReadFile(c.Path())
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) && c.Path() != "" {
			return "", &codec.StorageError{Op: "read", Path: c.Path(), Err: err}
		}
		if data, err = codec.Marshal(c.store); err != nil {
			return "", err
		}
	}
	if err := codec.WriteFile(newPath, data); err != nil {
		return "", err
	}
	c.setPath(newPath)
	if c.prefs != nil {
		if err := c.prefs.PutSetting(ctx, storage.KeyDataFile, newPath); err != nil {
			return newPath, fmt.Errorf("calendar: remember data file: %w", err)
		}
	}
	c.log.Info("relocated data file", "path", newPath)
	return newPath, nil
}

// commit applies mutate to a scratch copy of the store, persists the copy
// and only then applies mutate to the live store.
func (c *Calendar) commit(op string, mutate func(*store.Store) error) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	path := c.Path()
	if path == "" {
		return ErrNoPath
	}

	scratch := store.New()
	scratch.Restore(c.store.Snapshot())
	if err := mutate(scratch); err != nil {
		return err
	}
	data, err := codec.Marshal(scratch)
	if err != nil {
		return err
	}
	if err := codec.WriteFile(path, data); err != nil {
		c.log.Error("persist events", "op", op, "path", path, "err", err)
		return err
	}
	c.remember(path)
	if err := mutate(c.store); err != nil {
		return err
	}
	c.log.Debug("committed", "op", op, "count", c.store.Len())
	c.changed()
	return nil
}

func (c *Calendar) logSkipped(path string, skipped []*codec.ParseError) {
	for _, p := range skipped {
		c.log.Warn("skipped malformed line", "path", path, "line", p.Line, "reason", p.Reason)
	}
}
