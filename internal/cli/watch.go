package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/eventd/internal/calendar"
	"github.com/sandeepkv93/eventd/internal/notify"
	"github.com/sandeepkv93/eventd/internal/scheduler"
	"github.com/sandeepkv93/eventd/internal/storage"
	"github.com/sandeepkv93/eventd/internal/store"
)

// historyRetention bounds the delivery history kept in the state database.
const historyRetention = 30 * 24 * time.Hour

func NewWatchCommand(root *RootOptions) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Raise reminders in the background",
		Long: "Poll the calendar and raise a desktop notification for every due reminder " +
			"until interrupted. Changes made to the events file by other eventd commands are " +
			"picked up on the next sweep.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, root, once)
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "run a single sweep and exit")

	return cmd
}

func runWatch(cmd *cobra.Command, root *RootOptions, once bool) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, root, logStderr, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	d := &dispatcher{
		ctx:      ctx,
		notifier: a.notifier(),
		repo:     a.history(),
		log:      a.log,
		out:      cmd.OutOrStdout(),
		now:      time.Now,
	}
	d.prune()

	engine, err := scheduler.NewEngine(reloadingSource{cal: a.cal, log: a.log}, d.deliver, scheduler.Options{
		Interval:    a.cfg.PollInterval,
		MaxLateness: a.cfg.MaxLateness,
		Logger:      a.log,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "start scheduler", err)
	}

	if once {
		n := engine.Sweep()
		a.log.Debug("sweep finished", "delivered", n)
	} else {
		a.log.Info("watching", "path", a.cal.Path(), "interval", engine.Interval())
		engine.Start()
		<-ctx.Done()
		engine.Stop()
		stats := engine.Stats()
		a.log.Info("stopped", "sweeps", stats.Sweeps, "delivered", stats.Delivered, "skipped", stats.Skipped)
	}

	if err := a.cal.Flush(); err != nil {
		return classify("save events", err)
	}
	return nil
}

// reloadingSource picks up outside edits of the events file before every
// sweep.
type reloadingSource struct {
	cal *calendar.Calendar
	log *slog.Logger
}

func (s reloadingSource) CollectDue(now time.Time, maxLateness time.Duration) ([]store.Due, int) {
	if _, err := s.cal.ReloadIfChanged(); err != nil {
		s.log.Warn("reload events", "path", s.cal.Path(), "err", err)
	}
	return s.cal.CollectDue(now, maxLateness)
}

// dispatcher delivers a due reminder: desktop notification, history row,
// a line on out and an optional forward to the terminal UI.
type dispatcher struct {
	ctx      context.Context
	notifier notify.Notifier
	repo     storage.Repository
	log      *slog.Logger
	out      io.Writer
	now      func() time.Time
	forward  func(due store.Due, at time.Time)
}

func (d *dispatcher) deliver(due store.Due) {
	at := d.now()
	n := notify.Message(due)

	if d.out != nil {
		fmt.Fprintf(d.out, "%s  %s  %s (%s)\n",
			at.Format(time.DateTime), n.Title, due.Event.Title, due.Event.OccursAt.Format("Jan 02 15:04"))
	}
	if err := d.notifier.Send(d.ctx, n); err != nil {
		d.log.Warn("desktop notification failed", "title", due.Event.Title, "err", err)
	}
	if d.repo != nil {
		rec := storage.NewDelivery(due.Event.Title, due.Event.OccursAt, due.OffsetMinutes, at)
		if err := d.repo.RecordDelivery(d.ctx, rec); err != nil {
			d.log.Warn("record delivery", "title", due.Event.Title, "err", err)
		}
	}
	if d.forward != nil {
		d.forward(due, at)
	}
}

func (d *dispatcher) prune() {
	if d.repo == nil {
		return
	}
	n, err := d.repo.PruneDeliveries(d.ctx, d.now().Add(-historyRetention))
	if err != nil {
		d.log.Warn("prune delivery history", "err", err)
		return
	}
	if n > 0 {
		d.log.Debug("pruned delivery history", "rows", n)
	}
}
