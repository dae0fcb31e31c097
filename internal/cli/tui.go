package cli

import (
	"context"
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/eventd/internal/scheduler"
	"github.com/sandeepkv93/eventd/internal/storage"
	"github.com/sandeepkv93/eventd/internal/store"
	"github.com/sandeepkv93/eventd/internal/update"
)

func NewTUICommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "tui",
		Short:         "Open the terminal calendar (default)",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, root)
		},
	}
}

func runTUI(cmd *cobra.Command, root *RootOptions) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := openApp(ctx, root, logFile, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	m := update.NewModel(a.cal, update.Options{
		Logger:          a.log,
		ReminderHistory: a.cfg.ReminderHistory,
		Recent:          recentReminders(ctx, a.history(), a.cfg.ReminderHistory),
	})
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	d := &dispatcher{
		ctx:      ctx,
		notifier: a.notifier(),
		repo:     a.history(),
		log:      a.log,
		now:      time.Now,
		forward: func(due store.Due, at time.Time) {
			program.Send(update.ReminderDueMsg{Due: due, At: at})
		},
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

	// Mutations run inside Update, so the refresh must not block on the
	// program's message channel.
	a.cal.OnStoreChanged(func() {
		engine.Kick()
		go program.Send(update.StoreChangedMsg{})
	})

	engine.Start()
	_, runErr := program.Run()
	// Unblocks a delivery that is still waiting on program.Send.
	cancel()
	engine.Stop()
	if runErr != nil {
		return WrapExitError(ExitFailure, "terminal UI", runErr)
	}
	return nil
}

// recentReminders loads the newest deliveries, oldest first, to seed the
// reminder log panel.
func recentReminders(ctx context.Context, repo storage.Repository, limit int) []update.ReminderEntry {
	if repo == nil || limit <= 0 {
		return nil
	}
	deliveries, err := repo.ListDeliveries(ctx, storage.DeliveryListFilter{Limit: limit})
	if err != nil {
		return nil
	}
	out := make([]update.ReminderEntry, 0, len(deliveries))
	for _, d := range deliveries {
		out = append(out, update.ReminderEntry{
			Title:         d.Title,
			OccursAt:      d.OccursAt,
			OffsetMinutes: d.OffsetMinutes,
			DeliveredAt:   d.DeliveredAt,
		})
	}
	slices.Reverse(out)
	return out
}
