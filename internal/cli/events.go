package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/eventd/internal/codec"
	"github.com/sandeepkv93/eventd/internal/commands"
	"github.com/sandeepkv93/eventd/internal/model"
	"github.com/sandeepkv93/eventd/internal/store"
)

// presets lists the suggested reminder offsets in flag syntax.
var presets = codec.FormatOffsets(model.ReminderPresets)

const dateHelp = "DATE is YYYY-MM-DD, today, tomorrow, yesterday or a day offset such as +3. TIME is HH:MM or HH:MM:SS."

func NewAddCommand(root *RootOptions) *cobra.Command {
	var reminders, description string

	cmd := &cobra.Command{
		Use:   "add DATE TIME TITLE...",
		Short: "Add an event",
		Long:  "Add an event and write the events file.\n\n" + dateHelp,
		Example: `  eventd add 2024-01-10 09:00 Standup -r 60,0 -d "daily sync"
  eventd add tomorrow 14:30 Dentist -r 1440,60`,
		Args:          cobra.MinimumNArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, root, args, reminders, description)
		},
	}

	cmd.Flags().StringVarP(&reminders, "reminders", "r", "", "comma-separated reminder offsets in minutes before the event, presets "+presets)
	cmd.Flags().StringVarP(&description, "description", "d", "", "event description")

	return cmd
}

func runAdd(cmd *cobra.Command, root *RootOptions, args []string, reminders, description string) error {
	date, err := commands.ResolveDate(args[0], model.Today())
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid date", err)
	}
	offsets, err := codec.ParseOffsets(reminders)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid reminders", err)
	}

	a, err := openApp(cmd.Context(), root, logQuiet, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	ev, err := a.cal.AddEvent(date, strings.Join(args[2:], " "), args[1], description, offsets)
	if err != nil {
		return classify("add event", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "added %s %s\n", date, firstLine(ev.String()))
	return nil
}

func NewListCommand(root *RootOptions) *cobra.Command {
	var (
		days   int
		all    bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list [DATE]",
		Short: "List events",
		Long: "List events starting at DATE (default today). Events are numbered per day; " +
			"edit and delete take the same numbers.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			from := model.Today()
			if len(args) == 1 {
				d, err := commands.ResolveDate(args[0], from)
				if err != nil {
					return WrapExitError(ExitCommandError, "invalid date", err)
				}
				from = d
			}
			if days < 1 {
				return NewExitError(ExitCommandError, "--days must be at least 1")
			}
			return runList(cmd, root, from, days, all, asJSON)
		},
	}

	cmd.Flags().IntVarP(&days, "days", "n", 1, "number of days to list")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "list every stored event")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}

type listedEvent struct {
	Date        string `json:"date"`
	Number      int    `json:"number"`
	Time        string `json:"time"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Reminders   []int  `json:"reminders"`
}

func runList(cmd *cobra.Command, root *RootOptions, from model.Date, days int, all, asJSON bool) error {
	a, err := openApp(cmd.Context(), root, logQuiet, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	var dates []model.Date
	if all {
		dates = a.cal.Dates()
		slices.SortFunc(dates, model.Date.Compare)
	} else {
		for i := 0; i < days; i++ {
			dates = append(dates, from.AddDays(i))
		}
	}

	listed := make([]listedEvent, 0)
	for _, d := range dates {
		for i, ev := range a.cal.EventsOn(d) {
			listed = append(listed, listedEvent{
				Date:        d.String(),
				Number:      i + 1,
				Time:        ev.OccursAt.Format(model.ClockLayout),
				Title:       ev.Title,
				Description: ev.Description,
				Reminders:   ev.Offsets(),
			})
		}
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(listed)
	}
	if len(listed) == 0 {
		fmt.Fprintln(out, "no events")
		return nil
	}
	writeAgenda(out, a.cal.EventsOn, dates)
	return nil
}

func writeAgenda(w io.Writer, eventsOn func(model.Date) []model.Event, dates []model.Date) {
	for _, d := range dates {
		events := eventsOn(d)
		if len(events) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s %s\n", d, d.At(0, 0, 0).Format("Mon"))
		for i, ev := range events {
			lines := strings.Split(ev.String(), "\n")
			fmt.Fprintf(w, "  %d. %s\n", i+1, lines[0])
			for _, l := range lines[1:] {
				fmt.Fprintf(w, "  %s\n", l)
			}
		}
	}
}

func NewEditCommand(root *RootOptions) *cobra.Command {
	var (
		newDate, clock, title, reminders, description string
	)

	cmd := &cobra.Command{
		Use:   "edit DATE N",
		Short: "Edit the N-th event of a day",
		Long: "Edit the N-th event listed for DATE. Only the given flags change; " +
			"the edited event moves to the end of its day.\n\n" + dateHelp,
		Example:       `  eventd edit 2024-01-10 1 --time 09:30 -r 15`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, root, args, newDate, clock, title, reminders, description)
		},
	}

	cmd.Flags().StringVar(&newDate, "date", "", "move the event to this date")
	cmd.Flags().StringVar(&clock, "time", "", "new time of day")
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVarP(&reminders, "reminders", "r", "", "new reminder offsets, presets "+presets+"; empty clears them")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")

	return cmd
}

func runEdit(cmd *cobra.Command, root *RootOptions, args []string, newDate, clock, title, reminders, description string) error {
	today := model.Today()
	date, err := commands.ResolveDate(args[0], today)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid date", err)
	}
	index, err := eventNumber(args[1])
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context(), root, logQuiet, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	events := a.cal.EventsOn(date)
	if index >= len(events) {
		return WrapExitError(ExitCommandError, "edit event", fmt.Errorf("%w: %s has %d event(s)", store.ErrOutOfRange, date, len(events)))
	}
	cur := events[index]

	form := commands.EventArgs{
		Date:        date,
		Clock:       cur.OccursAt.Format("15:04:05"),
		Title:       cur.Title,
		Offsets:     cur.Offsets(),
		Description: cur.Description,
	}
	flags := cmd.Flags()
	if flags.Changed("date") {
		if form.Date, err = commands.ResolveDate(newDate, today); err != nil {
			return WrapExitError(ExitCommandError, "invalid date", err)
		}
	}
	if flags.Changed("time") {
		form.Clock = clock
	}
	if flags.Changed("title") {
		form.Title = title
	}
	if flags.Changed("reminders") {
		if form.Offsets, err = codec.ParseOffsets(reminders); err != nil {
			return WrapExitError(ExitCommandError, "invalid reminders", err)
		}
	}
	if flags.Changed("description") {
		form.Description = description
	}

	next, err := form.Event()
	if err != nil {
		return classify("edit event", err)
	}
	if err := a.cal.EditEvent(date, index, next); err != nil {
		return classify("edit event", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "updated %s %s\n", next.Date(), firstLine(next.String()))
	return nil
}

func NewDeleteCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete DATE N",
		Aliases:       []string{"rm"},
		Short:         "Delete the N-th event of a day",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := commands.ResolveDate(args[0], model.Today())
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid date", err)
			}
			index, err := eventNumber(args[1])
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context(), root, logQuiet, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			removed, err := a.cal.DeleteEvent(date, index)
			if err != nil {
				return classify("delete event", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s %s\n", date, firstLine(removed.String()))
			return nil
		},
	}
}

// eventNumber converts a one-based event number to a store index.
func eventNumber(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid event number %q", raw))
	}
	return n - 1, nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
