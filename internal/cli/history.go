package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/eventd/internal/model"
	"github.com/sandeepkv93/eventd/internal/notify"
	"github.com/sandeepkv93/eventd/internal/storage"
)

func NewHistoryCommand(root *RootOptions) *cobra.Command {
	var (
		limit  int
		since  time.Duration
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "history [ID]",
		Short: "Show recently raised reminders",
		Long: "List recently raised reminders, newest first. With an ID (see --json) " +
			"show that single entry.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), root, logQuiet, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()
			if a.repo == nil {
				return NewExitError(ExitFailure, "state database unavailable")
			}

			if len(args) == 1 {
				return showDelivery(cmd, a, args[0], asJSON)
			}

			filter := storage.DeliveryListFilter{Limit: limit}
			if since > 0 {
				from := time.Now().Add(-since)
				filter.Since = &from
			}
			deliveries, err := a.repo.ListDeliveries(cmd.Context(), filter)
			if err != nil {
				return WrapExitError(ExitFailure, "list deliveries", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(deliveries)
			}
			if len(deliveries) == 0 {
				fmt.Fprintln(out, "no reminders raised yet")
				return nil
			}
			for _, d := range deliveries {
				fmt.Fprintf(out, "%s  %-24s %s (%s)\n",
					d.DeliveredAt.Format(time.DateTime),
					notify.Headline(d.OffsetMinutes),
					d.Title,
					d.OccursAt.Format("Jan 02 15:04"))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of entries")
	cmd.Flags().DurationVar(&since, "since", 0, "only show reminders raised within this duration, e.g. 24h")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}

func showDelivery(cmd *cobra.Command, a *app, id string, asJSON bool) error {
	d, err := a.repo.GetDelivery(cmd.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		return NewExitError(ExitCommandError, fmt.Sprintf("no reminder with id %q", id))
	}
	if err != nil {
		return WrapExitError(ExitFailure, "get delivery", err)
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	}
	fmt.Fprintf(out, "id:        %s\n", d.ID)
	fmt.Fprintf(out, "event:     %s\n", d.Title)
	fmt.Fprintf(out, "occurs at: %s\n", d.OccursAt.Format(model.DisplayLayout))
	fmt.Fprintf(out, "reminder:  %s\n", notify.Headline(d.OffsetMinutes))
	fmt.Fprintf(out, "raised at: %s\n", d.DeliveredAt.Format(time.DateTime))
	return nil
}
