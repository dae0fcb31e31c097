package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/eventd/internal/calendar"
	"github.com/sandeepkv93/eventd/internal/storage"
)

func NewImportCommand(root *RootOptions) *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "import PATH",
		Short: "Import events from another events file",
		Long: "Merge the events of PATH into the calendar, or replace the calendar with them " +
			"when --replace is given. Malformed lines are skipped and reported.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), root, logQuiet, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			var report calendar.ImportReport
			if replace {
				report, err = a.cal.ImportReplace(args[0])
			} else {
				report, err = a.cal.ImportMerge(args[0])
			}
			for _, p := range report.Skipped {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s:%d: %v\n", args[0], p.Line, p.Reason)
			}
			if err != nil {
				return classify("import events", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d event(s) (%s), %d line(s) skipped\n",
				report.Imported, report.Mode, len(report.Skipped))
			return nil
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "replace the calendar instead of merging")

	return cmd
}

func NewExportCommand(root *RootOptions) *cobra.Command {
	var asICS bool

	cmd := &cobra.Command{
		Use:   "export PATH",
		Short: "Export the events file",
		Long: "Copy the events file byte for byte to PATH, or write an iCalendar file " +
			"with one alarm per reminder when --ics is given.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), root, logQuiet, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			if asICS {
				err = a.cal.ExportICS(args[0])
			} else {
				err = a.cal.ExportTo(args[0])
			}
			if err != nil {
				return classify("export events", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d event(s) to %s\n", a.cal.Len(), args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&asICS, "ics", false, "write iCalendar instead of the native format")

	return cmd
}

func NewRelocateCommand(root *RootOptions) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "relocate DIR",
		Short: "Move the events file into DIR",
		Long: "Copy the events file into DIR, switch to it and remember the new location " +
			"for later runs. The old file is left in place. With --reset the remembered " +
			"location is forgotten and the configured data_file is used again.",
		Args: func(cmd *cobra.Command, args []string) error {
			if reset {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), root, logQuiet, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			if reset {
				return forgetLocation(cmd, a)
			}
			if a.repo == nil {
				a.log.Warn("state database unavailable, the new location is not remembered")
			}
			path, err := a.cal.Relocate(cmd.Context(), args[0])
			if err != nil {
				return classify("relocate events file", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "events file is now %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "forget the remembered location")

	return cmd
}

func forgetLocation(cmd *cobra.Command, a *app) error {
	if a.repo == nil {
		return NewExitError(ExitFailure, "state database unavailable")
	}
	err := a.repo.DeleteSetting(cmd.Context(), storage.KeyDataFile)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		fmt.Fprintln(cmd.OutOrStdout(), "no remembered location")
		return nil
	case err != nil:
		return WrapExitError(ExitFailure, "forget location", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "events file is now %s\n", a.cfg.DataFile)
	return nil
}
