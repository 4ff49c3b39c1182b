package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/smartcal/internal/cli/formatter"
)

func newDayCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "day [YYYY-MM-DD]",
		Short: "List the events of one day (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, year, month, err := resolveDay(args, app.now())
			if err != nil {
				return err
			}
			events := app.Calendar.Day(cmd.Context(), day, year, month)
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatDayEvents(day, year, month, events))
			return nil
		},
	}
}

func newMonthCmd(app *App) *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "month [YYYY-MM]",
		Short: "Show a month grid with event days marked (default this month)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, month, err := resolveMonth(args, app.now())
			if err != nil {
				return err
			}
			return printMonth(cmd, app, year, month, list)
		},
	}

	cmd.Flags().BoolVarP(&list, "list", "l", false, "Also list the month's events")
	return cmd
}

func printMonth(cmd *cobra.Command, app *App, year, month int, list bool) error {
	view := app.Calendar.Month(cmd.Context(), year, month)
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, formatter.RenderMonth(formatter.MonthGrid{
		Year:   year,
		Month:  month,
		Marked: view.Days,
		Today:  app.now(),
	}))
	fmt.Fprintln(out)
	fmt.Fprintln(out, formatter.Dim(fmt.Sprintf("%d 个事项，分布在 %d 天", len(view.Events), len(view.Days))))

	if list && len(view.Events) > 0 {
		fmt.Fprintln(out)
		fmt.Fprint(out, formatter.FormatEventList(view.Events))
	}
	return nil
}
