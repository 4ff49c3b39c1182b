package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/smartcal/internal/cli/formatter"
	"github.com/alexanderramin/smartcal/internal/domain"
)

func newDeleteCmd(app *App) *cobra.Command {
	var date dateValue
	var clock, location, activity string
	var index int

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete one event",
		Long: "Deletes the event matching --date, --time, --activity and --location exactly, " +
			"or the --index'th event listed by \"smartcal day\".",
		Example: `  smartcal delete --date 2024-01-05 --index 2
  smartcal delete --date 2024-01-05 --time 14:00 --activity 项目会议 --location 会议室`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !date.isSet() {
				return errors.New("--date is required")
			}

			var target domain.Event
			if index > 0 {
				events := app.Calendar.Day(cmd.Context(), date.day, date.year, date.month)
				if index > len(events) {
					return fmt.Errorf("%s has %d event(s), no #%d", date.String(), len(events), index)
				}
				target = events[index-1]
			} else {
				if activity == "" {
					return errors.New("--activity or --index is required")
				}
				e, err := domain.NewEvent(date.String(), clock, location, activity)
				if err != nil {
					return err
				}
				target = e
			}

			if app.interactive() {
				ok, err := app.confirm(fmt.Sprintf("确定要删除事项 '%s' 吗？", target.Activity))
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
			}

			app.Calendar.DeleteEvent(cmd.Context(), target)
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success("事项已删除"))
			return nil
		},
	}

	cmd.Flags().Var(&date, "date", "Event date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&index, "index", 0, "Position in the day's list (1-based)")
	cmd.Flags().StringVar(&clock, "time", "", "Event time as stored")
	cmd.Flags().StringVar(&location, "location", "", "Event location as stored")
	cmd.Flags().StringVar(&activity, "activity", "", "Event activity as stored")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

func newClearDayCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear-day <YYYY-MM-DD>",
		Short: "Delete every event on one day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, year, month, err := resolveDay(args, app.now())
			if err != nil {
				return err
			}

			if !yes {
				if !app.interactive() {
					return errors.New("refusing to clear a day without --yes in a non-interactive session")
				}
				ok, err := app.confirm(fmt.Sprintf("确定要删除%s的所有事项吗？", formatter.DayTitle(day, year, month)))
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
			}

			out := cmd.OutOrStdout()
			if app.Calendar.DeleteDay(cmd.Context(), day, year, month) {
				fmt.Fprintln(out, formatter.Success(fmt.Sprintf("已删除%s的所有事项", formatter.DayTitle(day, year, month))))
			} else {
				fmt.Fprintln(out, formatter.Dim("当天没有事项"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
