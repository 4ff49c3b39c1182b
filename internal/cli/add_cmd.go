package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/smartcal/internal/cli/formatter"
)

func newAddCmd(app *App) *cobra.Command {
	var date dateValue
	var clock, location, activity string

	cmd := &cobra.Command{
		Use:   "add [activity]",
		Short: "Add an event by hand",
		Example: `  smartcal add --date 2024-01-05 --time 14:00 --location 会议室 项目会议
  smartcal add --date 2024-01-06 体检`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !date.isSet() {
				return errors.New("--date is required")
			}
			if len(args) > 0 {
				activity = strings.Join(args, " ")
			}

			e, added, err := app.Calendar.AddManual(cmd.Context(), date.String(), clock, location, activity)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !added {
				fmt.Fprintln(out, formatter.Warning(fmt.Sprintf("%s %s 已存在：%s", e.ISODate(), e.Time, e.Activity)))
				return nil
			}
			fmt.Fprintln(out, formatter.Success(fmt.Sprintf("已添加 %s %s %s", e.ISODate(), e.Time, e.Activity)))
			return nil
		},
	}

	cmd.Flags().Var(&date, "date", "Event date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&clock, "time", "", "Time of day, e.g. 14:00 or 13:00-17:00")
	cmd.Flags().StringVar(&location, "location", "", "Where the event takes place")
	cmd.Flags().StringVar(&activity, "activity", "", "What happens (alternative to the positional argument)")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}
