package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/smartcal/internal/cli/formatter"
	"github.com/alexanderramin/smartcal/internal/ics"
)

func newExportCmd(app *App) *cobra.Command {
	var out, name string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all events as an iCalendar (.ics) file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				name = app.CalendarName
			}
			opts := ics.Options{Name: name, Now: app.now()}

			var w io.Writer = cmd.OutOrStdout()
			if out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("creating %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}

			n, err := app.Calendar.Export(cmd.Context(), w, opts)
			if err != nil {
				return err
			}
			if out != "-" {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(fmt.Sprintf("已导出 %d 个事项到 %s", n, out)))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "-", "Output file, - for stdout")
	cmd.Flags().StringVar(&name, "name", "", "Calendar name shown by clients")
	return cmd
}
