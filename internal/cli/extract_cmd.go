package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/smartcal/internal/cli/formatter"
	"github.com/alexanderramin/smartcal/internal/service"
)

func newExtractCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [text...]",
		Short: "Extract events from text and add them to the calendar",
		Long:  "Sends the text (arguments, or stdin when none are given) to the model and stores every event it finds.",
		Example: `  smartcal extract 明天下午三点在图书馆开组会，然后晚上七点聚餐
  pbpaste | smartcal extract`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
				text = string(data)
			}

			var stop func()
			if app.interactive() {
				stop = formatter.StartSpinner(cmd.ErrOrStderr(), "正在分析文本…")
			}
			res, err := app.Calendar.ExtractAndImport(cmd.Context(), text)
			if stop != nil {
				stop()
			}
			if err != nil {
				return err
			}

			printImport(cmd.OutOrStdout(), res)
			return nil
		},
	}
	return cmd
}

func newImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <reply.json>",
		Short: "Import events from a saved model reply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Calendar.ImportFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printImport(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func printImport(w io.Writer, res service.ImportResult) {
	fmt.Fprintln(w, formatter.FormatImportSummary(res.Parsed, res.Added, res.Duplicates))
	if len(res.Events) > 0 {
		fmt.Fprint(w, formatter.FormatEventList(res.Events))
	}
}
