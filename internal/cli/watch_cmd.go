package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/smartcal/internal/cli/formatter"
	"github.com/alexanderramin/smartcal/internal/selection"
)

func newWatchCmd(app *App) *cobra.Command {
	var auto bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the clipboard and offer to extract events from new text",
		Long: "Polls the clipboard. Each new piece of text is shown; with --auto it is analyzed " +
			"right away, otherwise an interactive session asks first. Stops on Ctrl+C.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Selection == nil {
				return errors.New("no selection source available on this system")
			}
			out := cmd.OutOrStdout()
			ctx := cmd.Context()

			w := &selection.Watcher{
				Source:    app.Selection,
				Interval:  app.WatchInterval,
				MinLength: app.WatchMinLength,
				OnChange: func(text string) {
					handleSelection(ctx, cmd, app, text, auto)
				},
			}

			fmt.Fprintln(out, formatter.Dim("正在监听剪贴板，按 Ctrl+C 退出"))
			err := w.Run(ctx)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&auto, "auto", false, "Analyze every new selection without asking")
	return cmd
}

func handleSelection(ctx context.Context, cmd *cobra.Command, app *App, text string, auto bool) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, formatter.Bold("检测到新文本：")+formatter.Truncate(text, 60))

	if !auto {
		if !app.interactive() {
			return
		}
		ok, err := app.confirm("分析这段文本？")
		if err != nil || !ok {
			return
		}
	}

	res, err := app.Calendar.ExtractAndImport(ctx, text)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), formatter.StyleRed.Render(err.Error()))
		return
	}
	printImport(out, res)
}
