package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/smartcal/internal/cli/formatter"
)

func newKeyCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the model API key",
	}
	cmd.AddCommand(newKeySetCmd(app), newKeyStatusCmd(app))
	return cmd
}

func newKeySetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set [key]",
		Short: "Validate and save an API key",
		Long:  "Sends a minimal request with the key and saves it only if the endpoint accepts it. Without an argument the key is prompted for.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var key string
			switch {
			case len(args) == 1:
				key = args[0]
			case app.interactive():
				if err := keyForm(&key).Run(); err != nil {
					return err
				}
			default:
				return errors.New("no key given")
			}

			ok, msg := app.Calendar.Configure(cmd.Context(), strings.TrimSpace(key))
			if !ok {
				return errors.New(msg)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(msg))
			return nil
		},
	}
}

func newKeyStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether an API key is configured",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Calendar.CanExtract() {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Success("API 密钥已配置"))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Warning("未配置 API 密钥，运行 smartcal key set"))
			}
			return nil
		},
	}
}
