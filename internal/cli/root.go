package cli

import (
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/smartcal/internal/selection"
	"github.com/alexanderramin/smartcal/internal/service"
)

// App holds what CLI commands need to run.
type App struct {
	Calendar service.CalendarService

	// Selection feeds the watch command. Nil disables it.
	Selection      selection.Source
	WatchInterval  time.Duration
	WatchMinLength int

	CalendarName string

	// IsInteractive reports whether prompts can be shown. Nil means "no".
	IsInteractive func() bool
	// Now is the clock used for "today". Nil means time.Now.
	Now func() time.Time
	// Confirm asks a yes/no question. Nil uses a huh form.
	Confirm func(title string) (bool, error)
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) confirm(title string) (bool, error) {
	if a.Confirm != nil {
		return a.Confirm(title)
	}
	return confirmForm(title)
}

// StdinIsTerminal reports whether stdin is attached to a terminal.
func StdinIsTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// NewRootCmd creates the top-level "smartcal" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "smartcal",
		Short: "Turn free text into calendar events",
		Long: "smartcal sends free text to a chat model, extracts the events it mentions " +
			"and keeps them in a local calendar.",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.interactive() {
				return runBrowse(cmd, app)
			}
			return printMonth(cmd, app, app.now().Year(), int(app.now().Month()), true)
		},
	}

	root.AddCommand(
		newAddCmd(app),
		newExtractCmd(app),
		newImportCmd(app),
		newDayCmd(app),
		newMonthCmd(app),
		newDeleteCmd(app),
		newClearDayCmd(app),
		newKeyCmd(app),
		newExportCmd(app),
		newWatchCmd(app),
		newBrowseCmd(app),
	)

	return root
}
