package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/smartcal/internal/cli/formatter"
	"github.com/alexanderramin/smartcal/internal/domain"
	"github.com/alexanderramin/smartcal/internal/extract"
	"github.com/alexanderramin/smartcal/internal/service"
)

func newBrowseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Open the interactive calendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, app)
		},
	}
}

func runBrowse(cmd *cobra.Command, app *App) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	p := tea.NewProgram(
		newBrowseModel(ctx, app),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

type browseMode int

const (
	modeNormal browseMode = iota
	modeInput
	modeBusy
	modeConfirmDay
)

type browseKeyMap struct {
	Left, Right, Up, Down key.Binding
	NextMonth, PrevMonth  key.Binding
	Today                 key.Binding
	Add                   key.Binding
	PrevEvent, NextEvent  key.Binding
	DeleteEvent           key.Binding
	ClearDay              key.Binding
	Help                  key.Binding
	Quit                  key.Binding
}

func defaultBrowseKeys() browseKeyMap {
	return browseKeyMap{
		Left:        key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "前一天")),
		Right:       key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "后一天")),
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "上一周")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "下一周")),
		NextMonth:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "下个月")),
		PrevMonth:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "上个月")),
		Today:       key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "今天")),
		Add:         key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "分析文本")),
		PrevEvent:   key.NewBinding(key.WithKeys("["), key.WithHelp("[", "上一个事项")),
		NextEvent:   key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "下一个事项")),
		DeleteEvent: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "删除事项")),
		ClearDay:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "清空当天")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "帮助")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "退出")),
	}
}

func (k browseKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Add, k.ClearDay, k.Help, k.Quit}
}

func (k browseKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down},
		{k.PrevMonth, k.NextMonth, k.Today},
		{k.PrevEvent, k.NextEvent, k.DeleteEvent, k.ClearDay},
		{k.Add, k.Help, k.Quit},
	}
}

// extractDoneMsg carries the outcome of a background extraction.
type extractDoneMsg struct {
	seq int
	res service.ImportResult
	err error
}

type extractCancelledMsg struct{}

// browseModel is the bubbletea model for the interactive month view.
type browseModel struct {
	ctx context.Context
	app *App

	year, month, day int
	events           []domain.Event
	marked           map[int]bool
	cursor           int // selected event on the day, -1 for none

	mode   browseMode
	status string

	input textinput.Model
	keys  browseKeyMap
	help  help.Model
	width int

	ticket *extract.Ticket
	cancel chan struct{}
	seq    int // increments per extraction; older results are ignored
}

func newBrowseModel(ctx context.Context, app *App) browseModel {
	ti := textinput.New()
	ti.Placeholder = "粘贴或输入包含日程的文本"
	ti.Prompt = "› "
	ti.CharLimit = 4000

	now := app.now()
	m := browseModel{
		ctx:   ctx,
		app:   app,
		year:  now.Year(),
		month: int(now.Month()),
		day:   now.Day(),
		input: ti,
		keys:  defaultBrowseKeys(),
		help:  help.New(),
	}
	m.refresh()
	return m
}

// refresh reloads the month marks and the selected day's events.
func (m *browseModel) refresh() {
	view := m.app.Calendar.Month(m.ctx, m.year, m.month)
	m.marked = view.Days
	m.events = m.app.Calendar.Day(m.ctx, m.day, m.year, m.month)
	if m.cursor >= len(m.events) {
		m.cursor = len(m.events) - 1
	}
	if m.cursor < 0 && len(m.events) > 0 {
		m.cursor = 0
	}
}

func (m *browseModel) moveDays(n int) {
	t := time.Date(m.year, time.Month(m.month), m.day, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
	m.setDate(t.Year(), int(t.Month()), t.Day())
}

func (m *browseModel) moveMonths(n int) {
	t := time.Date(m.year, time.Month(m.month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	day := min(m.day, domain.DaysIn(t.Year(), int(t.Month())))
	m.setDate(t.Year(), int(t.Month()), day)
}

func (m *browseModel) setDate(year, month, day int) {
	if day != m.day || month != m.month || year != m.year {
		m.cursor = 0
	}
	m.year, m.month, m.day = year, month, day
	m.refresh()
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.input.Width = max(msg.Width-4, 10)
		return m, nil

	case extractDoneMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.mode = modeNormal
		m.ticket = nil
		if msg.err != nil {
			m.status = formatter.StyleRed.Render(msg.err.Error())
		} else {
			m.status = formatter.FormatImportSummary(msg.res.Parsed, msg.res.Added, msg.res.Duplicates)
			if len(msg.res.Events) > 0 {
				first := msg.res.Events[0]
				m.setDate(first.Year, first.Month, first.Day)
			}
		}
		m.refresh()
		return m, nil

	case extractCancelledMsg:
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeInput:
			return m.updateInput(msg)
		case modeBusy:
			return m.updateBusy(msg)
		case modeConfirmDay:
			return m.updateConfirm(msg)
		}
		return m.updateNormal(msg)
	}

	if m.mode == modeInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m browseModel) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Left):
		m.moveDays(-1)
	case key.Matches(msg, m.keys.Right):
		m.moveDays(1)
	case key.Matches(msg, m.keys.Up):
		m.moveDays(-7)
	case key.Matches(msg, m.keys.Down):
		m.moveDays(7)
	case key.Matches(msg, m.keys.NextMonth):
		m.moveMonths(1)
	case key.Matches(msg, m.keys.PrevMonth):
		m.moveMonths(-1)
	case key.Matches(msg, m.keys.Today):
		now := m.app.now()
		m.setDate(now.Year(), int(now.Month()), now.Day())
	case key.Matches(msg, m.keys.PrevEvent):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.NextEvent):
		if m.cursor < len(m.events)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.DeleteEvent):
		if m.cursor >= 0 && m.cursor < len(m.events) {
			m.app.Calendar.DeleteEvent(m.ctx, m.events[m.cursor])
			m.status = formatter.Success("事项已删除")
			m.refresh()
		}
	case key.Matches(msg, m.keys.ClearDay):
		if len(m.events) > 0 {
			m.mode = modeConfirmDay
		}
	case key.Matches(msg, m.keys.Add):
		if !m.app.Calendar.CanExtract() {
			m.status = formatter.Warning(extract.MsgNoCredential)
			return m, nil
		}
		m.mode = modeInput
		m.input.Reset()
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m browseModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeNormal
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		text := strings.TrimSpace(m.input.Value())
		m.input.Blur()
		if text == "" {
			m.mode = modeNormal
			return m, nil
		}
		return m.startExtract(text)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m browseModel) updateBusy(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.ticket.Cancel()
		if m.cancel != nil {
			close(m.cancel)
			m.cancel = nil
		}
		m.ticket = nil
		m.seq++
		m.mode = modeNormal
		m.status = formatter.Dim("已取消分析")
		return m, nil
	case tea.KeyCtrlC:
		m.ticket.Cancel()
		return m, tea.Quit
	}
	return m, nil
}

func (m browseModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch strings.ToLower(msg.String()) {
	case "y":
		m.app.Calendar.DeleteDay(m.ctx, m.day, m.year, m.month)
		m.status = formatter.Success("已删除" + formatter.DayTitle(m.day, m.year, m.month) + "的所有事项")
		m.refresh()
	default:
		m.status = ""
	}
	m.mode = modeNormal
	return m, nil
}

// startExtract submits text and returns a command that waits for either the
// result or a cancel.
func (m browseModel) startExtract(text string) (tea.Model, tea.Cmd) {
	results := make(chan extractDoneMsg, 1)
	cancel := make(chan struct{})

	m.seq++
	seq := m.seq
	m.mode = modeBusy
	m.status = formatter.Dim("正在分析文本…（esc 取消）")
	m.cancel = cancel
	m.ticket = m.app.Calendar.ExtractAsync(text, func(res service.ImportResult, err error) {
		results <- extractDoneMsg{seq: seq, res: res, err: err}
	})
	return m, waitForExtract(results, cancel)
}

func waitForExtract(results <-chan extractDoneMsg, cancel <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-results:
			return msg
		case <-cancel:
			return extractCancelledMsg{}
		}
	}
}

func (m browseModel) View() string {
	var b strings.Builder

	b.WriteString(formatter.RenderMonth(formatter.MonthGrid{
		Year:     m.year,
		Month:    m.month,
		Marked:   m.marked,
		Selected: m.day,
		Today:    m.app.now(),
	}))
	b.WriteString("\n\n")
	b.WriteString(formatter.Header(formatter.DayTitle(m.day, m.year, m.month)))
	b.WriteString("\n")

	if len(m.events) == 0 {
		b.WriteString(formatter.Dim("没有事项"))
		b.WriteString("\n")
	}
	for i, e := range m.events {
		line := fmt.Sprintf("%s  %s", e.Time, e.Activity)
		if e.Location != "" && e.Location != domain.Unspecified {
			line += formatter.Dim(" @ " + e.Location)
		}
		if i == m.cursor {
			b.WriteString(formatter.StyleYellow.Render("▸ ") + line)
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch m.mode {
	case modeInput:
		b.WriteString(m.input.View())
		b.WriteString("\n")
		b.WriteString(formatter.Dim("enter 分析 · esc 返回"))
	case modeConfirmDay:
		b.WriteString(formatter.Warning(fmt.Sprintf("确定要删除%s的所有事项吗？(y/n)", formatter.DayTitle(m.day, m.year, m.month))))
	default:
		if m.status != "" {
			b.WriteString(m.status)
			b.WriteString("\n")
		}
		b.WriteString(m.help.View(m.keys))
	}
	return b.String()
}
