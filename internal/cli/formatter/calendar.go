package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Weekday column headers, Monday first.
var weekdayHeaders = []string{"一", "二", "三", "四", "五", "六", "日"}

const cellWidth = 4

// MonthGrid describes one month to render.
type MonthGrid struct {
	Year     int
	Month    int
	Marked   map[int]bool // days that have events
	Selected int          // 0 for none
	Today    time.Time    // zero for none
}

// MonthTitle renders "2024年1月".
func MonthTitle(year, month int) string {
	return fmt.Sprintf("%d年%d月", year, month)
}

// Weeks returns the month laid out in Monday-first rows. Cells outside the
// month are 0.
func Weeks(year, month int) [][7]int {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	offset := (int(first.Weekday()) + 6) % 7
	days := first.AddDate(0, 1, -1).Day()

	var weeks [][7]int
	var week [7]int
	col := offset
	for d := 1; d <= days; d++ {
		week[col] = d
		col++
		if col == 7 {
			weeks = append(weeks, week)
			week = [7]int{}
			col = 0
		}
	}
	if col > 0 {
		weeks = append(weeks, week)
	}
	return weeks
}

// RenderMonth draws the grid. Days with events carry a dot.
func RenderMonth(g MonthGrid) string {
	var b strings.Builder

	title := MonthTitle(g.Year, g.Month)
	total := cellWidth * 7
	b.WriteString(lipgloss.PlaceHorizontal(total, lipgloss.Center, StyleHeader.Render(title)))
	b.WriteString("\n")

	for _, h := range weekdayHeaders {
		b.WriteString(lipgloss.PlaceHorizontal(cellWidth, lipgloss.Center, StyleDim.Render(h)))
	}
	b.WriteString("\n")

	for _, week := range Weeks(g.Year, g.Month) {
		for _, d := range week {
			b.WriteString(renderCell(g, d))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderCell(g MonthGrid, d int) string {
	if d == 0 {
		return strings.Repeat(" ", cellWidth)
	}

	text := fmt.Sprintf("%2d", d)
	mark := " "
	if g.Marked[d] {
		mark = "•"
	}

	style := StyleFg
	switch {
	case d == g.Selected:
		style = StyleSelected
	case g.Marked[d]:
		style = StyleHasEvents
	case isToday(g, d):
		style = StyleToday
	}
	return " " + style.Render(text) + StyleGreen.Render(mark)
}

func isToday(g MonthGrid, d int) bool {
	if g.Today.IsZero() {
		return false
	}
	y, m, day := g.Today.Date()
	return y == g.Year && int(m) == g.Month && day == d
}
