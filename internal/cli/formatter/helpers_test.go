package formatter

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/smartcal/internal/domain"
	"github.com/alexanderramin/smartcal/internal/testutil"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short", "abc", 5, "abc"},
		{"exact", "abcde", 5, "abcde"},
		{"long", "abcdef", 5, "abcd…"},
		{"wide runes", "项目会议讨论", 7, "项目会…"},
		{"collapses whitespace", "a  b\nc", 10, "a b c"},
		{"tiny", "abc", 1, "…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.n))
		})
	}
}

func TestWeeks(t *testing.T) {
	// January 2024 starts on a Monday.
	weeks := Weeks(2024, 1)
	require.Len(t, weeks, 5)
	assert.Equal(t, [7]int{1, 2, 3, 4, 5, 6, 7}, weeks[0])
	assert.Equal(t, [7]int{29, 30, 31, 0, 0, 0, 0}, weeks[4])

	// September 2024 starts on a Sunday.
	weeks = Weeks(2024, 9)
	assert.Equal(t, [7]int{0, 0, 0, 0, 0, 0, 1}, weeks[0])
	assert.Len(t, weeks, 6)

	// Leap February.
	last := Weeks(2024, 2)
	final := last[len(last)-1]
	assert.Contains(t, final, 29)
}

func TestRenderMonth_MarksEventDays(t *testing.T) {
	out := RenderMonth(MonthGrid{Year: 2024, Month: 1, Marked: map[int]bool{5: true}, Selected: 10})

	assert.Contains(t, out, "2024年1月")
	assert.Contains(t, out, "一")
	assert.Contains(t, out, "31")
	assert.Equal(t, 1, strings.Count(out, "•"))
	for _, line := range strings.Split(out, "\n")[2:] {
		assert.Equal(t, cellWidth*7, lipgloss.Width(line), line)
	}
}

func TestFormatDayEvents(t *testing.T) {
	events := []domain.Event{
		testutil.NewTestEvent(2024, 1, 5, "项目会议", testutil.WithTime("14:00"), testutil.WithLocation("会议室")),
		testutil.NewTestEvent(2024, 1, 5, "客户见面", testutil.WithTime("16:00")),
	}

	out := FormatDayEvents(5, 2024, 1, events)
	assert.Contains(t, out, "2024年1月5日")
	assert.Contains(t, out, "项目会议")
	assert.Contains(t, out, "会议室")
	assert.Contains(t, out, domain.Unspecified)

	empty := FormatDayEvents(6, 2024, 1, nil)
	assert.Contains(t, empty, "没有事项")
}

func TestFormatImportSummary(t *testing.T) {
	assert.Contains(t, FormatImportSummary(0, 0, 0), "没有识别到事件")
	assert.Contains(t, FormatImportSummary(3, 2, 1), "识别到 3 个事件，新增 2 个")
	assert.Contains(t, FormatImportSummary(3, 2, 1), "1 个已存在")
	assert.NotContains(t, FormatImportSummary(2, 2, 0), "已存在")
}

func TestFormatEventDetail(t *testing.T) {
	out := FormatEventDetail(testutil.NewTestEvent(2024, 3, 8, "聚餐", testutil.WithTime("18:00")))
	assert.Contains(t, out, "聚餐")
	assert.Contains(t, out, "18:00")
	assert.Contains(t, out, "2024年3月8日")
}

func TestRenderTable_AlignsWideText(t *testing.T) {
	out := RenderTable([]string{"A", "B"}, [][]string{{"会议", "x"}, {"a", "y"}})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, lipgloss.Width(lines[2]), lipgloss.Width(lines[3]))
	assert.True(t, strings.HasSuffix(lines[2], "x"))
	assert.Empty(t, RenderTable(nil, nil))
}

func TestSpinner_StopClearsLine(t *testing.T) {
	var buf bytes.Buffer
	stop := StartSpinner(&buf, "分析中")
	time.Sleep(100 * time.Millisecond)
	stop()

	assert.True(t, strings.HasSuffix(buf.String(), "\r\033[K"))
}

func TestHeader_UnderlineMatchesDisplayWidth(t *testing.T) {
	out := Header("2024年1月5日")
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, lipgloss.Width("2024年1月5日"), strings.Count(lines[1], "─"))
}
