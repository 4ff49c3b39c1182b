package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/smartcal/internal/domain"
)

// DayTitle renders "2024年1月5日".
func DayTitle(day, year, month int) string {
	return fmt.Sprintf("%d年%d月%d日", year, month, day)
}

// FormatDayEvents lists one day's events as a table, or a placeholder line.
func FormatDayEvents(day, year, month int, events []domain.Event) string {
	var b strings.Builder
	b.WriteString(Header(DayTitle(day, year, month)))
	b.WriteString("\n")

	if len(events) == 0 {
		b.WriteString(Dim("没有事项"))
		b.WriteString("\n")
		return b.String()
	}

	rows := make([][]string, 0, len(events))
	for i, e := range events {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			e.Time,
			Truncate(e.Activity, 40),
			placeDim(e.Location),
		})
	}
	b.WriteString(RenderTable([]string{"#", "时间", "事项", "地点"}, rows))
	return b.String()
}

// FormatEventList lists events across days, one per line.
func FormatEventList(events []domain.Event) string {
	if len(events) == 0 {
		return Dim("没有事项") + "\n"
	}
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, []string{e.ISODate(), e.Time, Truncate(e.Activity, 40), placeDim(e.Location)})
	}
	return RenderTable([]string{"日期", "时间", "事项", "地点"}, rows)
}

// FormatEventDetail renders every field of one event.
func FormatEventDetail(e domain.Event) string {
	lines := []string{
		fmt.Sprintf("📌 事项: %s", e.Activity),
		fmt.Sprintf("📍 地点: %s", e.Location),
		fmt.Sprintf("⏰ 时间: %s", e.Time),
		fmt.Sprintf("📅 日期: %s", DayTitle(e.Day, e.Year, e.Month)),
	}
	return strings.Join(lines, "\n")
}

// FormatImportSummary reports how many events a batch produced.
func FormatImportSummary(parsed, added, duplicates int) string {
	if parsed == 0 {
		return Warning("没有识别到事件")
	}
	msg := fmt.Sprintf("识别到 %d 个事件，新增 %d 个", parsed, added)
	if duplicates > 0 {
		msg += Dim(fmt.Sprintf("（%d 个已存在）", duplicates))
	}
	return Success(msg)
}

func placeDim(loc string) string {
	if loc == "" || loc == domain.Unspecified {
		return Dim(domain.Unspecified)
	}
	return loc
}
