// Package prompt builds the instruction text sent to the extraction model.
package prompt

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// SystemPrompt fixes the assistant role and the output contract.
const SystemPrompt = `你是一个专业的日历助手，能精确识别多项活动并以JSON格式输出结果。请确保输出是有效的JSON对象，包含'events'数组。`

// TimeBand maps a fuzzy time-of-day word to an explicit clock range.
type TimeBand struct {
	Word  string
	Range string
}

// TimeBands are the fixed time-of-day substitutions, in legend order.
var TimeBands = []TimeBand{
	{Word: "上午", Range: "06:00-11:00"},
	{Word: "中午", Range: "11:00-13:00"},
	{Word: "下午", Range: "13:00-17:00"},
	{Word: "晚上", Range: "17:00-24:00"},
	{Word: "凌晨", Range: "24:00-06:00"},
}

const dateLayout = "2006-01-02"

const outputExample = `{
    "events": [
        {
            "日期": "2023-10-05",
            "地点": "会议室",
            "时间": "14:00",
            "事项": "项目会议"
        },
        {
            "日期": "2023-10-05",
            "地点": "咖啡厅",
            "时间": "16:00",
            "事项": "客户见面"
        }
    ]
}`

// Build returns the full instruction for text with relative dates resolved
// against now. The result depends only on text and now's calendar date.
func Build(text string, now time.Time) string {
	var b strings.Builder

	b.WriteString(`请从以下文本中提取所有事件信息，并以严格的JSON格式输出。输出必须是有效的JSON对象，包含一个"events"数组，每个事件必须包含独立的日期、地点、时间和事项字段。`)
	b.WriteString("\n\n输出JSON示例：\n")
	b.WriteString(outputExample)

	b.WriteString("\n\n处理规则：\n")
	b.WriteString("1. 多项活动处理：\n")
	b.WriteString("   - 当文本中出现\"然后\"、\"接着\"、\"之后\"等连接词时，视为多个独立事件\n")
	b.WriteString("   - 每个事件必须有明确的时间或顺序指示\n")
	b.WriteString("   - 当文本出现\"即日起至n月m日\"则视为今天至n月m日每天都有的独立事件\n")
	b.WriteString("   - 当文本出现\"周x至周y\"等星期段则视为该星期段的每一天都有的独立事件\n")

	b.WriteString("\n2. 模糊时间处理：\n")
	for _, s := range DateSubstitutions(now) {
		fmt.Fprintf(&b, "   - \"%s\" = %s\n", s.Word, s.Range)
	}
	for _, band := range TimeBands {
		fmt.Fprintf(&b, "   - \"%s\" = \"%s\"\n", band.Word, band.Range)
	}

	b.WriteString("\n3. 地点处理：\n")
	b.WriteString("   - 没有明确地点时使用\"未指定\"\n")
	b.WriteString("   - 模糊地点如\"会议室\"保持原样\n")

	b.WriteString("\n待分析文本：\n")
	b.WriteString(text)

	return b.String()
}

// DateSubstitutions resolves 今天, 明天 and 后天 against now.
func DateSubstitutions(now time.Time) []TimeBand {
	y, m, d := now.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return []TimeBand{
		{Word: "今天", Range: day.Format(dateLayout)},
		{Word: "明天", Range: day.AddDate(0, 0, 1).Format(dateLayout)},
		{Word: "后天", Range: day.AddDate(0, 0, 2).Format(dateLayout)},
	}
}

// Fingerprint is the hex SHA-256 of a built prompt, used as the cache key.
func Fingerprint(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}
