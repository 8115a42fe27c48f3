package grok

import (
	"fmt"
	"strings"
	"time"
)

// cnTimeKeywords and enTimeKeywords are the fixed keyword lists that trigger
// prepending a current-time-context block to a search query, preserved
// verbatim from the original provider so the model never over-anchors on
// "today" for queries that aren't actually time-sensitive.
var cnTimeKeywords = []string{
	"当前", "现在", "今天", "明天", "昨天", "本周", "上周", "下周", "这周",
	"本月", "上月", "下月", "这个月", "今年", "去年", "明年",
	"最新", "最近", "近期", "刚刚", "刚才", "实时", "即时", "目前",
}

var enTimeKeywords = []string{
	"current", "now", "today", "tomorrow", "yesterday",
	"this week", "last week", "next week",
	"this month", "last month", "next month",
	"this year", "last year", "next year",
	"latest", "recent", "recently", "just now",
	"real-time", "realtime", "up-to-date",
}

// NeedsTimeContext reports whether query matches a Chinese keyword
// (case-sensitive substring) or an English keyword (case-insensitive
// substring).
func NeedsTimeContext(query string) bool {
	for _, kw := range cnTimeKeywords {
		if strings.Contains(query, kw) {
			return true
		}
	}
	lower := strings.ToLower(query)
	for _, kw := range enTimeKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// weekdaysCN are the fixed Chinese weekday names, indexed by time.Weekday
// (Sunday == 0), matching get_local_time_info's weekdays_cn array. The
// system prompts this block feeds into (SearchPrompt, FetchPrompt) are
// themselves Chinese-language, so the weekday is rendered in Chinese
// regardless of the query's own language.
var weekdaysCN = [...]string{"星期日", "星期一", "星期二", "星期三", "星期四", "星期五", "星期六"}

// LocalTimeContextBlock renders the fixed time-context block prepended to
// time-sensitive queries.
func LocalTimeContextBlock(now time.Time) string {
	return fmt.Sprintf(
		"[Current Time Context]\n- Date: %s (%s)\n- Time: %s\n- Timezone: %s\n\n",
		now.Format("2006-01-02"),
		weekdaysCN[now.Weekday()],
		now.Format("15:04:05"),
		now.Format("MST"),
	)
}

// WithTimeContext prepends the time-context block to query when
// NeedsTimeContext reports true; otherwise query is returned unmodified.
func WithTimeContext(query string, now time.Time) string {
	if !NeedsTimeContext(query) {
		return query
	}
	return LocalTimeContextBlock(now) + query
}
