package service

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/internal/model"
	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/pkg/workcal"
)

// ── ICS 节假日解析 ──────────────────────────────────────────
//
// 将公共假期 iCalendar (RFC 5545) 订阅内容解析为 Holiday 列表：
//   - DTSTART 取日历日（全天事件 VALUE=DATE 或带时间的事件均按日期处理）
//   - SUMMARY 作为节假日名称
//   - RRULE 仅展开 FREQ=YEARLY（COUNT/UNTIL 限定，上限 maxYearlyRepeats 次）
//   - EXDATE 排除的日期不写入
//   - 同一日期多个事件只保留第一个
// ─────────────────────────────────────────────────────────────

const (
	icsMaxFileSize   = 5 * 1024 * 1024 // 5MB
	icsFetchTimeout  = 30 * time.Second
	maxYearlyRepeats = 10
)

// FetchICSContent 从 URL 获取 ICS 内容
func FetchICSContent(rawURL string) (io.ReadCloser, error) {
	// webcal:// → https://
	u := rawURL
	if strings.HasPrefix(u, "webcal://") {
		u = "https://" + strings.TrimPrefix(u, "webcal://")
	}

	client := &http.Client{Timeout: icsFetchTimeout}
	resp, err := client.Get(u)
	if err != nil {
		return nil, fmt.Errorf("获取 ICS 失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("获取 ICS 失败: HTTP %d", resp.StatusCode)
	}
	return struct {
		io.Reader
		io.Closer
	}{
		Reader: io.LimitReader(resp.Body, icsMaxFileSize),
		Closer: resp.Body,
	}, nil
}

// ParseHolidayICS 解析 ICS 内容为指定日历类型的节假日（按日期升序）
func ParseHolidayICS(reader io.Reader, calendarType string) ([]model.Holiday, error) {
	cal, err := ics.ParseCalendar(io.LimitReader(reader, icsMaxFileSize))
	if err != nil {
		return nil, fmt.Errorf("ICS 格式解析失败: %w", err)
	}

	seen := make(map[string]struct{})
	var result []model.Holiday
	for _, evt := range cal.Events() {
		name := ""
		if p := evt.GetProperty(ics.ComponentPropertySummary); p != nil {
			name = strings.TrimSpace(p.Value)
		}
		if name == "" {
			continue
		}
		start, err := parseICSDate(evt.GetProperty(ics.ComponentPropertyDtStart))
		if err != nil {
			continue
		}

		excluded := parseExDates(evt)
		for _, d := range expandYearly(evt, start) {
			key := d.Format(workcal.DateLayout)
			if _, ok := excluded[key]; ok {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			result = append(result, model.Holiday{
				CalendarType: calendarType,
				Date:         d,
				Name:         truncateName(name),
			})
		}
	}

	sortHolidays(result)
	return result, nil
}

// expandYearly 展开 FREQ=YEARLY；其他重复规则只取首次发生日期
func expandYearly(evt *ics.VEvent, start time.Time) []time.Time {
	p := evt.GetProperty(ics.ComponentPropertyRrule)
	if p == nil {
		return []time.Time{start}
	}
	rule := parseRRule(p.Value)
	if rule.freq != "YEARLY" {
		return []time.Time{start}
	}

	limit := maxYearlyRepeats
	if rule.count > 0 && rule.count < limit {
		limit = rule.count
	}
	interval := rule.interval
	if interval < 1 {
		interval = 1
	}

	dates := make([]time.Time, 0, limit)
	for i := 0; i < limit; i++ {
		d := start.AddDate(i*interval, 0, 0)
		if !rule.until.IsZero() && d.After(rule.until) {
			break
		}
		dates = append(dates, d)
	}
	return dates
}

// rruleParams RRULE 解析结果
type rruleParams struct {
	freq     string
	interval int
	count    int
	until    time.Time
}

// parseRRule 解析 RRULE 字符串（如 FREQ=YEARLY;COUNT=5;INTERVAL=1）
func parseRRule(value string) rruleParams {
	r := rruleParams{interval: 1}
	for _, part := range strings.Split(value, ";") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToUpper(kv[0]) {
		case "FREQ":
			r.freq = strings.ToUpper(kv[1])
		case "INTERVAL":
			if n, err := strconv.Atoi(kv[1]); err == nil {
				r.interval = n
			}
		case "COUNT":
			if n, err := strconv.Atoi(kv[1]); err == nil {
				r.count = n
			}
		case "UNTIL":
			if t, err := parseICSValue(kv[1]); err == nil {
				r.until = t
			}
		}
	}
	return r
}

// parseExDates 解析事件中所有 EXDATE（可能逗号分隔多个）
func parseExDates(evt *ics.VEvent) map[string]struct{} {
	exDates := make(map[string]struct{})
	for _, prop := range evt.Properties {
		if prop.IANAToken != string(ics.ComponentPropertyExdate) {
			continue
		}
		for _, v := range strings.Split(prop.Value, ",") {
			if t, err := parseICSValue(strings.TrimSpace(v)); err == nil {
				exDates[t.Format(workcal.DateLayout)] = struct{}{}
			}
		}
	}
	return exDates
}

func parseICSDate(prop *ics.IANAProperty) (time.Time, error) {
	if prop == nil {
		return time.Time{}, fmt.Errorf("缺少 DTSTART")
	}
	return parseICSValue(prop.Value)
}

// parseICSValue 解析 ICS 日期/日期时间，只保留日历日
func parseICSValue(val string) (time.Time, error) {
	for _, layout := range []string{"20060102", "20060102T150405Z", "20060102T150405"} {
		if t, err := time.Parse(layout, val); err == nil {
			return workcal.Date(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("无法解析日期: %s", val)
}

func truncateName(name string) string {
	r := []rune(name)
	if len(r) > 200 {
		return string(r[:200])
	}
	return name
}
