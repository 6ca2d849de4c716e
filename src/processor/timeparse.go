package processor

import (
	"math"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// 日期格式按顺序尝试, 巴西数据中 dd/mm 优先于 mm/dd
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2/1/2006",
	"2/1/2006 15:04",
	"2/1/2006 15:04:05",
	"2006/1/2",
	"2-1-2006",
	time.RFC3339,
}

// 带有时钟部分的格式, 用于Hora的第一步
var clockLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04 PM",
	"3:04PM",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	time.RFC3339,
}

// excel序列号允许的最大值(9999-12-31)
const maxExcelSerial = 2958465

// parseNumber 支持一个小数逗号, NaN和Inf视为失败
func parseNumber(token string) (float64, bool) {
	token = strings.TrimSpace(token)
	if strings.Count(token, ",") == 1 && !strings.Contains(token, ".") {
		token = strings.Replace(token, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(token, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// excelToTime excel序列号转time.Time
// 1900年闰年错误: 序列号60是不存在的1900-02-29, 60之前的日期要多加一天
func excelToTime(serial float64) (time.Time, bool) {
	if serial < 0 || serial > maxExcelSerial || (serial >= 60 && serial < 61) {
		return time.Time{}, false
	}
	if serial < 60 {
		serial++
	}

	base := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	days := math.Floor(serial)
	seconds := math.Round((serial - days) * 86400)
	return base.AddDate(0, 0, int(days)).Add(time.Duration(seconds) * time.Second), true
}

// parseDate 依次尝试dateLayouts, 最后尝试excel序列号
func parseDate(token string) (civil.Date, bool) {
	token = strings.TrimSpace(token)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, token); err == nil {
			return civil.DateOf(t), true
		}
	}
	// 四位数的年份(例如"2020")不是序列号
	if len(token) == 4 && isDigits(token) {
		if year, _ := strconv.Atoi(token); year >= 1900 && year <= 2100 {
			return civil.Date{}, false
		}
	}
	if serial, ok := parseNumber(token); ok && serial >= 1 {
		if t, ok := excelToTime(serial); ok {
			return civil.DateOf(t), true
		}
	}
	return civil.Date{}, false
}

// parseHora 时间的回退解析, 第一个成功的结果生效
// 失败时返回原因: invalid time 或 unknown time format
func parseHora(token string) (civil.Time, string, bool) {
	token = strings.TrimSpace(token)

	// 1. 通用解析, 只保留时分; 纯数字交给后面的步骤
	if !isDigits(token) {
		if t, ok := genericClock(token); ok {
			return t, "", true
		}
	}

	switch {
	// 2. HH:MM
	case strings.Contains(token, ":"):
		if t, err := time.Parse("15:04", token); err == nil {
			return clockOf(t), "", true
		}
		return civil.Time{}, ReasonInvalidTime, false
	// 3. HHMM
	case len(token) == 4 && isDigits(token):
		if t, err := time.Parse("1504", token); err == nil {
			return clockOf(t), "", true
		}
		return civil.Time{}, ReasonInvalidTime, false
	// 4. HH
	case len(token) == 2 && isDigits(token):
		if t, err := time.Parse("15", token); err == nil {
			return clockOf(t), "", true
		}
		return civil.Time{}, ReasonInvalidTime, false
	}
	return civil.Time{}, ReasonUnknownTimeFormat, false
}

// genericClock 带时钟的格式, 或者带小数点的excel序列号
// 序列号只接受纯时间(0 <= x < 1)或完整的日期时间(x >= 61), "14.30"这类值不是序列号
func genericClock(token string) (civil.Time, bool) {
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, token); err == nil {
			return clockOf(t), true
		}
	}
	if strings.Contains(token, ".") {
		if serial, ok := parseNumber(token); ok && (serial >= 0 && serial < 1 || serial >= 61 && serial <= maxExcelSerial) {
			seconds := int(math.Round((serial-math.Floor(serial))*86400)) % 86400
			return civil.Time{Hour: seconds / 3600, Minute: seconds % 3600 / 60}, true
		}
	}
	return civil.Time{}, false
}

func clockOf(t time.Time) civil.Time {
	return civil.Time{Hour: t.Hour(), Minute: t.Minute()}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
