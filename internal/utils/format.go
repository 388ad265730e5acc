package utils

import (
	"fmt"
	"time"
)

// FormatDuration ミリ秒を "mm:ss.cc" 形式にする
func FormatDuration(ms float64) string {
	if ms < 0 {
		ms = 0
	}
	total := int64(ms)
	minutes := total / 60000
	seconds := (total / 1000) % 60
	centis := (total % 1000) / 10
	return fmt.Sprintf("%02d:%02d.%02d", minutes, seconds, centis)
}

// FormatDay UTC の日付 "2006-01-02"
func FormatDay(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// FormatDayMillis Unix ミリ秒を日付にする（保存データ用）
func FormatDayMillis(ms int64) string {
	return FormatDay(time.UnixMilli(ms))
}
