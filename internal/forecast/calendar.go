package forecast

import "time"

// DefaultHorizon is one trading year
const DefaultHorizon = 252

func isWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// TradingDaysBetween counts weekdays in (start, end]
func TradingDaysBetween(start, end time.Time) int {
	n := 0
	for d := start.AddDate(0, 0, 1); !d.After(end); d = d.AddDate(0, 0, 1) {
		if isWeekday(d) {
			n++
		}
	}
	return n
}

// CalendarYearHorizon is the weekday count from start to the same date next year
func CalendarYearHorizon(start time.Time) int {
	return TradingDaysBetween(start, start.AddDate(1, 0, 0))
}

// AddTradingDays moves n weekdays forward from start
func AddTradingDays(start time.Time, n int) time.Time {
	d := start
	for n > 0 {
		d = d.AddDate(0, 0, 1)
		if isWeekday(d) {
			n--
		}
	}
	return d
}
