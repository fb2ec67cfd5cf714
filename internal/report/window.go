package report

import "time"

// dateFormat is the calendar-date layout used for window bounds.
const dateFormat = "2006-01-02"

// DayWindow returns the single-day window covering now's calendar date.
func DayWindow(now time.Time) (start, end string) {
	day := now.Format(dateFormat)
	return day, day
}

// WeekWindow returns the 7-day trailing window ending on now's calendar
// date, inclusive on both ends.
func WeekWindow(now time.Time) (start, end string) {
	return now.AddDate(0, 0, -6).Format(dateFormat), now.Format(dateFormat)
}
