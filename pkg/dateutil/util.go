package dateutil

import "time"

// CurrentWeek returns the start (Monday 00:00) of the ISO week containing t.
func CurrentWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	day := t.AddDate(0, 0, -offset)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, t.Location())
}

func CurrentMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func LastWeek(t time.Time) time.Time {
	return CurrentWeek(t).AddDate(0, 0, -7)
}

func LastMonth(t time.Time) time.Time {
	return CurrentMonth(t).AddDate(0, -1, 0)
}
