package statistic

import (
	"fmt"
	"time"

	"github.com/hauntpass/backend/pkg/dateutil"
	"github.com/hauntpass/backend/pkg/enum"
)

type Period string

var (
	PeriodWeek  = enum.New(Period("week"))
	PeriodMonth = enum.New(Period("month"))
	PeriodTotal = enum.New(Period("total"))
)

var AllPeriods = []Period{PeriodWeek, PeriodMonth, PeriodTotal}

// periodValue identifies the window of p containing t.
func periodValue(p Period, t time.Time) string {
	switch p {
	case PeriodWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d/%d", week, year)
	case PeriodMonth:
		return fmt.Sprintf("%d/%d", t.Month(), t.Year())
	}

	return "0/0"
}

// periodEnd returns when the window of p containing t closes. Total never
// closes.
func periodEnd(p Period, t time.Time) (time.Time, bool) {
	switch p {
	case PeriodWeek:
		return dateutil.CurrentWeek(t).AddDate(0, 0, 7), true
	case PeriodMonth:
		return dateutil.CurrentMonth(t).AddDate(0, 1, 0), true
	}

	return time.Time{}, false
}
