package scheduler

import (
	"time"

	"giftmeet/models"
)

const isoDate = "2006-01-02"

// CalendarCell is one date in the rendered month grid. InMonth is false for
// the leading/trailing days padded in from adjacent months.
type CalendarCell struct {
	Date    string `json:"date"`
	InMonth bool   `json:"inMonth"`
}

// CalendarGrid computes the visible grid for a month cursor: from the
// Sunday on or before the 1st through the Saturday on or after the last
// day. The result length is always a multiple of 7.
func CalendarGrid(cursor models.MonthCursor) []CalendarCell {
	firstOfMonth := time.Date(cursor.Year, cursor.Month, 1, 0, 0, 0, 0, time.UTC)
	lastOfMonth := firstOfMonth.AddDate(0, 1, -1)

	start := firstOfMonth.AddDate(0, 0, -int(firstOfMonth.Weekday()))
	end := lastOfMonth.AddDate(0, 0, int(time.Saturday-lastOfMonth.Weekday()))

	var cells []CalendarCell
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		cells = append(cells, CalendarCell{
			Date:    d.Format(isoDate),
			InMonth: d.Month() == cursor.Month,
		})
	}
	return cells
}

// NextMonth advances the cursor by one calendar month. The arithmetic is
// explicit on (year, month) so no day-overflow semantics are involved.
func NextMonth(cursor models.MonthCursor) models.MonthCursor {
	if cursor.Month == time.December {
		return models.MonthCursor{Year: cursor.Year + 1, Month: time.January}
	}
	return models.MonthCursor{Year: cursor.Year, Month: cursor.Month + 1}
}

// PrevMonth moves the cursor back by one calendar month.
func PrevMonth(cursor models.MonthCursor) models.MonthCursor {
	if cursor.Month == time.January {
		return models.MonthCursor{Year: cursor.Year - 1, Month: time.December}
	}
	return models.MonthCursor{Year: cursor.Year, Month: cursor.Month - 1}
}

// CursorFor returns the month cursor containing the given ISO date,
// falling back to the month of fallback when the date does not parse.
func CursorFor(date string, fallback time.Time) models.MonthCursor {
	parsed, err := time.Parse(isoDate, date)
	if err != nil {
		parsed = fallback
	}
	return models.MonthCursor{Year: parsed.Year(), Month: parsed.Month()}
}
