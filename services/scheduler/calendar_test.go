package scheduler

import (
	"fmt"
	"testing"
	"time"

	"giftmeet/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalendarGrid_WeekAlignment(t *testing.T) {
	months := []models.MonthCursor{
		{Year: 2025, Month: time.June},
		{Year: 2025, Month: time.February}, // starts on a Saturday
		{Year: 2024, Month: time.February}, // leap year
		{Year: 2026, Month: time.March},    // starts on a Sunday
		{Year: 2025, Month: time.December},
	}

	for _, cursor := range months {
		t.Run(fmt.Sprintf("%d-%02d", cursor.Year, int(cursor.Month)), func(t *testing.T) {
			cells := CalendarGrid(cursor)
			require.NotEmpty(t, cells)
			assert.Zero(t, len(cells)%7, "grid length must be a multiple of 7")

			first, err := time.Parse(isoDate, cells[0].Date)
			require.NoError(t, err)
			assert.Equal(t, time.Sunday, first.Weekday())

			last, err := time.Parse(isoDate, cells[len(cells)-1].Date)
			require.NoError(t, err)
			assert.Equal(t, time.Saturday, last.Weekday())
		})
	}
}

func TestCalendarGrid_ContainsEveryMonthDayOnce(t *testing.T) {
	cursor := models.MonthCursor{Year: 2025, Month: time.June}
	cells := CalendarGrid(cursor)

	counts := make(map[string]int)
	for _, cell := range cells {
		if cell.InMonth {
			counts[cell.Date]++
		}
	}

	assert.Len(t, counts, 30)
	for day := 1; day <= 30; day++ {
		date := fmt.Sprintf("2025-06-%02d", day)
		assert.Equal(t, 1, counts[date], "date %s", date)
	}
}

func TestCalendarGrid_AdjacentMonthCellsDimmed(t *testing.T) {
	// June 2025 begins on a Sunday and ends on a Monday, so the grid pads
	// trailing July days only.
	cells := CalendarGrid(models.MonthCursor{Year: 2025, Month: time.June})

	assert.True(t, cells[0].InMonth)
	assert.Equal(t, "2025-06-01", cells[0].Date)
	assert.False(t, cells[len(cells)-1].InMonth)
	assert.Equal(t, "2025-07-05", cells[len(cells)-1].Date)
}

func TestNextMonth_YearRollover(t *testing.T) {
	next := NextMonth(models.MonthCursor{Year: 2025, Month: time.December})
	assert.Equal(t, models.MonthCursor{Year: 2026, Month: time.January}, next)
}

func TestPrevMonth_YearRollover(t *testing.T) {
	prev := PrevMonth(models.MonthCursor{Year: 2025, Month: time.January})
	assert.Equal(t, models.MonthCursor{Year: 2024, Month: time.December}, prev)
}

func TestMonthArithmetic_IgnoresDayOverflow(t *testing.T) {
	// A (year, month) cursor has no day component, so advancing from a
	// January cursor always lands in February regardless of any Jan 31
	// selection elsewhere in the session.
	next := NextMonth(models.MonthCursor{Year: 2025, Month: time.January})
	assert.Equal(t, time.February, next.Month)
	assert.Equal(t, 2025, next.Year)
}

func TestCursorFor(t *testing.T) {
	fallback := time.Date(2030, time.May, 15, 0, 0, 0, 0, time.UTC)

	cursor := CursorFor("2025-06-12", fallback)
	assert.Equal(t, models.MonthCursor{Year: 2025, Month: time.June}, cursor)

	cursor = CursorFor("not-a-date", fallback)
	assert.Equal(t, models.MonthCursor{Year: 2030, Month: time.May}, cursor)
}
