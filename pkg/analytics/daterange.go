package analytics

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the query-string date format
const DateLayout = "2006-01-02"

// DefaultRangeDays is the window used when no start date is given
const DefaultRangeDays = 7

// ErrInvalidDateRange is returned when a date cannot be parsed or the range
// is inverted
var ErrInvalidDateRange = errors.New("invalid date range")

// DateRange is an inclusive window of UTC days
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ParseDateRange parses YYYY-MM-DD bounds. Empty end means today, empty
// start means DefaultRangeDays before end. End is extended to the last
// instant of its day.
func ParseDateRange(start, end string, now time.Time) (DateRange, error) {
	now = now.UTC()

	endDay := truncateDay(now)
	if end != "" {
		t, err := time.ParseInLocation(DateLayout, end, time.UTC)
		if err != nil {
			return DateRange{}, fmt.Errorf("%w: end %q", ErrInvalidDateRange, end)
		}
		endDay = t
	}

	startDay := endDay.AddDate(0, 0, -DefaultRangeDays)
	if start != "" {
		t, err := time.ParseInLocation(DateLayout, start, time.UTC)
		if err != nil {
			return DateRange{}, fmt.Errorf("%w: start %q", ErrInvalidDateRange, start)
		}
		startDay = t
	}

	if startDay.After(endDay) {
		return DateRange{}, fmt.Errorf("%w: start %s after end %s", ErrInvalidDateRange, startDay.Format(DateLayout), endDay.Format(DateLayout))
	}

	return DateRange{
		Start: startDay,
		End:   endDay.Add(24*time.Hour - time.Nanosecond),
	}, nil
}

// Key identifies the range in cache keys and file names
func (r DateRange) Key() string {
	return r.Start.Format(DateLayout) + ":" + r.End.Format(DateLayout)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
