package power

import (
	"fmt"
	"math"
	"time"
)

// DateLayout is the only date format accepted in requests and produced by GenerateIntervals.
const DateLayout = "2006-01-02"

const day = 24 * time.Hour

// GenerateIntervals splits [fromDate, toDate] into datapoints windows and returns the
// datapoints+1 boundaries. The first boundary lies one step before fromDate so the first
// window brackets fromDate itself. When the range spans fewer days than datapoints the
// step is one day.
func GenerateIntervals(fromDate, toDate string, datapoints int) ([]string, error) {
	if datapoints < 1 {
		return nil, fmt.Errorf("datapoints must be positive, got %d", datapoints)
	}

	from, err := time.Parse(DateLayout, fromDate)
	if err != nil {
		return nil, fmt.Errorf("%w: from_date %q", ErrInvalidDateFormat, fromDate)
	}
	to, err := time.Parse(DateLayout, toDate)
	if err != nil {
		return nil, fmt.Errorf("%w: to_date %q", ErrInvalidDateFormat, toDate)
	}

	delta := stepDelta(wholeDays(to.Sub(from)), datapoints)

	intervals := make([]string, 0, datapoints+1)
	current := from.Add(-2 * delta)
	for i := 0; i <= datapoints; i++ {
		current = current.Add(delta)
		intervals = append(intervals, current.Format(DateLayout))
	}

	return intervals, nil
}

// wholeDays floors a duration to whole days, like a calendar day difference.
func wholeDays(d time.Duration) int {
	return int(math.Floor(float64(d) / float64(day)))
}

// stepDelta is days/datapoints days at microsecond resolution, never below one day
// when the range is shorter than the number of samples.
func stepDelta(days, datapoints int) time.Duration {
	if days < datapoints {
		return day
	}
	windowDays := float64(days) / float64(datapoints)
	return time.Duration(math.Round(windowDays*float64(day/time.Microsecond))) * time.Microsecond
}
