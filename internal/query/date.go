package query

import (
	"fmt"
	"strings"
	"time"
)

// TimestampWidth is the number of digits in a YYYYMMDDhhmmss timestamp.
const TimestampWidth = 14

// DateSpec is a resolved partial calendar date and its half-open interval
// [Start, End). Month and Day are 0 when absent.
type DateSpec struct {
	Year  int
	Month int
	Day   int
	Start string
	End   string
}

// Precision reports the most specific unit present: "day", "month" or "year".
func (d *DateSpec) Precision() string {
	switch {
	case d.Day != 0:
		return "day"
	case d.Month != 0:
		return "month"
	default:
		return "year"
	}
}

// Contains reports whether ts falls in [Start, End). Bounds compare as
// numbers, so the 15 digit End of year 9999 still orders after its Start.
func (d *DateSpec) Contains(ts string) bool {
	return compareDigits(d.Start, ts) <= 0 && compareDigits(ts, d.End) < 0
}

// ResolveDate maps a partial date to its timestamp interval. Zero or out of
// range components are absent. A day without a month is dropped. Returns
// false when neither year nor month is present.
//
// The end bound increments the most specific unit without calendar
// normalization: month 12 yields YYYY13, day 31 yields DD32. Both bounds get
// the same number of trailing zeros, so year 9999 ends at the 15 digit
// "100000000000000".
func ResolveDate(year, month, day int, now time.Time) (*DateSpec, bool) {
	if year < 1 || year > 9999 {
		year = 0
	}
	if month < 1 || month > 12 {
		month = 0
	}
	if day < 1 || day > 31 {
		day = 0
	}
	if year == 0 && month == 0 {
		return nil, false
	}
	if month == 0 {
		day = 0
	}

	if year == 0 {
		now = now.UTC()
		year = now.Year()
		if month > int(now.Month()) {
			year--
		}
	}

	start := pad(year, 4)
	end := pad(year+1, 4)
	if month != 0 {
		end = start + pad(month+1, 2)
		start += pad(month, 2)
		if day != 0 {
			end = start + pad(day+1, 2)
			start += pad(day, 2)
		}
	}

	zeros := strings.Repeat("0", TimestampWidth-len(start))
	return &DateSpec{
		Year:  year,
		Month: month,
		Day:   day,
		Start: start + zeros,
		End:   end + zeros,
	}, true
}

// Bounded reports whether End fits the timestamp width. An unbounded
// interval has no upper condition: every stored timestamp precedes it.
func (d *DateSpec) Bounded() bool {
	return len(d.End) <= TimestampWidth
}

func pad(n, width int) string {
	return fmt.Sprintf("%0*d", width, n)
}

// compareDigits orders digit strings numerically.
func compareDigits(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}
