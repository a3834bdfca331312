package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"contas/internal/core"
)

// YearMonth identifies a calendar month. Months are 1-12 externally;
// range membership is lexicographic on (Year, Month).
type YearMonth struct {
	Year  int
	Month int
}

// Short pt-BR month abbreviations used as chart labels.
var monthAbbr = [12]string{
	"jan", "fev", "mar", "abr", "mai", "jun",
	"jul", "ago", "set", "out", "nov", "dez",
}

// ParseYearMonth parses a "YYYY-MM" string.
func ParseYearMonth(s string) (YearMonth, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 {
		return YearMonth{}, fmt.Errorf("%w: %q", core.ErrInvalidDateFormat, s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return YearMonth{}, fmt.Errorf("%w: %q", core.ErrInvalidDateFormat, s)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return YearMonth{}, fmt.Errorf("%w: %q", core.ErrInvalidDateFormat, s)
	}
	return YearMonth{Year: year, Month: month}, nil
}

// YearMonthOf extracts the calendar month of a moment.
func YearMonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: int(t.Month())}
}

// Compare returns -1, 0 or 1 ordering ym against other.
func (ym YearMonth) Compare(other YearMonth) int {
	switch {
	case ym.Year != other.Year:
		if ym.Year < other.Year {
			return -1
		}
		return 1
	case ym.Month != other.Month:
		if ym.Month < other.Month {
			return -1
		}
		return 1
	}
	return 0
}

func (ym YearMonth) Before(other YearMonth) bool { return ym.Compare(other) < 0 }
func (ym YearMonth) After(other YearMonth) bool  { return ym.Compare(other) > 0 }

// AddMonths shifts by n calendar months (n may be negative), carrying
// across year boundaries.
func (ym YearMonth) AddMonths(n int) YearMonth {
	total := ym.Year*12 + (ym.Month - 1) + n
	year := total / 12
	month := total%12 + 1
	if total < 0 && total%12 != 0 {
		year--
		month = total%12 + 12 + 1
	}
	return YearMonth{Year: year, Month: month}
}

// MonthsSince returns the number of whole calendar months from other to
// ym (positive when ym is later).
func (ym YearMonth) MonthsSince(other YearMonth) int {
	return (ym.Year-other.Year)*12 + (ym.Month - other.Month)
}

// Label returns the short month abbreviation ("jan" .. "dez").
func (ym YearMonth) Label() string {
	return monthAbbr[ym.Month-1]
}

// String renders the canonical "YYYY-MM" form.
func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, ym.Month)
}
