// Package report derives monthly views from expense and income records:
// installment resolution, status bucketing, category breakdowns and
// trailing-month trend series.
//
// Every function here is a pure projection over its inputs. Nothing is
// cached across calls and "now" is always an explicit argument, so
// results are deterministic and safe to compute concurrently.
package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"contas/internal/core"
)

// ParseLocalDate parses a "YYYY-MM-DD" string into a local-timezone
// moment anchored at 12:00. Anchoring at noon keeps the calendar day
// stable when the value is later rendered in any offset up to ±12h;
// midnight would shift backward one day in negative-UTC locales.
func ParseLocalDate(s string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("%w: %q", core.ErrInvalidDateFormat, s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", core.ErrInvalidDateFormat, s)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("%w: %q", core.ErrInvalidDateFormat, s)
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("%w: %q", core.ErrInvalidDateFormat, s)
	}
	return time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.Local), nil
}
