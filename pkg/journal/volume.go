package journal

import (
	"strconv"
	"strings"
	"time"
)

// CalculateVolume maps a date onto its publication volume: the date's local
// year plus the calendar quarter (Jan-Mar=1 ... Oct-Dec=4).
func CalculateVolume(t time.Time) (year, quarter int) {
	year = t.Year()
	quarter = (int(t.Month())-1)/3 + 1
	return year, quarter
}

// ParseID validates an id taken from a request path or body. Malformed ids
// fail with ErrInvalidArgument before any query is issued.
func ParseID(raw string) (uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrInvalidArgument
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || n == 0 {
		return 0, ErrInvalidArgument
	}
	return uint(n), nil
}
