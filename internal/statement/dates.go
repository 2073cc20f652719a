package statement

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// serialBase is the day-count epoch used by spreadsheet numeric dates.
// Serial N means N days after 1899-12-30, so 25569 is 1970-01-01. The base
// absorbs the historical fake-leap-day offset in the 1900 date system.
var serialBase = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

var textualDateLayouts = []string{
	"02/01/2006",
	"02.01.2006",
	"2006-01-02",
}

// ParseDate converts a raw cell value into a calendar date. It tries, in
// order: a numeric spreadsheet day-count, DD/MM/YYYY, DD.MM.YYYY and ISO.
func ParseDate(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("%w: empty date cell", ErrMalformed)
	}
	if serial, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return serialBase.AddDate(0, 0, int(serial)), nil
	}
	for _, layout := range textualDateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized date %q", ErrMalformed, raw)
}
