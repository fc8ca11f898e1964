// Package timezone translates caller-supplied calendar dates and IANA zone
// names into absolute UTC instants for filtering and display.
package timezone

import (
	"fmt"
	"log/slog"
	"time"
)

// dateLayout is the calendar date format accepted from clients.
const dateLayout = "2006-01-02"

// Range converts an optional local calendar date range into a UTC half-open
// interval [from, to). The from bound is midnight of fromDate in the given
// zone; the to bound is midnight of the day after toDate, so toDate itself is
// fully included. Either date may be empty, leaving that bound open.
//
// An unrecognized zone is an error: silently filtering in the wrong zone
// would corrupt results.
func Range(fromDate, toDate, zone string) (from, to *time.Time, err error) {
	loc := time.UTC
	if zone != "" {
		loc, err = time.LoadLocation(zone)
		if err != nil {
			return nil, nil, fmt.Errorf("unknown timezone %q", zone)
		}
	}

	if fromDate != "" {
		d, err := time.ParseInLocation(dateLayout, fromDate, loc)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", fromDate)
		}
		utc := d.UTC()
		from = &utc
	}

	if toDate != "" {
		d, err := time.ParseInLocation(dateLayout, toDate, loc)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", toDate)
		}
		utc := d.AddDate(0, 0, 1).UTC()
		to = &utc
	}

	return from, to, nil
}

// DisplayLocation resolves a zone name for formatting response timestamps.
// Unlike Range, an unknown zone falls back to UTC with a logged warning:
// display conversion is cosmetic and should not fail the request.
func DisplayLocation(zone string, logger *slog.Logger) *time.Location {
	if zone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		if logger != nil {
			logger.Warn("Unknown display timezone, falling back to UTC", "timezone", zone)
		}
		return time.UTC
	}
	return loc
}
