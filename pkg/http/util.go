package http

import (
	"time"

	xutil "ZoneWatch/pkg/util"
)

// ParseTime tries RFC3339, RFC3339Nano, plain dates and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) { return xutil.ParseTime(s) }

// ParseOptionalRange parses from/to query values. Both empty is valid; one without the other or
// from after to is a bad request.
func ParseOptionalRange(from, to string) (time.Time, time.Time, error) {
	if from == "" && to == "" {
		return time.Time{}, time.Time{}, nil
	}
	f, okF := ParseTime(from)
	t, okT := ParseTime(to)
	if !okF {
		return time.Time{}, time.Time{}, BadRequestErrorf("invalid from %q", from).WithField("from")
	}
	if !okT {
		return time.Time{}, time.Time{}, BadRequestErrorf("invalid to %q", to).WithField("to")
	}
	if f.After(t) {
		return time.Time{}, time.Time{}, BadRequestErrorf("from must not be after to").WithField("from")
	}
	return f, t, nil
}
