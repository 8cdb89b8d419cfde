// Package clock produces the canonical timestamps attached to attendance
// events. All instants are normalized to a fixed UTC+8 zone at second
// precision; the zone-less civil string only exists at the storage boundary.
package clock

import (
	"fmt"
	"time"
)

const (
	// CivilLayout is the storage representation: no zone, second precision.
	CivilLayout = "2006-01-02 15:04:05"
	// DateLayout is the civil calendar day used for daily aggregates.
	DateLayout = "2006-01-02"
)

// Zone is the fixed civil timezone (UTC+8) used for every event.
var Zone = time.FixedZone("UTC+8", 8*60*60)

// Clock returns normalized event timestamps. The zero value uses time.Now.
type Clock struct {
	now func() time.Time
}

func New() *Clock { return &Clock{now: time.Now} }

// NewFixed returns a clock pinned to t. Test helper.
func NewFixed(t time.Time) *Clock {
	return &Clock{now: func() time.Time { return t }}
}

// Now returns the current instant in Zone, truncated to the second.
func (c *Clock) Now() time.Time {
	now := time.Now
	if c != nil && c.now != nil {
		now = c.now
	}
	return Normalize(now())
}

// Today returns the current civil date in Zone.
func (c *Clock) Today() string {
	return c.Now().Format(DateLayout)
}

// Normalize converts t into Zone at second precision.
func Normalize(t time.Time) time.Time {
	return t.In(Zone).Truncate(time.Second)
}

// FormatCivil renders t as the zone-less civil string stored in the log.
func FormatCivil(t time.Time) string {
	return Normalize(t).Format(CivilLayout)
}

// ParseCivil reads a stored civil string back into a Zone-qualified instant.
func ParseCivil(s string) (time.Time, error) {
	t, err := time.ParseInLocation(CivilLayout, s, Zone)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse civil timestamp %q: %w", s, err)
	}
	return t, nil
}
