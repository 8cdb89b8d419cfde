package types

import (
	"strings"
	"time"
)

// AccountState is the enrollment-side flag on an identity.
type AccountState string

const (
	AccountActive    AccountState = "Active"
	AccountSuspended AccountState = "Suspended"
)

// Normalize maps an empty state to Active, the registry default.
func (s AccountState) Normalize() AccountState {
	v := strings.TrimSpace(string(s))
	if v == "" {
		return AccountActive
	}
	return AccountState(v)
}

// ResolvedStatus is the per-scan classification written to the log.
type ResolvedStatus string

const (
	StatusPresent   ResolvedStatus = "Present"
	StatusDenied    ResolvedStatus = "Denied"
	StatusSuspended ResolvedStatus = "Suspended"
)

type IdentityRecord struct {
	Identifier   string
	DisplayName  string
	AccountState AccountState
}

// AttendanceEvent is one immutable log entry. OccurredAt keeps its zone;
// stores convert it to the civil representation on write.
type AttendanceEvent struct {
	RecordID       int64
	Identifier     string
	ResolvedStatus ResolvedStatus
	OccurredAt     time.Time
}

// EventView is an attendance event joined with the identity's display name,
// used by the read-only dashboard. DisplayName is empty for unknown cards.
type EventView struct {
	AttendanceEvent
	DisplayName string
}

// Stats aggregates the attendance log for the dashboard.
type Stats struct {
	Day                string         `json:"day"`
	PresentToday       int            `json:"present_today"`
	TotalUniqueScanned int            `json:"total_unique_scanned"`
	StatusTotals       map[string]int `json:"status_totals"`
}
