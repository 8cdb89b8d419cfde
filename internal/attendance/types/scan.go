package types

// ScanMessage is the payload a reader publishes on the scan subject.
// Fields other than uid are ignored.
type ScanMessage struct {
	UID string `json:"uid"`
}

// Outcome is the device-facing result of a scan.
type Outcome string

const (
	OutcomeValid     Outcome = "valid"
	OutcomeInvalid   Outcome = "invalid"
	OutcomeSuspended Outcome = "suspended"
)

// Feedback is published once per inbound scan. Name is only set when the
// identifier resolved to an identity.
type Feedback struct {
	Status Outcome `json:"status"`
	Name   string  `json:"name,omitempty"`
}
