package events

import (
	"context"
	"errors"
)

// Default subjects. Readers publish scans on SubjectScan and listen for the
// result on SubjectFeedback.
const (
	SubjectScan     = "attendance.scan"
	SubjectFeedback = "attendance.feedback"
)

// ErrNotConnected is returned when no broker connection is available.
var ErrNotConnected = errors.New("broker not connected")

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
}
