package events

import (
	"context"

	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/types"
)

// FeedbackPublisher serializes validation outcomes onto the feedback subject.
type FeedbackPublisher struct {
	pub     Publisher
	subject string
}

func NewFeedbackPublisher(pub Publisher, subject string) *FeedbackPublisher {
	if subject == "" {
		subject = SubjectFeedback
	}
	return &FeedbackPublisher{pub: pub, subject: subject}
}

// Publish sends fb fire-and-forget. Errors are returned for the caller to
// report; nothing is retried.
func (f *FeedbackPublisher) Publish(ctx context.Context, fb types.Feedback) error {
	return f.pub.Publish(ctx, f.subject, fb)
}
