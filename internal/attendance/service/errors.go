package service

import "errors"

var (
	// ErrDecode marks a payload that is not a usable scan message.
	ErrDecode = errors.New("malformed scan payload")

	// ErrStoreUnavailable marks a lookup or append that failed after decode.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrPublish marks a feedback message the broker did not accept.
	ErrPublish = errors.New("feedback publish failed")
)

// failure kinds used as log and metric labels
const (
	kindDecode  = "decode"
	kindStore   = "store"
	kindPublish = "publish"
)
