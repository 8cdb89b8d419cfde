package store

import (
	"errors"
	"fmt"
)

// Unavailable wraps err so callers can match it with errors.Is(err, ErrUnavailable)
// while keeping the driver error in the chain.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}
