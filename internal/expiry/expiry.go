// Package expiry maps a share's creation time and duration to its expiry instant.
// An instant equal to the expiry is already expired.
package expiry

import (
	"errors"
	"time"
)

var ErrInvalidDuration = errors.New("expiry duration must be a positive number of minutes")

// ValidateDuration rejects zero and negative durations.
func ValidateDuration(durationMinutes int) error {
	if durationMinutes <= 0 {
		return ErrInvalidDuration
	}
	return nil
}

// ComputeExpiry returns createdAt + durationMinutes.
func ComputeExpiry(createdAt time.Time, durationMinutes int) (time.Time, error) {
	err := ValidateDuration(durationMinutes)
	if err != nil {
		return time.Time{}, err
	}
	return createdAt.Add(time.Duration(durationMinutes) * time.Minute), nil
}

// IsExpired reports now >= expiresAt.
func IsExpired(now, expiresAt time.Time) bool {
	return !now.Before(expiresAt)
}

// Remaining returns how long until expiresAt, or zero if already expired.
func Remaining(now, expiresAt time.Time) time.Duration {
	if IsExpired(now, expiresAt) {
		return 0
	}
	return expiresAt.Sub(now)
}
