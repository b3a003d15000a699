package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition  = errors.New("invalid share status transition")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrInvalidStorageKey  = errors.New("storage key does not belong to this share")
	ErrForbidden          = errors.New("not the owner of this share")
	ErrInvalidToken       = errors.New("invalid token")

	// ErrDenied matches every *DeniedError
	ErrDenied = errors.New("file not accessible")
)

type DenyReason string

const (
	DenyNotFound               DenyReason = "not_found"
	DenyNotReady               DenyReason = "not_ready"
	DenyExpired                DenyReason = "expired"
	DenyNotAuthorizedRecipient DenyReason = "not_authorized_recipient"
	DenyInvalidCode            DenyReason = "invalid_code"
)

// DeniedError carries the precise reason a download was refused.
// Callers outside the service only ever expose ErrDenied's message.
type DeniedError struct {
	Reason  DenyReason
	ShareID string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("access to share %s denied: %s", e.ShareID, e.Reason)
}

func (e *DeniedError) Is(target error) bool {
	return target == ErrDenied
}

// DenialReason extracts the reason from a denial, or "" if err is not one
func DenialReason(err error) DenyReason {
	var denied *DeniedError
	if errors.As(err, &denied) {
		return denied.Reason
	}
	return ""
}
