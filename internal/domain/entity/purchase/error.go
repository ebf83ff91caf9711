package purchase

import (
	"errors"
)

var (
	// State transition errors
	ErrAlreadyFinalized       = errors.New("purchase already finalized")
	ErrInvalidStateTransition = errors.New("invalid purchase state transition")
	ErrNotSuccessful          = errors.New("purchase is not successful")

	// Entitlement errors
	ErrDownloadExpired      = errors.New("download window has expired")
	ErrDownloadLimitReached = errors.New("maximum download limit reached")
)
