package timeentry

import "errors"

var (
	ErrAlreadyCheckedIn = errors.New("already checked in")
	ErrNotCheckedIn     = errors.New("not checked in")
	ErrMechanicNotFound = errors.New("mechanic not found")
)
