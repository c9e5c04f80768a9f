package schedule

import "errors"

var (
	ErrMechanicNotFound = errors.New("mechanic not found")
	ErrOverrideNotFound = errors.New("date override not found")
)
