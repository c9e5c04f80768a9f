package appointment

import (
	"errors"

	"github.com/Alijeyrad/oilcall_backend/internal/service/availability"
)

var (
	ErrNotFound          = errors.New("appointment not found")
	ErrMechanicNotFound  = errors.New("mechanic not found")
	ErrAlreadyCompleted  = errors.New("appointment is already completed")
	ErrAlreadyCancelled  = errors.New("appointment is already cancelled")
	ErrInvalidTransition = errors.New("invalid appointment status transition")
	ErrForbidden         = errors.New("not allowed to act on this appointment")

	// ErrSlotUnavailable matches every refusal to put a technician in a slot.
	ErrSlotUnavailable = availability.ErrSlotUnavailable
)
