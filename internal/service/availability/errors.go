package availability

import (
	"errors"
	"fmt"
)

var ErrSlotUnavailable = errors.New("slot is full or unavailable")

// SlotUnavailableError names the slot that could not be taken. It matches
// ErrSlotUnavailable under errors.Is.
type SlotUnavailableError struct {
	Date string
	Slot string
}

func (e *SlotUnavailableError) Error() string {
	return fmt.Sprintf("slot %s on %s is full or unavailable for the requested technician", e.Slot, e.Date)
}

func (e *SlotUnavailableError) Is(target error) bool { return target == ErrSlotUnavailable }

func slotUnavailable(date, slot string) error {
	return &SlotUnavailableError{Date: date, Slot: slot}
}
