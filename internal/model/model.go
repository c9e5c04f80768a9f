// Package model holds the persisted domain types shared by services and stores.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Mechanic struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          *string   `json:"email,omitempty"`
	Phone          *string   `json:"phone,omitempty"`
	PasswordHash   *string   `json:"-"`
	PhotoKey       *string   `json:"-"`
	PhotoURL       string    `json:"photo_url,omitempty"`
	IsPublic       bool      `json:"is_public"`
	OilChangeCount int       `json:"oil_change_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Ref is the {id, name} projection returned by availability queries.
func (m Mechanic) Ref() MechanicRef {
	return MechanicRef{ID: m.ID, Name: m.Name}
}

type MechanicRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// SlotMechanic is one availability row joined with its technician's name.
type SlotMechanic struct {
	TimeSlot    string
	Mechanic    MechanicRef
	IsAvailable bool
}

type Manager struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// RecurringEntry is one weekly availability row. DayOfWeek follows
// time.Weekday: 0 = Sunday.
type RecurringEntry struct {
	ID          uuid.UUID `json:"id"`
	MechanicID  uuid.UUID `json:"mechanic_id"`
	DayOfWeek   int       `json:"day_of_week"`
	TimeSlot    string    `json:"time_slot"`
	IsAvailable bool      `json:"is_available"`
}

// OverrideEntry is availability for one calendar date; Date is YYYY-MM-DD.
type OverrideEntry struct {
	ID          uuid.UUID `json:"id"`
	MechanicID  uuid.UUID `json:"mechanic_id"`
	Date        string    `json:"date"`
	TimeSlot    string    `json:"time_slot"`
	IsAvailable bool      `json:"is_available"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type AppointmentStatus string

const (
	StatusScheduled  AppointmentStatus = "scheduled"
	StatusInProgress AppointmentStatus = "in-progress"
	StatusCompleted  AppointmentStatus = "completed"
	StatusCancelled  AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal statuses accept no further lifecycle transitions.
func (s AppointmentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
	PaymentFailed   PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentRefunded, PaymentFailed:
		return true
	}
	return false
}

type Vehicle struct {
	Make  string `json:"make"`
	Model string `json:"model"`
	Year  int    `json:"year,omitempty"`
	Plate string `json:"plate,omitempty"`
}

type Appointment struct {
	ID                uuid.UUID         `json:"id"`
	JobNumber         int64             `json:"job_number"`
	CustomerID        *uuid.UUID        `json:"customer_id,omitempty"`
	CustomerName      string            `json:"customer_name"`
	CustomerEmail     string            `json:"customer_email"`
	CustomerPhone     string            `json:"customer_phone"`
	ContactPreference string            `json:"contact_preference,omitempty"`
	Address           string            `json:"address"`
	Vehicle           Vehicle           `json:"vehicle"`
	ServiceType       string            `json:"service_type"`
	Notes             string            `json:"notes,omitempty"`
	Date              string            `json:"date"`
	TimeSlot          string            `json:"time_slot"`
	MechanicID        *uuid.UUID        `json:"mechanic_id,omitempty"`
	Status            AppointmentStatus `json:"status"`
	PaymentStatus     PaymentStatus     `json:"payment_status"`
	PaymentProvider   string            `json:"payment_provider,omitempty"`
	PaymentReference  string            `json:"payment_reference,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
	CompletedAt       *time.Time        `json:"completed_at,omitempty"`
	CancelledAt       *time.Time        `json:"cancelled_at,omitempty"`
}

// IsOilChange reports whether completing the job counts toward the mechanic's
// oil change tally.
func (a Appointment) IsOilChange() bool {
	return strings.Contains(strings.ToLower(a.ServiceType), "oil")
}

// AssignedTo reports whether mechanicID is the appointment's technician.
func (a Appointment) AssignedTo(mechanicID uuid.UUID) bool {
	return a.MechanicID != nil && *a.MechanicID == mechanicID
}

type TimeEntry struct {
	ID           uuid.UUID  `json:"id"`
	MechanicID   uuid.UUID  `json:"mechanic_id"`
	CheckInTime  time.Time  `json:"check_in_time"`
	CheckOutTime *time.Time `json:"check_out_time,omitempty"`
}

// Worked is the elapsed time of a closed entry, or time since check-in for an
// open one.
func (e TimeEntry) Worked(now time.Time) time.Duration {
	end := now
	if e.CheckOutTime != nil {
		end = *e.CheckOutTime
	}
	return end.Sub(e.CheckInTime)
}

type Customer struct {
	ID                uuid.UUID `json:"id"`
	Email             string    `json:"email"`
	Name              string    `json:"name"`
	Phone             string    `json:"phone,omitempty"`
	ContactPreference string    `json:"contact_preference,omitempty"`
	Address           string    `json:"address,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Merge applies non-empty fields from next onto c. Email is the identity key
// and never changes.
func (c Customer) Merge(next Customer) Customer {
	if next.Name != "" {
		c.Name = next.Name
	}
	if next.Phone != "" {
		c.Phone = next.Phone
	}
	if next.ContactPreference != "" {
		c.ContactPreference = next.ContactPreference
	}
	if next.Address != "" {
		c.Address = next.Address
	}
	return c
}
