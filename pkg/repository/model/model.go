package model

import (
	"context"
	"time"
)

type Service struct {
	ID          string
	Name        string
	PriceMinor  int // cents
	DurationMin int
	Description string
}

// Price returns the price in major currency units.
func (s Service) Price() float64 {
	return float64(s.PriceMinor) / 100
}

// Slot is a bookable interval. It is only meaningful for the date it was fetched for.
type Slot struct {
	ID        string
	StartTime time.Time
	EndTime   time.Time
	StaffID   string
	StaffName string
}

type Customer struct {
	Name  string
	Phone string
	Email string
}

// Empty reports whether no contact field is set.
func (c Customer) Empty() bool {
	return c.Name == "" && c.Phone == "" && c.Email == ""
}

type AppointmentStatus string

const (
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCanceled  AppointmentStatus = "canceled"
)

type Appointment struct {
	ID          string
	ServiceID   string
	ServiceName string
	SlotID      string
	StartTime   time.Time
	EndTime     time.Time
	Customer    Customer
	Status      AppointmentStatus
}

type Cancellation struct {
	AppointmentID string
	Status        AppointmentStatus
	Message       string
}

// Collaborator is the booking backend the dialogue engine depends on.
// Errors are classified with pkg/utils/errs kinds: Upstream for transport
// failures, Validation for refused bookings, NotFound for unknown ids.
type Collaborator interface {
	// Каталог
	ListServices(ctx context.Context) ([]Service, error)

	// Слоты; an empty result means no availability and is not an error.
	ListSlots(ctx context.Context, serviceID string, day time.Time) ([]Slot, error)

	// Бронирование
	Book(ctx context.Context, serviceID, slotID string, c Customer) (*Appointment, error)
	GetAppointment(ctx context.Context, id string) (*Appointment, error)
	CancelAppointment(ctx context.Context, id string) (*Cancellation, error)
}
