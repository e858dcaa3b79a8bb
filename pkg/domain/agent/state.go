package agent

import (
	"time"

	"github.com/WETTENTLLC/DelaneNails/pkg/repository/model"
)

type Flow int

const (
	FlowIdle Flow = iota
	FlowBooking
	FlowChecking
	FlowCancelling
)

func (f Flow) String() string {
	switch f {
	case FlowBooking:
		return "booking"
	case FlowChecking:
		return "checking"
	case FlowCancelling:
		return "cancelling"
	default:
		return "idle"
	}
}

// State is the per-conversation position in one of the flows. The concrete
// types are Idle, *Booking, *Checking and *Cancelling.
type State interface {
	Flow() Flow
	StageName() string
}

type Idle struct{}

func (Idle) Flow() Flow { return FlowIdle }
func (Idle) StageName() string { return "idle" }

// ---------- Booking ----------

type BookingStage int

const (
	StageServiceSelection BookingStage = iota
	StageDateSelection
	StageSlotSelection
	StageCustomerDetails
	StageComplete
)

func (s BookingStage) String() string {
	switch s {
	case StageServiceSelection:
		return "service_selection"
	case StageDateSelection:
		return "date_selection"
	case StageSlotSelection:
		return "slot_selection"
	case StageCustomerDetails:
		return "customer_details"
	case StageComplete:
		return "complete"
	}
	return "unknown"
}

// Booking accumulates the funnel data. Stage only moves forward; the setters
// below are the only transitions and each requires the previous field.
type Booking struct {
	Stage   BookingStage
	Service *model.Service
	Date    *time.Time
	Slot    *model.Slot

	CustomerName  string
	CustomerPhone string
	CustomerEmail string
}

func NewBooking() *Booking { return &Booking{Stage: StageServiceSelection} }

func (*Booking) Flow() Flow { return FlowBooking }
func (b *Booking) StageName() string { return b.Stage.String() }

func (b *Booking) advance(to BookingStage) {
	if to > b.Stage {
		b.Stage = to
	}
}

func (b *Booking) ChooseService(svc model.Service) {
	b.Service = &svc
	b.advance(StageDateSelection)
}

func (b *Booking) ChooseDate(day time.Time) {
	b.Date = &day
	b.advance(StageSlotSelection)
}

func (b *Booking) ChooseSlot(slot model.Slot) {
	b.Slot = &slot
	b.advance(StageCustomerDetails)
}

// Complete marks the funnel finished; the caller then resets the session.
func (b *Booking) Complete() {
	b.advance(StageComplete)
}

// NextDetail reports which customer field the next message fills.
func (b *Booking) NextDetail() DetailField {
	switch {
	case b.CustomerName == "":
		return DetailName
	case b.CustomerPhone == "":
		return DetailPhone
	default:
		return DetailEmail
	}
}

func (b *Booking) Customer() model.Customer {
	return model.Customer{Name: b.CustomerName, Phone: b.CustomerPhone, Email: b.CustomerEmail}
}

type DetailField int

const (
	DetailName DetailField = iota
	DetailPhone
	DetailEmail
)

// ---------- Check / cancel ----------

type LookupStage int

const (
	StageWaitingForID LookupStage = iota
	StageDone
)

func (s LookupStage) String() string {
	if s == StageDone {
		return "done"
	}
	return "waiting_for_id"
}

type Lookup struct {
	Stage         LookupStage
	AppointmentID string
}

func (l *Lookup) Resolve(id string) {
	l.AppointmentID = id
	l.Stage = StageDone
}

// NewLookup starts a check or cancel flow waiting for an appointment id.
func NewLookup(f Flow) State {
	if f == FlowCancelling {
		return &Cancelling{}
	}
	return &Checking{}
}

type Checking struct{ Lookup }

func (*Checking) Flow() Flow { return FlowChecking }
func (c *Checking) StageName() string { return c.Stage.String() }

type Cancelling struct{ Lookup }

func (*Cancelling) Flow() Flow { return FlowCancelling }
func (c *Cancelling) StageName() string { return c.Stage.String() }
