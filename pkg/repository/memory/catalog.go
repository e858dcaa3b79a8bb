// Package memory is an in-process booking backend used for demos and local
// runs. Bookings live only as long as the process.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/WETTENTLLC/DelaneNails/pkg/repository/model"
	"github.com/WETTENTLLC/DelaneNails/pkg/utils/errs"
)

const (
	slotPrefix  = "slot_"
	slotLayout  = "200601021504"
	apptPrefix  = "appt-"
	openingHour = 9
	closingHour = 17
)

var demoServices = []model.Service{
	{ID: "service-001", Name: "Manicure", Description: "Basic manicure service", DurationMin: 60, PriceMinor: 3500},
	{ID: "service-002", Name: "Pedicure", Description: "Basic pedicure service", DurationMin: 45, PriceMinor: 4000},
	{ID: "service-003", Name: "Gel Nails", Description: "Gel nail application", DurationMin: 75, PriceMinor: 5500},
	{ID: "service-004", Name: "Nail Art", Description: "Custom nail art designs", DurationMin: 90, PriceMinor: 6500},
}

// Catalog serves the demo service list and hourly slots, and keeps booked
// appointments in a map.
type Catalog struct {
	loc *time.Location
	now func() time.Time

	mu    sync.Mutex
	appts map[string]*model.Appointment
}

func NewCatalog(loc *time.Location) *Catalog {
	if loc == nil {
		loc = time.Local
	}
	return &Catalog{loc: loc, now: time.Now, appts: make(map[string]*model.Appointment)}
}

// WithClock replaces the clock used to skip past slots.
func (c *Catalog) WithClock(now func() time.Time) *Catalog {
	c.now = now
	return c
}

func (c *Catalog) ListServices(ctx context.Context) ([]model.Service, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]model.Service, len(demoServices))
	copy(out, demoServices)
	return out, nil
}

func (c *Catalog) service(id string) (model.Service, bool) {
	for _, s := range demoServices {
		if s.ID == id {
			return s, true
		}
	}
	return model.Service{}, false
}

func (c *Catalog) ListSlots(ctx context.Context, serviceID string, day time.Time) ([]model.Slot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, ok := c.service(serviceID); !ok {
		return nil, errs.NotFound("unknown service").Arg("service_id", serviceID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	y, m, d := day.In(c.loc).Date()
	var out []model.Slot
	for h := openingHour; h < closingHour; h++ {
		start := time.Date(y, m, d, h, 0, 0, 0, c.loc)
		if start.Before(now) {
			continue
		}
		id := slotPrefix + start.Format(slotLayout)
		if c.taken(id) {
			continue
		}
		out = append(out, model.Slot{ID: id, StartTime: start, EndTime: start.Add(time.Hour)})
	}
	return out, nil
}

// appointmentID derives the appointment id from the slot it holds:
// slot_202603050900 is booked as appt-202603050900.
func appointmentID(slotID string) string {
	return apptPrefix + strings.TrimPrefix(slotID, slotPrefix)
}

// taken reports whether a confirmed appointment holds the slot. Caller holds mu.
func (c *Catalog) taken(slotID string) bool {
	a, ok := c.appts[appointmentID(slotID)]
	return ok && a.Status == model.StatusConfirmed
}

func (c *Catalog) Book(ctx context.Context, serviceID, slotID string, cust model.Customer) (*model.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	svc, ok := c.service(serviceID)
	if !ok {
		return nil, errs.Validation("unknown service").Arg("service_id", serviceID)
	}
	start, err := time.ParseInLocation(slotLayout, strings.TrimPrefix(slotID, slotPrefix), c.loc)
	if err != nil || !strings.HasPrefix(slotID, slotPrefix) {
		return nil, errs.Validation("unknown time slot").Arg("slot_id", slotID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.taken(slotID) {
		return nil, errs.Validation("slot no longer available").Arg("slot_id", slotID)
	}
	a := &model.Appointment{
		ID:          appointmentID(slotID),
		ServiceID:   svc.ID,
		ServiceName: svc.Name,
		SlotID:      slotID,
		StartTime:   start,
		EndTime:     start.Add(time.Hour),
		Customer:    cust,
		Status:      model.StatusConfirmed,
	}
	c.appts[a.ID] = a
	cp := *a
	return &cp, nil
}

func (c *Catalog) GetAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	a, ok := c.appts[strings.ToLower(id)]
	if !ok {
		return nil, errs.NotFound("appointment not found").Arg("id", id)
	}
	cp := *a
	return &cp, nil
}

func (c *Catalog) CancelAppointment(ctx context.Context, id string) (*model.Cancellation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	a, ok := c.appts[strings.ToLower(id)]
	if !ok {
		return nil, errs.NotFound("appointment not found").Arg("id", id)
	}
	if a.Status == model.StatusCanceled {
		return nil, errs.Validation("appointment already canceled").Arg("id", id)
	}
	a.Status = model.StatusCanceled
	return &model.Cancellation{AppointmentID: a.ID, Status: a.Status, Message: "Appointment successfully canceled"}, nil
}
