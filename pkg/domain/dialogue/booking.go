package dialogue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/WETTENTLLC/DelaneNails/pkg/domain/agent"
	"github.com/WETTENTLLC/DelaneNails/pkg/domain/session"
	"github.com/WETTENTLLC/DelaneNails/pkg/repository/model"
)

// book runs one step of the booking funnel.
func (e *Engine) book(ctx context.Context, sess *session.Session, utterance string) Reply {
	b, ok := sess.State.(*agent.Booking)
	if !ok || b.Stage == agent.StageComplete {
		return e.startBooking(ctx, sess)
	}

	switch b.Stage {
	case agent.StageServiceSelection:
		svc, ok := agent.ExtractService(utterance, sess.Services)
		if !ok {
			return Reply{Text: msgServiceMiss}
		}
		b.ChooseService(svc)
		return Reply{Text: msgAskDate}

	case agent.StageDateSelection:
		return e.selectDate(ctx, sess, b, utterance)

	case agent.StageSlotSelection:
		slot, ok := agent.ExtractSlot(utterance, sess.Slots)
		if !ok {
			return Reply{Text: msgSlotMiss}
		}
		b.ChooseSlot(slot)
		return Reply{Text: msgAskName}

	default:
		return e.collectDetails(ctx, sess, b, utterance)
	}
}

func (e *Engine) startBooking(ctx context.Context, sess *session.Session) Reply {
	services, err := e.fetchServices(ctx)
	if err != nil {
		return Reply{Text: msgCatalogDown}
	}
	if len(services) == 0 {
		return Reply{Text: msgNoServices}
	}
	sess.State = agent.NewBooking()
	sess.Services = services
	sess.Slots = nil
	return serviceMenu(services)
}

func (e *Engine) selectDate(ctx context.Context, sess *session.Session, b *agent.Booking, utterance string) Reply {
	day, ok := agent.ExtractDate(utterance, e.now())
	if !ok {
		return Reply{Text: msgDateMiss}
	}

	var slots []model.Slot
	err := e.call(ctx, "list_slots", func(ctx context.Context) error {
		var err error
		slots, err = e.backend.ListSlots(ctx, b.Service.ID, day)
		return err
	})
	if err != nil {
		return text(msgSlotsDown, formatDay(day))
	}
	if len(slots) == 0 {
		return text(msgNoSlots, b.Service.Name, formatDay(day))
	}

	sess.Slots = slots
	b.ChooseDate(day)

	shown := slots
	if len(shown) > e.maxSlots {
		shown = shown[:e.maxSlots]
	}
	return slotMenu(*b.Service, day, shown)
}

// collectDetails fills name, phone and email in that order, one per message,
// and books once the email arrives.
func (e *Engine) collectDetails(ctx context.Context, sess *session.Session, b *agent.Booking, utterance string) Reply {
	value := strings.TrimSpace(utterance)

	switch b.NextDetail() {
	case agent.DetailName:
		if value == "" {
			return Reply{Text: msgEmptyName}
		}
		b.CustomerName = value
		return text(msgAskPhone, value)

	case agent.DetailPhone:
		if value == "" {
			return Reply{Text: msgEmptyPhone}
		}
		b.CustomerPhone = value
		return Reply{Text: msgAskEmail}
	}

	if err := e.validate.Var(value, "required,email"); err != nil {
		return Reply{Text: msgBadEmail}
	}
	b.CustomerEmail = value

	var appt *model.Appointment
	err := e.call(ctx, "book", func(ctx context.Context) error {
		var err error
		appt, err = e.backend.Book(ctx, b.Service.ID, b.Slot.ID, b.Customer())
		return err
	})
	if err != nil {
		b.CustomerEmail = ""
		return text(msgBookFailed, userMessage(err))
	}

	b.Complete()
	svc := *b.Service
	sess.MergeCustomer(b.Customer())
	sess.Reset()
	e.metrics.ObserveBooking()

	e.notify(ctx, fmt.Sprintf("New booking %s: %s for %s (%s, %s) on %s",
		appt.ID, svc.Name, b.CustomerName, b.CustomerPhone, b.CustomerEmail, appt.StartTime.Format(time.RFC1123)))

	return bookingConfirmed(svc, appt)
}
