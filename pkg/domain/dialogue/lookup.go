package dialogue

import (
	"context"
	"fmt"
	"strings"

	"github.com/WETTENTLLC/DelaneNails/pkg/domain/agent"
	"github.com/WETTENTLLC/DelaneNails/pkg/domain/session"
	"github.com/WETTENTLLC/DelaneNails/pkg/repository/model"
)

// lookup drives the check and cancel flows. Both wait for an appointment id,
// call the backend once and return to Idle whatever the outcome.
func (e *Engine) lookup(ctx context.Context, sess *session.Session, utterance string, flow agent.Flow) Reply {
	id, ok := agent.ExtractAppointmentID(utterance)
	if !ok {
		if sess.State.Flow() == flow {
			return Reply{Text: msgIDMiss}
		}
		sess.State = agent.NewLookup(flow)
		sess.Services = nil
		sess.Slots = nil
		if flow == agent.FlowCancelling {
			return Reply{Text: msgAskCancelID}
		}
		return Reply{Text: msgAskCheckID}
	}

	st := agent.NewLookup(flow)
	switch l := st.(type) {
	case *agent.Checking:
		l.Resolve(id)
	case *agent.Cancelling:
		l.Resolve(id)
	}
	sess.State = st
	defer sess.Reset()

	if flow == agent.FlowCancelling {
		return e.cancelAppointment(ctx, sess, id)
	}
	return e.checkAppointment(ctx, id)
}

func (e *Engine) checkAppointment(ctx context.Context, id string) Reply {
	var appt *model.Appointment
	err := e.call(ctx, "get_appointment", func(ctx context.Context) error {
		var err error
		appt, err = e.backend.GetAppointment(ctx, id)
		return err
	})
	if err != nil {
		return text(msgCheckMiss, id)
	}
	return appointmentStatus(appt)
}

func (e *Engine) cancelAppointment(ctx context.Context, sess *session.Session, id string) Reply {
	var res *model.Cancellation
	err := e.call(ctx, "cancel_appointment", func(ctx context.Context) error {
		var err error
		res, err = e.backend.CancelAppointment(ctx, id)
		return err
	})
	if err != nil {
		return text(msgCancelMiss, id)
	}
	notice := fmt.Sprintf("Appointment %s was %s by the customer", id, res.Status)
	if who := contact(sess.Customer); who != "" {
		notice += " " + who
	}
	e.notify(ctx, notice)
	return cancellationResult(id, res)
}

// contact renders the known parts of the customer profile for staff notices.
func contact(c model.Customer) string {
	var parts []string
	for _, v := range []string{c.Name, c.Phone, c.Email} {
		if v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
