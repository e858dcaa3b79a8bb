package agent

import "strings"

type Intent int

const (
	IntentUnknown Intent = iota
	IntentGreeting
	IntentBookAppointment
	IntentCheckAppointment
	IntentCancelAppointment
	IntentListServices
)

func (i Intent) String() string {
	switch i {
	case IntentGreeting:
		return "greeting"
	case IntentBookAppointment:
		return "book_appointment"
	case IntentCheckAppointment:
		return "check_appointment"
	case IntentCancelAppointment:
		return "cancel_appointment"
	case IntentListServices:
		return "list_services"
	default:
		return "unknown"
	}
}

type intentRule struct {
	intent  Intent
	phrases []string
}

// intentRules are tested in order; the first rule with a phrase contained in
// the message wins. Matching is plain substring, so "this" triggers "hi".
var intentRules = []intentRule{
	{IntentGreeting, []string{"hello", "hi", "hey", "greetings"}},
	{IntentBookAppointment, []string{"book", "schedule", "reserve", "make an appointment", "new appointment"}},
	{IntentCheckAppointment, []string{"check appointment", "check my appointment", "appointment status", "my booking"}},
	{IntentCancelAppointment, []string{"cancel appointment", "cancel my appointment", "cancel booking"}},
	{IntentListServices, []string{"service", "services", "offer", "provide", "available", "what can you do"}},
}

// Classify maps an utterance to an intent. When no phrase matches, the flow
// already active in st decides; an idle conversation yields IntentUnknown.
func Classify(utterance string, st State) Intent {
	msg := strings.ToLower(utterance)
	for _, r := range intentRules {
		for _, p := range r.phrases {
			if strings.Contains(msg, p) {
				return r.intent
			}
		}
	}

	switch st.Flow() {
	case FlowBooking:
		return IntentBookAppointment
	case FlowChecking:
		return IntentCheckAppointment
	case FlowCancelling:
		return IntentCancelAppointment
	default:
		return IntentUnknown
	}
}
