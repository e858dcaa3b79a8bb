package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		message string
		state   State
		want    Intent
	}{
		{name: "greeting", message: "Hello there", state: Idle{}, want: IntentGreeting},
		{name: "booking", message: "I want to book appointment", state: Idle{}, want: IntentBookAppointment},
		{name: "schedule", message: "can I SCHEDULE a pedicure", state: Idle{}, want: IntentBookAppointment},
		{name: "check", message: "check appointment", state: Idle{}, want: IntentCheckAppointment},
		{name: "status", message: "what's my appointment status", state: Idle{}, want: IntentCheckAppointment},
		{name: "cancel", message: "please cancel appointment appt-1", state: Idle{}, want: IntentCancelAppointment},
		{name: "services", message: "what services do you offer?", state: Idle{}, want: IntentListServices},
		{name: "unknown idle", message: "blue", state: Idle{}, want: IntentUnknown},

		// Priority order beats relevance.
		{name: "greeting beats booking", message: "hey, book me in", state: Idle{}, want: IntentGreeting},
		{name: "booking beats services", message: "book a service", state: Idle{}, want: IntentBookAppointment},
		{name: "my booking shadowed by book", message: "my booking", state: Idle{}, want: IntentBookAppointment},
		{name: "cancel booking shadowed by book", message: "cancel booking", state: Idle{}, want: IntentBookAppointment},
		{name: "substring hi", message: "this one", state: NewBooking(), want: IntentGreeting},

		// Fallback to the active flow.
		{name: "booking fallback", message: "2", state: NewBooking(), want: IntentBookAppointment},
		{name: "checking fallback", message: "appt-77", state: &Checking{}, want: IntentCheckAppointment},
		{name: "cancelling fallback", message: "appt-77", state: &Cancelling{}, want: IntentCancelAppointment},
		{name: "phrase wins over flow", message: "what do you offer", state: &Checking{}, want: IntentListServices},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.message, tt.state))
		})
	}
}

func TestClassifyIsPure(t *testing.T) {
	st := NewBooking()
	first := Classify("tomorrow", st)
	second := Classify("tomorrow", st)
	assert.Equal(t, first, second)
	assert.Equal(t, StageServiceSelection, st.Stage)
}

func TestIntentString(t *testing.T) {
	assert.Equal(t, "book_appointment", IntentBookAppointment.String())
	assert.Equal(t, "unknown", Intent(99).String())
}
