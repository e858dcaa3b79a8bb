package dialogue

import (
	"fmt"
	"strings"
	"time"

	"github.com/WETTENTLLC/DelaneNails/pkg/repository/model"
)

type Action string

const (
	ActionNone            Action = ""
	ActionDisplayServices Action = "display_services"
	ActionDisplaySlots    Action = "display_slots"
)

// Reply is the outcome of one turn. Text is always set; Action and the
// matching list tell a transport what it may render besides the text.
type Reply struct {
	Text     string
	Action   Action
	Services []model.Service
	Slots    []model.Slot

	// Browse marks a list shown for reading only: the session is not
	// waiting for the customer to pick from it.
	Browse bool
}

func text(format string, args ...any) Reply {
	return Reply{Text: fmt.Sprintf(format, args...)}
}

const (
	layoutDay      = "Monday, January 02"
	layoutDayClock = "Monday, January 02 at 03:04 PM"
	layoutClock    = "03:04 PM"
)

func formatDay(t time.Time) string      { return t.Format(layoutDay) }
func formatDayClock(t time.Time) string { return t.Format(layoutDayClock) }
func formatClock(t time.Time) string    { return t.Format(layoutClock) }

func numberedServices(services []model.Service) string {
	lines := make([]string, 0, len(services))
	for i, s := range services {
		lines = append(lines, fmt.Sprintf("%d. %s - $%.2f (%d minutes)", i+1, s.Name, s.Price(), s.DurationMin))
	}
	return strings.Join(lines, "\n")
}

func describedServices(services []model.Service) string {
	lines := make([]string, 0, len(services))
	for _, s := range services {
		line := fmt.Sprintf("%s - $%.2f (%d minutes)", s.Name, s.Price(), s.DurationMin)
		if s.Description != "" {
			line += ": " + s.Description
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func numberedSlots(slots []model.Slot) string {
	lines := make([]string, 0, len(slots))
	for i, s := range slots {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, formatClock(s.StartTime)))
	}
	return strings.Join(lines, "\n")
}

// Canned prompts.
const (
	msgHelp = "I'm here to help you book nail services. Would you like to schedule an appointment, " +
		"check an existing appointment, or learn about our services?"
	msgAskDate = "Great choice! What day would you like to book your appointment? " +
		"(e.g., today, tomorrow, next Monday)"
	msgServiceMiss = "I'm not sure which service you want. Please select one from the list or enter the service name."
	msgDateMiss    = "I'm not sure which day you want. Please specify a date like 'today', 'tomorrow', or 'next Monday'."
	msgSlotMiss    = "I'm not sure which time slot you want. Please select one from the list or specify a time."
	msgAskName     = "Great! I just need a few details to complete your booking. What's your name?"
	msgAskPhone    = "Thanks, %s. What's your phone number?"
	msgAskEmail    = "And finally, what's your email address?"
	msgEmptyName   = "Sorry, I didn't catch your name. What name should I put the booking under?"
	msgEmptyPhone  = "Sorry, I didn't catch that. What's the best phone number to reach you?"
	msgBadEmail    = "That doesn't look like a valid email address. Could you check it and send it again?"

	msgCatalogDown = "I'm sorry, I couldn't load our services right now. Please try again in a moment."
	msgNoServices  = "I'm sorry, there are no services available for booking right now."
	msgSlotsDown   = "I'm sorry, I couldn't check availability for %s right now. Please try again or pick another day."
	msgNoSlots     = "I'm sorry, there are no available slots for %s on %s. Would you like to try a different day?"
	msgBookFailed  = "I'm sorry, there was an error booking your appointment: %s. Please send your email again to retry."

	msgAskCheckID  = "I'd be happy to check your appointment. Could you please provide your appointment ID?"
	msgAskCancelID = "I'd be happy to cancel your appointment. Could you please provide your appointment ID?"
	msgIDMiss      = "I couldn't find an appointment ID in that message. It should look like appt-12345."
	msgCheckMiss   = "I couldn't find an appointment with ID %s. Please check the ID and try again."
	msgCancelMiss  = "I couldn't cancel appointment %s. Please check the ID and try again."

	msgReset   = "No problem, let's start over. What would you like to do?"
	msgGoodbye = "Thank you for chatting with us. Have a great day!"
)

func greeting(business string) Reply {
	return text("Hello! Welcome to %s. I can help you book an appointment, check your existing appointment, "+
		"or provide information about our services. What would you like to do today?", business)
}

func serviceMenu(services []model.Service) Reply {
	return Reply{
		Text: "Great! I'd be happy to help you book an appointment. Here are our services:\n\n" +
			numberedServices(services) + "\n\nWhich service would you like to book?",
		Action:   ActionDisplayServices,
		Services: services,
	}
}

func serviceCatalog(services []model.Service) Reply {
	return Reply{
		Text:     "Here are the services we offer:\n\n" + describedServices(services) + "\n\nWould you like to book an appointment?",
		Action:   ActionDisplayServices,
		Services: services,
		Browse:   true,
	}
}

func slotMenu(svc model.Service, day time.Time, shown []model.Slot) Reply {
	return Reply{
		Text: fmt.Sprintf("Here are available times for %s on %s:\n\n%s\n\nWhich time works for you?",
			svc.Name, formatDay(day), numberedSlots(shown)),
		Action: ActionDisplaySlots,
		Slots:  shown,
	}
}

func bookingConfirmed(svc model.Service, a *model.Appointment) Reply {
	return text("Great! Your appointment for %s on %s is confirmed. Your appointment ID is %s. We'll see you then!",
		svc.Name, formatDayClock(a.StartTime), a.ID)
}

func appointmentStatus(a *model.Appointment) Reply {
	return text("Your appointment for %s on %s is %s.", a.ServiceName, formatDayClock(a.StartTime), a.Status)
}

func cancellationResult(id string, c *model.Cancellation) Reply {
	return Reply{Text: strings.TrimSpace(fmt.Sprintf("Your appointment %s has been %s. %s", id, c.Status, c.Message))}
}
