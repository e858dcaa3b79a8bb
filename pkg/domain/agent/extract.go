package agent

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/WETTENTLLC/DelaneNails/pkg/repository/model"
)

var (
	indexRE         = regexp.MustCompile(`\b(\d+)\b`)
	clockRE         = regexp.MustCompile(`(\d{1,2})(?::(\d{2}))?\s*(am|pm)?`)
	appointmentIDRE = regexp.MustCompile(`(?i)(appt-[a-z0-9-]+)`)
)

var weekdays = []struct {
	name string
	day  time.Weekday
}{
	{"monday", time.Monday},
	{"tuesday", time.Tuesday},
	{"wednesday", time.Wednesday},
	{"thursday", time.Thursday},
	{"friday", time.Friday},
	{"saturday", time.Saturday},
	{"sunday", time.Sunday},
}

// pickIndex interprets the first standalone number in msg as a 1-based index
// into a list of n items.
func pickIndex(msg string, n int) (int, bool) {
	m := indexRE.FindStringSubmatch(msg)
	if m == nil {
		return 0, false
	}
	i, err := strconv.Atoi(m[1])
	if err != nil || i < 1 || i > n {
		return 0, false
	}
	return i - 1, true
}

// ExtractService resolves a service by list number or by a case-insensitive
// name contained in the utterance, in candidate order.
func ExtractService(utterance string, candidates []model.Service) (model.Service, bool) {
	if i, ok := pickIndex(utterance, len(candidates)); ok {
		return candidates[i], true
	}
	msg := strings.ToLower(utterance)
	for _, svc := range candidates {
		if svc.Name != "" && strings.Contains(msg, strings.ToLower(svc.Name)) {
			return svc, true
		}
	}
	return model.Service{}, false
}

// ExtractDate recognises today, tomorrow, next week and weekday names
// relative to now. A weekday equal to today means today unless the message
// also says "next". The result is midnight in now's location.
func ExtractDate(utterance string, now time.Time) (time.Time, bool) {
	msg := strings.ToLower(utterance)
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	switch {
	case strings.Contains(msg, "today"):
		return today, true
	case strings.Contains(msg, "tomorrow"):
		return today.AddDate(0, 0, 1), true
	case strings.Contains(msg, "next week"):
		return today.AddDate(0, 0, 7), true
	}

	for _, wd := range weekdays {
		if !strings.Contains(msg, wd.name) {
			continue
		}
		ahead := (int(wd.day) - int(today.Weekday()) + 7) % 7
		if ahead == 0 && strings.Contains(msg, "next") {
			ahead = 7
		}
		return today.AddDate(0, 0, ahead), true
	}
	return time.Time{}, false
}

// ExtractSlot resolves a slot by list number, else by an "H[:MM][am|pm]"
// time equal to a candidate's start hour and minute.
func ExtractSlot(utterance string, candidates []model.Slot) (model.Slot, bool) {
	if i, ok := pickIndex(utterance, len(candidates)); ok {
		return candidates[i], true
	}

	m := clockRE.FindStringSubmatch(strings.ToLower(utterance))
	if m == nil {
		return model.Slot{}, false
	}
	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	if m[3] == "pm" && hour < 12 {
		hour += 12
	}

	for _, s := range candidates {
		if s.StartTime.Hour() == hour && s.StartTime.Minute() == minute {
			return s, true
		}
	}
	return model.Slot{}, false
}

// ExtractAppointmentID returns the first "appt-..." token verbatim.
func ExtractAppointmentID(utterance string) (string, bool) {
	m := appointmentIDRE.FindStringSubmatch(utterance)
	if m == nil {
		return "", false
	}
	return m[1], true
}
