package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/WETTENTLLC/DelaneNails/pkg/domain/agent"
	"github.com/WETTENTLLC/DelaneNails/pkg/repository/model"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAgent    Role = "agent"
)

// Turn is one logged message of the conversation.
type Turn struct {
	Role Role      `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Session is one customer conversation. Everything except ID and the
// activity timestamp must be accessed with the session lock held; the
// dialogue engine holds it for a whole turn.
type Session struct {
	ID string

	mu         sync.Mutex
	lastActive atomic.Int64

	State    agent.State
	Customer model.Customer

	// Current context: what was last shown to the customer. Replaced
	// wholesale whenever the catalog or availability is queried again.
	Services []model.Service
	Slots    []model.Slot

	Turns []Turn
}

func New(id string, now time.Time) *Session {
	s := &Session{ID: id, State: agent.Idle{}}
	s.Touch(now)
	return s
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

func (s *Session) Touch(now time.Time) { s.lastActive.Store(now.UnixNano()) }

func (s *Session) LastActive() time.Time { return time.Unix(0, s.lastActive.Load()) }

// Reset drops the active flow and the shown context. Customer profile and
// the turn log survive.
func (s *Session) Reset() {
	s.State = agent.Idle{}
	s.Services = nil
	s.Slots = nil
}

func (s *Session) AppendTurn(role Role, text string, at time.Time) Turn {
	t := Turn{Role: role, Text: text, At: at}
	s.Turns = append(s.Turns, t)
	return t
}

// MergeCustomer fills profile fields from c that are non-empty.
func (s *Session) MergeCustomer(c model.Customer) {
	if c.Name != "" {
		s.Customer.Name = c.Name
	}
	if c.Phone != "" {
		s.Customer.Phone = c.Phone
	}
	if c.Email != "" {
		s.Customer.Email = c.Email
	}
}
