package dialogue

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/WETTENTLLC/DelaneNails/pkg/domain/agent"
	"github.com/WETTENTLLC/DelaneNails/pkg/domain/session"
	"github.com/WETTENTLLC/DelaneNails/pkg/observability/metrics"
	"github.com/WETTENTLLC/DelaneNails/pkg/repository/model"
	"github.com/WETTENTLLC/DelaneNails/pkg/utils/errs"
)

const (
	DefaultBackendTimeout = 10 * time.Second
	DefaultMaxSlotsShown  = 8
	DefaultBusinessName   = "Delane Nails"
)

// Notifier receives staff-facing notices about bookings and cancellations.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// TurnRecorder keeps an audit copy of every logged turn.
type TurnRecorder interface {
	Record(ctx context.Context, sessionID string, t session.Turn) error
}

var (
	resetCommands     = map[string]bool{"start over": true, "reset": true, "restart": true, "nevermind": true, "never mind": true}
	terminateCommands = map[string]bool{"exit": true, "quit": true, "bye": true}
)

type Options struct {
	Store   session.Store
	Backend model.Collaborator
	Logger  zerolog.Logger

	// Optional.
	Notifier       Notifier
	Recorder       TurnRecorder
	Metrics        *metrics.DialogueMetrics
	Tracer         trace.Tracer
	Now            func() time.Time
	BackendTimeout time.Duration
	MaxSlotsShown  int
	BusinessName   string
}

// Engine drives conversations: it classifies each message, runs the stage
// handler of the active flow and produces the reply.
type Engine struct {
	store    session.Store
	backend  model.Collaborator
	logger   zerolog.Logger
	notifier Notifier
	recorder TurnRecorder
	metrics  *metrics.DialogueMetrics
	tracer   trace.Tracer
	validate *validator.Validate
	now      func() time.Time
	timeout  time.Duration
	maxSlots int
	business string
}

func New(opts Options) (*Engine, error) {
	if opts.Store == nil {
		return nil, errs.New("dialogue: session store is required")
	}
	if opts.Backend == nil {
		return nil, errs.New("dialogue: booking backend is required")
	}
	e := &Engine{
		store:    opts.Store,
		backend:  opts.Backend,
		logger:   opts.Logger,
		notifier: opts.Notifier,
		recorder: opts.Recorder,
		metrics:  opts.Metrics,
		tracer:   opts.Tracer,
		validate: validator.New(),
		now:      opts.Now,
		timeout:  opts.BackendTimeout,
		maxSlots: opts.MaxSlotsShown,
		business: opts.BusinessName,
	}
	if e.tracer == nil {
		e.tracer = otel.Tracer("delanenails.dialogue")
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.timeout <= 0 {
		e.timeout = DefaultBackendTimeout
	}
	if e.maxSlots <= 0 {
		e.maxSlots = DefaultMaxSlotsShown
	}
	if e.business == "" {
		e.business = DefaultBusinessName
	}
	return e, nil
}

// SetCustomer merges transport-supplied contact details into the session profile.
func (e *Engine) SetCustomer(sessionID string, c model.Customer) {
	sess := e.acquire(sessionID)
	defer sess.Unlock()
	sess.MergeCustomer(c)
}

// Reset returns the session to Idle without logging a turn.
func (e *Engine) Reset(sessionID string) {
	e.store.Reset(sessionID)
}

// Advance processes one customer message and returns the reply. Turns of
// the same session are serialised on the session lock; backend failures are
// turned into reply text and never returned.
func (e *Engine) Advance(ctx context.Context, sessionID, utterance string) Reply {
	ctx, span := e.tracer.Start(ctx, "dialogue.advance")
	defer span.End()

	started := e.now()
	sess := e.acquire(sessionID)
	defer sess.Unlock()

	sess.Touch(started)
	e.record(ctx, sess, session.RoleCustomer, utterance, started)

	reply, intent := e.turn(ctx, sess, utterance)

	e.record(ctx, sess, session.RoleAgent, reply.Text, e.now())

	flow := sess.State.Flow().String()
	span.SetAttributes(
		attribute.String("session.id", sessionID),
		attribute.String("dialogue.intent", intent.String()),
		attribute.String("dialogue.flow", flow),
		attribute.String("dialogue.stage", sess.State.StageName()),
	)
	e.metrics.ObserveTurn(intent.String(), flow, e.now().Sub(started).Seconds())
	if l, ok := e.store.(interface{ Len() int }); ok {
		e.metrics.SetActiveSessions(l.Len())
	}

	e.logger.Debug().
		Str("session", sessionID).
		Str("intent", intent.String()).
		Str("flow", flow).
		Str("stage", sess.State.StageName()).
		Msg("turn")

	return reply
}

// acquire returns the session for id with its lock held. A session dropped
// from the store while we waited for its lock (exit, idle sweep) is left
// alone and the turn goes to the one the store holds now.
func (e *Engine) acquire(id string) *session.Session {
	for {
		sess := e.store.GetOrCreate(id)
		sess.Lock()
		if cur, ok := e.store.Get(id); ok && cur == sess {
			return sess
		}
		sess.Unlock()
	}
}

func (e *Engine) record(ctx context.Context, sess *session.Session, role session.Role, msg string, at time.Time) {
	t := sess.AppendTurn(role, msg, at)
	if e.recorder == nil {
		return
	}
	if err := e.recorder.Record(ctx, sess.ID, t); err != nil {
		e.logger.Warn().Err(err).Str("session", sess.ID).Msg("record turn failed")
	}
}

func (e *Engine) turn(ctx context.Context, sess *session.Session, utterance string) (Reply, agent.Intent) {
	cmd := strings.ToLower(strings.TrimSpace(utterance))
	switch {
	case terminateCommands[cmd]:
		sess.Reset()
		e.store.Delete(sess.ID)
		return Reply{Text: msgGoodbye}, agent.IntentUnknown
	case resetCommands[cmd]:
		sess.Reset()
		return Reply{Text: msgReset}, agent.IntentUnknown
	}

	intent := agent.Classify(utterance, sess.State)
	switch intent {
	case agent.IntentGreeting:
		return greeting(e.business), intent
	case agent.IntentBookAppointment:
		return e.book(ctx, sess, utterance), intent
	case agent.IntentCheckAppointment:
		return e.lookup(ctx, sess, utterance, agent.FlowChecking), intent
	case agent.IntentCancelAppointment:
		return e.lookup(ctx, sess, utterance, agent.FlowCancelling), intent
	case agent.IntentListServices:
		return e.listServices(ctx, sess), intent
	default:
		return Reply{Text: msgHelp}, intent
	}
}

func (e *Engine) listServices(ctx context.Context, sess *session.Session) Reply {
	services, err := e.fetchServices(ctx)
	if err != nil {
		return Reply{Text: msgCatalogDown}
	}
	sess.Services = services
	if len(services) == 0 {
		return Reply{Text: msgNoServices}
	}
	return serviceCatalog(services)
}

// ---------- Backend calls ----------

func (e *Engine) call(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	ctx, span := e.tracer.Start(ctx, "dialogue.backend."+op)
	defer span.End()

	err := fn(ctx)
	if err != nil {
		if ctx.Err() != nil && errs.KindOf(err) == errs.KindUnknown {
			err = errs.Upstream("backend timed out").Arg("op", op).Wrap(err)
		}
		span.RecordError(err)
		e.metrics.ObserveBackend(op, errs.KindOf(err).String())
		e.logger.Warn().Err(err).Str("op", op).Msg("backend call failed")
		return err
	}
	e.metrics.ObserveBackend(op, "ok")
	return nil
}

func (e *Engine) fetchServices(ctx context.Context) ([]model.Service, error) {
	var out []model.Service
	err := e.call(ctx, "list_services", func(ctx context.Context) error {
		var err error
		out, err = e.backend.ListServices(ctx)
		return err
	})
	return out, err
}

// notify posts a staff notice. It runs with the session lock held, so the
// notifier gets the same deadline as a backend call.
func (e *Engine) notify(ctx context.Context, msg string) {
	if e.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	if err := e.notifier.Notify(ctx, msg); err != nil {
		e.logger.Warn().Err(err).Msg("staff notification failed")
	}
}

// userMessage extracts a customer-presentable message from a backend error.
func userMessage(err error) string {
	var ce *errs.CustomError
	if errors.As(err, &ce) && ce.Message() != "" {
		return ce.Message()
	}
	return "the booking system is unavailable"
}
