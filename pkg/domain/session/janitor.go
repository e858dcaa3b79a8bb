package session

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DefaultJanitorSpec runs the sweep once a minute.
const DefaultJanitorSpec = "@every 1m"

type Sweeper interface {
	Sweep(cutoff time.Time) int
}

// Janitor periodically removes sessions idle for longer than ttl.
type Janitor struct {
	cron    *cron.Cron
	store   Sweeper
	ttl     time.Duration
	spec    string
	logger  zerolog.Logger
	now     func() time.Time
	started bool
}

func NewJanitor(store Sweeper, ttl time.Duration, spec string, logger zerolog.Logger) *Janitor {
	if spec == "" {
		spec = DefaultJanitorSpec
	}
	return &Janitor{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		store:  store,
		ttl:    ttl,
		spec:   spec,
		logger: logger,
		now:    time.Now,
	}
}

// Start schedules the sweep. A non-positive ttl disables expiry.
func (j *Janitor) Start() error {
	if j.ttl <= 0 {
		j.logger.Info().Msg("session expiry disabled")
		return nil
	}
	if _, err := j.cron.AddFunc(j.spec, j.RunOnce); err != nil {
		return err
	}
	j.cron.Start()
	j.started = true
	j.logger.Info().Str("spec", j.spec).Dur("ttl", j.ttl).Msg("session janitor started")
	return nil
}

// RunOnce performs a single sweep.
func (j *Janitor) RunOnce() {
	n := j.store.Sweep(j.now().Add(-j.ttl))
	if n > 0 {
		j.logger.Debug().Int("expired", n).Msg("sessions swept")
	}
}

func (j *Janitor) Stop() {
	if !j.started {
		return
	}
	<-j.cron.Stop().Done()
	j.started = false
}
