package session

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WETTENTLLC/DelaneNails/pkg/domain/agent"
	"github.com/WETTENTLLC/DelaneNails/pkg/repository/model"
)

func TestMemoryStoreGetOrCreate(t *testing.T) {
	s := NewMemoryStore()

	_, ok := s.Get("web:1")
	assert.False(t, ok)

	a := s.GetOrCreate("web:1")
	b := s.GetOrCreate("web:1")
	require.Same(t, a, b)
	assert.Equal(t, agent.FlowIdle, a.State.Flow())
	assert.Equal(t, 1, s.Len())

	c := s.GetOrCreate("web:2")
	assert.NotSame(t, a, c)
	assert.Equal(t, 2, s.Len())
}

func TestMemoryStoreConcurrentCreateYieldsOneSession(t *testing.T) {
	s := NewMemoryStore()
	got := make([]*Session, 32)

	var wg sync.WaitGroup
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = s.GetOrCreate("tg:42")
		}(i)
	}
	wg.Wait()

	for _, sess := range got {
		assert.Same(t, got[0], sess)
	}
}

func TestMemoryStoreResetKeepsProfile(t *testing.T) {
	s := NewMemoryStore()
	sess := s.GetOrCreate("id")
	sess.State = &agent.Checking{}
	sess.Services = []model.Service{{ID: "svc-1"}}
	sess.Slots = []model.Slot{{ID: "slot-1"}}
	sess.MergeCustomer(model.Customer{Name: "Jane"})
	sess.AppendTurn(RoleCustomer, "check appointment", time.Now())

	s.Reset("id")
	s.Reset("missing")

	assert.Equal(t, agent.FlowIdle, sess.State.Flow())
	assert.Nil(t, sess.Services)
	assert.Nil(t, sess.Slots)
	assert.Equal(t, "Jane", sess.Customer.Name)
	assert.Len(t, sess.Turns, 1)
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore()
	first := s.GetOrCreate("id")
	s.Delete("id")
	s.Delete("id")

	_, ok := s.Get("id")
	assert.False(t, ok)
	assert.NotSame(t, first, s.GetOrCreate("id"))
}

func TestSweepRemovesIdleSessions(t *testing.T) {
	base := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return base }

	old := s.GetOrCreate("old")
	fresh := s.GetOrCreate("fresh")
	old.Touch(base.Add(-2 * time.Hour))
	fresh.Touch(base.Add(-time.Minute))

	assert.Equal(t, 1, s.Sweep(base.Add(-time.Hour)))
	_, ok := s.Get("old")
	assert.False(t, ok)
	_, ok = s.Get("fresh")
	assert.True(t, ok)
}

func TestJanitorRunOnce(t *testing.T) {
	base := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.GetOrCreate("a").Touch(base.Add(-31 * time.Minute))
	s.GetOrCreate("b").Touch(base)

	j := NewJanitor(s, 30*time.Minute, "", zerolog.Nop())
	j.now = func() time.Time { return base }
	j.RunOnce()

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, DefaultJanitorSpec, j.spec)
}

func TestJanitorDisabledWithoutTTL(t *testing.T) {
	j := NewJanitor(NewMemoryStore(), 0, "", zerolog.Nop())
	require.NoError(t, j.Start())
	assert.False(t, j.started)
	j.Stop()
}

func TestJanitorRejectsBadSpec(t *testing.T) {
	j := NewJanitor(NewMemoryStore(), time.Minute, "not a spec", zerolog.Nop())
	assert.Error(t, j.Start())
}

func TestJanitorStartStop(t *testing.T) {
	j := NewJanitor(NewMemoryStore(), time.Minute, "@every 1h", zerolog.Nop())
	require.NoError(t, j.Start())
	assert.True(t, j.started)
	j.Stop()
	assert.False(t, j.started)
}
