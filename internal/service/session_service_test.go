package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-admin-store/internal/models"
	"github.com/noah-isme/course-admin-store/internal/store"
	appErrors "github.com/noah-isme/course-admin-store/pkg/errors"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type countingPersister struct {
	mu    sync.Mutex
	count int
}

func (p *countingPersister) Persist(context.Context, *models.Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count++
	return nil
}

func (p *countingPersister) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

func newSessionFixture(t *testing.T, weeks int) (*store.Store, *SessionService, *fakeClock, *models.Class) {
	t.Helper()
	clock := newFakeClock()
	st := store.New(store.WithClock(clock.Now))
	ctx := context.Background()

	prof, err := st.CreateUser(ctx, models.NewUser{Email: "prof@x.com", Role: models.RoleProfessor})
	require.NoError(t, err)
	cur, err := st.CreateCurriculum(ctx, models.NewCurriculum{Name: "Go", Weeks: weeks})
	require.NoError(t, err)
	class, err := st.CreateClass(ctx, models.NewClass{Name: "Go 101", ProfessorID: prof.ID, CurriculumID: cur.ID})
	require.NoError(t, err)

	svc := NewSessionService(st, NewMetricsService(), nil, SessionServiceConfig{})
	return st, svc, clock, class
}

func TestSessionLifecycleScenario(t *testing.T) {
	ctx := context.Background()
	_, svc, clock, class := newSessionFixture(t, 3)
	now := clock.Now()

	started, err := svc.Start(ctx, class.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, models.SessionInProgress, started.Status)
	require.NotNil(t, started.StartedAt)
	require.NotNil(t, started.AutoEndAt)
	assert.Equal(t, now, *started.StartedAt)
	assert.Equal(t, now.Add(24*time.Hour), *started.AutoEndAt)

	_, err = svc.Start(ctx, class.ID, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrSessionConflict)
	var conflict *appErrors.SessionConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, 1, conflict.ActiveWeek)

	ended, err := svc.End(ctx, class.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, models.SessionEnded, ended.Status)
	require.NotNil(t, ended.EndedAt)

	second, err := svc.Start(ctx, class.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, models.SessionInProgress, second.Status)
}

func TestEndedSessionNeverRestarts(t *testing.T) {
	ctx := context.Background()
	_, svc, _, class := newSessionFixture(t, 2)

	_, err := svc.Start(ctx, class.ID, 1)
	require.NoError(t, err)
	_, err = svc.End(ctx, class.ID, 1)
	require.NoError(t, err)

	_, err = svc.Start(ctx, class.ID, 1)
	assert.ErrorIs(t, err, appErrors.ErrInvalidTransition)
	_, err = svc.End(ctx, class.ID, 1)
	assert.ErrorIs(t, err, appErrors.ErrInvalidTransition)
}

func TestStartRejections(t *testing.T) {
	ctx := context.Background()
	st, svc, _, class := newSessionFixture(t, 2)

	_, err := svc.Start(ctx, class.ID, 3)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.Start(ctx, 999, 1)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.Start(ctx, class.ID, 1)
	require.NoError(t, err)
	_, err = svc.Start(ctx, class.ID, 1)
	assert.ErrorIs(t, err, appErrors.ErrInvalidTransition, "already in progress")

	_, err = svc.End(ctx, class.ID, 2)
	assert.ErrorIs(t, err, appErrors.ErrInvalidTransition, "never started")

	_, err = st.SoftDeleteClass(ctx, class.ID)
	require.NoError(t, err)
	_, err = svc.End(ctx, class.ID, 1)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestSweepEndsExpiredSessions(t *testing.T) {
	ctx := context.Background()
	st, svc, clock, class := newSessionFixture(t, 2)

	_, err := svc.Start(ctx, class.ID, 1)
	require.NoError(t, err)

	count, err := svc.Sweep(ctx, clock.Now().Add(24*time.Hour-time.Second))
	require.NoError(t, err)
	assert.Zero(t, count)

	sweepAt := clock.Now().Add(24 * time.Hour)
	count, err = svc.Sweep(ctx, sweepAt)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "auto end time is inclusive")

	w, ok := st.FindSession(ctx, class.ID, 1)
	require.True(t, ok)
	assert.Equal(t, models.SessionEnded, w.Status)
	require.NotNil(t, w.EndedAt)
	assert.Equal(t, sweepAt, *w.EndedAt)

	count, err = svc.Sweep(ctx, sweepAt.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStartSweepsExpiredSessionFirst(t *testing.T) {
	ctx := context.Background()
	st, svc, clock, class := newSessionFixture(t, 2)

	_, err := svc.Start(ctx, class.ID, 1)
	require.NoError(t, err)
	clock.Advance(25 * time.Hour)

	started, err := svc.Start(ctx, class.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, started.Week)

	first, _ := st.FindSession(ctx, class.ID, 1)
	assert.Equal(t, models.SessionEnded, first.Status)
}

func TestListSessionsSweepsBeforeReading(t *testing.T) {
	ctx := context.Background()
	_, svc, clock, class := newSessionFixture(t, 3)

	_, err := svc.Start(ctx, class.ID, 2)
	require.NoError(t, err)
	clock.Advance(24 * time.Hour)

	sessions, err := svc.ListSessions(ctx, class.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, models.SessionNotStarted, sessions[0].Status)
	assert.Equal(t, models.SessionEnded, sessions[1].Status)
	assert.Equal(t, models.SessionNotStarted, sessions[2].Status)

	_, err = svc.ListSessions(ctx, 404)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestConcurrentStartsKeepOneSessionInProgress(t *testing.T) {
	ctx := context.Background()
	st, svc, _, class := newSessionFixture(t, 12)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, conflicts := 0, 0
	for week := 1; week <= 12; week++ {
		wg.Add(1)
		go func(week int) {
			defer wg.Done()
			_, err := svc.Start(ctx, class.ID, week)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, appErrors.ErrSessionConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(week)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 11, conflicts)

	inProgress := st.ListSessionsWhere(ctx, func(w models.WeeklySession) bool {
		return w.ClassID == class.ID && w.Status == models.SessionInProgress
	})
	assert.Len(t, inProgress, 1)
}

func TestSessionsOfDifferentClassesAreIndependent(t *testing.T) {
	ctx := context.Background()
	st, svc, _, class := newSessionFixture(t, 2)
	other, err := st.CreateClass(ctx, models.NewClass{Name: "Other", ProfessorID: class.ProfessorID, CurriculumID: class.CurriculumID})
	require.NoError(t, err)

	_, err = svc.Start(ctx, class.ID, 1)
	require.NoError(t, err)
	_, err = svc.Start(ctx, other.ID, 2)
	require.NoError(t, err)
}

func TestTransitionsByActorAreJournaled(t *testing.T) {
	ctx := context.Background()
	st, svc, _, class := newSessionFixture(t, 1)

	_, err := svc.Start(ctx, class.ID, 1, ByActor(class.ProfessorID, "kickoff"))
	require.NoError(t, err)
	_, err = svc.End(ctx, class.ID, 1, ByActor(class.ProfessorID, ""))
	require.NoError(t, err)

	logs := st.ListAdminLogs(ctx)
	require.Len(t, logs, 2)
	assert.Equal(t, models.AdminActionSessionStart, logs[0].Action)
	assert.Equal(t, "kickoff", logs[0].Reason)
	assert.Equal(t, models.AdminActionSessionEnd, logs[1].Action)
	assert.Equal(t, string(models.KindSessions), logs[1].TargetType)
}

func TestRejectedStartStillPersistsSweep(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	p := &countingPersister{}
	st := store.New(store.WithClock(clock.Now), store.WithPersister(p))
	prof, err := st.CreateUser(ctx, models.NewUser{Email: "p@x.com", Role: models.RoleProfessor})
	require.NoError(t, err)
	cur, err := st.CreateCurriculum(ctx, models.NewCurriculum{Name: "Go", Weeks: 2})
	require.NoError(t, err)
	class, err := st.CreateClass(ctx, models.NewClass{ProfessorID: prof.ID, CurriculumID: cur.ID})
	require.NoError(t, err)
	svc := NewSessionService(st, nil, nil, SessionServiceConfig{Duration: time.Hour})

	_, err = svc.Start(ctx, class.ID, 1)
	require.NoError(t, err)
	clock.Advance(2 * time.Hour)
	before := p.Count()

	_, err = svc.Start(ctx, class.ID, 5)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Equal(t, before+1, p.Count(), "the expiry is committed")

	_, err = svc.Start(ctx, class.ID, 7)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Equal(t, before+1, p.Count(), "nothing left to expire")
}

func TestRunSweepsPeriodically(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	st, svc, clock, class := newSessionFixture(t, 1)

	_, err := svc.Start(ctx, class.ID, 1)
	require.NoError(t, err)
	clock.Advance(48 * time.Hour)

	done := make(chan struct{})
	go func() {
		svc.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		w, _ := st.FindSession(context.Background(), class.ID, 1)
		return w.Status == models.SessionEnded
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
