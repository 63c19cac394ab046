package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-admin-store/internal/models"
	"github.com/noah-isme/course-admin-store/internal/store"
	appErrors "github.com/noah-isme/course-admin-store/pkg/errors"
)

type sessionStore interface {
	Mutate(ctx context.Context, fn func(tx *store.Tx) error) error
	Now() time.Time
}

type sessionMetrics interface {
	RecordSessionTransition(transition string)
}

// Session transition labels.
const (
	TransitionStart  = "start"
	TransitionEnd    = "end"
	TransitionExpire = "expire"
)

// SessionServiceConfig governs session expiry.
type SessionServiceConfig struct {
	Duration time.Duration
}

// TransitionOption attributes a session transition.
type TransitionOption func(*transition)

type transition struct {
	actorID int64
	reason  string
}

// ByActor records the transition in the audit journal under actorID.
func ByActor(actorID int64, reason string) TransitionOption {
	return func(t *transition) {
		t.actorID = actorID
		t.reason = reason
	}
}

// SessionService drives the weekly session state machine. A class has at
// most one session in progress, an in-progress session ends on its own once
// its auto end time passes, and an ended session never runs again.
type SessionService struct {
	store   sessionStore
	metrics sessionMetrics
	logger  *zap.Logger
	cfg     SessionServiceConfig
}

// NewSessionService constructs the session lifecycle manager.
func NewSessionService(st sessionStore, metrics sessionMetrics, logger *zap.Logger, cfg SessionServiceConfig) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Duration <= 0 {
		cfg.Duration = models.DefaultSessionDuration
	}
	if metrics == nil {
		metrics = (*MetricsService)(nil)
	}
	return &SessionService{store: st, metrics: metrics, logger: logger, cfg: cfg}
}

// Start opens week of classID. Expired sessions of the class are ended
// first, in the same critical section as the conflict check.
func (s *SessionService) Start(ctx context.Context, classID int64, week int, opts ...TransitionOption) (*models.WeeklySession, error) {
	t := newTransition(opts)
	var started models.WeeklySession
	err := s.store.Mutate(ctx, func(tx *store.Tx) error {
		now := tx.Now()
		if err := requireClass(tx, classID); err != nil {
			return err
		}
		s.expire(tx, tx.Sessions(classID), now)

		var target *models.WeeklySession
		for _, w := range tx.Sessions(classID) {
			if w.Week == week {
				w := w
				target = &w
				continue
			}
			if w.Status == models.SessionInProgress {
				return &appErrors.SessionConflictError{ClassID: classID, ActiveWeek: w.Week}
			}
		}
		if target == nil {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("class %d has no week %d", classID, week))
		}
		if target.Status != models.SessionNotStarted {
			return appErrors.Clone(appErrors.ErrInvalidTransition,
				fmt.Sprintf("week %d of class %d is %s", week, classID, target.Status))
		}

		autoEnd := now.Add(s.cfg.Duration)
		startedAt := now
		target.Status = models.SessionInProgress
		target.StartedAt = &startedAt
		target.AutoEndAt = &autoEnd
		target.UpdatedAt = now
		tx.PutSession(*target)
		s.journal(tx, t, models.AdminActionSessionStart, *target)
		started = *target
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordSessionTransition(TransitionStart)
	s.logger.Info("session started",
		zap.Int64("class_id", classID),
		zap.Int("week", week),
		zap.Time("auto_end_at", *started.AutoEndAt))
	return &started, nil
}

// End closes week of classID. A session that already expired counts as
// ended and cannot be ended again.
func (s *SessionService) End(ctx context.Context, classID int64, week int, opts ...TransitionOption) (*models.WeeklySession, error) {
	t := newTransition(opts)
	var ended models.WeeklySession
	err := s.store.Mutate(ctx, func(tx *store.Tx) error {
		now := tx.Now()
		if err := requireClass(tx, classID); err != nil {
			return err
		}
		s.expire(tx, tx.Sessions(classID), now)

		target, ok := tx.Session(classID, week)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("class %d has no week %d", classID, week))
		}
		if target.Status != models.SessionInProgress {
			return appErrors.Clone(appErrors.ErrInvalidTransition,
				fmt.Sprintf("week %d of class %d is %s", week, classID, target.Status))
		}
		endedAt := now
		target.Status = models.SessionEnded
		target.EndedAt = &endedAt
		target.UpdatedAt = now
		tx.PutSession(*target)
		s.journal(tx, t, models.AdminActionSessionEnd, *target)
		ended = *target
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordSessionTransition(TransitionEnd)
	s.logger.Info("session ended", zap.Int64("class_id", classID), zap.Int("week", week))
	return &ended, nil
}

// Sweep ends every in-progress session whose auto end time is at or before
// now and returns how many it ended.
func (s *SessionService) Sweep(ctx context.Context, now time.Time) (int, error) {
	expired := 0
	err := s.store.Mutate(ctx, func(tx *store.Tx) error {
		expired = s.expire(tx, tx.InProgressSessions(), now)
		return nil
	})
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		s.logger.Info("expired sessions swept", zap.Int("count", expired), zap.Time("now", now))
	}
	return expired, nil
}

// ListSessions returns the sessions of classID ordered by week, after
// ending the ones that expired.
func (s *SessionService) ListSessions(ctx context.Context, classID int64) ([]models.WeeklySession, error) {
	var sessions []models.WeeklySession
	err := s.store.Mutate(ctx, func(tx *store.Tx) error {
		if _, ok := tx.Class(classID); !ok {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("class %d not found", classID))
		}
		s.expire(tx, tx.Sessions(classID), tx.Now())
		sessions = tx.Sessions(classID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// Run sweeps expired sessions every interval until ctx is cancelled.
func (s *SessionService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx, s.store.Now()); err != nil {
				s.logger.Sugar().Warnw("session sweep failed", "error", err)
			}
		}
	}
}

// expire ends the expired sessions among candidates.
func (s *SessionService) expire(tx *store.Tx, candidates []models.WeeklySession, now time.Time) int {
	count := 0
	for _, w := range candidates {
		if !w.Expired(now) {
			continue
		}
		endedAt := now
		w.Status = models.SessionEnded
		w.EndedAt = &endedAt
		w.UpdatedAt = now
		tx.PutSession(w)
		count++
		s.metrics.RecordSessionTransition(TransitionExpire)
		s.logger.Info("session expired",
			zap.Int64("class_id", w.ClassID),
			zap.Int("week", w.Week),
			zap.Time("auto_end_at", *w.AutoEndAt))
	}
	return count
}

func (s *SessionService) journal(tx *store.Tx, t transition, action string, w models.WeeklySession) {
	if t.actorID == 0 {
		return
	}
	target := w.ID
	tx.AppendAdminLog(models.NewAdminLog{
		AdminID:    t.actorID,
		Action:     action,
		TargetType: string(models.KindSessions),
		TargetID:   &target,
		Reason:     t.reason,
		Details:    fmt.Sprintf("class %d week %d", w.ClassID, w.Week),
	})
}

func requireClass(tx *store.Tx, classID int64) error {
	c, ok := tx.Class(classID)
	if !ok || c.Lifecycle.Deleted() {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("class %d not found", classID))
	}
	return nil
}

func newTransition(opts []TransitionOption) transition {
	var t transition
	for _, opt := range opts {
		if opt != nil {
			opt(&t)
		}
	}
	return t
}
