package store

import (
	"context"
	"time"

	"github.com/noah-isme/course-admin-store/internal/models"
)

// Weekly sessions are created with their class and change state only
// through Mutate, so this file exposes reads only.

// FindSession returns the session of classID for week.
func (s *Store) FindSession(_ context.Context, classID int64, week int) (*models.WeeklySession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionLocked(classID, week)
}

// FindSessionByID returns the session with id.
func (s *Store) FindSessionByID(_ context.Context, id int64) (*models.WeeklySession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions.find(id)
}

// ListSessionsByClass returns the sessions of classID ordered by week.
func (s *Store) ListSessionsByClass(_ context.Context, classID int64) []models.WeeklySession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions.where(func(w models.WeeklySession) bool { return w.ClassID == classID })
}

// ListSessionsWhere returns the sessions matching pred.
func (s *Store) ListSessionsWhere(_ context.Context, pred func(models.WeeklySession) bool) []models.WeeklySession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions.where(pred)
}

func (s *Store) sessionLocked(classID int64, week int) (*models.WeeklySession, bool) {
	row, ok := s.sessions.first(func(w *models.WeeklySession) bool {
		return w.ClassID == classID && w.Week == week
	})
	if !ok {
		return nil, false
	}
	out := s.sessions.copyOf(row)
	return &out, true
}

// Tx is the view of the store handed to a Mutate callback. It is only valid
// during the callback.
type Tx struct {
	s     *Store
	now   time.Time
	dirty bool
}

// Now is the store clock reading taken when the transaction began.
func (tx *Tx) Now() time.Time {
	return tx.now
}

// Class returns the class with id, soft-deleted or not.
func (tx *Tx) Class(id int64) (*models.Class, bool) {
	return tx.s.classes.find(id)
}

// Session returns the session of classID for week.
func (tx *Tx) Session(classID int64, week int) (*models.WeeklySession, bool) {
	return tx.s.sessionLocked(classID, week)
}

// Sessions returns the sessions of classID ordered by week.
func (tx *Tx) Sessions(classID int64) []models.WeeklySession {
	return tx.s.sessions.where(func(w models.WeeklySession) bool { return w.ClassID == classID })
}

// InProgressSessions returns every session currently in progress.
func (tx *Tx) InProgressSessions() []models.WeeklySession {
	return tx.s.sessions.where(func(w models.WeeklySession) bool { return w.Status == models.SessionInProgress })
}

// PutSession replaces the stored session that has the same id. It returns
// false when no such session exists.
func (tx *Tx) PutSession(w models.WeeklySession) bool {
	row, ok := tx.s.sessions.get(w.ID)
	if !ok {
		return false
	}
	tx.s.sessions.put(row, w)
	tx.dirty = true
	return true
}

// AppendAdminLog writes a journal entry as part of the transaction.
func (tx *Tx) AppendAdminLog(in models.NewAdminLog) models.AdminLog {
	tx.dirty = true
	return tx.s.appendAdminLogLocked(in, tx.now)
}

// Mutate runs fn with exclusive access to the store. Changes made through
// the Tx are committed and persisted once, even when fn returns an error
// after writing, so work such as an expiry sweep done before a rejection is
// kept.
func (s *Store) Mutate(ctx context.Context, fn func(tx *Tx) error) error {
	snap, err := s.runTx(fn)
	if snap != nil {
		s.metrics.RecordMutation(models.KindSessions, OpMutate)
		s.persist(ctx, snap)
	}
	return err
}

// runTx returns a snapshot only when fn wrote through the Tx.
func (s *Store) runTx(fn func(tx *Tx) error) (*models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &Tx{s: s, now: s.now()}
	err := fn(tx)
	if !tx.dirty {
		return nil, err
	}
	return s.advanceLocked(), err
}
