// Package store holds the canonical in-memory state of the course platform
// and hands a full snapshot to the persistence layer after every committed
// mutation.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-admin-store/internal/models"
)

// Persister receives the snapshot of every committed mutation, in commit
// order per caller.
type Persister interface {
	Persist(ctx context.Context, snap *models.Snapshot) error
}

// Recorder receives mutation counts.
type Recorder interface {
	RecordMutation(kind models.EntityKind, op string)
}

type nopRecorder struct{}

func (nopRecorder) RecordMutation(models.EntityKind, string) {}

// Mutation operation labels.
const (
	OpCreate     = "create"
	OpUpdate     = "update"
	OpDelete     = "delete"
	OpSoftDelete = "soft_delete"
	OpRestore    = "restore"
	OpMutate     = "mutate"
)

// errNoChange aborts a commit that found nothing to do. It never reaches
// callers.
var errNoChange = errors.New("store: no change")

func ignoreNoChange(err error) error {
	if errors.Is(err, errNoChange) {
		return nil
	}
	return err
}

// Store owns every entity table. All reads and writes go through a single
// mutex so multi-table invariants are checked and applied atomically.
type Store struct {
	mu  sync.Mutex
	seq uint64

	now       func() time.Time
	persister Persister
	logger    *zap.Logger
	metrics   Recorder
	newCode   func() (string, error)

	users       *table[models.User]
	curricula   *table[models.Curriculum]
	classes     *table[models.Class]
	sessions    *table[models.WeeklySession]
	enrollments *table[models.Enrollment]
	submissions *table[models.Submission]
	questions   *table[models.Question]
	answers     *table[models.Answer]
	adminLogs   *table[models.AdminLog]
}

// Option configures a Store.
type Option func(*Store)

// WithPersister sets where committed snapshots go.
func WithPersister(p Persister) Option {
	return func(s *Store) {
		s.persister = p
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRecorder sets the metrics sink.
func WithRecorder(r Recorder) Option {
	return func(s *Store) {
		if r != nil {
			s.metrics = r
		}
	}
}

// WithInviteCodeGenerator overrides the random invitation code source.
func WithInviteCodeGenerator(gen func() (string, error)) Option {
	return func(s *Store) {
		if gen != nil {
			s.newCode = gen
		}
	}
}

// New builds an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		now:     func() time.Time { return time.Now().UTC() },
		logger:  zap.NewNop(),
		metrics: nopRecorder{},
		newCode: GenerateInviteCode,

		users: newTable(models.KindUsers,
			func(u *models.User) int64 { return u.ID },
			func(u *models.User, id int64) { u.ID = id },
			models.User.Clone),
		curricula: newTable(models.KindCurricula,
			func(c *models.Curriculum) int64 { return c.ID },
			func(c *models.Curriculum, id int64) { c.ID = id },
			nil),
		classes: newTable(models.KindClasses,
			func(c *models.Class) int64 { return c.ID },
			func(c *models.Class, id int64) { c.ID = id },
			models.Class.Clone),
		sessions: newTable(models.KindSessions,
			func(w *models.WeeklySession) int64 { return w.ID },
			func(w *models.WeeklySession, id int64) { w.ID = id },
			models.WeeklySession.Clone),
		enrollments: newTable(models.KindEnrollments,
			func(e *models.Enrollment) int64 { return e.ID },
			func(e *models.Enrollment, id int64) { e.ID = id },
			models.Enrollment.Clone),
		submissions: newTable(models.KindSubmissions,
			func(sub *models.Submission) int64 { return sub.ID },
			func(sub *models.Submission, id int64) { sub.ID = id },
			models.Submission.Clone),
		questions: newTable(models.KindQuestions,
			func(q *models.Question) int64 { return q.ID },
			func(q *models.Question, id int64) { q.ID = id },
			nil),
		answers: newTable(models.KindAnswers,
			func(a *models.Answer) int64 { return a.ID },
			func(a *models.Answer, id int64) { a.ID = id },
			nil),
		adminLogs: newTable(models.KindAdminLogs,
			func(l *models.AdminLog) int64 { return l.ID },
			func(l *models.AdminLog, id int64) { l.ID = id },
			models.AdminLog.Clone),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Now returns the store clock's current time.
func (s *Store) Now() time.Time {
	return s.now()
}

// commit runs fn under the store lock. When fn succeeds the commit sequence
// advances and the resulting snapshot is persisted after the lock is
// released.
func (s *Store) commit(ctx context.Context, kind models.EntityKind, op string, fn func(now time.Time) error) error {
	snap, err := s.apply(fn)
	if err != nil {
		return err
	}
	s.metrics.RecordMutation(kind, op)
	s.persist(ctx, snap)
	return nil
}

func (s *Store) apply(fn func(now time.Time) error) (*models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(s.now()); err != nil {
		return nil, err
	}
	return s.advanceLocked(), nil
}

func (s *Store) advanceLocked() *models.Snapshot {
	s.seq++
	return s.snapshotLocked()
}

func (s *Store) persist(ctx context.Context, snap *models.Snapshot) {
	if s.persister == nil {
		return
	}
	if err := s.persister.Persist(ctx, snap); err != nil {
		// the in-memory state stays authoritative; durability for this
		// commit is lost until a later save succeeds
		s.logger.Error("failed to persist snapshot",
			zap.Uint64("sequence", snap.Sequence),
			zap.Error(err))
	}
}

// Snapshot returns a copy of the complete current state.
func (s *Store) Snapshot() *models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() *models.Snapshot {
	return &models.Snapshot{
		Sequence: s.seq,
		LastIDs: map[models.EntityKind]int64{
			models.KindUsers:       s.users.lastID,
			models.KindCurricula:   s.curricula.lastID,
			models.KindClasses:     s.classes.lastID,
			models.KindSessions:    s.sessions.lastID,
			models.KindEnrollments: s.enrollments.lastID,
			models.KindSubmissions: s.submissions.lastID,
			models.KindQuestions:   s.questions.lastID,
			models.KindAnswers:     s.answers.lastID,
			models.KindAdminLogs:   s.adminLogs.lastID,
		},
		Users:       s.users.snapshot(),
		Curricula:   s.curricula.snapshot(),
		Classes:     s.classes.snapshot(),
		Sessions:    s.sessions.snapshot(),
		Enrollments: s.enrollments.snapshot(),
		Submissions: s.submissions.snapshot(),
		Questions:   s.questions.snapshot(),
		Answers:     s.answers.snapshot(),
		AdminLogs:   s.adminLogs.snapshot(),
	}
}

// Restore replaces the whole state with snap. It does not persist.
func (s *Store) Restore(snap *models.Snapshot) {
	if snap == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq = snap.Sequence
	s.users.load(snap.Users, snap.LastIDs[models.KindUsers])
	s.curricula.load(snap.Curricula, snap.LastIDs[models.KindCurricula])
	s.classes.load(snap.Classes, snap.LastIDs[models.KindClasses])
	s.sessions.load(snap.Sessions, snap.LastIDs[models.KindSessions])
	s.enrollments.load(snap.Enrollments, snap.LastIDs[models.KindEnrollments])
	s.submissions.load(snap.Submissions, snap.LastIDs[models.KindSubmissions])
	s.questions.load(snap.Questions, snap.LastIDs[models.KindQuestions])
	s.answers.load(snap.Answers, snap.LastIDs[models.KindAnswers])
	s.adminLogs.load(snap.AdminLogs, snap.LastIDs[models.KindAdminLogs])

	s.logger.Info("store restored",
		zap.Uint64("sequence", snap.Sequence),
		zap.Int("users", len(snap.Users)),
		zap.Int("classes", len(snap.Classes)),
		zap.Int("sessions", len(snap.Sessions)))
}

// PersistenceErr returns the last persistence failure, or nil when the most
// recent save succeeded or the persister does not track health.
func (s *Store) PersistenceErr() error {
	h, ok := s.persister.(interface{ Err() error })
	if !ok {
		return nil
	}
	return h.Err()
}
