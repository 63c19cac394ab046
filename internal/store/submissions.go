package store

import (
	"context"
	"fmt"
	"time"

	"github.com/noah-isme/course-admin-store/internal/models"
	appErrors "github.com/noah-isme/course-admin-store/pkg/errors"
)

// CreateSubmission records a submission. Ordinal counts the student's
// submissions for the task, starting at 1.
func (s *Store) CreateSubmission(ctx context.Context, in models.NewSubmission) (*models.Submission, error) {
	var created models.Submission
	err := s.commit(ctx, models.KindSubmissions, OpCreate, func(now time.Time) error {
		if _, ok := s.users.get(in.StudentID); !ok {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("user %d not found", in.StudentID))
		}
		if _, ok := s.classes.get(in.ClassID); !ok {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("class %d not found", in.ClassID))
		}
		previous := 0
		for _, sub := range s.submissions.rows {
			if sub.StudentID == in.StudentID && sub.TaskID == in.TaskID {
				previous++
			}
		}
		ordinal := previous + 1
		created = s.submissions.insert(models.Submission{
			StudentID:   in.StudentID,
			TaskID:      in.TaskID,
			ClassID:     in.ClassID,
			Week:        in.Week,
			Ordinal:     ordinal,
			IsFirst:     ordinal == 1,
			Score:       copyFloat(in.Score),
			Content:     in.Content,
			SubmittedAt: now,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// FindSubmission returns the submission with id.
func (s *Store) FindSubmission(_ context.Context, id int64) (*models.Submission, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submissions.find(id)
}

// ListSubmissions returns every submission in insertion order.
func (s *Store) ListSubmissions(_ context.Context) []models.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submissions.where(nil)
}

// ListSubmissionsWhere returns the submissions matching pred.
func (s *Store) ListSubmissionsWhere(_ context.Context, pred func(models.Submission) bool) []models.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submissions.where(pred)
}

// ListSubmissionsByStudent returns the submissions of studentID.
func (s *Store) ListSubmissionsByStudent(ctx context.Context, studentID int64) []models.Submission {
	return s.ListSubmissionsWhere(ctx, func(sub models.Submission) bool { return sub.StudentID == studentID })
}

// UpdateSubmission merges patch into the submission with id. A nil Score in
// the patch leaves the score as is.
func (s *Store) UpdateSubmission(ctx context.Context, id int64, patch models.SubmissionPatch) (*models.Submission, error) {
	var updated models.Submission
	err := s.commit(ctx, models.KindSubmissions, OpUpdate, func(time.Time) error {
		sub, ok := s.submissions.get(id)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("submission %d not found", id))
		}
		if patch.Score != nil {
			sub.Score = copyFloat(patch.Score)
		}
		if patch.Content != nil {
			sub.Content = *patch.Content
		}
		updated = s.submissions.copyOf(sub)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteSubmission removes the submission with id.
func (s *Store) DeleteSubmission(ctx context.Context, id int64) (bool, error) {
	removed := false
	err := s.commit(ctx, models.KindSubmissions, OpDelete, func(time.Time) error {
		if !s.submissions.remove(id) {
			return errNoChange
		}
		removed = true
		return nil
	})
	return removed, ignoreNoChange(err)
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
