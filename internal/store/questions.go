package store

import (
	"context"
	"fmt"
	"time"

	"github.com/noah-isme/course-admin-store/internal/models"
	appErrors "github.com/noah-isme/course-admin-store/pkg/errors"
)

// CreateQuestion records a question raised in a class week.
func (s *Store) CreateQuestion(ctx context.Context, in models.NewQuestion) (*models.Question, error) {
	var created models.Question
	err := s.commit(ctx, models.KindQuestions, OpCreate, func(now time.Time) error {
		if _, ok := s.users.get(in.StudentID); !ok {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("user %d not found", in.StudentID))
		}
		if _, ok := s.classes.get(in.ClassID); !ok {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("class %d not found", in.ClassID))
		}
		created = s.questions.insert(models.Question{
			StudentID: in.StudentID,
			ClassID:   in.ClassID,
			Week:      in.Week,
			Title:     in.Title,
			Content:   in.Content,
			CreatedAt: now,
			UpdatedAt: now,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// FindQuestion returns the question with id.
func (s *Store) FindQuestion(_ context.Context, id int64) (*models.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.questions.find(id)
}

// ListQuestions returns every question in insertion order.
func (s *Store) ListQuestions(_ context.Context) []models.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.questions.where(nil)
}

// ListQuestionsWhere returns the questions matching pred.
func (s *Store) ListQuestionsWhere(_ context.Context, pred func(models.Question) bool) []models.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.questions.where(pred)
}

// UpdateQuestion merges patch into the question with id.
func (s *Store) UpdateQuestion(ctx context.Context, id int64, patch models.QuestionPatch) (*models.Question, error) {
	var updated models.Question
	err := s.commit(ctx, models.KindQuestions, OpUpdate, func(now time.Time) error {
		q, ok := s.questions.get(id)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("question %d not found", id))
		}
		if patch.Title != nil {
			q.Title = *patch.Title
		}
		if patch.Content != nil {
			q.Content = *patch.Content
		}
		if patch.Resolved != nil {
			q.Resolved = *patch.Resolved
		}
		q.UpdatedAt = now
		updated = s.questions.copyOf(q)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteQuestion removes the question with id together with its answers.
func (s *Store) DeleteQuestion(ctx context.Context, id int64) (bool, error) {
	removed := false
	err := s.commit(ctx, models.KindQuestions, OpDelete, func(time.Time) error {
		if !s.questions.remove(id) {
			return errNoChange
		}
		s.answers.removeWhere(func(a *models.Answer) bool { return a.QuestionID == id })
		removed = true
		return nil
	})
	return removed, ignoreNoChange(err)
}

// CreateAnswer replies to an existing question.
func (s *Store) CreateAnswer(ctx context.Context, in models.NewAnswer) (*models.Answer, error) {
	var created models.Answer
	err := s.commit(ctx, models.KindAnswers, OpCreate, func(now time.Time) error {
		if _, ok := s.questions.get(in.QuestionID); !ok {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("question %d not found", in.QuestionID))
		}
		if _, ok := s.users.get(in.AuthorID); !ok {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("user %d not found", in.AuthorID))
		}
		created = s.answers.insert(models.Answer{
			QuestionID: in.QuestionID,
			AuthorID:   in.AuthorID,
			Content:    in.Content,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// FindAnswer returns the answer with id.
func (s *Store) FindAnswer(_ context.Context, id int64) (*models.Answer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answers.find(id)
}

// ListAnswers returns every answer in insertion order.
func (s *Store) ListAnswers(_ context.Context) []models.Answer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answers.where(nil)
}

// ListAnswersByQuestion returns the answers of questionID in the order they
// were given.
func (s *Store) ListAnswersByQuestion(_ context.Context, questionID int64) []models.Answer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answers.where(func(a models.Answer) bool { return a.QuestionID == questionID })
}

// ListAnswersWhere returns the answers matching pred.
func (s *Store) ListAnswersWhere(_ context.Context, pred func(models.Answer) bool) []models.Answer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answers.where(pred)
}

// UpdateAnswer merges patch into the answer with id.
func (s *Store) UpdateAnswer(ctx context.Context, id int64, patch models.AnswerPatch) (*models.Answer, error) {
	var updated models.Answer
	err := s.commit(ctx, models.KindAnswers, OpUpdate, func(now time.Time) error {
		a, ok := s.answers.get(id)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("answer %d not found", id))
		}
		if patch.Content != nil {
			a.Content = *patch.Content
		}
		a.UpdatedAt = now
		updated = s.answers.copyOf(a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteAnswer removes the answer with id.
func (s *Store) DeleteAnswer(ctx context.Context, id int64) (bool, error) {
	removed := false
	err := s.commit(ctx, models.KindAnswers, OpDelete, func(time.Time) error {
		if !s.answers.remove(id) {
			return errNoChange
		}
		removed = true
		return nil
	})
	return removed, ignoreNoChange(err)
}
