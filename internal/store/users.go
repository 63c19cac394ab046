package store

import (
	"context"
	"fmt"
	"time"

	"github.com/noah-isme/course-admin-store/internal/models"
	appErrors "github.com/noah-isme/course-admin-store/pkg/errors"
)

// CreateUser stores a new user. Email must not be taken by a present user.
func (s *Store) CreateUser(ctx context.Context, in models.NewUser) (*models.User, error) {
	var created models.User
	err := s.commit(ctx, models.KindUsers, OpCreate, func(now time.Time) error {
		if s.emailTakenLocked(in.Email, 0) {
			return appErrors.Clone(appErrors.ErrUniquenessViolation, fmt.Sprintf("email %q already in use", in.Email))
		}
		status := in.Status
		if status == "" {
			status = models.UserStatusActive
		}
		created = s.users.insert(models.User{
			Email:         in.Email,
			Name:          in.Name,
			Role:          in.Role,
			Status:        status,
			PasswordHash:  in.PasswordHash,
			Phone:         in.Phone,
			Department:    in.Department,
			StudentNumber: in.StudentNumber,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// FindUser returns the user with id.
func (s *Store) FindUser(_ context.Context, id int64) (*models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users.find(id)
}

// FindUserByEmail returns the user owning email.
func (s *Store) FindUserByEmail(_ context.Context, email string) (*models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.users.first(func(u *models.User) bool { return u.Email == email })
	if !ok {
		return nil, false
	}
	out := s.users.copyOf(row)
	return &out, true
}

// ListUsers returns every user in insertion order.
func (s *Store) ListUsers(_ context.Context) []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users.where(nil)
}

// ListUsersWhere returns the users matching pred.
func (s *Store) ListUsersWhere(_ context.Context, pred func(models.User) bool) []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users.where(pred)
}

// UpdateUser merges patch into the user with id.
func (s *Store) UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	var updated models.User
	err := s.commit(ctx, models.KindUsers, OpUpdate, func(now time.Time) error {
		u, ok := s.users.get(id)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("user %d not found", id))
		}
		if patch.Email != nil && *patch.Email != u.Email && s.emailTakenLocked(*patch.Email, id) {
			return appErrors.Clone(appErrors.ErrUniquenessViolation, fmt.Sprintf("email %q already in use", *patch.Email))
		}
		applyUserPatch(u, patch)
		u.UpdatedAt = now
		updated = s.users.copyOf(u)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteUser removes the user with id. A user still referenced by a class,
// deleted or not, or by any enrollment, submission, question or answer
// cannot be removed.
func (s *Store) DeleteUser(ctx context.Context, id int64) (bool, error) {
	removed := false
	err := s.commit(ctx, models.KindUsers, OpDelete, func(time.Time) error {
		if _, ok := s.users.get(id); !ok {
			return errNoChange
		}
		if kind, ok := s.userReferenceLocked(id); ok {
			return appErrors.Clone(appErrors.ErrReferenceInUse, fmt.Sprintf("user %d is still referenced by %s", id, kind))
		}
		removed = s.users.remove(id)
		return nil
	})
	return removed, ignoreNoChange(err)
}

// userReferenceLocked returns the first entity kind that references id.
func (s *Store) userReferenceLocked(id int64) (models.EntityKind, bool) {
	switch {
	case s.classes.exists(func(c *models.Class) bool { return c.ProfessorID == id }):
		return models.KindClasses, true
	case s.enrollments.exists(func(e *models.Enrollment) bool { return e.StudentID == id }):
		return models.KindEnrollments, true
	case s.submissions.exists(func(sub *models.Submission) bool { return sub.StudentID == id }):
		return models.KindSubmissions, true
	case s.questions.exists(func(q *models.Question) bool { return q.StudentID == id }):
		return models.KindQuestions, true
	case s.answers.exists(func(a *models.Answer) bool { return a.AuthorID == id }):
		return models.KindAnswers, true
	}
	return "", false
}

func (s *Store) emailTakenLocked(email string, except int64) bool {
	return s.users.exists(func(u *models.User) bool { return u.Email == email && u.ID != except })
}

func applyUserPatch(u *models.User, p models.UserPatch) {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Status != nil {
		u.Status = *p.Status
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Department != nil {
		u.Department = *p.Department
	}
	if p.StudentNumber != nil {
		u.StudentNumber = *p.StudentNumber
	}
	if p.LastLoginAt != nil {
		at := *p.LastLoginAt
		u.LastLoginAt = &at
	}
}
