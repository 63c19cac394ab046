package store

import (
	"context"
	"fmt"
	"time"

	"github.com/noah-isme/course-admin-store/internal/models"
	appErrors "github.com/noah-isme/course-admin-store/pkg/errors"
)

// Enroll adds studentID to classID. A student who withdrew before gets the
// same enrollment back, reactivated.
func (s *Store) Enroll(ctx context.Context, studentID, classID int64) (*models.Enrollment, error) {
	var out models.Enrollment
	err := s.commit(ctx, models.KindEnrollments, OpCreate, func(now time.Time) error {
		u, ok := s.users.get(studentID)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("user %d not found", studentID))
		}
		if u.Role != models.RoleStudent {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("user %d is not a student", studentID))
		}
		c, ok := s.classes.get(classID)
		if !ok || c.Lifecycle.Deleted() {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("class %d not found", classID))
		}

		existing, ok := s.enrollments.first(func(e *models.Enrollment) bool {
			return e.StudentID == studentID && e.ClassID == classID
		})
		if ok {
			if existing.Active {
				return appErrors.Clone(appErrors.ErrUniquenessViolation,
					fmt.Sprintf("student %d is already enrolled in class %d", studentID, classID))
			}
			existing.Active = true
			existing.EnrolledAt = now
			existing.WithdrawnAt = nil
			out = s.enrollments.copyOf(existing)
			return nil
		}
		out = s.enrollments.insert(models.Enrollment{
			StudentID:  studentID,
			ClassID:    classID,
			EnrolledAt: now,
			Active:     true,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Withdraw deactivates the enrollment of studentID in classID.
func (s *Store) Withdraw(ctx context.Context, studentID, classID int64) (*models.Enrollment, error) {
	var out models.Enrollment
	err := s.commit(ctx, models.KindEnrollments, OpUpdate, func(now time.Time) error {
		e, ok := s.enrollments.first(func(e *models.Enrollment) bool {
			return e.StudentID == studentID && e.ClassID == classID
		})
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound,
				fmt.Sprintf("student %d is not enrolled in class %d", studentID, classID))
		}
		if !e.Active {
			return appErrors.Clone(appErrors.ErrInvalidTransition,
				fmt.Sprintf("student %d already withdrew from class %d", studentID, classID))
		}
		e.Active = false
		at := now
		e.WithdrawnAt = &at
		out = s.enrollments.copyOf(e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// FindEnrollment returns the enrollment record of studentID in classID,
// active or not.
func (s *Store) FindEnrollment(_ context.Context, studentID, classID int64) (*models.Enrollment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.enrollments.first(func(e *models.Enrollment) bool {
		return e.StudentID == studentID && e.ClassID == classID
	})
	if !ok {
		return nil, false
	}
	out := s.enrollments.copyOf(row)
	return &out, true
}

// FindEnrollmentByID returns the enrollment with id.
func (s *Store) FindEnrollmentByID(_ context.Context, id int64) (*models.Enrollment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enrollments.find(id)
}

// ListEnrollments returns every enrollment in insertion order.
func (s *Store) ListEnrollments(_ context.Context) []models.Enrollment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enrollments.where(nil)
}

// ListEnrollmentsWhere returns the enrollments matching pred.
func (s *Store) ListEnrollmentsWhere(_ context.Context, pred func(models.Enrollment) bool) []models.Enrollment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enrollments.where(pred)
}

// ListEnrollmentsByClass returns the active enrollments of classID.
func (s *Store) ListEnrollmentsByClass(ctx context.Context, classID int64) []models.Enrollment {
	return s.ListEnrollmentsWhere(ctx, func(e models.Enrollment) bool { return e.ClassID == classID && e.Active })
}

// ListEnrollmentsByStudent returns the active enrollments of studentID.
func (s *Store) ListEnrollmentsByStudent(ctx context.Context, studentID int64) []models.Enrollment {
	return s.ListEnrollmentsWhere(ctx, func(e models.Enrollment) bool { return e.StudentID == studentID && e.Active })
}

// UpdateEnrollment merges patch into the enrollment with id. Reactivating
// requires the class to still be visible.
func (s *Store) UpdateEnrollment(ctx context.Context, id int64, patch models.EnrollmentPatch) (*models.Enrollment, error) {
	var updated models.Enrollment
	err := s.commit(ctx, models.KindEnrollments, OpUpdate, func(now time.Time) error {
		e, ok := s.enrollments.get(id)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("enrollment %d not found", id))
		}
		if patch.Active != nil && *patch.Active != e.Active {
			if *patch.Active {
				c, ok := s.classes.get(e.ClassID)
				if !ok || c.Lifecycle.Deleted() {
					return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("class %d not found", e.ClassID))
				}
				e.Active = true
				e.WithdrawnAt = nil
			} else {
				at := now
				e.Active = false
				e.WithdrawnAt = &at
			}
		}
		if patch.EnrolledAt != nil {
			e.EnrolledAt = *patch.EnrolledAt
		}
		updated = s.enrollments.copyOf(e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteEnrollment removes the enrollment with id.
func (s *Store) DeleteEnrollment(ctx context.Context, id int64) (bool, error) {
	removed := false
	err := s.commit(ctx, models.KindEnrollments, OpDelete, func(time.Time) error {
		if !s.enrollments.remove(id) {
			return errNoChange
		}
		removed = true
		return nil
	})
	return removed, ignoreNoChange(err)
}
