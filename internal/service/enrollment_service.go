package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/course-admin-store/internal/models"
	appErrors "github.com/noah-isme/course-admin-store/pkg/errors"
)

type enrollmentStore interface {
	Enroll(ctx context.Context, studentID, classID int64) (*models.Enrollment, error)
	Withdraw(ctx context.Context, studentID, classID int64) (*models.Enrollment, error)
	FindClassByInviteCode(ctx context.Context, code string) (*models.Class, bool)
	ListEnrollmentsByClass(ctx context.Context, classID int64) []models.Enrollment
	ListEnrollmentsByStudent(ctx context.Context, studentID int64) []models.Enrollment
}

// EnrollmentService handles class membership.
type EnrollmentService struct {
	store  enrollmentStore
	audit  auditAppender
	logger *zap.Logger
}

// NewEnrollmentService creates an instance of EnrollmentService.
func NewEnrollmentService(st enrollmentStore, audit auditAppender, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{store: st, audit: audit, logger: logger}
}

// Enroll adds a student to a class, reactivating an earlier enrollment.
func (s *EnrollmentService) Enroll(ctx context.Context, studentID, classID, actorID int64) (*models.Enrollment, error) {
	enrollment, err := s.store.Enroll(ctx, studentID, classID)
	if err != nil {
		return nil, err
	}
	recordAudit(ctx, s.audit, s.logger, actorID, models.AdminActionEnroll, "enrollment", enrollment.ID,
		fmt.Sprintf("student=%d class=%d", studentID, classID))
	return enrollment, nil
}

// JoinByInviteCode enrolls a student into the class owning code.
func (s *EnrollmentService) JoinByInviteCode(ctx context.Context, studentID int64, code string) (*models.Enrollment, error) {
	class, ok := s.store.FindClassByInviteCode(ctx, code)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "invite code not found")
	}
	return s.store.Enroll(ctx, studentID, class.ID)
}

// Withdraw removes a student from a class, keeping the record.
func (s *EnrollmentService) Withdraw(ctx context.Context, studentID, classID, actorID int64) (*models.Enrollment, error) {
	enrollment, err := s.store.Withdraw(ctx, studentID, classID)
	if err != nil {
		return nil, err
	}
	recordAudit(ctx, s.audit, s.logger, actorID, models.AdminActionWithdraw, "enrollment", enrollment.ID,
		fmt.Sprintf("student=%d class=%d", studentID, classID))
	return enrollment, nil
}

// ListByClass returns the active members of a class.
func (s *EnrollmentService) ListByClass(ctx context.Context, classID int64) []models.Enrollment {
	return s.store.ListEnrollmentsByClass(ctx, classID)
}

// ListByStudent returns the active enrollments of a student.
func (s *EnrollmentService) ListByStudent(ctx context.Context, studentID int64) []models.Enrollment {
	return s.store.ListEnrollmentsByStudent(ctx, studentID)
}
