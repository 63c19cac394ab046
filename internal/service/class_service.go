package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-admin-store/internal/models"
	appErrors "github.com/noah-isme/course-admin-store/pkg/errors"
)

type classStore interface {
	CreateClass(ctx context.Context, in models.NewClass) (*models.Class, error)
	FindClass(ctx context.Context, id int64) (*models.Class, bool)
	FindClassByInviteCode(ctx context.Context, code string) (*models.Class, bool)
	ListClasses(ctx context.Context) []models.Class
	ListClassesWhere(ctx context.Context, pred func(models.Class) bool) []models.Class
	UpdateClass(ctx context.Context, id int64, patch models.ClassPatch) (*models.Class, error)
	SoftDeleteClass(ctx context.Context, id int64) (*models.Class, error)
	RestoreClass(ctx context.Context, id int64) (*models.Class, error)
}

// CreateClassRequest represents payload for creating classes. An empty
// invite code is generated.
type CreateClassRequest struct {
	Name         string `json:"name" validate:"required"`
	ProfessorID  int64  `json:"professor_id" validate:"required,gt=0"`
	CurriculumID int64  `json:"curriculum_id" validate:"required,gt=0"`
	InviteCode   string `json:"invite_code" validate:"omitempty,len=6,uppercase"`
}

// UpdateClassRequest payload for updating classes.
type UpdateClassRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1"`
	ProfessorID *int64  `json:"professor_id" validate:"omitempty,gt=0"`
	InviteCode  *string `json:"invite_code" validate:"omitempty,len=6,uppercase"`
}

// ClassFilter narrows class listings.
type ClassFilter struct {
	ProfessorID    int64
	CurriculumID   int64
	IncludeDeleted bool
}

// ClassService manages classes and, through the store, their weekly sessions.
type ClassService struct {
	store     classStore
	audit     auditAppender
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService creates an instance of ClassService.
func NewClassService(st classStore, audit auditAppender, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ClassService{store: st, audit: audit, validator: validate, logger: logger}
}

// List returns the classes matching filter.
func (s *ClassService) List(ctx context.Context, filter ClassFilter) []models.Class {
	match := func(c models.Class) bool {
		if filter.ProfessorID != 0 && c.ProfessorID != filter.ProfessorID {
			return false
		}
		if filter.CurriculumID != 0 && c.CurriculumID != filter.CurriculumID {
			return false
		}
		return true
	}
	if filter.IncludeDeleted {
		return s.store.ListClassesWhere(ctx, match)
	}
	return s.store.ListClassesWhere(ctx, func(c models.Class) bool {
		return !c.Lifecycle.Deleted() && match(c)
	})
}

// Get returns a class by ID, soft-deleted or not.
func (s *ClassService) Get(ctx context.Context, id int64) (*models.Class, error) {
	class, ok := s.store.FindClass(ctx, id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	return class, nil
}

// GetByInviteCode resolves an invitation code to its class.
func (s *ClassService) GetByInviteCode(ctx context.Context, code string) (*models.Class, error) {
	class, ok := s.store.FindClassByInviteCode(ctx, code)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "invite code not found")
	}
	return class, nil
}

// Create adds a class and its weekly sessions.
func (s *ClassService) Create(ctx context.Context, req CreateClassRequest, actorID int64) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	class, err := s.store.CreateClass(ctx, models.NewClass{
		Name:         req.Name,
		ProfessorID:  req.ProfessorID,
		CurriculumID: req.CurriculumID,
		InviteCode:   req.InviteCode,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("class created", zap.Int64("class_id", class.ID), zap.Int64("curriculum_id", class.CurriculumID))
	recordAudit(ctx, s.audit, s.logger, actorID, models.AdminActionClassCreate, "class", class.ID,
		fmt.Sprintf("invite_code=%s", class.InviteCode))
	return class, nil
}

// Update modifies a class.
func (s *ClassService) Update(ctx context.Context, id int64, req UpdateClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	return s.store.UpdateClass(ctx, id, models.ClassPatch{
		Name:        req.Name,
		ProfessorID: req.ProfessorID,
		InviteCode:  req.InviteCode,
	})
}

// Delete soft-deletes a class.
func (s *ClassService) Delete(ctx context.Context, id int64, actorID int64, reason string) (*models.Class, error) {
	class, err := s.store.SoftDeleteClass(ctx, id)
	if err != nil {
		return nil, err
	}
	recordAudit(ctx, s.audit, s.logger, actorID, models.AdminActionClassDelete, "class", id, reason)
	return class, nil
}

// Restore undoes a soft delete.
func (s *ClassService) Restore(ctx context.Context, id int64, actorID int64) (*models.Class, error) {
	class, err := s.store.RestoreClass(ctx, id)
	if err != nil {
		return nil, err
	}
	recordAudit(ctx, s.audit, s.logger, actorID, models.AdminActionClassRestore, "class", id, "")
	return class, nil
}
