package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-admin-store/internal/models"
	appErrors "github.com/noah-isme/course-admin-store/pkg/errors"
)

type curriculumStore interface {
	CreateCurriculum(ctx context.Context, in models.NewCurriculum) (*models.Curriculum, error)
	FindCurriculum(ctx context.Context, id int64) (*models.Curriculum, bool)
	ListCurricula(ctx context.Context) []models.Curriculum
	UpdateCurriculum(ctx context.Context, id int64, patch models.CurriculumPatch) (*models.Curriculum, error)
	ArchiveCurriculum(ctx context.Context, id int64) (*models.Curriculum, error)
	DeleteCurriculum(ctx context.Context, id int64) (bool, error)
}

// CreateCurriculumRequest represents payload for creating curricula.
type CreateCurriculumRequest struct {
	Name        string `json:"name" validate:"required"`
	Language    string `json:"language" validate:"required"`
	Weeks       int    `json:"weeks" validate:"required,min=1,max=52"`
	Description string `json:"description"`
}

// UpdateCurriculumRequest payload for updating curricula.
type UpdateCurriculumRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1"`
	Language    *string `json:"language" validate:"omitempty,min=1"`
	Weeks       *int    `json:"weeks" validate:"omitempty,min=1,max=52"`
	Description *string `json:"description"`
}

// CurriculumService manages course plans.
type CurriculumService struct {
	store     curriculumStore
	audit     auditAppender
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCurriculumService creates an instance of CurriculumService.
func NewCurriculumService(st curriculumStore, audit auditAppender, validate *validator.Validate, logger *zap.Logger) *CurriculumService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CurriculumService{store: st, audit: audit, validator: validate, logger: logger}
}

// List returns every curriculum.
func (s *CurriculumService) List(ctx context.Context) []models.Curriculum {
	return s.store.ListCurricula(ctx)
}

// Get returns a curriculum by ID.
func (s *CurriculumService) Get(ctx context.Context, id int64) (*models.Curriculum, error) {
	cur, ok := s.store.FindCurriculum(ctx, id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "curriculum not found")
	}
	return cur, nil
}

// Create adds a curriculum.
func (s *CurriculumService) Create(ctx context.Context, req CreateCurriculumRequest, actorID int64) (*models.Curriculum, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid curriculum payload")
	}
	cur, err := s.store.CreateCurriculum(ctx, models.NewCurriculum{
		Name:        req.Name,
		Language:    req.Language,
		Weeks:       req.Weeks,
		Description: req.Description,
	})
	if err != nil {
		return nil, err
	}
	recordAudit(ctx, s.audit, s.logger, actorID, models.AdminActionCurriculumCreate, "curriculum", cur.ID,
		fmt.Sprintf("name=%s weeks=%d", cur.Name, cur.Weeks))
	return cur, nil
}

// Update modifies a curriculum.
func (s *CurriculumService) Update(ctx context.Context, id int64, req UpdateCurriculumRequest, actorID int64) (*models.Curriculum, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid curriculum payload")
	}
	cur, err := s.store.UpdateCurriculum(ctx, id, models.CurriculumPatch{
		Name:        req.Name,
		Language:    req.Language,
		Weeks:       req.Weeks,
		Description: req.Description,
	})
	if err != nil {
		return nil, err
	}
	recordAudit(ctx, s.audit, s.logger, actorID, models.AdminActionCurriculumUpdate, "curriculum", cur.ID, "")
	return cur, nil
}

// Archive stops a curriculum from accepting new classes.
func (s *CurriculumService) Archive(ctx context.Context, id int64, actorID int64) (*models.Curriculum, error) {
	cur, err := s.store.ArchiveCurriculum(ctx, id)
	if err != nil {
		return nil, err
	}
	recordAudit(ctx, s.audit, s.logger, actorID, models.AdminActionCurriculumUpdate, "curriculum", cur.ID, "status=archived")
	return cur, nil
}

// Delete removes a curriculum no class was created from.
func (s *CurriculumService) Delete(ctx context.Context, id int64, actorID int64) error {
	removed, err := s.store.DeleteCurriculum(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return appErrors.Clone(appErrors.ErrNotFound, "curriculum not found")
	}
	recordAudit(ctx, s.audit, s.logger, actorID, models.AdminActionCurriculumDelete, "curriculum", id, "")
	return nil
}
