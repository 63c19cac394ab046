package store

import (
	"context"
	"fmt"
	"time"

	"github.com/noah-isme/course-admin-store/internal/models"
	appErrors "github.com/noah-isme/course-admin-store/pkg/errors"
)

// CreateCurriculum stores a new curriculum.
func (s *Store) CreateCurriculum(ctx context.Context, in models.NewCurriculum) (*models.Curriculum, error) {
	if err := validWeeks(in.Weeks); err != nil {
		return nil, err
	}
	var created models.Curriculum
	err := s.commit(ctx, models.KindCurricula, OpCreate, func(now time.Time) error {
		status := in.Status
		if status == "" {
			status = models.CurriculumStatusActive
		}
		created = s.curricula.insert(models.Curriculum{
			Name:        in.Name,
			Language:    in.Language,
			Weeks:       in.Weeks,
			Status:      status,
			Description: in.Description,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// FindCurriculum returns the curriculum with id.
func (s *Store) FindCurriculum(_ context.Context, id int64) (*models.Curriculum, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.curricula.find(id)
}

// ListCurricula returns every curriculum in insertion order.
func (s *Store) ListCurricula(_ context.Context) []models.Curriculum {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.curricula.where(nil)
}

// ListCurriculaWhere returns the curricula matching pred.
func (s *Store) ListCurriculaWhere(_ context.Context, pred func(models.Curriculum) bool) []models.Curriculum {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.curricula.where(pred)
}

// UpdateCurriculum merges patch into the curriculum with id. Changing the
// week count does not touch sessions of classes already created from it.
func (s *Store) UpdateCurriculum(ctx context.Context, id int64, patch models.CurriculumPatch) (*models.Curriculum, error) {
	if patch.Weeks != nil {
		if err := validWeeks(*patch.Weeks); err != nil {
			return nil, err
		}
	}
	var updated models.Curriculum
	err := s.commit(ctx, models.KindCurricula, OpUpdate, func(now time.Time) error {
		c, ok := s.curricula.get(id)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("curriculum %d not found", id))
		}
		if patch.Name != nil {
			c.Name = *patch.Name
		}
		if patch.Language != nil {
			c.Language = *patch.Language
		}
		if patch.Weeks != nil {
			c.Weeks = *patch.Weeks
		}
		if patch.Status != nil {
			c.Status = *patch.Status
		}
		if patch.Description != nil {
			c.Description = *patch.Description
		}
		c.UpdatedAt = now
		updated = s.curricula.copyOf(c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// ArchiveCurriculum marks the curriculum archived. Archived curricula keep
// their classes but accept no new ones.
func (s *Store) ArchiveCurriculum(ctx context.Context, id int64) (*models.Curriculum, error) {
	archived := models.CurriculumStatusArchived
	return s.UpdateCurriculum(ctx, id, models.CurriculumPatch{Status: &archived})
}

// DeleteCurriculum removes the curriculum with id. It fails with
// ErrReferenceInUse while any class, deleted or not, was created from it.
func (s *Store) DeleteCurriculum(ctx context.Context, id int64) (bool, error) {
	removed := false
	err := s.commit(ctx, models.KindCurricula, OpDelete, func(time.Time) error {
		if _, ok := s.curricula.get(id); !ok {
			return errNoChange
		}
		if s.classes.exists(func(c *models.Class) bool { return c.CurriculumID == id }) {
			return appErrors.Clone(appErrors.ErrReferenceInUse, fmt.Sprintf("curriculum %d is used by a class; archive it instead", id))
		}
		removed = s.curricula.remove(id)
		return nil
	})
	return removed, ignoreNoChange(err)
}

func validWeeks(weeks int) error {
	if weeks < models.MinCurriculumWeeks || weeks > models.MaxCurriculumWeeks {
		return appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("weeks must be between %d and %d", models.MinCurriculumWeeks, models.MaxCurriculumWeeks))
	}
	return nil
}
