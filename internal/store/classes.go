package store

import (
	"context"
	"fmt"
	"time"

	"github.com/noah-isme/course-admin-store/internal/models"
	appErrors "github.com/noah-isme/course-admin-store/pkg/errors"
)

const inviteCodeAttempts = 16

// CreateClass stores a class and its weekly sessions, one per curriculum
// week numbered from 1, as a single commit. The professor must exist with a
// professor or admin role and the curriculum must be active.
func (s *Store) CreateClass(ctx context.Context, in models.NewClass) (*models.Class, error) {
	if in.InviteCode != "" && !ValidInviteCode(in.InviteCode) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid invite code %q", in.InviteCode))
	}
	var created models.Class
	err := s.commit(ctx, models.KindClasses, OpCreate, func(now time.Time) error {
		if err := s.checkProfessorLocked(in.ProfessorID); err != nil {
			return err
		}
		cur, ok := s.curricula.get(in.CurriculumID)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("curriculum %d not found", in.CurriculumID))
		}
		if cur.Status == models.CurriculumStatusArchived {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("curriculum %d is archived", cur.ID))
		}
		weeks := cur.Weeks

		code := in.InviteCode
		if code == "" {
			generated, err := s.freshInviteCodeLocked()
			if err != nil {
				return err
			}
			code = generated
		} else if s.inviteCodeTakenLocked(code, 0) {
			return appErrors.Clone(appErrors.ErrUniquenessViolation, fmt.Sprintf("invite code %q already in use", code))
		}

		created = s.classes.insert(models.Class{
			Name:         in.Name,
			ProfessorID:  in.ProfessorID,
			CurriculumID: in.CurriculumID,
			InviteCode:   code,
			Lifecycle:    models.ActiveLifecycle(),
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		for week := 1; week <= weeks; week++ {
			s.sessions.insert(models.WeeklySession{
				ClassID:   created.ID,
				Week:      week,
				Status:    models.SessionNotStarted,
				CreatedAt: now,
				UpdatedAt: now,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// FindClass returns the class with id, soft-deleted or not.
func (s *Store) FindClass(_ context.Context, id int64) (*models.Class, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.classes.find(id)
}

// FindClassByInviteCode returns the visible class using code.
func (s *Store) FindClassByInviteCode(_ context.Context, code string) (*models.Class, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.classes.first(func(c *models.Class) bool {
		return c.InviteCode == code && !c.Lifecycle.Deleted()
	})
	if !ok {
		return nil, false
	}
	out := s.classes.copyOf(row)
	return &out, true
}

// ListClasses returns the classes that are not soft-deleted.
func (s *Store) ListClasses(_ context.Context) []models.Class {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.classes.where(func(c models.Class) bool { return !c.Lifecycle.Deleted() })
}

// ListClassesWhere returns every class matching pred, soft-deleted ones
// included.
func (s *Store) ListClassesWhere(_ context.Context, pred func(models.Class) bool) []models.Class {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.classes.where(pred)
}

// UpdateClass merges patch into the class with id.
func (s *Store) UpdateClass(ctx context.Context, id int64, patch models.ClassPatch) (*models.Class, error) {
	if patch.InviteCode != nil && !ValidInviteCode(*patch.InviteCode) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid invite code %q", *patch.InviteCode))
	}
	var updated models.Class
	err := s.commit(ctx, models.KindClasses, OpUpdate, func(now time.Time) error {
		c, ok := s.classes.get(id)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("class %d not found", id))
		}
		if patch.ProfessorID != nil {
			if err := s.checkProfessorLocked(*patch.ProfessorID); err != nil {
				return err
			}
		}
		if patch.InviteCode != nil && *patch.InviteCode != c.InviteCode && !c.Lifecycle.Deleted() &&
			s.inviteCodeTakenLocked(*patch.InviteCode, id) {
			return appErrors.Clone(appErrors.ErrUniquenessViolation, fmt.Sprintf("invite code %q already in use", *patch.InviteCode))
		}
		if patch.Name != nil {
			c.Name = *patch.Name
		}
		if patch.ProfessorID != nil {
			c.ProfessorID = *patch.ProfessorID
		}
		if patch.InviteCode != nil {
			c.InviteCode = *patch.InviteCode
		}
		c.UpdatedAt = now
		updated = s.classes.copyOf(c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// SoftDeleteClass hides the class from default listings. Deleting an already
// deleted class returns it unchanged.
func (s *Store) SoftDeleteClass(ctx context.Context, id int64) (*models.Class, error) {
	var out models.Class
	err := s.commit(ctx, models.KindClasses, OpSoftDelete, func(now time.Time) error {
		c, ok := s.classes.get(id)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("class %d not found", id))
		}
		if c.Lifecycle.Deleted() {
			out = s.classes.copyOf(c)
			return errNoChange
		}
		c.Lifecycle = models.DeletedLifecycle(now)
		c.UpdatedAt = now
		out = s.classes.copyOf(c)
		return nil
	})
	if err = ignoreNoChange(err); err != nil {
		return nil, err
	}
	return &out, nil
}

// RestoreClass makes a soft-deleted class visible again. The restore fails
// when another visible class took its invite code in the meantime.
func (s *Store) RestoreClass(ctx context.Context, id int64) (*models.Class, error) {
	var out models.Class
	err := s.commit(ctx, models.KindClasses, OpRestore, func(now time.Time) error {
		c, ok := s.classes.get(id)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("class %d not found", id))
		}
		if !c.Lifecycle.Deleted() {
			out = s.classes.copyOf(c)
			return errNoChange
		}
		if s.inviteCodeTakenLocked(c.InviteCode, id) {
			return appErrors.Clone(appErrors.ErrUniquenessViolation,
				fmt.Sprintf("invite code %q was reused by another class", c.InviteCode))
		}
		c.Lifecycle = models.ActiveLifecycle()
		c.UpdatedAt = now
		out = s.classes.copyOf(c)
		return nil
	})
	if err = ignoreNoChange(err); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) checkProfessorLocked(id int64) error {
	u, ok := s.users.get(id)
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("user %d not found", id))
	}
	if u.Role != models.RoleProfessor && u.Role != models.RoleAdmin {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("user %d cannot teach a class", id))
	}
	return nil
}

// inviteCodeTakenLocked reports whether a visible class other than except
// uses code.
func (s *Store) inviteCodeTakenLocked(code string, except int64) bool {
	return s.classes.exists(func(c *models.Class) bool {
		return c.ID != except && c.InviteCode == code && !c.Lifecycle.Deleted()
	})
}

func (s *Store) freshInviteCodeLocked() (string, error) {
	for i := 0; i < inviteCodeAttempts; i++ {
		code, err := s.newCode()
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate invite code")
		}
		if !s.inviteCodeTakenLocked(code, 0) {
			return code, nil
		}
	}
	return "", appErrors.Clone(appErrors.ErrUniquenessViolation, "could not find a free invite code")
}
