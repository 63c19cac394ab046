package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/course-admin-store/internal/models"
	appErrors "github.com/noah-isme/course-admin-store/pkg/errors"
)

type userStore interface {
	CreateUser(ctx context.Context, in models.NewUser) (*models.User, error)
	FindUser(ctx context.Context, id int64) (*models.User, bool)
	FindUserByEmail(ctx context.Context, email string) (*models.User, bool)
	ListUsersWhere(ctx context.Context, pred func(models.User) bool) []models.User
	UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) (bool, error)
	Now() time.Time
}

// CreateUserRequest represents payload for creating users.
type CreateUserRequest struct {
	Email         string            `json:"email" validate:"required,email"`
	Name          string            `json:"name" validate:"required"`
	Role          models.UserRole   `json:"role" validate:"required,oneof=student professor admin"`
	Status        models.UserStatus `json:"status" validate:"omitempty,oneof=active inactive suspended"`
	Password      string            `json:"password" validate:"omitempty,min=6"`
	Phone         string            `json:"phone"`
	Department    string            `json:"department"`
	StudentNumber string            `json:"student_number"`
}

// UpdateUserRequest payload for updating users. Nil fields stay unchanged.
type UpdateUserRequest struct {
	Email         *string            `json:"email" validate:"omitempty,email"`
	Name          *string            `json:"name" validate:"omitempty,min=1"`
	Role          *models.UserRole   `json:"role" validate:"omitempty,oneof=student professor admin"`
	Status        *models.UserStatus `json:"status" validate:"omitempty,oneof=active inactive suspended"`
	Phone         *string            `json:"phone"`
	Department    *string            `json:"department"`
	StudentNumber *string            `json:"student_number"`
}

// UserFilter narrows user listings.
type UserFilter struct {
	Role   models.UserRole
	Status models.UserStatus
}

// UserService handles user management workflows.
type UserService struct {
	store     userStore
	audit     auditAppender
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(st userStore, audit auditAppender, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{store: st, audit: audit, validator: validate, logger: logger}
}

// List returns the users matching filter in insertion order.
func (s *UserService) List(ctx context.Context, filter UserFilter) []models.User {
	return s.store.ListUsersWhere(ctx, func(u models.User) bool {
		if filter.Role != "" && u.Role != filter.Role {
			return false
		}
		if filter.Status != "" && u.Status != filter.Status {
			return false
		}
		return true
	})
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	user, ok := s.store.FindUser(ctx, id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	return user, nil
}

// Create adds a new user.
func (s *UserService) Create(ctx context.Context, req CreateUserRequest, actorID int64) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid create user payload")
	}

	var passwordHash string
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		passwordHash = string(hash)
	}

	user, err := s.store.CreateUser(ctx, models.NewUser{
		Email:         strings.TrimSpace(req.Email),
		Name:          req.Name,
		Role:          req.Role,
		Status:        req.Status,
		PasswordHash:  passwordHash,
		Phone:         req.Phone,
		Department:    req.Department,
		StudentNumber: req.StudentNumber,
	})
	if err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit, s.logger, actorID, models.AdminActionUserCreate, "user", user.ID,
		fmt.Sprintf("email=%s role=%s", user.Email, user.Role))
	return user, nil
}

// Update modifies the user attributes.
func (s *UserService) Update(ctx context.Context, id int64, req UpdateUserRequest, actorID int64) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update payload")
	}

	patch := models.UserPatch{
		Name:          req.Name,
		Role:          req.Role,
		Status:        req.Status,
		Phone:         req.Phone,
		Department:    req.Department,
		StudentNumber: req.StudentNumber,
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		patch.Email = &email
	}

	user, err := s.store.UpdateUser(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit, s.logger, actorID, models.AdminActionUserUpdate, "user", user.ID,
		fmt.Sprintf("role=%s status=%s", user.Role, user.Status))
	return user, nil
}

// Delete removes a user.
func (s *UserService) Delete(ctx context.Context, id int64, actorID int64) error {
	removed, err := s.store.DeleteUser(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	recordAudit(ctx, s.audit, s.logger, actorID, models.AdminActionUserDelete, "user", id, "")
	return nil
}

// VerifyPassword checks the credentials of an active user and stamps the
// login time.
func (s *UserService) VerifyPassword(ctx context.Context, email, password string) (*models.User, error) {
	user, ok := s.store.FindUserByEmail(ctx, strings.TrimSpace(email))
	if !ok || user.PasswordHash == "" {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}
	if user.Status != models.UserStatusActive {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account is inactive")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}

	now := s.store.Now()
	updated, err := s.store.UpdateUser(ctx, user.ID, models.UserPatch{LastLoginAt: &now})
	if err != nil {
		s.logger.Warn("failed to record last login", zap.Int64("user_id", user.ID), zap.Error(err))
		return user, nil
	}
	return updated, nil
}

// ChangePassword replaces the password after checking the old one.
func (s *UserService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return appErrors.Clone(appErrors.ErrValidation, "password must have at least 6 characters")
	}
	user, ok := s.store.FindUser(ctx, userID)
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	if user.PasswordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
			return appErrors.Clone(appErrors.ErrInvalidCredentials, "old password does not match")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	encoded := string(hash)
	_, err = s.store.UpdateUser(ctx, userID, models.UserPatch{PasswordHash: &encoded})
	return err
}
