package service

import (
	"context"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-admin-store/internal/models"
	appErrors "github.com/noah-isme/course-admin-store/pkg/errors"
)

type auditStore interface {
	AppendAdminLog(ctx context.Context, in models.NewAdminLog) (*models.AdminLog, error)
	ListAdminLogs(ctx context.Context) []models.AdminLog
	ListAdminLogsWhere(ctx context.Context, pred func(models.AdminLog) bool) []models.AdminLog
}

// AppendAuditRequest is the payload of a journal entry.
type AppendAuditRequest struct {
	AdminID    int64  `json:"admin_id" validate:"required,gt=0"`
	Action     string `json:"action" validate:"required"`
	TargetType string `json:"target_type"`
	TargetID   *int64 `json:"target_id"`
	Reason     string `json:"reason"`
	Details    string `json:"details"`
}

// AuditService is the append-only journal of administrative actions.
type AuditService struct {
	store     auditStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAuditService creates an instance of AuditService.
func NewAuditService(st auditStore, validate *validator.Validate, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuditService{store: st, validator: validate, logger: logger}
}

// Append writes a journal entry.
func (s *AuditService) Append(ctx context.Context, req AppendAuditRequest) (*models.AdminLog, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid audit entry")
	}
	entry, err := s.store.AppendAdminLog(ctx, models.NewAdminLog{
		AdminID:    req.AdminID,
		Action:     req.Action,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		Reason:     req.Reason,
		Details:    req.Details,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("audit entry appended", zap.Int64("id", entry.ID), zap.String("action", entry.Action))
	return entry, nil
}

// Recent returns the newest entries first, at most limit of them. A limit
// of zero or less returns every entry.
func (s *AuditService) Recent(ctx context.Context, limit int) []models.AdminLog {
	logs := s.store.ListAdminLogs(ctx)
	sort.SliceStable(logs, func(i, j int) bool {
		if !logs[i].CreatedAt.Equal(logs[j].CreatedAt) {
			return logs[i].CreatedAt.After(logs[j].CreatedAt)
		}
		return logs[i].ID > logs[j].ID
	})
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	return logs
}

// FindByActor returns the entries written by adminID in insertion order.
func (s *AuditService) FindByActor(ctx context.Context, adminID int64) []models.AdminLog {
	return s.store.ListAdminLogsWhere(ctx, func(l models.AdminLog) bool { return l.AdminID == adminID })
}

type auditAppender interface {
	Append(ctx context.Context, req AppendAuditRequest) (*models.AdminLog, error)
}

// recordAudit journals an action taken by actorID. Journal failures are
// logged and never fail the action itself.
func recordAudit(ctx context.Context, audit auditAppender, logger *zap.Logger, actorID int64, action, targetType string, targetID int64, details string) {
	if audit == nil || actorID == 0 {
		return
	}
	target := targetID
	if _, err := audit.Append(ctx, AppendAuditRequest{
		AdminID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   &target,
		Details:    details,
	}); err != nil {
		logger.Warn("failed to record audit entry", zap.String("action", action), zap.Error(err))
	}
}
