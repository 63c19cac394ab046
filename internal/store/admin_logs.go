package store

import (
	"context"
	"time"

	"github.com/noah-isme/course-admin-store/internal/models"
)

// AppendAdminLog writes an audit journal entry. Entries are never updated or
// removed.
func (s *Store) AppendAdminLog(ctx context.Context, in models.NewAdminLog) (*models.AdminLog, error) {
	var created models.AdminLog
	err := s.commit(ctx, models.KindAdminLogs, OpCreate, func(now time.Time) error {
		created = s.appendAdminLogLocked(in, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Store) appendAdminLogLocked(in models.NewAdminLog, now time.Time) models.AdminLog {
	var target *int64
	if in.TargetID != nil {
		id := *in.TargetID
		target = &id
	}
	return s.adminLogs.insert(models.AdminLog{
		AdminID:    in.AdminID,
		Action:     in.Action,
		TargetType: in.TargetType,
		TargetID:   target,
		Reason:     in.Reason,
		Details:    in.Details,
		CreatedAt:  now,
	})
}

// FindAdminLog returns the entry with id.
func (s *Store) FindAdminLog(_ context.Context, id int64) (*models.AdminLog, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adminLogs.find(id)
}

// ListAdminLogs returns every entry in insertion order.
func (s *Store) ListAdminLogs(_ context.Context) []models.AdminLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adminLogs.where(nil)
}

// ListAdminLogsWhere returns the entries matching pred.
func (s *Store) ListAdminLogsWhere(_ context.Context, pred func(models.AdminLog) bool) []models.AdminLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adminLogs.where(pred)
}
