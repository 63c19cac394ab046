package service

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/course-admin-store/internal/models"
)

func TestMetricsServiceCounters(t *testing.T) {
	m := NewMetricsService()

	m.RecordMutation(models.KindClasses, "create")
	m.RecordMutation(models.KindClasses, "create")
	m.ObserveSnapshotWrite(3*time.Millisecond, 2048)
	m.RecordPersistenceFailure("quota")
	m.RecordSessionTransition(TransitionExpire)
	m.ObserveHTTPRequest("GET", "/ready", 200, 4*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.mutations.WithLabelValues("classes", "create")))
	assert.Equal(t, 2048.0, testutil.ToFloat64(m.snapshotSize))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.persistFailures.WithLabelValues("quota")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionTransition.WithLabelValues("expire")))

	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.MutationsTotal)
	assert.Equal(t, uint64(1), snap.SnapshotWrites)
	assert.Equal(t, int64(2048), snap.LastSnapshotBytes)
	assert.Equal(t, uint64(1), snap.PersistenceFailures)
	assert.Equal(t, uint64(1), snap.RequestsTotal)
	assert.InDelta(t, 4.0, snap.AverageRequestDurationMs, 0.001)
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.RecordMutation(models.KindUsers, "create")
	m.ObserveSnapshotWrite(time.Millisecond, 1)
	m.RecordPersistenceFailure("write")
	m.RecordSessionTransition(TransitionStart)
	m.TrackInProgressSessions(func() int { return 1 })
	assert.Equal(t, MetricsSnapshot{}, m.Snapshot())
}

func TestTrackInProgressSessions(t *testing.T) {
	m := NewMetricsService()
	m.TrackInProgressSessions(func() int { return 3 })
	count, err := testutil.GatherAndCount(m.registry, "sessions_in_progress")
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}
