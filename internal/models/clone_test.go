package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCloneDetachesPointerFields(t *testing.T) {
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	w := WeeklySession{StartedAt: &at, AutoEndAt: &at}
	c := w.Clone()
	*c.AutoEndAt = at.Add(time.Hour)
	assert.Equal(t, at, *w.AutoEndAt)
	assert.Nil(t, c.EndedAt)

	target := int64(7)
	l := AdminLog{TargetID: &target}
	lc := l.Clone()
	*lc.TargetID = 8
	assert.Equal(t, int64(7), *l.TargetID)
}
