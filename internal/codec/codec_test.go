package codec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-admin-store/internal/models"
)

func sampleSnapshot() *models.Snapshot {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	autoEnd := now.Add(24 * time.Hour)
	score := 87.5
	target := int64(1)
	return &models.Snapshot{
		Version:  3,
		SavedAt:  now,
		Sequence: 12,
		LastIDs:  map[models.EntityKind]int64{models.KindUsers: 2, models.KindClasses: 1},
		Users: []models.User{
			{ID: 1, Email: "prof@x.com", Name: "Prof", Role: models.RoleProfessor, Status: models.UserStatusActive, CreatedAt: now, UpdatedAt: now},
			{ID: 2, Email: "a@x.com", Name: "Ana", Role: models.RoleStudent, Status: models.UserStatusActive, StudentNumber: "S-1", CreatedAt: now, UpdatedAt: now},
		},
		Curricula: []models.Curriculum{{ID: 1, Name: "Go", Language: "en", Weeks: 3, Status: models.CurriculumStatusActive, CreatedAt: now, UpdatedAt: now}},
		Classes: []models.Class{
			{ID: 1, Name: "Go A", ProfessorID: 1, CurriculumID: 1, InviteCode: "ABC234", Lifecycle: models.DeletedLifecycle(now), CreatedAt: now, UpdatedAt: now},
		},
		Sessions: []models.WeeklySession{
			{ID: 1, ClassID: 1, Week: 1, Status: models.SessionInProgress, StartedAt: &now, AutoEndAt: &autoEnd, CreatedAt: now, UpdatedAt: now},
		},
		Enrollments: []models.Enrollment{{ID: 1, StudentID: 2, ClassID: 1, EnrolledAt: now, Active: true}},
		Submissions: []models.Submission{{ID: 1, StudentID: 2, TaskID: 9, ClassID: 1, Week: 1, Ordinal: 1, IsFirst: true, Score: &score, SubmittedAt: now}},
		Questions:   []models.Question{{ID: 1, StudentID: 2, ClassID: 1, Week: 1, Title: "why", Content: "?", CreatedAt: now, UpdatedAt: now}},
		Answers:     []models.Answer{{ID: 1, QuestionID: 1, AuthorID: 1, Content: "because", CreatedAt: now}},
		AdminLogs:   []models.AdminLog{{ID: 1, AdminID: 1, Action: models.AdminActionClassDelete, TargetType: "class", TargetID: &target, CreatedAt: now}},
	}
}

func TestCodecsRoundTrip(t *testing.T) {
	for _, name := range []string{"json", "yaml"} {
		t.Run(name, func(t *testing.T) {
			c, err := ForName(name)
			require.NoError(t, err)
			assert.Equal(t, name, c.Format())

			snap := sampleSnapshot()
			data, err := c.Encode(snap)
			require.NoError(t, err)

			decoded, err := c.Decode(data)
			require.NoError(t, err)
			assert.Equal(t, snap, decoded)

			assert.Equal(t, name, Detect(data).Format())
		})
	}
}

func TestForNameRejectsUnknown(t *testing.T) {
	_, err := ForName("xml")
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestDecodeGarbage(t *testing.T) {
	_, err := NewJSONCodec().Decode([]byte("{not json"))
	assert.Error(t, err)

	_, err = NewYAMLCodec().Decode([]byte("users: [unterminated"))
	assert.Error(t, err)
}
