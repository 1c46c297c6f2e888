package audit

import (
	"context"
	"testing"
	"time"

	common_models "go-cmms/internal/common/models"
	"go-cmms/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MockAuditRepo struct {
	Created      []common_models.AuditLog
	Listed       []common_models.AuditLog
	CapturedSkip int64
}

func (m *MockAuditRepo) Create(ctx context.Context, log common_models.AuditLog) error {
	m.Created = append(m.Created, log)
	return nil
}

func (m *MockAuditRepo) List(ctx context.Context, filters map[string]interface{}, limit, offset int64) ([]common_models.AuditLog, error) {
	m.CapturedSkip = offset
	return m.Listed, nil
}

func (m *MockAuditRepo) EnsureIndexes(ctx context.Context) error {
	return nil
}

type MockUserFinder struct {
	Users []common_models.User
}

func (m *MockUserFinder) FindByIDs(ctx context.Context, ids []string) ([]common_models.User, error) {
	return m.Users, nil
}

func TestLogChangeTakesActorFromClaims(t *testing.T) {
	repo := &MockAuditRepo{}
	svc := &AuditServiceImpl{Repo: repo, now: func() time.Time { return time.Unix(0, 0) }}

	ctx := utils.ContextWithClaims(context.Background(), &utils.UserClaims{UserID: "abc"})
	require.NoError(t, svc.LogChange(ctx, common_models.AuditActionPermissions, "settings", "u1", nil))
	require.NoError(t, svc.LogChange(context.Background(), common_models.AuditActionMigration, "settings", "u2", nil))

	require.Len(t, repo.Created, 2)
	assert.Equal(t, "abc", repo.Created[0].ActorID)
	assert.Equal(t, "system", repo.Created[1].ActorID)
}

func TestListLogsPopulatesActorNames(t *testing.T) {
	known := primitive.NewObjectID()
	repo := &MockAuditRepo{Listed: []common_models.AuditLog{
		{ActorID: known.Hex()},
		{ActorID: "system"},
		{ActorID: primitive.NewObjectID().Hex()},
	}}
	svc := NewAuditService(repo, &MockUserFinder{Users: []common_models.User{{ID: known, Username: "jdoe"}}})

	logs, err := svc.ListLogs(context.Background(), nil, 2, 10)
	require.NoError(t, err)

	assert.Equal(t, int64(10), repo.CapturedSkip)
	assert.Equal(t, "jdoe", logs[0].ActorName)
	assert.Equal(t, "System", logs[1].ActorName)
	assert.Equal(t, "Unknown User", logs[2].ActorName)
}
