package record

import (
	"context"
	"testing"

	"go-cmms/internal/common/models"
	"go-cmms/pkg/permissions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MockRecordRepo struct {
	Records          map[string]*models.Record
	CapturedDeleteID string
	CapturedUserID   string
	CapturedFilter   map[string]any
	Writes           int
}

func newMockRecordRepo() *MockRecordRepo {
	return &MockRecordRepo{Records: map[string]*models.Record{}}
}

func (m *MockRecordRepo) Create(ctx context.Context, record *models.Record) error {
	m.Writes++
	m.Records[record.ID.Hex()] = record
	return nil
}

func (m *MockRecordRepo) Get(ctx context.Context, module permissions.Module, id string) (*models.Record, error) {
	r, ok := m.Records[id]
	if !ok || r.Module != module || r.Deleted {
		return nil, ErrRecordNotFound
	}
	return r, nil
}

func (m *MockRecordRepo) List(ctx context.Context, module permissions.Module, filter map[string]any, limit, offset int64, sortBy string, sortOrder int) ([]models.Record, error) {
	m.CapturedFilter = filter
	return []models.Record{}, nil
}

func (m *MockRecordRepo) Count(ctx context.Context, module permissions.Module, filter map[string]any) (int64, error) {
	return 0, nil
}

func (m *MockRecordRepo) Update(ctx context.Context, module permissions.Module, id string, data map[string]any, userID string) error {
	m.Writes++
	r, err := m.Get(ctx, module, id)
	if err != nil {
		return err
	}
	for k, v := range data {
		r.Data[k] = v
	}
	r.UpdatedBy = userID
	return nil
}

func (m *MockRecordRepo) Delete(ctx context.Context, module permissions.Module, id string, userID string) error {
	m.Writes++
	m.CapturedDeleteID = id
	m.CapturedUserID = userID
	r, err := m.Get(ctx, module, id)
	if err != nil {
		return err
	}
	r.Deleted = true
	return nil
}

func (m *MockRecordRepo) EnsureIndexes(ctx context.Context) error {
	return nil
}

type MockAuditService struct {
	Actions []models.AuditAction
	Changes []map[string]models.Change
}

func (m *MockAuditService) LogChange(ctx context.Context, action models.AuditAction, module string, recordID string, changes map[string]models.Change) error {
	m.Actions = append(m.Actions, action)
	m.Changes = append(m.Changes, changes)
	return nil
}

func (m *MockAuditService) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]models.AuditLog, error) {
	return []models.AuditLog{}, nil
}

func TestCreateRecordSanitizesAndAudits(t *testing.T) {
	repo := newMockRecordRepo()
	auditor := &MockAuditService{}
	svc := NewRecordService(repo, auditor)

	rec, err := svc.CreateRecord(context.Background(), permissions.ModuleWorkOrders, map[string]any{
		"title":    "Replace pump seal",
		"$where":   "1",
		"a.b":      true,
		"priority": "high",
	}, "u1")
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"title": "Replace pump seal", "priority": "high"}, rec.Data)
	assert.Equal(t, "u1", rec.CreatedBy)
	assert.Equal(t, []models.AuditAction{models.AuditActionCreate}, auditor.Actions)
}

func TestCreateRecordRejectsUnknownModule(t *testing.T) {
	repo := newMockRecordRepo()
	svc := NewRecordService(repo, &MockAuditService{})

	_, err := svc.CreateRecord(context.Background(), permissions.Module("payroll"), map[string]any{}, "u1")
	assert.ErrorIs(t, err, ErrInvalidModule)
	assert.Zero(t, repo.Writes)
}

func TestUpdateRecordAuditsOnlyChangedFields(t *testing.T) {
	repo := newMockRecordRepo()
	auditor := &MockAuditService{}
	svc := NewRecordService(repo, auditor)
	ctx := context.Background()

	rec, err := svc.CreateRecord(ctx, permissions.ModuleAssets, map[string]any{"name": "Compressor", "site": "A"}, "u1")
	require.NoError(t, err)

	require.NoError(t, svc.UpdateRecord(ctx, permissions.ModuleAssets, rec.ID.Hex(), map[string]any{"name": "Compressor", "site": "B"}, "u2"))
	require.Len(t, auditor.Changes, 2)
	assert.Equal(t, map[string]models.Change{"site": {Old: "A", New: "B"}}, auditor.Changes[1])
	assert.Equal(t, "u2", repo.Records[rec.ID.Hex()].UpdatedBy)

	writes := repo.Writes
	require.NoError(t, svc.UpdateRecord(ctx, permissions.ModuleAssets, rec.ID.Hex(), map[string]any{"site": "B"}, "u2"))
	assert.Equal(t, writes, repo.Writes, "no-op update must not write")
	assert.Len(t, auditor.Actions, 2)
}

func TestUpdateRecordInOtherModuleIsNotFound(t *testing.T) {
	repo := newMockRecordRepo()
	svc := NewRecordService(repo, &MockAuditService{})
	ctx := context.Background()

	rec, err := svc.CreateRecord(ctx, permissions.ModuleAssets, map[string]any{"name": "Lathe"}, "u1")
	require.NoError(t, err)

	err = svc.UpdateRecord(ctx, permissions.ModuleInventory, rec.ID.Hex(), map[string]any{"name": "x"}, "u1")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestServiceSoftDeletePassesUserID(t *testing.T) {
	repo := newMockRecordRepo()
	auditor := &MockAuditService{}
	svc := NewRecordService(repo, auditor)
	ctx := context.Background()

	rec, err := svc.CreateRecord(ctx, permissions.ModuleInventory, map[string]any{"sku": "B-12"}, "u1")
	require.NoError(t, err)

	userID := primitive.NewObjectID().Hex()
	require.NoError(t, svc.DeleteRecord(ctx, permissions.ModuleInventory, rec.ID.Hex(), userID))

	assert.Equal(t, rec.ID.Hex(), repo.CapturedDeleteID)
	assert.Equal(t, userID, repo.CapturedUserID)
	assert.True(t, repo.Records[rec.ID.Hex()].Deleted)
	assert.Equal(t, models.AuditActionDelete, auditor.Actions[len(auditor.Actions)-1])
}

func TestListRecordsDropsOperatorFilters(t *testing.T) {
	repo := newMockRecordRepo()
	svc := NewRecordService(repo, &MockAuditService{})

	_, _, err := svc.ListRecords(context.Background(), permissions.ModuleMeters, map[string]any{"status": "open", "$gt": "x"}, 0, 0, "", 0)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"status": "open"}, repo.CapturedFilter)
}

func TestSortOrder(t *testing.T) {
	assert.Equal(t, 1, SortOrder("ASC"))
	assert.Equal(t, -1, SortOrder("desc"))
	assert.Equal(t, -1, SortOrder(""))
}
