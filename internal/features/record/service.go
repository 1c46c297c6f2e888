package record

import (
	"context"
	"errors"
	"reflect"
	"time"

	"go-cmms/internal/common/models"
	"go-cmms/internal/features/audit"
	"go-cmms/pkg/permissions"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrInvalidModule = errors.New("invalid module")

type RecordService interface {
	CreateRecord(ctx context.Context, module permissions.Module, data map[string]any, userID string) (*models.Record, error)
	GetRecord(ctx context.Context, module permissions.Module, id string) (*models.Record, error)
	ListRecords(ctx context.Context, module permissions.Module, filters map[string]any, page, limit int64, sortBy string, sortOrder int) ([]models.Record, int64, error)
	UpdateRecord(ctx context.Context, module permissions.Module, id string, data map[string]any, userID string) error
	DeleteRecord(ctx context.Context, module permissions.Module, id string, userID string) error
}

type RecordServiceImpl struct {
	RecordRepo   RecordRepository
	AuditService audit.AuditService
}

func NewRecordService(repo RecordRepository, auditService audit.AuditService) RecordService {
	return &RecordServiceImpl{
		RecordRepo:   repo,
		AuditService: auditService,
	}
}

func (s *RecordServiceImpl) CreateRecord(ctx context.Context, module permissions.Module, data map[string]any, userID string) (*models.Record, error) {
	if !module.Valid() {
		return nil, ErrInvalidModule
	}

	now := time.Now()
	record := &models.Record{
		ID:        primitive.NewObjectID(),
		Module:    module,
		Data:      sanitizeData(data),
		CreatedBy: userID,
		UpdatedBy: userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.RecordRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	changes := make(map[string]models.Change, len(record.Data))
	for k, v := range record.Data {
		changes[k] = models.Change{New: v}
	}
	_ = s.AuditService.LogChange(ctx, models.AuditActionCreate, string(module), record.ID.Hex(), changes)

	return record, nil
}

func (s *RecordServiceImpl) GetRecord(ctx context.Context, module permissions.Module, id string) (*models.Record, error) {
	if !module.Valid() {
		return nil, ErrInvalidModule
	}
	return s.RecordRepo.Get(ctx, module, id)
}

func (s *RecordServiceImpl) ListRecords(ctx context.Context, module permissions.Module, filters map[string]any, page, limit int64, sortBy string, sortOrder int) ([]models.Record, int64, error) {
	if !module.Valid() {
		return nil, 0, ErrInvalidModule
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	filters = sanitizeData(filters)

	records, err := s.RecordRepo.List(ctx, module, filters, limit, (page-1)*limit, sortBy, sortOrder)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.RecordRepo.Count(ctx, module, filters)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (s *RecordServiceImpl) UpdateRecord(ctx context.Context, module permissions.Module, id string, data map[string]any, userID string) error {
	if !module.Valid() {
		return ErrInvalidModule
	}

	existing, err := s.RecordRepo.Get(ctx, module, id)
	if err != nil {
		return err
	}

	data = sanitizeData(data)
	changes := make(map[string]models.Change)
	for k, v := range data {
		old := existing.Data[k]
		if !reflect.DeepEqual(old, v) {
			changes[k] = models.Change{Old: old, New: v}
		}
	}
	if len(changes) == 0 {
		return nil
	}

	if err := s.RecordRepo.Update(ctx, module, id, data, userID); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionUpdate, string(module), id, changes)
	return nil
}

func (s *RecordServiceImpl) DeleteRecord(ctx context.Context, module permissions.Module, id string, userID string) error {
	if !module.Valid() {
		return ErrInvalidModule
	}

	if err := s.RecordRepo.Delete(ctx, module, id, userID); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionDelete, string(module), id, map[string]models.Change{
		"deleted": {Old: false, New: true},
	})
	return nil
}
