package audit

import (
	"context"
	"time"

	common_models "go-cmms/internal/common/models"
	"go-cmms/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserFinder interface {
	FindByIDs(ctx context.Context, ids []string) ([]common_models.User, error)
}

// AuditService is the sink every allowed state change is reported to
type AuditService interface {
	LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error
	ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, error)
}

type AuditServiceImpl struct {
	Repo     AuditRepository
	UserRepo UserFinder
	now      func() time.Time
}

func NewAuditService(repo AuditRepository, userRepo UserFinder) AuditService {
	return &AuditServiceImpl{
		Repo:     repo,
		UserRepo: userRepo,
		now:      time.Now,
	}
}

func (s *AuditServiceImpl) LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error {
	actorID := "system"
	if claims := utils.ClaimsFromContext(ctx); claims != nil && claims.UserID != "" {
		actorID = claims.UserID
	}

	log := common_models.AuditLog{
		ID:        primitive.NewObjectID(),
		Action:    action,
		Module:    module,
		RecordID:  recordID,
		ActorID:   actorID,
		Changes:   changes,
		Timestamp: s.now().UTC(),
	}

	return s.Repo.Create(ctx, log)
}

func (s *AuditServiceImpl) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 20
	}
	offset := (page - 1) * limit
	logs, err := s.Repo.List(ctx, filters, limit, offset)
	if err != nil {
		return nil, err
	}

	actorIDs := make([]string, 0)
	uniqueIDs := make(map[string]bool)
	for _, log := range logs {
		if log.ActorID != "system" && log.ActorID != "" && !uniqueIDs[log.ActorID] {
			uniqueIDs[log.ActorID] = true
			actorIDs = append(actorIDs, log.ActorID)
		}
	}

	userMap := make(map[string]string)
	if len(actorIDs) > 0 {
		users, err := s.UserRepo.FindByIDs(ctx, actorIDs)
		if err == nil {
			for _, user := range users {
				userMap[user.ID.Hex()] = user.Username
			}
		}
	}

	for i, log := range logs {
		switch {
		case log.ActorID == "system" || log.ActorID == "":
			logs[i].ActorName = "System"
		case userMap[log.ActorID] != "":
			logs[i].ActorName = userMap[log.ActorID]
		default:
			logs[i].ActorName = "Unknown User"
		}
	}

	return logs, nil
}
