package permission

import (
	"context"
	"time"

	common_models "go-cmms/internal/common/models"
	"go-cmms/pkg/permissions"

	"go.uber.org/zap"
)

// BackfillUser adds the role defaults for every module the user has no stored
// entry for. Existing entries are left as they are. It reports whether the
// stored document changed.
func (s *PermissionServiceImpl) BackfillUser(ctx context.Context, userID string) (bool, error) {
	u, err := s.Repo.GetUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return s.backfill(ctx, u)
}

func (s *PermissionServiceImpl) backfill(ctx context.Context, u *common_models.User) (bool, error) {
	additions := permissions.Backfill(permissions.ResolveDefaults(u.Role), u.Permissions)
	if len(additions) == 0 {
		return false, nil
	}

	updated, err := s.Repo.AddMissing(ctx, u.ID.Hex(), additions)
	if err != nil || !updated {
		return false, err
	}

	changes := make(map[string]common_models.Change, len(additions))
	for mod, t := range additions {
		changes[string(mod)] = common_models.Change{New: t}
	}
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionMigration, auditModule, u.ID.Hex(), changes)
	return true, nil
}

// BackfillAll runs the additive migration over every user, active or not.
// A failure on one user is counted and logged and the run continues; only a
// cancelled context or a failing scan aborts it.
func (s *PermissionServiceImpl) BackfillAll(ctx context.Context) (*BackfillReport, error) {
	report := &BackfillReport{StartedAt: time.Now().UTC()}

	err := s.Repo.ForEachUser(ctx, func(u common_models.User) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		report.Scanned++

		updated, err := s.backfill(ctx, &u)
		if err != nil {
			report.Failed++
			s.Logger.Warn("permission backfill failed for user",
				zap.String("user_id", u.ID.Hex()),
				zap.Error(err),
			)
			return nil
		}
		if updated {
			report.Updated++
		}
		return nil
	})
	report.FinishedAt = time.Now().UTC()

	if s.Observer != nil {
		s.Observer.ObserveBackfill(report.Updated, err)
	}

	if err != nil {
		s.Logger.Error("permission backfill aborted", zap.Error(err), zap.Int("scanned", report.Scanned))
		return report, err
	}

	s.Logger.Info("permission backfill finished",
		zap.Int("scanned", report.Scanned),
		zap.Int("updated", report.Updated),
		zap.Int("failed", report.Failed),
		zap.Duration("took", report.FinishedAt.Sub(report.StartedAt)),
	)
	return report, nil
}
