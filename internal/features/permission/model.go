package permission

import (
	"time"

	"go-cmms/pkg/permissions"
)

// UserPermissions is the administrative view of one user's access
type UserPermissions struct {
	UserID    string                    `json:"user_id"`
	Username  string                    `json:"username"`
	Role      permissions.Role          `json:"role"`
	Active    bool                      `json:"active"`
	Stored    permissions.PartialMatrix `json:"stored"`
	Effective permissions.Matrix        `json:"effective"`
	Missing   []permissions.Module      `json:"missing,omitempty"`
	Unknown   []permissions.Module      `json:"unknown,omitempty"`
}

// Source reports whether the effective triple of module comes from an explicit stored entry
func (p *UserPermissions) Source(module permissions.Module) string {
	if _, ok := p.Stored[module]; ok {
		return "override"
	}
	return "default"
}

// BackfillReport summarises one run of the additive migration
type BackfillReport struct {
	Scanned    int       `json:"scanned"`
	Updated    int       `json:"updated"`
	Failed     int       `json:"failed"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

type SetModuleRequest struct {
	View   bool `json:"view"`
	Edit   bool `json:"edit"`
	Delete bool `json:"delete"`
}

type ReplacePermissionsRequest struct {
	Permissions map[string]permissions.Triple `json:"permissions"`
}

type ChangeRoleRequest struct {
	Role string `json:"role"`
}
