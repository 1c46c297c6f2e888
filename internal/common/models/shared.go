package models

import (
	"time"

	"go-cmms/pkg/permissions"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ContextKey string

const (
	UserIDKey ContextKey = "user_id"
)

type AuditAction string

const (
	AuditActionCreate      AuditAction = "CREATE"
	AuditActionUpdate      AuditAction = "UPDATE"
	AuditActionDelete      AuditAction = "DELETE"
	AuditActionLogin       AuditAction = "LOGIN"
	AuditActionPermissions AuditAction = "PERMISSIONS"
	AuditActionMigration   AuditAction = "MIGRATION"
)

type Change struct {
	Old interface{} `bson:"old" json:"old"`
	New interface{} `bson:"new" json:"new"`
}

type AuditLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Action    AuditAction        `bson:"action" json:"action"`
	Module    string             `bson:"module" json:"module"`                       // The permission module the entity belongs to
	RecordID  string             `bson:"record_id" json:"record_id"`                 // The ID of the record being modified
	ActorID   string             `bson:"actor_id" json:"actor_id"`                   // User ID who performed the action
	ActorName string             `bson:"-" json:"actor_name,omitempty"`              // Populated Name of the actor
	Changes   map[string]Change  `bson:"changes,omitempty" json:"changes,omitempty"` // For updates: field -> {old, new}
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

// User status values. Only active users carry a permission matrix.
const (
	UserStatusActive    = "active"
	UserStatusInactive  = "inactive"
	UserStatusSuspended = "suspended"
)

type User struct {
	ID          primitive.ObjectID        `bson:"_id,omitempty" json:"id"`
	Username    string                    `bson:"username" json:"username"`
	Password    string                    `bson:"password" json:"-"`
	Email       string                    `bson:"email" json:"email"`
	FirstName   string                    `bson:"first_name,omitempty" json:"first_name,omitempty"`
	LastName    string                    `bson:"last_name,omitempty" json:"last_name,omitempty"`
	Phone       string                    `bson:"phone,omitempty" json:"phone,omitempty"`
	Status      string                    `bson:"status" json:"status"` // active, inactive, suspended
	Role        permissions.Role          `bson:"role" json:"role"`
	Permissions permissions.PartialMatrix `bson:"permissions,omitempty" json:"permissions,omitempty"`
	LastLogin   *time.Time                `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt   time.Time                 `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time                 `bson:"updated_at" json:"updated_at"`
}

// IsActive reports whether the account may act at all
func (u *User) IsActive() bool {
	return u != nil && u.Status == UserStatusActive
}

// Record is one document of a module's plumbing CRUD (work orders, assets, ...)
type Record struct {
	ID        primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	Module    permissions.Module     `json:"module" bson:"module"`
	Data      map[string]interface{} `json:"data" bson:"data"`
	CreatedBy string                 `json:"created_by" bson:"created_by"`
	UpdatedBy string                 `json:"updated_by" bson:"updated_by"`
	CreatedAt time.Time              `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time              `json:"updated_at" bson:"updated_at"`
	Deleted   bool                   `json:"__deleted" bson:"deleted"`
	DeletedAt *time.Time             `json:"deleted_at,omitempty" bson:"deleted_at,omitempty"`
	DeletedBy string                 `json:"deleted_by,omitempty" bson:"deleted_by,omitempty"`
}

type Log struct {
	AppId        string    `bson:"app_id" json:"app_id"`
	Message      string    `bson:"message" json:"message"`
	IpAddress    string    `bson:"ip_address" json:"ip_address"`
	UserID       string    `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Caller       string    `bson:"caller,omitempty" json:"caller,omitempty"`
	LogLevelId   int       `bson:"log_level_id" json:"log_level_id"`
	CreatedOnUtc time.Time `bson:"created_on_utc" json:"created_on_utc"`
}
