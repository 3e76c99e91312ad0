// Package models defines the GORM row types for the AREA engine's data model (spec §3):
// User, Service, Action, Reaction, UserServiceConnection, Workflow, and WorkflowLog.
package models

import "time"

// User is a local or OAuth-linked account.
//
// Invariant: at least one of PasswordHash or (OAuthProvider, OAuthProviderID) is set; the
// pair (OAuthProvider, OAuthProviderID) is unique when both are non-empty.
type User struct {
	ID              uint   `gorm:"primaryKey"`
	Username        string `gorm:"size:80;uniqueIndex;not null"`
	Email           string `gorm:"size:120;uniqueIndex;not null"`
	PasswordHash    *string
	OAuthProvider   *string `gorm:"size:50;uniqueIndex:unique_oauth_user"`
	OAuthProviderID *string `gorm:"size:255;uniqueIndex:unique_oauth_user"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Service is a catalog row describing an integration provider. Created by the Seeder;
// immutable thereafter except IsActive.
type Service struct {
	ID             uint   `gorm:"primaryKey"`
	Name           string `gorm:"size:50;uniqueIndex;not null"` // slug: "gmail", "timer"
	DisplayName    string `gorm:"size:100;not null"`
	Description    string
	RequiresOAuth  bool `gorm:"not null;default:false"`
	IconURL        string
	IsActive       bool `gorm:"not null;default:true"`
	Actions        []Action   `gorm:"foreignKey:ServiceID;constraint:OnDelete:CASCADE"`
	Reactions      []Reaction `gorm:"foreignKey:ServiceID;constraint:OnDelete:CASCADE"`
}

// Action is a named trigger condition exposed by a Service (spec §4.2's catalog).
type Action struct {
	ID           uint `gorm:"primaryKey"`
	ServiceID    uint `gorm:"not null;uniqueIndex:unique_action_per_service"`
	Name         string `gorm:"size:100;not null;uniqueIndex:unique_action_per_service"`
	DisplayName  string `gorm:"size:150;not null"`
	Description  string
	ConfigSchema JSONMap `gorm:"serializer:json"`
	Service      Service `gorm:"foreignKey:ServiceID"`
}

// Reaction is a named effect exposed by a Service (spec §4.3's catalog).
type Reaction struct {
	ID           uint   `gorm:"primaryKey"`
	ServiceID    uint   `gorm:"not null;uniqueIndex:unique_reaction_per_service"`
	Name         string `gorm:"size:100;not null;uniqueIndex:unique_reaction_per_service"`
	DisplayName  string `gorm:"size:150;not null"`
	Description  string
	ConfigSchema JSONMap `gorm:"serializer:json"`
	Service      Service `gorm:"foreignKey:ServiceID"`
}

// UserServiceConnection persists the OAuth tokens linking a User to a Service.
//
// Invariant: at most one connection per (UserID, ServiceID).
type UserServiceConnection struct {
	ID             uint `gorm:"primaryKey"`
	UserID         uint `gorm:"not null;uniqueIndex:unique_user_service"`
	ServiceID      uint `gorm:"not null;uniqueIndex:unique_user_service"`
	AccessToken    string
	RefreshToken   *string
	TokenExpiresAt *time.Time
	ConnectedAt    time.Time
	UpdatedAt      time.Time

	User    User    `gorm:"foreignKey:UserID"`
	Service Service `gorm:"foreignKey:ServiceID"`
}

// Expired reports whether the access token is past TokenExpiresAt as of now.
func (c *UserServiceConnection) Expired(now time.Time) bool {
	return c.TokenExpiresAt != nil && now.After(*c.TokenExpiresAt)
}

// Workflow is a user-defined (Action, Reaction, config, config) binding — called UserArea
// in the original source.
//
// Invariant: ActionConfig/ReactionConfig validate against their Action/Reaction's
// ConfigSchema; LastTriggered is monotonically non-decreasing.
type Workflow struct {
	ID             uint   `gorm:"primaryKey"`
	UserID         uint   `gorm:"not null;index"`
	Name           string `gorm:"size:100;not null"`
	Description    string
	ActionID       uint `gorm:"not null"`
	ReactionID     uint `gorm:"not null"`
	ActionConfig   JSONMap `gorm:"not null;serializer:json"`
	ReactionConfig JSONMap `gorm:"not null;serializer:json"`
	IsActive       bool `gorm:"not null;default:true;index"`
	LastTriggered  *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time

	User     User     `gorm:"foreignKey:UserID"`
	Action   Action   `gorm:"foreignKey:ActionID"`
	Reaction Reaction `gorm:"foreignKey:ReactionID"`
	Logs     []WorkflowLog `gorm:"foreignKey:WorkflowID;constraint:OnDelete:CASCADE"`
}

// WorkflowLogStatus enumerates the four terminal states a tick's evaluation of one
// workflow can leave behind (spec §3, §7).
type WorkflowLogStatus string

const (
	LogSuccess WorkflowLogStatus = "success"
	LogFailed  WorkflowLogStatus = "failed"
	LogError   WorkflowLogStatus = "error"
	LogSkipped WorkflowLogStatus = "skipped"
)

// WorkflowLog is an append-only execution record, cascade-deleted with its Workflow.
type WorkflowLog struct {
	ID               uint              `gorm:"primaryKey"`
	WorkflowID       uint              `gorm:"not null;index:idx_workflow_log_workflow"`
	Status           WorkflowLogStatus `gorm:"size:20;not null"`
	Message          string            `gorm:"type:text;not null;index:idx_workflow_log_message"`
	TriggeredAt      time.Time         `gorm:"not null"`
	ExecutionTimeMs  *int64

	Workflow Workflow `gorm:"foreignKey:WorkflowID"`
}

// AllModels lists every row type for AutoMigrate, in dependency order.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Service{},
		&Action{},
		&Reaction{},
		&UserServiceConnection{},
		&Workflow{},
		&WorkflowLog{},
	}
}
