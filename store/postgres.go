package store

import (
	"context"
	"errors"
	"time"

	"github.com/area-engine/core/logging"
	"github.com/area-engine/core/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// PostgresStore is the GORM-backed Store implementation, adapted from evalgo-org-eve's
// db.PGInfo connection-pool setup and db.PGMigrations AutoMigrate pattern.
type PostgresStore struct {
	db  *gorm.DB
	log *logging.ContextLogger
}

// Open connects to Postgres, tunes the connection pool, and runs AutoMigrate for every
// model in models.AllModels().
func Open(dsn string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		return nil, err
	}

	return &PostgresStore{db: db, log: logging.Named("store")}, nil
}

// DB exposes the underlying *gorm.DB for migrations/administration outside this interface.
func (s *PostgresStore) DB() *gorm.DB { return s.db }

func (s *PostgresStore) EnsureUser(ctx context.Context, user *models.User) error {
	var existing models.User
	err := s.db.WithContext(ctx).Where("username = ?", user.Username).First(&existing).Error
	if err == nil {
		return nil // Seeder is purely additive (spec §4.5): never overwrite.
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return s.db.WithContext(ctx).Create(user).Error
}

func (s *PostgresStore) EnsureService(ctx context.Context, svc *models.Service) (*models.Service, error) {
	var existing models.Service
	err := s.db.WithContext(ctx).Where("name = ?", svc.Name).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(svc).Error; err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *PostgresStore) EnsureAction(ctx context.Context, action *models.Action) (*models.Action, error) {
	var existing models.Action
	err := s.db.WithContext(ctx).
		Where("service_id = ? AND name = ?", action.ServiceID, action.Name).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(action).Error; err != nil {
		return nil, err
	}
	return action, nil
}

func (s *PostgresStore) EnsureReaction(ctx context.Context, reaction *models.Reaction) (*models.Reaction, error) {
	var existing models.Reaction
	err := s.db.WithContext(ctx).
		Where("service_id = ? AND name = ?", reaction.ServiceID, reaction.Name).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(reaction).Error; err != nil {
		return nil, err
	}
	return reaction, nil
}

func (s *PostgresStore) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}

func (s *PostgresStore) ActiveWorkflows(ctx context.Context) ([]*models.Workflow, error) {
	var workflows []*models.Workflow
	err := s.db.WithContext(ctx).
		Preload("Action").Preload("Action.Service").
		Preload("Reaction").Preload("Reaction.Service").
		Where("is_active = ?", true).
		Order("id").
		Find(&workflows).Error
	return workflows, err
}

func (s *PostgresStore) LogByMessage(ctx context.Context, workflowID uint, message string) (*models.WorkflowLog, error) {
	var log models.WorkflowLog
	err := s.db.WithContext(ctx).
		Where("workflow_id = ? AND message = ?", workflowID, message).
		Order("triggered_at DESC").
		First(&log).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &log, nil
}

func (s *PostgresStore) LogByMessageContains(ctx context.Context, workflowID uint, substr string) (*models.WorkflowLog, error) {
	var log models.WorkflowLog
	err := s.db.WithContext(ctx).
		Where("workflow_id = ? AND message LIKE ?", workflowID, "%"+substr+"%").
		Order("triggered_at DESC").
		First(&log).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &log, nil
}

// RecordOutcome commits the last-triggered timestamp and the new log row in one transaction,
// per spec §5: "last_triggered update + log insert commit or roll back together."
func (s *PostgresStore) RecordOutcome(ctx context.Context, workflowID uint, triggeredAt time.Time, log *models.WorkflowLog) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Workflow{}).
			Where("id = ?", workflowID).
			Update("last_triggered", triggeredAt).Error; err != nil {
			return err
		}
		log.WorkflowID = workflowID
		return tx.Create(log).Error
	})
}

// RecordFailure inserts log without advancing LastTriggered, for failures that occur before
// the Action has fired.
func (s *PostgresStore) RecordFailure(ctx context.Context, workflowID uint, log *models.WorkflowLog) error {
	log.WorkflowID = workflowID
	return s.db.WithContext(ctx).Create(log).Error
}

func (s *PostgresStore) Connection(ctx context.Context, userID, serviceID uint) (*models.UserServiceConnection, error) {
	var conn models.UserServiceConnection
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND service_id = ?", userID, serviceID).
		First(&conn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (s *PostgresStore) SaveConnection(ctx context.Context, conn *models.UserServiceConnection) error {
	return s.db.WithContext(ctx).Save(conn).Error
}

func (s *PostgresStore) ServiceByName(ctx context.Context, name string) (*models.Service, error) {
	var svc models.Service
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&svc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &svc, nil
}
