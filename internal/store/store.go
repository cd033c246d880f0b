// Package store persists sections, projects, assets and users with gorm.
// SQLite is the default backend; a postgres:// DSN selects Postgres.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/aTrapDeer/utworld/internal/auth"
	"github.com/aTrapDeer/utworld/internal/model"
)

// Store wraps the gorm handle.
type Store struct {
	db *gorm.DB
}

// IsPostgres reports whether dsn names a Postgres database.
func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Open connects to the database named by dsn.
func Open(dsn string, verbose bool) (*Store, error) {
	cfg := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	}
	if verbose {
		cfg.Logger = logger.Default.LogMode(logger.Info)
	}

	var dialector gorm.Dialector
	if IsPostgres(dsn) {
		dialector = postgres.Open(dsn)
	} else {
		if !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return &Store{db: db}, nil
}

// New wraps an existing gorm handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the gorm handle.
func (s *Store) DB() *gorm.DB { return s.db }

// Migrate creates or updates the schema.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// EnsureAdmin creates the admin user when no user with that email exists.
// It reports whether a user was created.
func (s *Store) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	if email == "" || password == "" {
		var count int64
		if err := s.db.WithContext(ctx).Model(&model.User{}).Count(&count).Error; err != nil {
			return false, err
		}
		if count == 0 {
			slog.Warn("Admin user does not exist. Set ADMIN_EMAIL and ADMIN_PASSWORD to create one.")
		}
		return false, nil
	}

	_, err := s.GetUserByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hashing admin password: %w", err)
	}
	u := &model.User{Email: email, PasswordHash: hash, Role: "admin", IsActive: true}
	if err := s.CreateUser(ctx, u); err != nil {
		return false, err
	}
	slog.Info("admin user created", "email", email)
	return true, nil
}

func translate(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound(msg)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &ConflictError{Message: msg}
	}
	return err
}
