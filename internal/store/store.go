// Package store is the relational store client. It wraps a pooled gorm
// connection to MySQL and exposes one method per marketplace operation.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/OkontaEhis/myhitmeup-backend/internal/config"
	"github.com/OkontaEhis/myhitmeup-backend/internal/model"

	sqlmysql "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// ErrNotFound is returned when a keyed row does not exist.
var ErrNotFound = errors.New("record not found")

// ErrConflict is returned when a unique value is already taken.
var ErrConflict = errors.New("record conflict")

// Store issues parameterized queries through gorm.
type Store struct {
	db *gorm.DB
}

// New wraps an open gorm handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Open connects to MySQL with a bounded pool. Affected-row counts report
// matched rows so an update that leaves values unchanged is not mistaken
// for a missing row.
func Open(cfg config.MySQLConfig) (*gorm.DB, error) {
	dsnCfg, err := sqlmysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	dsnCfg.ParseTime = true
	dsnCfg.ClientFoundRows = true

	db, err := gorm.Open(mysql.Open(dsnCfg.FormatDSN()), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("mysql handle: %w", err)
	}
	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxOpen)
	return db, nil
}

// Migrate creates or updates every table.
func (s *Store) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(model.AllModels()...)
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	var one int
	return s.db.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error
}

// Close releases the pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// updateByID checks that the row exists, applies updates, and reloads it
// into dest. Zero matched rows after the check is still reported as not found.
func (s *Store) updateByID(ctx context.Context, dest any, id uint, updates map[string]any) error {
	db := s.db.WithContext(ctx)
	if err := db.First(dest, id).Error; err != nil {
		return notFound(err)
	}
	if len(updates) == 0 {
		return nil
	}
	res := db.Model(dest).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return notFound(db.First(dest, id).Error)
}

// deleteByID checks that the row exists and deletes it into dest.
func (s *Store) deleteByID(ctx context.Context, dest any, id uint) error {
	db := s.db.WithContext(ctx)
	if err := db.First(dest, id).Error; err != nil {
		return notFound(err)
	}
	res := db.Where("id = ?", id).Delete(dest)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
