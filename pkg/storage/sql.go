package storage

import (
	"fmt"
	"time"

	"github.com/raykavin/atradx/pkg/core"
	"github.com/samber/lo"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// SQLStorage implements core.SignalStorage using a SQL database via GORM
type SQLStorage struct {
	db *gorm.DB
}

// Config holds the connection pool settings
type Config struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// DefaultConfig returns the default connection pool settings
func DefaultConfig() Config {
	return Config{
		MaxIdleConns:    5,
		MaxOpenConns:    10,
		ConnMaxLifetime: time.Hour,
	}
}

// FromPostgres opens a PostgreSQL journal from a DSN
func FromPostgres(dsn string, config Config, opts ...gorm.Option) (*SQLStorage, error) {
	return FromSQL(postgres.Open(dsn), config, opts...)
}

// FromSQL opens a journal on any GORM dialect and migrates the signal table
func FromSQL(dialect gorm.Dialector, config Config, opts ...gorm.Option) (*SQLStorage, error) {
	db, err := gorm.Open(dialect, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(config.ConnMaxLifetime)

	if err := db.AutoMigrate(&core.Signal{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLStorage{db: db}, nil
}

// CreateSignal inserts a signal; the database assigns its ID
func (s *SQLStorage) CreateSignal(signal *core.Signal) error {
	if result := s.db.Create(signal); result.Error != nil {
		return fmt.Errorf("failed to create signal: %w", result.Error)
	}
	return nil
}

// Signals returns the stored signals matching every filter, oldest first.
// Filters are applied in memory.
func (s *SQLStorage) Signals(filters ...core.SignalFilter) ([]*core.Signal, error) {
	var signals []*core.Signal

	result := s.db.Order("time asc").Order("id asc").Find(&signals)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to fetch signals: %w", result.Error)
	}

	return lo.Filter(signals, func(signal *core.Signal, _ int) bool {
		for _, filter := range filters {
			if !filter(*signal) {
				return false
			}
		}
		return true
	}), nil
}

// SignalsWithQuery runs a custom GORM query against the signal table
func (s *SQLStorage) SignalsWithQuery(query func(*gorm.DB) *gorm.DB) ([]*core.Signal, error) {
	var signals []*core.Signal

	if result := query(s.db).Find(&signals); result.Error != nil {
		return nil, fmt.Errorf("failed to execute query: %w", result.Error)
	}
	return signals, nil
}

// Close closes the database connection
func (s *SQLStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}
