package model

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NoteRepository is the storage behind the notes service. Implementations
// keep a single unpartitioned sequence, allow duplicate ids and return notes
// most recently inserted first.
type NoteRepository interface {
	// List returns all notes, or only those with the given id.
	List(ctx context.Context, id *int64) ([]Note, error)
	// Insert puts n in front of all stored notes.
	Insert(ctx context.Context, n Note) error
	// Replace overwrites every note with n.ID in place.
	Replace(ctx context.Context, n Note) error
	// Delete removes every note with the given id.
	Delete(ctx context.Context, id int64) error
	// Seed loads notes, in order, into an empty repository. A repository that
	// already holds notes is left untouched.
	Seed(ctx context.Context, notes []Note) error
	Close(ctx context.Context) error
}

// Store is the notes service. It is constructed once per process and shared
// by all request handlers.
type Store struct {
	repo    NoteRepository
	latency time.Duration
	Config  *Config
}

// NewStore wires a repository into a notes service using the latency and
// policy from cfg.
func NewStore(repo NoteRepository, cfg *Config) (*Store, error) {
	latency, err := cfg.LatencyDuration()
	if err != nil {
		return nil, err
	}
	return &Store{repo: repo, latency: latency, Config: cfg}, nil
}

// InitDatabase opens the repository selected by the configuration of the
// current mode, seeds it when empty and returns the notes service.
func InitDatabase(ctx context.Context, cfg *Config) (*Store, error) {
	svr := cfg.server()
	var (
		repo NoteRepository
		err  error
	)
	switch svr.Database {
	case "", "memory":
		repo = NewMemoryRepository()
	case "sqlite3":
		filename := filepath.Join("db", svr.DBName)
		repo, err = OpenSQLite(filename, gormLoggerFor(cfg, svr))
	case "postgresql":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=5432 sslmode=disable TimeZone=UTC",
			svr.DBHost, svr.DBUser, svr.DBPassword, svr.DBName)
		repo, err = OpenPostgres(dsn, gormLoggerFor(cfg, svr))
	case "mongodb":
		repo, err = OpenMongo(ctx, svr.DBHost, svr.DBName)
	default:
		return nil, fmt.Errorf("unknown database %q", svr.Database)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open %s repository: %w", svr.Database, err)
	}
	if err := repo.Seed(ctx, seedNotes()); err != nil {
		_ = repo.Close(ctx)
		return nil, fmt.Errorf("cannot seed notes: %w", err)
	}
	s, err := NewStore(repo, cfg)
	if err != nil {
		_ = repo.Close(ctx)
		return nil, err
	}
	return s, nil
}

// Close releases the underlying repository.
func (s *Store) Close(ctx context.Context) error {
	return s.repo.Close(ctx)
}

// shared helper for GORM logger
func gormLoggerFor(cfg *Config, svr server) *gorm.Config {
	gormConfig := &gorm.Config{}
	switch svr.DBLogger {
	case "info":
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	case "silent":
		gormConfig.Logger = logger.Default.LogMode(logger.Silent)
	default:
		if cfg.Mode == "development" {
			gormConfig.Logger = logger.Default.LogMode(logger.Info)
		} else {
			gormConfig.Logger = logger.Default.LogMode(logger.Silent)
		}
	}
	return gormConfig
}
