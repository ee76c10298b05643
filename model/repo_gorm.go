package model

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// noteRow is the SQL representation of a Note. Seq is a surrogate key that
// preserves insertion order, since NoteID is not unique.
type noteRow struct {
	Seq     uint   `gorm:"primaryKey;autoIncrement"`
	NoteID  int64  `gorm:"index;not null"`
	Title   string `gorm:"not null"`
	Content string `gorm:"not null"`
	Date    string `gorm:"size:32"`
	Owner   *string
}

func (noteRow) TableName() string { return "notes" }

func (r noteRow) note() Note {
	return Note{ID: r.NoteID, Title: r.Title, Content: r.Content, Date: r.Date, Owner: r.Owner}
}

// GormRepository stores notes in a SQL database through GORM.
type GormRepository struct {
	db *gorm.DB
}

// OpenSQLite opens (or creates) a SQLite database file (pure Go driver).
func OpenSQLite(filename string, gormConfig *gorm.Config) (*GormRepository, error) {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	db, err := gorm.Open(sqlite.Open(filename), gormConfig)
	if err != nil {
		return nil, err
	}
	return NewGormRepository(db)
}

// OpenPostgres connects to PostgreSQL with the given DSN.
func OpenPostgres(dsn string, gormConfig *gorm.Config) (*GormRepository, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, err
	}
	return NewGormRepository(db)
}

// NewGormRepository migrates the notes table and returns the repository.
func NewGormRepository(db *gorm.DB) (*GormRepository, error) {
	if err := db.AutoMigrate(&noteRow{}); err != nil {
		return nil, fmt.Errorf("migrate notes: %w", err)
	}
	return &GormRepository{db: db}, nil
}

func (r *GormRepository) List(ctx context.Context, id *int64) ([]Note, error) {
	q := r.db.WithContext(ctx).Order("seq DESC")
	if id != nil {
		q = q.Where("note_id = ?", *id)
	}
	var rows []noteRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	notes := make([]Note, len(rows))
	for i, row := range rows {
		notes[i] = row.note()
	}
	return notes, nil
}

func (r *GormRepository) Insert(ctx context.Context, n Note) error {
	row := noteRow{NoteID: n.ID, Title: n.Title, Content: n.Content, Date: n.Date, Owner: n.Owner}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert note %d: %w", n.ID, err)
	}
	return nil
}

func (r *GormRepository) Replace(ctx context.Context, n Note) error {
	err := r.db.WithContext(ctx).
		Model(&noteRow{}).
		Where("note_id = ?", n.ID).
		Updates(map[string]any{
			"title":   n.Title,
			"content": n.Content,
			"date":    n.Date,
			"owner":   n.Owner,
		}).Error
	if err != nil {
		return fmt.Errorf("update note %d: %w", n.ID, err)
	}
	return nil
}

func (r *GormRepository) Delete(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).Where("note_id = ?", id).Delete(&noteRow{}).Error; err != nil {
		return fmt.Errorf("delete note %d: %w", id, err)
	}
	return nil
}

func (r *GormRepository) Seed(ctx context.Context, notes []Note) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&noteRow{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		// newest first on read, so the first seed note is inserted last
		for i := len(notes) - 1; i >= 0; i-- {
			n := notes[i]
			row := noteRow{NoteID: n.ID, Title: n.Title, Content: n.Content, Date: n.Date, Owner: n.Owner}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormRepository) Close(context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
