package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"barrabusiness/pkg/domain"
)

// DocumentModel is the single-row persistence shape: the whole record
// set serialized into one JSON column, keyed by the store key.
type DocumentModel struct {
	Key       string         `gorm:"primaryKey"`
	Data      datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time      `gorm:"not null"`
}

func (DocumentModel) TableName() string { return "documents" }

// GormStore implements Store on Postgres via GORM.
type GormStore struct {
	db  *gorm.DB
	key string
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn, key string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&DocumentModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db, key: key}, nil
}

// Load reads the document row. A missing row or corrupt column yields
// the empty document.
func (s *GormStore) Load(ctx context.Context) (domain.Document, error) {
	var model DocumentModel
	err := s.db.WithContext(ctx).First(&model, "key = ?", s.key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.EmptyDocument(), nil
		}
		return domain.Document{}, fmt.Errorf("load document: %w", err)
	}
	return decodeDocument([]byte(model.Data)), nil
}

// Save upserts the document row.
func (s *GormStore) Save(ctx context.Context, doc domain.Document) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	model := DocumentModel{
		Key:       s.key,
		Data:      datatypes.JSON(data),
		UpdatedAt: time.Now().UTC(),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&model).Error
}
