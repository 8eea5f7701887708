/*
Package gormstore keeps committed models in a SQL database through
gorm, addressed by name. Any gorm dialect works; callers open the
*gorm.DB themselves (sqlite for a local file, postgres for a shared
server) and hand it to New, which migrates the single table the
store uses. Models are stored as the JSON produced by the model/json
package.
*/
package gormstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/CodingCat/tree-lite/model"
	modeljson "github.com/CodingCat/tree-lite/model/json"
)

// ErrModelNotFound is returned by Load and Delete when no model is
// stored under the given name.
var ErrModelNotFound = fmt.Errorf("model not found")

type record struct {
	Name        string `gorm:"primaryKey"`
	NumFeatures int
	Trees       []byte
	UpdatedAt   time.Time
}

func (record) TableName() string {
	return "models"
}

// Store is a named model store backed by a SQL database.
type Store struct {
	db *gorm.DB
}

// New builds a Store over the given gorm connection, migrating the
// models table if needed.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&record{}); err != nil {
		return nil, fmt.Errorf("migrating models table: %v", err)
	}
	return &Store{db: db}, nil
}

// Save stores the model under the given name, replacing any model
// already stored there.
func (s *Store) Save(ctx context.Context, name string, m *model.Model) error {
	var buf bytes.Buffer
	if err := modeljson.WriteJSONModel(m, &buf); err != nil {
		return fmt.Errorf("storing model %q: encoding model: %v", name, err)
	}
	r := &record{Name: name, NumFeatures: m.NumFeatures(), Trees: buf.Bytes()}
	if err := s.db.WithContext(ctx).Save(r).Error; err != nil {
		return fmt.Errorf("storing model %q: %v", name, err)
	}
	return nil
}

// Load retrieves the model stored under the given name. It returns
// an error wrapping ErrModelNotFound if the name is unknown.
func (s *Store) Load(ctx context.Context, name string) (*model.Model, error) {
	r := &record{}
	err := s.db.WithContext(ctx).First(r, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("retrieving model %q: %w", name, ErrModelNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("retrieving model %q: %v", name, err)
	}
	m, err := modeljson.ReadJSONModel(bytes.NewReader(r.Trees))
	if err != nil {
		return nil, fmt.Errorf("retrieving model %q: decoding model: %v", name, err)
	}
	return m, nil
}

// Delete removes the model stored under the given name. It returns
// an error wrapping ErrModelNotFound if the name is unknown.
func (s *Store) Delete(ctx context.Context, name string) error {
	res := s.db.WithContext(ctx).Delete(&record{Name: name})
	if res.Error != nil {
		return fmt.Errorf("deleting model %q: %v", name, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("deleting model %q: %w", name, ErrModelNotFound)
	}
	return nil
}

// List returns the names of all stored models in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).Model(&record{}).Order("name").Pluck("name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("listing models: %v", err)
	}
	return names, nil
}
