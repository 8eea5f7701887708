/*
Package redisstore keeps committed models in a redis database,
addressed by name. Models are stored as the JSON produced by the
model/json package, one key per model under a configurable prefix.
*/
package redisstore

import (
	"bytes"
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/CodingCat/tree-lite/model"
	modeljson "github.com/CodingCat/tree-lite/model/json"
)

// ErrModelNotFound is returned by Load and Delete when no model is
// stored under the given name.
var ErrModelNotFound = fmt.Errorf("model not found")

// DefaultPrefix is the key prefix used when New is given an empty one.
const DefaultPrefix = "treelite:model"

// Store is a named model store backed by a redis DB.
type Store struct {
	rc     *redis.Client
	prefix string
}

// New builds a Store over the given redis client. Keys are written
// as prefix:name; an empty prefix selects DefaultPrefix.
func New(rc *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{rc: rc, prefix: prefix}
}

// Save stores the model under the given name, replacing any model
// already stored there.
func (s *Store) Save(ctx context.Context, name string, m *model.Model) error {
	var buf bytes.Buffer
	if err := modeljson.WriteJSONModel(m, &buf); err != nil {
		return fmt.Errorf("storing model %q: encoding model: %v", name, err)
	}
	if err := s.rc.Set(ctx, s.keyFor(name), buf.Bytes(), 0).Err(); err != nil {
		return fmt.Errorf("storing model %q in redis: %v", name, err)
	}
	return nil
}

// Load retrieves the model stored under the given name. It returns
// an error wrapping ErrModelNotFound if the name is unknown.
func (s *Store) Load(ctx context.Context, name string) (*model.Model, error) {
	data, err := s.rc.Get(ctx, s.keyFor(name)).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("retrieving model %q: %w", name, ErrModelNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("retrieving model %q from redis: %v", name, err)
	}
	m, err := modeljson.ReadJSONModel(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("retrieving model %q: decoding model: %v", name, err)
	}
	return m, nil
}

// Delete removes the model stored under the given name. It returns
// an error wrapping ErrModelNotFound if the name is unknown.
func (s *Store) Delete(ctx context.Context, name string) error {
	removed, err := s.rc.Del(ctx, s.keyFor(name)).Result()
	if err != nil {
		return fmt.Errorf("deleting model %q from redis: %v", name, err)
	}
	if removed == 0 {
		return fmt.Errorf("deleting model %q: %w", name, ErrModelNotFound)
	}
	return nil
}

func (s *Store) keyFor(name string) string {
	return fmt.Sprintf("%s:%s", s.prefix, name)
}
