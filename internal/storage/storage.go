package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	KeyUser     = "user"
	KeyMessages = "messages"
)

var (
	ErrNotFound  = errors.New("key not found")
	ErrMalformed = errors.New("malformed stored value")
)

// Storage is a flat text key-value store. Every Set overwrites the whole value.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// GetJSON decodes the value under key into v. A value that does not decode
// is reported as ErrMalformed.
func GetJSON(ctx context.Context, s Storage, key string, v any) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("%w: key %q: %v", ErrMalformed, key, err)
	}
	return nil
}

func SetJSON(ctx context.Context, s Storage, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("error encoding %q: %w", key, err)
	}
	return s.Set(ctx, key, string(data))
}

type namespaced struct {
	Storage
	prefix string
}

// Namespace prefixes every key so several sessions can share one backend.
// Closing the returned store does not close the underlying one.
func Namespace(s Storage, prefix string) Storage {
	return &namespaced{Storage: s, prefix: prefix}
}

func (n *namespaced) Get(ctx context.Context, key string) (string, error) {
	return n.Storage.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key, value string) error {
	return n.Storage.Set(ctx, n.prefix+key, value)
}

func (n *namespaced) Delete(ctx context.Context, key string) error {
	return n.Storage.Delete(ctx, n.prefix+key)
}

func (n *namespaced) Close() error {
	return nil
}
