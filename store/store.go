// Package store persists editor content in named string slots, the way the
// browser playground keeps code in local storage.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Slot names shared with the browser playground's local storage keys.
const (
	SlotCode     = "python-ide-code"
	SlotAutosave = "python-ide-autosave"
)

// Backend drivers accepted by Open.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

var (
	// ErrNotFound is returned for a slot that holds nothing.
	ErrNotFound = errors.New("nothing saved")
	// ErrUnknownDriver is returned by Open.
	ErrUnknownDriver = errors.New("unknown store driver")
	// ErrInvalidKey is returned for empty keys.
	ErrInvalidKey = errors.New("invalid key")
)

// Backend is a string key-value store.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open returns a backend for driver. path is the file or database path and
// is ignored by the memory driver.
func Open(driver, path string) (Backend, error) {
	switch strings.ToLower(driver) {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverFile:
		return OpenFile(path)
	case DriverSQLite:
		return OpenSQLite(path)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
}

func checkKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	return nil
}

// scoped prefixes every key with a namespace so several workspaces can
// share one backend.
type scoped struct {
	backend Backend
	prefix  string
}

// Scope returns a view of b whose keys live under namespace. Closing the
// view does not close b.
func Scope(b Backend, namespace string) Backend {
	if namespace == "" {
		return b
	}
	return &scoped{backend: b, prefix: namespace + "/"}
}

func (s *scoped) Get(ctx context.Context, key string) (string, error) {
	if err := checkKey(key); err != nil {
		return "", err
	}
	return s.backend.Get(ctx, s.prefix+key)
}

func (s *scoped) Set(ctx context.Context, key, value string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	return s.backend.Set(ctx, s.prefix+key, value)
}

func (s *scoped) Delete(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	return s.backend.Delete(ctx, s.prefix+key)
}

func (s *scoped) Close() error { return nil }
