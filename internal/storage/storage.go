// Package storage persists small collections as a single JSON document so the
// medium (memory, file, SQLite) can be swapped without touching callers.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/iAm-AliHaider/real-estate-investment-calculator/pkg/constants"
	"github.com/jmoiron/sqlx"
)

// Collection loads and saves a whole list of items at once.
type Collection[T any] interface {
	Load() ([]T, error)
	Save(items []T) error
}

// Config selects a storage medium.
type Config struct {
	Driver string `yaml:"driver,omitempty"` // memory, json, sqlite
	Path   string `yaml:"path,omitempty"`   // directory for json, database file for sqlite
}

// Opener creates collections for keys on one configured medium. It shares a
// single database handle between keys.
type Opener struct {
	cfg Config

	mu     sync.Mutex
	db     *sqlx.DB
	memory map[string]any
}

// NewOpener validates cfg and returns an opener for it.
func NewOpener(cfg Config) (*Opener, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" {
		driver = constants.StorageDriverMemory
	}
	cfg.Driver = driver

	switch driver {
	case constants.StorageDriverMemory:
	case constants.StorageDriverJSON, constants.StorageDriverSQLite:
		if strings.TrimSpace(cfg.Path) == "" {
			return nil, fmt.Errorf("storage driver %s requires a path", driver)
		}
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
	return &Opener{cfg: cfg}, nil
}

// Driver returns the normalized driver name.
func (o *Opener) Driver() string {
	return o.cfg.Driver
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

const maxReadableKeyLength = 64

// fileName maps a key to a file name. The readable prefix is lossy, so the
// digest of the full key keeps distinct keys in distinct files.
func fileName(key string) string {
	readable := unsafeKeyChars.ReplaceAllString(key, "_")
	if len(readable) > maxReadableKeyLength {
		readable = readable[:maxReadableKeyLength]
	}
	sum := sha256.Sum256([]byte(key))
	return readable + "." + hex.EncodeToString(sum[:]) + ".json"
}

// Open returns the collection stored under key. Open is generic over the item
// type, so it is a function rather than a method.
func Open[T any](o *Opener, key string) (Collection[T], error) {
	switch o.cfg.Driver {
	case constants.StorageDriverJSON:
		return NewJSONFile[T](filepath.Join(o.cfg.Path, fileName(key))), nil
	case constants.StorageDriverSQLite:
		db, err := o.database()
		if err != nil {
			return nil, err
		}
		return NewSQLite[T](db, key), nil
	default:
		o.mu.Lock()
		defer o.mu.Unlock()
		if m, ok := o.memory[key].(*Memory[T]); ok {
			return m, nil
		}
		m := NewMemory[T]()
		if o.memory == nil {
			o.memory = make(map[string]any)
		}
		o.memory[key] = m
		return m, nil
	}
}

func (o *Opener) database() (*sqlx.DB, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.db != nil {
		return o.db, nil
	}
	db, err := OpenSQLiteDB(o.cfg.Path)
	if err != nil {
		return nil, err
	}
	o.db = db
	return db, nil
}

// Close releases the shared database handle, if any.
func (o *Opener) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.db == nil {
		return nil
	}
	err := o.db.Close()
	o.db = nil
	return err
}
