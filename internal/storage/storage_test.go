package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type record struct {
	ID     string            `json:"id"`
	Name   string            `json:"name"`
	Values map[string]string `json:"values"`
}

func sampleRecords() []record {
	return []record{
		{ID: "1", Name: "Downtown", Values: map[string]string{"numberOfUnits": "25"}},
		{ID: "2", Name: "Suburb", Values: map[string]string{"numberOfUnits": "40"}},
	}
}

func exerciseCollection(t *testing.T, c Collection[record]) {
	t.Helper()

	items, err := c.Load()
	if err != nil {
		t.Fatalf("Load() on empty collection error = %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty collection, got %d items", len(items))
	}

	if err := c.Save(sampleRecords()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	items, err = c.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(items) != 2 || items[0].Name != "Downtown" || items[1].Values["numberOfUnits"] != "40" {
		t.Fatalf("unexpected items after round trip: %+v", items)
	}

	if err := c.Save(items[:1]); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	items, err = c.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item after overwrite, got %d", len(items))
	}

	if err := c.Save(nil); err != nil {
		t.Fatalf("Save(nil) error = %v", err)
	}
	items, err = c.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty collection after saving nil, got %d items", len(items))
	}
}

func TestMemoryCollection(t *testing.T) {
	exerciseCollection(t, NewMemory[record]())
}

func TestMemoryCollectionCorruptData(t *testing.T) {
	m := NewMemory[record]()
	m.SetRaw([]byte("{not json"))
	if _, err := m.Load(); err == nil {
		t.Fatal("expected decode error for corrupt data")
	}
}

func TestJSONFileCollection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "scenarios.json")
	exerciseCollection(t, NewJSONFile[record](path))

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file to exist after save: %v", err)
	}
}

func TestJSONFileCollectionCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenarios.json")
	if err := os.WriteFile(path, []byte("[{]"), 0600); err != nil {
		t.Fatalf("failed to write corrupt file: %v", err)
	}
	if _, err := NewJSONFile[record](path).Load(); err == nil {
		t.Fatal("expected error for corrupt file")
	}
}

func TestSQLiteCollection(t *testing.T) {
	db, err := OpenSQLiteDB(filepath.Join(t.TempDir(), "scenarios.db"))
	if err != nil {
		t.Fatalf("OpenSQLiteDB() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	exerciseCollection(t, NewSQLite[record](db, "customScenarios"))

	// Keys are independent.
	a := NewSQLite[record](db, "customScenarios/a@example.com")
	b := NewSQLite[record](db, "customScenarios/b@example.com")
	if err := a.Save(sampleRecords()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	items, err := b.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected key b to be empty, got %d items", len(items))
	}
}

func TestOpenerMemoryKeepsCollectionPerKey(t *testing.T) {
	opener, err := NewOpener(Config{})
	if err != nil {
		t.Fatalf("NewOpener() error = %v", err)
	}
	first, _ := Open[record](opener, "k")
	if err := first.Save(sampleRecords()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	second, _ := Open[record](opener, "k")
	items, err := second.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected reopened memory collection to keep 2 items, got %d", len(items))
	}
}

func TestOpener(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"default memory", Config{}, false},
		{"json", Config{Driver: "json", Path: t.TempDir()}, false},
		{"sqlite", Config{Driver: "SQLite", Path: filepath.Join(t.TempDir(), "kv.db")}, false},
		{"json without path", Config{Driver: "json"}, true},
		{"unknown driver", Config{Driver: "redis", Path: "x"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opener, err := NewOpener(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewOpener() error = %v", err)
			}
			defer func() { _ = opener.Close() }()

			c, err := Open[record](opener, "customScenarios/user@example.com")
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			exerciseCollection(t, c)
		})
	}
}

func TestOpenerKeepsSimilarKeysApart(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"memory", Config{}},
		{"json", Config{Driver: "json", Path: t.TempDir()}},
		{"sqlite", Config{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "kv.db")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opener, err := NewOpener(tt.cfg)
			if err != nil {
				t.Fatalf("NewOpener() error = %v", err)
			}
			defer func() { _ = opener.Close() }()

			a, err := Open[record](opener, "customScenarios/a@example.com")
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			b, err := Open[record](opener, "customScenarios/a_example.com")
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}

			if err := a.Save(sampleRecords()); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			items, err := b.Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if len(items) != 0 {
				t.Fatalf("expected the second key to stay empty, got %+v", items)
			}
		})
	}
}

func TestFileName(t *testing.T) {
	first := fileName("customScenarios/a@example.com")
	second := fileName("customScenarios/a_example.com")
	if first == second {
		t.Fatalf("distinct keys share file %q", first)
	}
	if !strings.HasPrefix(first, "customScenarios_a_example.com.") || !strings.HasSuffix(first, ".json") {
		t.Errorf("unexpected file name %q", first)
	}
	if strings.ContainsAny(first, `/\@`) {
		t.Errorf("file name %q contains unsafe characters", first)
	}

	long := fileName(strings.Repeat("k", 500))
	if len(long) > 255 {
		t.Errorf("file name too long: %d bytes", len(long))
	}
}
