// Package cache stores rendered lowering results in a SQLite database
// keyed by the fixture source, the naming configuration and the lowering
// version, so unchanged fixtures are not lowered again.
package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// formatVersion is bumped when the lowering output changes, so stale
// entries stop matching.
const formatVersion = "v1"

// keySpace namespaces cache keys.
var keySpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/funvibe/caselower/cache"))

const schema = `
CREATE TABLE IF NOT EXISTS results (
	key         TEXT PRIMARY KEY,
	fixture     TEXT NOT NULL,
	format      TEXT NOT NULL,
	output      TEXT NOT NULL,
	diagnostics TEXT NOT NULL,
	created_at  INTEGER NOT NULL
)`

// Entry is one cached result.
type Entry struct {
	Fixture     string
	Output      string
	Diagnostics []string
	CreatedAt   time.Time
}

// Cache manages the result database.
type Cache struct {
	db   *sql.DB
	path string
}

// DefaultPath is the cache location inside a project directory.
func DefaultPath(projectDir string) string {
	return filepath.Join(projectDir, ".caselower", "cache.db")
}

// Open opens or creates the database at path.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	// one writer; the driver serialises on the file anyway
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return &Cache{db: db, path: path}, nil
}

// Path returns the database file.
func (c *Cache) Path() string { return c.path }

// Close releases the database.
func (c *Cache) Close() error { return c.db.Close() }

// Key derives the cache key of a fixture rendered in format under the
// given configuration fingerprint.
func Key(source, configData []byte, format string) string {
	var b strings.Builder
	b.Write(source)
	b.WriteString("\x00")
	b.Write(configData)
	b.WriteString("\x00")
	b.WriteString(format)
	b.WriteString("\x00")
	b.WriteString(formatVersion)
	return uuid.NewSHA1(keySpace, []byte(b.String())).String()
}

// Lookup returns the entry stored under key, or nil when there is none.
func (c *Cache) Lookup(key string) (*Entry, error) {
	var (
		e     Entry
		diags string
		at    int64
	)
	err := c.db.QueryRow(
		`SELECT fixture, output, diagnostics, created_at FROM results WHERE key = ?`, key,
	).Scan(&e.Fixture, &e.Output, &diags, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}
	if diags != "" {
		e.Diagnostics = strings.Split(diags, "\n")
	}
	e.CreatedAt = time.Unix(at, 0)
	return &e, nil
}

// Store records a result under key, replacing any previous one.
func (c *Cache) Store(key, format string, e *Entry) error {
	at := e.CreatedAt
	if at.IsZero() {
		at = time.Now()
	}
	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO results (key, fixture, format, output, diagnostics, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		key, e.Fixture, format, e.Output, strings.Join(e.Diagnostics, "\n"), at.Unix(),
	)
	if err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	return nil
}

// Len returns the number of stored entries.
func (c *Cache) Len() (int, error) {
	var n int
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM results`).Scan(&n); err != nil {
		return 0, fmt.Errorf("reading cache: %w", err)
	}
	return n, nil
}

// Clean removes every entry.
func (c *Cache) Clean() error {
	if _, err := c.db.Exec(`DELETE FROM results`); err != nil {
		return fmt.Errorf("cleaning cache: %w", err)
	}
	return nil
}

// Fingerprint normalises a configuration file for use in Key: trailing
// whitespace on each line and trailing newlines do not change the key.
// A missing file fingerprints as empty.
func Fingerprint(configPath string) ([]byte, error) {
	if configPath == "" {
		return nil, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	lines := strings.Split(string(data), "\n")
	var normalized strings.Builder
	for _, line := range lines {
		normalized.WriteString(strings.TrimRight(line, " \t\r"))
		normalized.WriteString("\n")
	}
	return []byte(strings.TrimRight(normalized.String(), "\n")), nil
}
