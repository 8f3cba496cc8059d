// Package sqlite provides a SQLite-backed icon storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/iconhost/internal/platform/icons"
	sqlitemigrate "github.com/louisbranch/iconhost/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/iconhost/internal/services/iconhost/storage"
	"github.com/louisbranch/iconhost/internal/services/iconhost/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists imported icons in SQLite. It also serves them as an icon
// library so resolvers can look them up.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite icon store and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlitemigrate.ApplyMigrations(ctx, sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

// normalize validates icon and returns it with trimmed descriptive fields, a
// normalized SVG document and filled timestamps. Names are stored exactly as
// given.
func normalize(icon storage.Icon) (storage.Icon, error) {
	if strings.TrimSpace(icon.Name) == "" {
		return storage.Icon{}, fmt.Errorf("icon name is required")
	}
	if icon.Name != strings.TrimSpace(icon.Name) {
		return storage.Icon{}, fmt.Errorf("icon name %q has surrounding whitespace", icon.Name)
	}
	icon.Label = strings.TrimSpace(icon.Label)
	icon.Description = strings.TrimSpace(icon.Description)
	icon.Source = strings.TrimSpace(icon.Source)
	asset, err := icons.ParseSVG(icon.Name, icon.SVG)
	if err != nil {
		return storage.Icon{}, err
	}
	icon.SVG = asset.Document()

	now := time.Now().UTC()
	if icon.CreatedAt.IsZero() {
		icon.CreatedAt = now
	}
	if icon.UpdatedAt.IsZero() {
		icon.UpdatedAt = icon.CreatedAt
	}
	return icon, nil
}

// CreateIcon inserts one icon record. It fails with storage.ErrAlreadyExists
// when the name is taken.
func (s *Store) CreateIcon(ctx context.Context, icon storage.Icon) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	icon, err := normalize(icon)
	if err != nil {
		return err
	}
	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO icons (name, label, description, source, svg, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		icon.Name,
		icon.Label,
		icon.Description,
		icon.Source,
		icon.SVG,
		toMillis(icon.CreatedAt),
		toMillis(icon.UpdatedAt),
	)
	if err != nil {
		if isIconUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create icon: %w", err)
	}
	return nil
}

// PutIcon inserts or replaces one icon record, keeping the original
// creation time on replace.
func (s *Store) PutIcon(ctx context.Context, icon storage.Icon) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	icon, err := normalize(icon)
	if err != nil {
		return err
	}
	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO icons (name, label, description, source, svg, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   label = excluded.label,
		   description = excluded.description,
		   source = excluded.source,
		   svg = excluded.svg,
		   updated_at = excluded.updated_at`,
		icon.Name,
		icon.Label,
		icon.Description,
		icon.Source,
		icon.SVG,
		toMillis(icon.CreatedAt),
		toMillis(icon.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put icon: %w", err)
	}
	return nil
}

// GetIcon returns one icon by exact name.
func (s *Store) GetIcon(ctx context.Context, name string) (storage.Icon, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Icon{}, err
	}
	var (
		icon      storage.Icon
		createdAt int64
		updatedAt int64
	)
	err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT name, label, description, source, svg, created_at, updated_at
		   FROM icons
		  WHERE name = ?`,
		name,
	).Scan(&icon.Name, &icon.Label, &icon.Description, &icon.Source, &icon.SVG, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Icon{}, storage.ErrNotFound
		}
		return storage.Icon{}, fmt.Errorf("get icon: %w", err)
	}
	icon.CreatedAt = fromMillis(createdAt)
	icon.UpdatedAt = fromMillis(updatedAt)
	return icon, nil
}

// ListIcons returns one page of icons ordered by name. The page token is the
// last name of the previous page.
func (s *Store) ListIcons(ctx context.Context, pageSize int, pageToken string) (storage.IconPage, error) {
	if err := s.ready(ctx); err != nil {
		return storage.IconPage{}, err
	}
	if pageSize <= 0 {
		return storage.IconPage{}, fmt.Errorf("page size must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT name, label, description, source, svg, created_at, updated_at
		   FROM icons
		  WHERE name > ?
		  ORDER BY name ASC
		  LIMIT ?`,
		strings.TrimSpace(pageToken),
		pageSize+1,
	)
	if err != nil {
		return storage.IconPage{}, fmt.Errorf("list icons: %w", err)
	}
	defer rows.Close()

	page := storage.IconPage{Icons: make([]storage.Icon, 0, pageSize)}
	for rows.Next() {
		var (
			icon      storage.Icon
			createdAt int64
			updatedAt int64
		)
		if err := rows.Scan(&icon.Name, &icon.Label, &icon.Description, &icon.Source, &icon.SVG, &createdAt, &updatedAt); err != nil {
			return storage.IconPage{}, fmt.Errorf("scan icon: %w", err)
		}
		icon.CreatedAt = fromMillis(createdAt)
		icon.UpdatedAt = fromMillis(updatedAt)
		page.Icons = append(page.Icons, icon)
	}
	if err := rows.Err(); err != nil {
		return storage.IconPage{}, fmt.Errorf("iterate icons: %w", err)
	}
	if len(page.Icons) > pageSize {
		page.Icons = page.Icons[:pageSize]
		page.NextPageToken = page.Icons[pageSize-1].Name
	}
	return page, nil
}

// DeleteIcon removes one icon by exact name.
func (s *Store) DeleteIcon(ctx context.Context, name string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM icons WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete icon: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete icon: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Load returns the stored icon as an asset.
func (s *Store) Load(ctx context.Context, name string) (icons.Asset, error) {
	icon, err := s.GetIcon(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		return icons.Asset{}, fmt.Errorf("%w: %q", icons.ErrNotFound, name)
	}
	if err != nil {
		return icons.Asset{}, err
	}
	return icons.ParseSVG(icon.Name, icon.SVG)
}

// List returns definitions for every stored icon, ordered by name.
func (s *Store) List(ctx context.Context) ([]icons.Definition, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT name, label, description, source FROM icons ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list icon definitions: %w", err)
	}
	defer rows.Close()

	var defs []icons.Definition
	for rows.Next() {
		var def icons.Definition
		if err := rows.Scan(&def.Name, &def.Label, &def.Description, &def.Source); err != nil {
			return nil, fmt.Errorf("scan icon definition: %w", err)
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate icon definitions: %w", err)
	}
	return defs, nil
}

func isIconUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "icons.name")
}

var (
	_ storage.IconStore = (*Store)(nil)
	_ icons.Library     = (*Store)(nil)
)
