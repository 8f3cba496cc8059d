// Package storage defines persistence contracts for imported icon packs.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested icon record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates an icon with the same name is stored.
	ErrAlreadyExists = errors.New("record already exists")
)

// Icon stores one imported icon.
type Icon struct {
	Name        string
	Label       string
	Description string
	// Source names the pack the icon was imported from.
	Source string
	// SVG is the normalized SVG document.
	SVG       []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IconPage stores one page of icon records ordered by name.
type IconPage struct {
	Icons         []Icon
	NextPageToken string
}

// IconStore persists icon records.
type IconStore interface {
	CreateIcon(ctx context.Context, icon Icon) error
	PutIcon(ctx context.Context, icon Icon) error
	GetIcon(ctx context.Context, name string) (Icon, error)
	ListIcons(ctx context.Context, pageSize int, pageToken string) (IconPage, error)
	DeleteIcon(ctx context.Context, name string) error
}
