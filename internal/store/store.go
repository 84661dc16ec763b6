// Package store is the persistence gateway for the catalog. Handlers talk to
// the interfaces declared here; the gorm-backed implementations live in this
// package and in-memory fakes for tests live in storetest.
package store

import (
	"errors"

	"movie-catalog/internal/model"
	"movie-catalog/internal/query"
)

var (
	// ErrNotFound is returned when a record does not exist (or was deleted
	// concurrently while an update was in flight).
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when an update lost an optimistic concurrency
	// race: the record changed since it was read.
	ErrConflict = errors.New("record was modified concurrently")
)

// UserStore provides CRUD and search over user records. Users are soft
// deleted; every query here excludes deleted rows.
type UserStore interface {
	Search(search string, page, pageSize int) (query.PagedResult[model.User], error)
	FindByID(id uint) (*model.User, error)
	FindByUsername(username string) (*model.User, error)
	UsernameTaken(username string) (bool, error)
	Create(user *model.User) error
	Update(user *model.User) error
	Delete(id uint) error
}

// VideoStore provides CRUD and search over video records.
type VideoStore interface {
	Search(search string, page, pageSize int) (query.PagedResult[model.Video], error)
	FindByID(id uint) (*model.Video, error)
	Create(video *model.Video) error
	Update(video *model.Video) error
	Delete(id uint) error
}

// LookupStore lists the reference records used to populate forms.
type LookupStore interface {
	Genres() ([]model.Genre, error)
	Countries() ([]model.Country, error)
	Images() ([]model.Image, error)
}
