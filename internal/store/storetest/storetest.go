// Package storetest provides in-memory store implementations with the same
// contract as the gorm-backed stores: case-insensitive substring search,
// optimistic version checks and idempotent deletes.
package storetest

import (
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"movie-catalog/internal/model"
	"movie-catalog/internal/query"
	"movie-catalog/internal/store"
)

// UserStore is an in-memory store.UserStore.
type UserStore struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]model.User

	// Countries resolves country names for search; optional.
	CountriesByID map[uint]model.Country
}

// NewUserStore creates an empty in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[uint]model.User), CountriesByID: make(map[uint]model.Country)}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func (s *UserStore) Search(search string, page, pageSize int) (query.PagedResult[model.User], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []model.User
	for _, u := range s.users {
		if u.DeletedAt.Valid {
			continue
		}
		countryName := ""
		if c, ok := s.CountriesByID[u.CountryID]; ok {
			countryName = c.Name
		}
		if search == "" ||
			containsFold(u.Username, search) ||
			containsFold(u.FirstName, search) ||
			containsFold(u.LastName, search) ||
			containsFold(u.Email, search) ||
			(countryName != "" && containsFold(countryName, search)) {
			matched = append(matched, u)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := int64(len(matched))
	return query.NewPagedResult(slicePage(matched, page, pageSize), page, pageSize, total), nil
}

func (s *UserStore) FindByID(id uint) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.DeletedAt.Valid {
		return nil, store.ErrNotFound
	}
	copied := u
	return &copied, nil
}

func (s *UserStore) FindByUsername(username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username && !u.DeletedAt.Valid {
			copied := u
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *UserStore) UsernameTaken(username string) (bool, error) {
	_, err := s.FindByUsername(username)
	if err == store.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (s *UserStore) Create(user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	user.ID = s.nextID
	if user.Version == 0 {
		user.Version = 1
	}
	s.users[user.ID] = *user
	return nil
}

func (s *UserStore) Update(user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.users[user.ID]
	if !ok || current.DeletedAt.Valid {
		return store.ErrNotFound
	}
	if current.Version != user.Version {
		return store.ErrConflict
	}
	user.Version++
	s.users[user.ID] = *user
	return nil
}

// Delete marks the user deleted but keeps the row, mirroring the gorm soft
// delete. The username becomes available again for new registrations.
func (s *UserStore) Delete(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
		s.users[id] = u
	}
	return nil
}

// Len reports the number of live (non-deleted) users.
func (s *UserStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, u := range s.users {
		if !u.DeletedAt.Valid {
			n++
		}
	}
	return n
}

// VideoStore is an in-memory store.VideoStore.
type VideoStore struct {
	mu     sync.Mutex
	nextID uint
	videos map[uint]model.Video

	// GenresByID resolves genre names for search; optional.
	GenresByID map[uint]model.Genre
}

// NewVideoStore creates an empty in-memory video store.
func NewVideoStore() *VideoStore {
	return &VideoStore{videos: make(map[uint]model.Video), GenresByID: make(map[uint]model.Genre)}
}

func (s *VideoStore) Search(search string, page, pageSize int) (query.PagedResult[model.Video], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []model.Video
	for _, v := range s.videos {
		genreName := ""
		if g, ok := s.GenresByID[v.GenreID]; ok {
			genreName = g.Name
		}
		if search == "" ||
			containsFold(v.Name, search) ||
			(genreName != "" && containsFold(genreName, search)) {
			matched = append(matched, v)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := int64(len(matched))
	return query.NewPagedResult(slicePage(matched, page, pageSize), page, pageSize, total), nil
}

func (s *VideoStore) FindByID(id uint) (*model.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.videos[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := v
	return &copied, nil
}

func (s *VideoStore) Create(video *model.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	video.ID = s.nextID
	if video.Version == 0 {
		video.Version = 1
	}
	s.videos[video.ID] = *video
	return nil
}

func (s *VideoStore) Update(video *model.Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.videos[video.ID]
	if !ok {
		return store.ErrNotFound
	}
	if current.Version != video.Version {
		return store.ErrConflict
	}
	video.Version++
	s.videos[video.ID] = *video
	return nil
}

func (s *VideoStore) Delete(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.videos, id)
	return nil
}

// Len reports the number of stored videos.
func (s *VideoStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.videos)
}

// ForceVersion overwrites the stored version of a video, simulating a
// concurrent writer.
func (s *VideoStore) ForceVersion(id uint, version int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.videos[id]; ok {
		v.Version = version
		s.videos[id] = v
	}
}

// LookupStore is an in-memory store.LookupStore.
type LookupStore struct {
	GenreList   []model.Genre
	CountryList []model.Country
	ImageList   []model.Image
}

func (s *LookupStore) Genres() ([]model.Genre, error) { return s.GenreList, nil }

func (s *LookupStore) Countries() ([]model.Country, error) { return s.CountryList, nil }

func (s *LookupStore) Images() ([]model.Image, error) { return s.ImageList, nil }

func slicePage[T any](items []T, page, pageSize int) []T {
	start := (page - 1) * pageSize
	if start >= len(items) {
		return nil
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
