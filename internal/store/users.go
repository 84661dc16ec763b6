package store

import (
	"errors"
	"fmt"

	"movie-catalog/internal/model"
	"movie-catalog/internal/query"

	"gorm.io/gorm"
)

// GormUserStore implements UserStore on top of a gorm connection.
type GormUserStore struct {
	db *gorm.DB
}

// NewGormUserStore creates a user store backed by db.
func NewGormUserStore(db *gorm.DB) *GormUserStore {
	return &GormUserStore{db: db}
}

// Search returns one page of users matching the search string with a
// case-insensitive substring test across username, first name, last name,
// email and country name. An empty search string matches everything.
func (s *GormUserStore) Search(search string, page, pageSize int) (query.PagedResult[model.User], error) {
	q := s.db.Model(&model.User{}).
		Joins("LEFT JOIN countries ON countries.id = users.country_id")

	if search != "" {
		like := "%" + search + "%"
		q = q.Where(
			"users.username ILIKE ? OR users.first_name ILIKE ? OR users.last_name ILIKE ? OR users.email ILIKE ? OR countries.name ILIKE ?",
			like, like, like, like, like,
		)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return query.PagedResult[model.User]{}, fmt.Errorf("failed to count users: %w", err)
	}

	var users []model.User
	err := q.Preload("Country").
		Order("users.id").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&users).Error
	if err != nil {
		return query.PagedResult[model.User]{}, fmt.Errorf("failed to list users: %w", err)
	}

	return query.NewPagedResult(users, page, pageSize, total), nil
}

// FindByID loads a user with its country preloaded.
func (s *GormUserStore) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := s.db.Preload("Country").First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user %d: %w", id, err)
	}
	return &user, nil
}

func (s *GormUserStore) FindByUsername(username string) (*model.User, error) {
	var user model.User
	err := s.db.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user %q: %w", username, err)
	}
	return &user, nil
}

// UsernameTaken reports whether a non-deleted user already holds username.
func (s *GormUserStore) UsernameTaken(username string) (bool, error) {
	var count int64
	if err := s.db.Model(&model.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check username %q: %w", username, err)
	}
	return count > 0, nil
}

func (s *GormUserStore) Create(user *model.User) error {
	if err := s.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Update saves the allow-listed profile fields under an optimistic version
// check. A stale version resolves to ErrNotFound when the row vanished and
// ErrConflict when it was modified concurrently.
func (s *GormUserStore) Update(user *model.User) error {
	result := s.db.Model(&model.User{}).
		Where("id = ? AND version = ?", user.ID, user.Version).
		Updates(map[string]interface{}{
			"username":   user.Username,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"email":      user.Email,
			"phone":      user.Phone,
			"country_id": user.CountryID,
			"version":    user.Version + 1,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update user %d: %w", user.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := s.db.Model(&model.User{}).Where("id = ?", user.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to re-check user %d: %w", user.ID, err)
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrConflict
	}
	user.Version++
	return nil
}

// Delete soft-deletes the user. Deleting an id that is already gone is not
// an error.
func (s *GormUserStore) Delete(id uint) error {
	if err := s.db.Delete(&model.User{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	return nil
}
