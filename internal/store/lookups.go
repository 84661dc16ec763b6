package store

import (
	"fmt"

	"movie-catalog/internal/model"

	"gorm.io/gorm"
)

// GormLookupStore implements LookupStore on top of a gorm connection.
type GormLookupStore struct {
	db *gorm.DB
}

// NewGormLookupStore creates a lookup store backed by db.
func NewGormLookupStore(db *gorm.DB) *GormLookupStore {
	return &GormLookupStore{db: db}
}

func (s *GormLookupStore) Genres() ([]model.Genre, error) {
	var genres []model.Genre
	if err := s.db.Order("name").Find(&genres).Error; err != nil {
		return nil, fmt.Errorf("failed to list genres: %w", err)
	}
	return genres, nil
}

func (s *GormLookupStore) Countries() ([]model.Country, error) {
	var countries []model.Country
	if err := s.db.Order("name").Find(&countries).Error; err != nil {
		return nil, fmt.Errorf("failed to list countries: %w", err)
	}
	return countries, nil
}

func (s *GormLookupStore) Images() ([]model.Image, error) {
	var images []model.Image
	if err := s.db.Order("id").Find(&images).Error; err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	return images, nil
}
