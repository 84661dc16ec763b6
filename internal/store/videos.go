package store

import (
	"errors"
	"fmt"

	"movie-catalog/internal/model"
	"movie-catalog/internal/query"

	"gorm.io/gorm"
)

// GormVideoStore implements VideoStore on top of a gorm connection.
type GormVideoStore struct {
	db *gorm.DB
}

// NewGormVideoStore creates a video store backed by db.
func NewGormVideoStore(db *gorm.DB) *GormVideoStore {
	return &GormVideoStore{db: db}
}

// Search returns one page of videos whose name or genre name contains the
// search string, case-insensitively. An empty search string matches
// everything.
func (s *GormVideoStore) Search(search string, page, pageSize int) (query.PagedResult[model.Video], error) {
	q := s.db.Model(&model.Video{}).
		Joins("LEFT JOIN genres ON genres.id = videos.genre_id")

	if search != "" {
		like := "%" + search + "%"
		q = q.Where("videos.name ILIKE ? OR genres.name ILIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return query.PagedResult[model.Video]{}, fmt.Errorf("failed to count videos: %w", err)
	}

	var videos []model.Video
	err := q.Preload("Genre").Preload("Image").
		Order("videos.id").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&videos).Error
	if err != nil {
		return query.PagedResult[model.Video]{}, fmt.Errorf("failed to list videos: %w", err)
	}

	return query.NewPagedResult(videos, page, pageSize, total), nil
}

// FindByID loads a video with its genre and image preloaded.
func (s *GormVideoStore) FindByID(id uint) (*model.Video, error) {
	var video model.Video
	err := s.db.Preload("Genre").Preload("Image").First(&video, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load video %d: %w", id, err)
	}
	return &video, nil
}

func (s *GormVideoStore) Create(video *model.Video) error {
	if err := s.db.Create(video).Error; err != nil {
		return fmt.Errorf("failed to create video: %w", err)
	}
	return nil
}

// Update saves the allow-listed fields under an optimistic version check.
// A stale version resolves to ErrNotFound when the row vanished and
// ErrConflict when it was modified concurrently.
func (s *GormVideoStore) Update(video *model.Video) error {
	result := s.db.Model(&model.Video{}).
		Where("id = ? AND version = ?", video.ID, video.Version).
		Updates(map[string]interface{}{
			"name":          video.Name,
			"description":   video.Description,
			"total_seconds": video.TotalSeconds,
			"streaming_url": video.StreamingURL,
			"genre_id":      video.GenreID,
			"image_id":      video.ImageID,
			"version":       video.Version + 1,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update video %d: %w", video.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := s.db.Model(&model.Video{}).Where("id = ?", video.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to re-check video %d: %w", video.ID, err)
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrConflict
	}
	video.Version++
	return nil
}

// Delete removes the video row. Deleting an id that is already gone is not
// an error.
func (s *GormVideoStore) Delete(id uint) error {
	if err := s.db.Delete(&model.Video{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete video %d: %w", id, err)
	}
	return nil
}
