package model

import (
	"time"
)

// Video represents a catalog entry for a streamable movie
type Video struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"type:varchar(255);not null"`
	Description  string    `json:"description" gorm:"type:text"`
	TotalSeconds int       `json:"total_seconds"`
	StreamingURL string    `json:"streaming_url" gorm:"type:varchar(512)"`
	GenreID      uint      `json:"genre_id" gorm:"index"`
	Genre        *Genre    `json:"genre,omitempty" gorm:"foreignKey:GenreID"`
	ImageID      uint      `json:"image_id" gorm:"index"`
	Image        *Image    `json:"image,omitempty" gorm:"foreignKey:ImageID"`
	Version      int       `json:"version" gorm:"default:1"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
