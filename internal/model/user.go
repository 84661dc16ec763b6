package model

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered account in the catalog
type User struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	// Uniqueness is enforced by a partial index scoped to live rows (see
	// database.InitDB); a tag-level unique index would keep soft-deleted
	// usernames reserved forever.
	Username      string         `json:"username" gorm:"type:varchar(50);index"`
	FirstName     string         `json:"first_name" gorm:"type:varchar(100)"`
	LastName      string         `json:"last_name" gorm:"type:varchar(100)"`
	Email         string         `json:"email" gorm:"type:varchar(100)"`
	PwdHash       string         `json:"-" gorm:"type:varchar(255)"` // Never expose the password hash in JSON responses
	PwdSalt       string         `json:"-" gorm:"type:varchar(255)"`
	Phone         *string        `json:"phone,omitempty" gorm:"type:varchar(30)"`
	IsConfirmed   bool           `json:"is_confirmed" gorm:"default:false"`
	SecurityToken string         `json:"-" gorm:"type:varchar(64)"`
	Role          string         `json:"role" gorm:"type:varchar(20);default:'member'"`
	CountryID     uint           `json:"country_id" gorm:"index"`
	Country       *Country       `json:"country,omitempty" gorm:"foreignKey:CountryID"`
	Version       int            `json:"version" gorm:"default:1"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}
