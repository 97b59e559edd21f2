package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Shop is an installed store and its API session.
type Shop struct {
	ID          string     `json:"id" gorm:"type:uuid;primary_key"`
	Domain      string     `json:"domain" gorm:"unique;not null"`
	AccessToken string     `json:"-" gorm:"not null"`
	Scope       string     `json:"scope"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Currency    string     `json:"currency" gorm:"default:USD"`
	InstalledAt time.Time  `json:"installed_at"`
	LastSync    *time.Time `json:"last_sync"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (s *Shop) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}
