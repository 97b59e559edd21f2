package database

import (
	"fmt"

	"linkback/internal/models"

	"gorm.io/gorm"
)

// SessionStore looks up and persists installed shops and their access tokens.
type SessionStore struct {
	db *gorm.DB
}

func NewSessionStore(db *gorm.DB) *SessionStore {
	return &SessionStore{db: db}
}

// AccessToken returns the stored token for a shop domain, or "" when the shop
// is not installed.
func (s *SessionStore) AccessToken(shopDomain string) (string, error) {
	var shop models.Shop
	err := s.db.Where("domain = ?", shopDomain).First(&shop).Error
	if err == gorm.ErrRecordNotFound {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up shop %s: %w", shopDomain, err)
	}
	return shop.AccessToken, nil
}

func (s *SessionStore) Shop(shopDomain string) (*models.Shop, error) {
	var shop models.Shop
	if err := s.db.Where("domain = ?", shopDomain).First(&shop).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

// UpsertShop stores a newly installed shop or refreshes the session of an
// existing one.
func (s *SessionStore) UpsertShop(shop *models.Shop) error {
	var existing models.Shop
	err := s.db.Where("domain = ?", shop.Domain).First(&existing).Error

	if err == gorm.ErrRecordNotFound {
		return s.db.Create(shop).Error
	} else if err == nil {
		shop.ID = existing.ID
		shop.CreatedAt = existing.CreatedAt
		return s.db.Save(shop).Error
	}

	return err
}
