package models

import (
	"time"
)

// PushToken is keyed by the token string itself, so re-registration of the
// same token is a natural upsert and the three writers (registration,
// logout, failure cleanup) cannot lose each other's updates.
type PushToken struct {
	Token      string    `json:"token" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"index"`
	Platform   string    `json:"platform"` // "ios", "android", "web"
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at"`
}
