package models

import (
	"time"
)

type Session struct {
	ID         string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID     uint       `json:"user_id" gorm:"index"`
	User       User       `json:"user"`
	ExpiresAt  time.Time  `json:"expires_at" gorm:"index"`
	LastUsedAt *time.Time `json:"last_used_at"`
	CreatedAt  time.Time  `json:"created_at"`
}
