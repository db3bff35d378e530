package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	// DiscordID is only set for staff who signed in through Discord.
	DiscordID     *string   `json:"-" gorm:"uniqueIndex"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Email         string    `json:"email" gorm:"uniqueIndex;not null"`
	Phone         string    `json:"phone"`
	BirthDate     time.Time `json:"birth_date" gorm:"type:date"`
	MaritalStatus string    `json:"marital_status" gorm:"type:varchar(16)"`
	PasswordHash  string    `json:"-"`
	IsAdmin       bool      `json:"is_admin" gorm:"default:false"`
	IsActive      bool      `json:"is_active" gorm:"default:true"`
}
