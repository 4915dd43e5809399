package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID             uint      `gorm:"primaryKey"`
	FullName       string    `gorm:"type:varchar(255);not null"`
	Email          string    `gorm:"type:varchar(255);uniqueIndex"`
	Gender         string    `gorm:"type:varchar(10);not null"`
	Status         string    `gorm:"type:varchar(20);default:'active'"`
	TelegramChatID int64     `gorm:"default:0"` // 0 when no chat is linked
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

// User status constants
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// OppositeGender returns the gender a user is matched against.
// Anything other than male is matched with male profiles.
func OppositeGender(gender string) string {
	if strings.EqualFold(strings.TrimSpace(gender), GenderMale) {
		return GenderFemale
	}
	return GenderMale
}

// BeforeSave hook for validation and normalization
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Gender = strings.ToLower(strings.TrimSpace(u.Gender))
	if u.Gender != GenderMale && u.Gender != GenderFemale {
		return gorm.ErrInvalidData
	}

	if u.Status == "" {
		u.Status = UserStatusActive
	}
	if u.Status != UserStatusActive && u.Status != UserStatusInactive {
		return gorm.ErrInvalidData
	}

	return nil
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}
