package models

import (
	"time"
)

// ProfileView records the first time a viewer opened a profile.
// Repeat views of the same profile reuse the row and cost nothing.
type ProfileView struct {
	ID        uint      `gorm:"primaryKey"`
	ViewerID  uint      `gorm:"not null;index:idx_profile_view_pair,unique"`
	ViewedID  uint      `gorm:"not null;index:idx_profile_view_pair,unique"`
	ViewedAt  time.Time `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (ProfileView) TableName() string {
	return "profile_views"
}
