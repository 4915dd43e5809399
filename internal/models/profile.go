package models

import (
	"math"
	"time"
)

type ProfileDetail struct {
	ID               uint       `gorm:"primaryKey"`
	UserID           uint       `gorm:"uniqueIndex;not null"`
	User             User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Religion         string     `gorm:"type:varchar(100)"`
	Community        string     `gorm:"type:varchar(100)"` // caste
	MotherTongue     string     `gorm:"type:varchar(100)"`
	City             string     `gorm:"type:varchar(100)"`
	State            string     `gorm:"type:varchar(100)"`
	MaritalStatus    string     `gorm:"type:varchar(50)"`
	DateOfBirth      *time.Time `gorm:"type:date"`
	Height           int        // centimetres, 0 when unknown
	ProfilePhoto     string     `gorm:"type:varchar(500)"`
	IsProfileVisible bool       `gorm:"not null;index"`
	CreatedAt        time.Time  `gorm:"autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime"`
}

func (ProfileDetail) TableName() string {
	return "profile_details"
}

// AgeAt returns whole years between the date of birth and now, using a
// 365.25-day year. ok is false when no date of birth is recorded.
func (p *ProfileDetail) AgeAt(now time.Time) (age int, ok bool) {
	if p.DateOfBirth == nil {
		return 0, false
	}
	days := now.Sub(*p.DateOfBirth).Hours() / 24
	return int(math.Floor(days / 365.25)), true
}

// PartnerPreference holds what a profile owner is looking for.
// Nil ranges and empty strings place no constraint on that dimension.
type PartnerPreference struct {
	ID           uint   `gorm:"primaryKey"`
	ProfileID    uint   `gorm:"uniqueIndex;not null"`
	AgeMin       *int   `gorm:"column:age_min"`
	AgeMax       *int   `gorm:"column:age_max"`
	HeightMin    *int   `gorm:"column:height_min"`
	HeightMax    *int   `gorm:"column:height_max"`
	Religion     string `gorm:"type:varchar(100)"`
	Caste        string `gorm:"type:varchar(100)"`
	MotherTongue string `gorm:"type:varchar(100)"`
	City         string `gorm:"type:varchar(100)"`
	State        string `gorm:"type:varchar(100)"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (PartnerPreference) TableName() string {
	return "partner_preferences"
}

// HasAgeRange reports whether either age bound is set.
func (p *PartnerPreference) HasAgeRange() bool {
	return p.AgeMin != nil || p.AgeMax != nil
}

// HasHeightRange reports whether either height bound is set.
func (p *PartnerPreference) HasHeightRange() bool {
	return p.HeightMin != nil || p.HeightMax != nil
}

// Gallery visibility values
const (
	PhotoVisibilityPublic  = "public"
	PhotoVisibilityPremium = "premium"
	PhotoVisibilityHidden  = "hidden"
)

type PhotoGalleryEntry struct {
	ID             uint      `gorm:"primaryKey"`
	ProfileID      uint      `gorm:"not null;index"`
	ImageURL       string    `gorm:"type:varchar(500);not null"`
	IsProfilePhoto bool      `gorm:"default:false"`
	Visibility     string    `gorm:"type:varchar(20);default:'public'"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (PhotoGalleryEntry) TableName() string {
	return "photo_gallery"
}
