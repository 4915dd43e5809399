package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/787516/Matrimonial/internal/database"
	"github.com/787516/Matrimonial/internal/models"
	"gorm.io/gorm"
)

// Member is a user together with their profile.
type Member struct {
	User    models.User
	Profile models.ProfileDetail
}

// ProfileOption tweaks a profile before it is stored.
type ProfileOption func(*models.ProfileDetail)

func WithReligion(religion string) ProfileOption {
	return func(p *models.ProfileDetail) { p.Religion = religion }
}

func WithCommunity(community string) ProfileOption {
	return func(p *models.ProfileDetail) { p.Community = community }
}

func WithMotherTongue(tongue string) ProfileOption {
	return func(p *models.ProfileDetail) { p.MotherTongue = tongue }
}

func WithLocation(city, state string) ProfileOption {
	return func(p *models.ProfileDetail) {
		p.City = city
		p.State = state
	}
}

// WithAge sets a date of birth that yields age years today.
func WithAge(age int) ProfileOption {
	return func(p *models.ProfileDetail) {
		dob := time.Now().UTC().AddDate(-age, 0, -10)
		p.DateOfBirth = &dob
	}
}

func WithHeight(cm int) ProfileOption {
	return func(p *models.ProfileDetail) { p.Height = cm }
}

func WithPhoto(url string) ProfileOption {
	return func(p *models.ProfileDetail) { p.ProfilePhoto = url }
}

func Hidden() ProfileOption {
	return func(p *models.ProfileDetail) { p.IsProfileVisible = false }
}

var memberSeq int

// CreateMember stores a visible member of the given gender.
func CreateMember(t testing.TB, db *gorm.DB, name, gender string, opts ...ProfileOption) Member {
	t.Helper()

	memberSeq++
	user := models.User{
		FullName: name,
		Email:    fmt.Sprintf("%s.%d@example.com", name, memberSeq),
		Gender:   gender,
		Status:   models.UserStatusActive,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}

	profile := models.ProfileDetail{UserID: user.ID, IsProfileVisible: true}
	for _, opt := range opts {
		opt(&profile)
	}
	if err := db.Omit("User").Create(&profile).Error; err != nil {
		t.Fatalf("create profile %s: %v", name, err)
	}
	profile.User = user

	return Member{User: user, Profile: profile}
}

// SetPreference stores pref for the member's profile.
func SetPreference(t testing.TB, db *gorm.DB, m Member, pref models.PartnerPreference) models.PartnerPreference {
	t.Helper()

	pref.ProfileID = m.Profile.ID
	if err := db.Create(&pref).Error; err != nil {
		t.Fatalf("create preference: %v", err)
	}
	return pref
}

// SeedPlans stores the default plans.
func SeedPlans(t testing.TB, db *gorm.DB) {
	t.Helper()

	if err := database.SeedPlans(db); err != nil {
		t.Fatalf("SeedPlans() error = %v", err)
	}
}

func IntPtr(v int) *int {
	return &v
}
