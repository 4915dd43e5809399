package repositories

import (
	"context"
	"strings"

	"github.com/787516/Matrimonial/internal/models"
	"github.com/787516/Matrimonial/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepository reads profiles, partner preferences and gallery photos.
// The matchmaking core never writes through it; the write methods exist for
// the workbook importer and fixtures.
type ProfileRepository struct {
	store
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{store: newStore(db)}
}

// SearchFilter holds case-insensitive substring filters. Empty fields match
// everything.
type SearchFilter struct {
	Religion     string
	Caste        string
	MotherTongue string
	City         string
}

// GetProfile retrieves the profile of a user with the user preloaded
func (r *ProfileRepository) GetProfile(ctx context.Context, userID uint) (*models.ProfileDetail, error) {
	var profile models.ProfileDetail
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Preload("User").Where("user_id = ?", userID).First(&profile).Error
	})

	if err == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.ErrCodeNotFound, "profile not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to get profile")
	}
	return &profile, nil
}

// GetPreference returns the partner preference of a profile, or nil when
// the owner has not stated one.
func (r *ProfileRepository) GetPreference(ctx context.Context, profileID uint) (*models.PartnerPreference, error) {
	var prefs []models.PartnerPreference
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Where("profile_id = ?", profileID).Limit(1).Find(&prefs).Error
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to get partner preference")
	}
	if len(prefs) == 0 {
		return nil, nil
	}
	return &prefs[0], nil
}

// ListVisibleOppositeGender returns visible profiles whose owner has the
// given gender, skipping every user in excludeIDs.
func (r *ProfileRepository) ListVisibleOppositeGender(ctx context.Context, gender string, excludeIDs []uint) ([]models.ProfileDetail, error) {
	var profiles []models.ProfileDetail
	err := r.run(ctx, func(db *gorm.DB) error {
		q := db.Preload("User").
			Joins("JOIN users ON users.id = profile_details.user_id").
			Where("profile_details.is_profile_visible = ? AND users.gender = ?", true, gender)
		if len(excludeIDs) > 0 {
			q = q.Where("profile_details.user_id NOT IN ?", excludeIDs)
		}
		return q.Order("profile_details.id").Find(&profiles).Error
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to list candidate profiles")
	}
	return profiles, nil
}

// GetPreferencesFor loads the preferences of many profiles in one query,
// keyed by profile ID. Profiles without a preference are absent.
func (r *ProfileRepository) GetPreferencesFor(ctx context.Context, profileIDs []uint) (map[uint]*models.PartnerPreference, error) {
	out := make(map[uint]*models.PartnerPreference, len(profileIDs))
	if len(profileIDs) == 0 {
		return out, nil
	}

	var prefs []models.PartnerPreference
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Where("profile_id IN ?", profileIDs).Find(&prefs).Error
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to load partner preferences")
	}

	for i := range prefs {
		out[prefs[i].ProfileID] = &prefs[i]
	}
	return out, nil
}

// GetGalleryProfilePhotos returns, per profile ID, the first gallery image
// flagged as the profile photo. Hidden entries are skipped.
func (r *ProfileRepository) GetGalleryProfilePhotos(ctx context.Context, profileIDs []uint) (map[uint]string, error) {
	out := make(map[uint]string, len(profileIDs))
	if len(profileIDs) == 0 {
		return out, nil
	}

	var entries []models.PhotoGalleryEntry
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Where("profile_id IN ? AND is_profile_photo = ? AND visibility <> ?",
			profileIDs, true, models.PhotoVisibilityHidden).
			Order("id").Find(&entries).Error
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to load gallery photos")
	}

	for _, e := range entries {
		if _, ok := out[e.ProfileID]; !ok {
			out[e.ProfileID] = e.ImageURL
		}
	}
	return out, nil
}

// GetProfilesByUserIDs loads many profiles keyed by user ID.
func (r *ProfileRepository) GetProfilesByUserIDs(ctx context.Context, userIDs []uint) (map[uint]*models.ProfileDetail, error) {
	out := make(map[uint]*models.ProfileDetail, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	var profiles []models.ProfileDetail
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Preload("User").Where("user_id IN ?", userIDs).Find(&profiles).Error
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to load profiles")
	}

	for i := range profiles {
		out[profiles[i].UserID] = &profiles[i]
	}
	return out, nil
}

// Search returns one page of visible profiles matching filter, and the
// total number of matches.
func (r *ProfileRepository) Search(ctx context.Context, filter SearchFilter, excludeIDs []uint, offset, limit int) ([]models.ProfileDetail, int64, error) {
	var (
		profiles []models.ProfileDetail
		total    int64
	)

	scope := func(db *gorm.DB) *gorm.DB {
		q := db.Model(&models.ProfileDetail{}).Where("is_profile_visible = ?", true)
		q = likeFilter(q, "religion", filter.Religion)
		q = likeFilter(q, "community", filter.Caste)
		q = likeFilter(q, "mother_tongue", filter.MotherTongue)
		q = likeFilter(q, "city", filter.City)
		if len(excludeIDs) > 0 {
			q = q.Where("user_id NOT IN ?", excludeIDs)
		}
		return q
	}

	err := r.run(ctx, func(db *gorm.DB) error {
		if err := scope(db).Count(&total).Error; err != nil {
			return err
		}
		return scope(db).Preload("User").Order("id").Offset(offset).Limit(limit).Find(&profiles).Error
	})
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeInternalError, "failed to search profiles")
	}
	return profiles, total, nil
}

func likeFilter(q *gorm.DB, column, value string) *gorm.DB {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return q
	}
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
	return q.Where("LOWER("+column+") LIKE ? ESCAPE '\\'", "%"+escaped+"%")
}

// CreateProfile inserts a profile
func (r *ProfileRepository) CreateProfile(ctx context.Context, profile *models.ProfileDetail) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(profile).Error; err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to create profile")
	}
	return nil
}

// UpsertPreference creates or replaces the preference of a profile
func (r *ProfileRepository) UpsertPreference(ctx context.Context, pref *models.PartnerPreference) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "profile_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"age_min", "age_max", "height_min", "height_max", "religion", "caste", "mother_tongue", "city", "state", "updated_at"}),
	}).Create(pref).Error
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to save partner preference")
	}
	return nil
}

// AddPhoto appends a gallery entry
func (r *ProfileRepository) AddPhoto(ctx context.Context, entry *models.PhotoGalleryEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to add photo")
	}
	return nil
}
