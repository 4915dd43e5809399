package repositories

import (
	"context"

	"github.com/787516/Matrimonial/internal/models"
	"github.com/787516/Matrimonial/pkg/errors"
	"gorm.io/gorm"
)

type ActivityRepository struct {
	store
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{store: newStore(db)}
}

// Create stores a notification
func (r *ActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	if err := r.db.WithContext(ctx).Create(activity).Error; err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to store activity")
	}
	return nil
}

// ListForUser returns one page of a user's notifications, newest first,
// and the total matching.
func (r *ActivityRepository) ListForUser(ctx context.Context, userID uint, unreadOnly bool, offset, limit int) ([]models.Activity, int64, error) {
	var (
		activities []models.Activity
		total      int64
	)

	scope := func(db *gorm.DB) *gorm.DB {
		q := db.Model(&models.Activity{}).Where("user_id = ?", userID)
		if unreadOnly {
			q = q.Where("is_read = ?", false)
		}
		return q
	}

	err := r.run(ctx, func(db *gorm.DB) error {
		if err := scope(db).Count(&total).Error; err != nil {
			return err
		}
		return scope(db).Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&activities).Error
	})
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeInternalError, "failed to list notifications")
	}
	return activities, total, nil
}

// CountUnread counts unread notifications
func (r *ActivityRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Model(&models.Activity{}).
			Where("user_id = ? AND is_read = ?", userID, false).
			Count(&count).Error
	})
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeInternalError, "failed to count notifications")
	}
	return count, nil
}

// MarkRead marks one of the user's notifications as read
func (r *ActivityRepository) MarkRead(ctx context.Context, userID, activityID uint) error {
	var affected int64
	err := r.run(ctx, func(db *gorm.DB) error {
		result := db.Model(&models.Activity{}).
			Where("id = ? AND user_id = ?", activityID, userID).
			Update("is_read", true)
		affected = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to mark notification")
	}
	if affected == 0 {
		return errors.New(errors.ErrCodeNotFound, "notification not found")
	}
	return nil
}

// MarkAllRead marks every unread notification of the user as read
func (r *ActivityRepository) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	var affected int64
	err := r.run(ctx, func(db *gorm.DB) error {
		result := db.Model(&models.Activity{}).
			Where("user_id = ? AND is_read = ?", userID, false).
			Update("is_read", true)
		affected = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeInternalError, "failed to mark notifications")
	}
	return affected, nil
}

// Delete removes one of the user's notifications
func (r *ActivityRepository) Delete(ctx context.Context, userID, activityID uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", activityID, userID).
		Delete(&models.Activity{})

	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to delete notification")
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.ErrCodeNotFound, "notification not found")
	}
	return nil
}

// Clear removes every notification of the user
func (r *ActivityRepository) Clear(ctx context.Context, userID uint) (int64, error) {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Activity{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to clear notifications")
	}
	return result.RowsAffected, nil
}
