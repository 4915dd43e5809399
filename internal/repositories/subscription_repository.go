package repositories

import (
	"context"
	"time"

	"github.com/787516/Matrimonial/internal/models"
	"github.com/787516/Matrimonial/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubscriptionRepository resolves plan entitlements and keeps the
// profile-view ledger. Billing state is owned elsewhere; this only reads it.
type SubscriptionRepository struct {
	store
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{store: newStore(db)}
}

// GetPlanByName retrieves a plan by name
func (r *SubscriptionRepository) GetPlanByName(ctx context.Context, name string) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Where("name = ?", name).First(&plan).Error
	})

	if err == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.ErrCodeNotFound, "plan not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to get plan")
	}
	return &plan, nil
}

// ListPlans returns all plans ordered by price
func (r *SubscriptionRepository) ListPlans(ctx context.Context) ([]models.SubscriptionPlan, error) {
	var plans []models.SubscriptionPlan
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Order("price, id").Find(&plans).Error
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to list plans")
	}
	return plans, nil
}

// UpsertPlan creates a plan or overwrites the one with the same name
func (r *SubscriptionRepository) UpsertPlan(ctx context.Context, plan *models.SubscriptionPlan) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"price", "duration_in_days", "can_view_contacts", "max_profile_views",
			"unlimited_profile_views", "chat_allowed", "unlimited_interest", "support_level", "updated_at",
		}),
	}).Create(plan).Error
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to save plan")
	}
	return nil
}

// Subscribe activates plan for userID from now for the plan's duration,
// replacing any previous subscription.
func (r *SubscriptionRepository) Subscribe(ctx context.Context, userID uint, plan *models.SubscriptionPlan, now time.Time) (*models.UserSubscription, error) {
	sub := &models.UserSubscription{
		UserID:    userID,
		PlanID:    plan.ID,
		Status:    models.SubscriptionStatusActive,
		StartDate: now,
		EndDate:   now.AddDate(0, 0, plan.DurationInDays),
	}

	err := r.db.WithContext(ctx).Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"plan_id", "status", "start_date", "end_date", "updated_at"}),
	}).Create(sub).Error
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to save subscription")
	}
	return sub, nil
}

// GetEntitlement resolves the feature flags in force for userID at now: the
// active, unexpired subscription's plan, else the FREE plan. A missing FREE
// plan is a deployment fault and reported as internal.
func (r *SubscriptionRepository) GetEntitlement(ctx context.Context, userID uint, now time.Time) (*models.Entitlement, error) {
	var subs []models.UserSubscription
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Preload("Plan").
			Where("user_id = ? AND status = ? AND end_date >= ?", userID, models.SubscriptionStatusActive, now).
			Limit(1).Find(&subs).Error
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to get subscription")
	}

	if len(subs) == 1 {
		plan := subs[0].Plan
		return &models.Entitlement{
			PlanName:              plan.Name,
			ChatAllowed:           plan.ChatAllowed,
			MaxProfileViews:       plan.MaxProfileViews,
			UnlimitedProfileViews: plan.UnlimitedProfileViews,
			PeriodStart:           subs[0].StartDate,
		}, nil
	}

	free, err := r.GetPlanByName(ctx, models.PlanFree)
	if errors.Is(err, errors.ErrCodeNotFound) {
		return nil, errors.New(errors.ErrCodeInternalError, "FREE plan missing")
	}
	if err != nil {
		return nil, err
	}

	return &models.Entitlement{
		PlanName:              free.Name,
		IsFreePlan:            true,
		ChatAllowed:           free.ChatAllowed,
		MaxProfileViews:       free.MaxProfileViews,
		UnlimitedProfileViews: free.UnlimitedProfileViews,
		PeriodStart:           now.AddDate(0, 0, -free.DurationInDays),
	}, nil
}

// ConsumeProfileView records that viewerID opened viewedID's profile and
// charges it against ent. A profile already viewed inside the current period
// is free. charged reports whether the view used up quota.
func (r *SubscriptionRepository) ConsumeProfileView(ctx context.Context, viewerID, viewedID uint, ent *models.Entitlement, now time.Time) (charged bool, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// serialize quota checks per viewer
		var viewer models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").First(&viewer, viewerID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.New(errors.ErrCodeNotFound, "viewer not found")
			}
			return err
		}

		var views []models.ProfileView
		if err := tx.Where("viewer_id = ? AND viewed_id = ?", viewerID, viewedID).
			Limit(1).Find(&views).Error; err != nil {
			return err
		}
		if len(views) == 1 && !views[0].ViewedAt.Before(ent.PeriodStart) {
			return nil
		}

		if !ent.UnlimitedProfileViews {
			var used int64
			if err := tx.Model(&models.ProfileView{}).
				Where("viewer_id = ? AND viewed_at >= ?", viewerID, ent.PeriodStart).
				Count(&used).Error; err != nil {
				return err
			}
			if used >= int64(ent.MaxProfileViews) {
				return errors.New(errors.ErrCodeQuotaExceeded, "profile view limit reached for your plan")
			}
		}

		if len(views) == 1 {
			if err := tx.Model(&models.ProfileView{}).
				Where("id = ?", views[0].ID).
				Update("viewed_at", now).Error; err != nil {
				return err
			}
		} else if err := tx.Create(&models.ProfileView{ViewerID: viewerID, ViewedID: viewedID, ViewedAt: now}).Error; err != nil {
			return err
		}

		charged = true
		return nil
	})

	if err != nil {
		if _, ok := err.(*errors.AppError); ok {
			return false, err
		}
		return false, errors.Wrap(err, errors.ErrCodeInternalError, "failed to record profile view")
	}
	return charged, nil
}

// CountViewsSince counts distinct profiles viewerID opened since since
func (r *SubscriptionRepository) CountViewsSince(ctx context.Context, viewerID uint, since time.Time) (int64, error) {
	var count int64
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Model(&models.ProfileView{}).
			Where("viewer_id = ? AND viewed_at >= ?", viewerID, since).
			Count(&count).Error
	})
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeInternalError, "failed to count profile views")
	}
	return count, nil
}
