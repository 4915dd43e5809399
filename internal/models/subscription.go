package models

import (
	"time"
)

// Plan names
const (
	PlanFree     = "FREE"
	PlanSilver   = "SILVER"
	PlanGold     = "GOLD"
	PlanPlatinum = "PLATINUM"
)

type SubscriptionPlan struct {
	ID                    uint   `gorm:"primaryKey"`
	Name                  string `gorm:"type:varchar(50);uniqueIndex;not null"`
	Price                 int64  `gorm:"not null"`
	DurationInDays        int    `gorm:"not null"`
	CanViewContacts       bool
	MaxProfileViews       int
	UnlimitedProfileViews bool
	ChatAllowed           bool
	UnlimitedInterest     bool
	SupportLevel          string    `gorm:"type:varchar(50)"`
	CreatedAt             time.Time `gorm:"autoCreateTime"`
	UpdatedAt             time.Time `gorm:"autoUpdateTime"`
}

func (SubscriptionPlan) TableName() string {
	return "subscription_plans"
}

// Subscription status constants
const (
	SubscriptionStatusPending   = "pending"
	SubscriptionStatusActive    = "active"
	SubscriptionStatusExpired   = "expired"
	SubscriptionStatusCancelled = "cancelled"
)

type UserSubscription struct {
	ID        uint             `gorm:"primaryKey"`
	UserID    uint             `gorm:"uniqueIndex;not null"`
	PlanID    uint             `gorm:"not null"`
	Plan      SubscriptionPlan `gorm:"foreignKey:PlanID"`
	Status    string           `gorm:"type:varchar(20);default:'pending'"`
	StartDate time.Time
	EndDate   time.Time
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (UserSubscription) TableName() string {
	return "user_subscriptions"
}

// Entitlement is the resolved set of feature flags for a user at a point in
// time, together with the window profile views are counted in.
type Entitlement struct {
	PlanName              string
	IsFreePlan            bool
	ChatAllowed           bool
	MaxProfileViews       int
	UnlimitedProfileViews bool
	PeriodStart           time.Time
}
