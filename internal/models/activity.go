package models

import (
	"time"
)

// Activity is a notification shown to UserID about something ActorUserID did.
type Activity struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index:idx_activity_user_read" json:"userId"`
	ActorUserID  uint      `gorm:"index" json:"actorUserId"`
	ActivityType string    `gorm:"type:varchar(40);not null;index" json:"activityType"`
	Message      string    `gorm:"type:text" json:"message"`
	RelatedID    uint      `gorm:"default:0" json:"relatedId"`
	IsRead       bool      `gorm:"default:false;index:idx_activity_user_read" json:"isRead"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
}

// Activity types
const (
	ActivityInterestSent        = "InterestSent"
	ActivityInterestAccepted    = "InterestAccepted"
	ActivityInterestRejected    = "InterestRejected"
	ActivityChatRequestReceived = "ChatRequestReceived"
	ActivityChatRequestAccepted = "ChatRequestAccepted"
	ActivityChatRequestRejected = "ChatRequestRejected"
	ActivityProfileViewed       = "ProfileViewed"
	ActivityUserBlocked         = "UserBlocked"
)

func (Activity) TableName() string {
	return "activities"
}
