package models

import (
	"fmt"
	"time"
)

// RelationshipRequest is a directed, typed record of one user's action
// toward another. Rows are never deleted; unblocking moves them to cancelled.
type RelationshipRequest struct {
	ID         uint      `gorm:"primaryKey"`
	SenderID   uint      `gorm:"not null;index"`
	Sender     User      `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE"`
	ReceiverID uint      `gorm:"not null;index"`
	Receiver   User      `gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE"`
	Type       string    `gorm:"column:request_type;type:varchar(20);not null"`
	Status     string    `gorm:"type:varchar(20);not null;default:'pending'"`
	PairKey    string    `gorm:"type:varchar(41);not null;index"`
	BlockedBy  uint      `gorm:"default:0"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

// Request type constants
const (
	RequestTypeInterest = "interest"
	RequestTypeChat     = "chat"
	RequestTypeBlock    = "block"
)

// Request status constants
const (
	RequestStatusPending   = "pending"
	RequestStatusAccepted  = "accepted"
	RequestStatusRejected  = "rejected"
	RequestStatusBlocked   = "blocked"
	RequestStatusCancelled = "cancelled"
)

// ActiveStatuses are the statuses covered by the one-per-pair-and-type rule.
var ActiveStatuses = []string{RequestStatusPending, RequestStatusAccepted, RequestStatusBlocked}

// ExclusionStatuses keep the other party out of discovery. Cancelled is
// absent so a cancelled request puts the pair back into circulation.
var ExclusionStatuses = []string{RequestStatusPending, RequestStatusAccepted, RequestStatusRejected, RequestStatusBlocked}

// PairKey is the canonical unordered key for two users.
func PairKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

func (r *RelationshipRequest) IsActive() bool {
	switch r.Status {
	case RequestStatusPending, RequestStatusAccepted, RequestStatusBlocked:
		return true
	}
	return false
}

func (r *RelationshipRequest) Involves(userID uint) bool {
	return r.SenderID == userID || r.ReceiverID == userID
}

// OtherParty returns the counterpart of userID on this record.
func (r *RelationshipRequest) OtherParty(userID uint) uint {
	if r.SenderID == userID {
		return r.ReceiverID
	}
	return r.SenderID
}

func (RelationshipRequest) TableName() string {
	return "relationship_requests"
}
