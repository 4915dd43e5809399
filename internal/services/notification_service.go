package services

import (
	"context"

	"github.com/787516/Matrimonial/internal/models"
	"github.com/787516/Matrimonial/pkg/logger"
)

// ActivityRepository is the in-app notification store.
type ActivityRepository interface {
	ListForUser(ctx context.Context, userID uint, unreadOnly bool, offset, limit int) ([]models.Activity, int64, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, userID, activityID uint) error
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
	Delete(ctx context.Context, userID, activityID uint) error
	Clear(ctx context.Context, userID uint) (int64, error)
}

// NotificationPage is one page of a member's notifications.
type NotificationPage struct {
	Notifications []models.Activity `json:"notifications"`
	Page          int               `json:"page"`
	Limit         int               `json:"limit"`
	Total         int64             `json:"total"`
	Unread        int64             `json:"unread"`
}

type NotificationService struct {
	activities ActivityRepository
	paging     Paging
}

func NewNotificationService(activities ActivityRepository, paging Paging) *NotificationService {
	return &NotificationService{activities: activities, paging: paging}
}

// List returns a page of userID's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID uint, unreadOnly bool, page, limit int) (*NotificationPage, error) {
	page, limit = s.paging.Normalize(page, limit)

	items, total, err := s.activities.ListForUser(ctx, userID, unreadOnly, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	unread, err := s.activities.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}

	if items == nil {
		items = []models.Activity{}
	}
	return &NotificationPage{
		Notifications: items,
		Page:          page,
		Limit:         limit,
		Total:         total,
		Unread:        unread,
	}, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.activities.CountUnread(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, activityID uint) error {
	return s.activities.MarkRead(ctx, userID, activityID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	n, err := s.activities.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	logger.Debug("Notifications marked read", "user", userID, "count", n)
	return n, nil
}

func (s *NotificationService) Delete(ctx context.Context, userID, activityID uint) error {
	return s.activities.Delete(ctx, userID, activityID)
}

func (s *NotificationService) Clear(ctx context.Context, userID uint) (int64, error) {
	return s.activities.Clear(ctx, userID)
}
