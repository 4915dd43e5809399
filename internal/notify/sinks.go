package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/787516/Matrimonial/internal/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/redis/go-redis/v9"
)

// ActivityStore persists notifications for the in-app feed.
type ActivityStore interface {
	Create(ctx context.Context, activity *models.Activity) error
}

// StoreSink writes every event to the activities table.
type StoreSink struct {
	store ActivityStore
}

func NewStoreSink(store ActivityStore) *StoreSink {
	return &StoreSink{store: store}
}

func (s *StoreSink) Name() string { return "store" }

func (s *StoreSink) Deliver(ctx context.Context, event Event) error {
	return s.store.Create(ctx, &models.Activity{
		UserID:       event.TargetUserID,
		ActorUserID:  event.ActorUserID,
		ActivityType: event.Type,
		Message:      event.Message,
		RelatedID:    event.RelatedID,
	})
}

// Publisher is the part of a redis client the realtime sink needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisSink publishes events on a per-user channel so the realtime layer
// can push them to connected clients.
type RedisSink struct {
	client Publisher
}

func NewRedisSink(client Publisher) *RedisSink {
	return &RedisSink{client: client}
}

// UserChannel is the pub/sub channel carrying a user's events.
func UserChannel(userID uint) string {
	return fmt.Sprintf("activity:%d", userID)
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Deliver(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return s.client.Publish(ctx, UserChannel(event.TargetUserID), payload).Err()
}

// MessageSender is satisfied by *tgbotapi.BotAPI.
type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// ChatResolver maps a user to the Telegram chat linked to them.
type ChatResolver interface {
	GetTelegramChatID(ctx context.Context, userID uint) (int64, error)
}

// TelegramSink forwards events to users who linked a Telegram chat.
// Users without one are skipped.
type TelegramSink struct {
	bot   MessageSender
	chats ChatResolver
}

func NewTelegramSink(bot MessageSender, chats ChatResolver) *TelegramSink {
	return &TelegramSink{bot: bot, chats: chats}
}

func (s *TelegramSink) Name() string { return "telegram" }

func (s *TelegramSink) Deliver(ctx context.Context, event Event) error {
	chatID, err := s.chats.GetTelegramChatID(ctx, event.TargetUserID)
	if err != nil {
		return err
	}
	if chatID == 0 {
		return nil
	}

	msg := tgbotapi.NewMessage(chatID, event.Message)
	msg.DisableWebPagePreview = true
	_, err = s.bot.Send(msg)
	return err
}
