package repositories

import (
	"context"
	stderrors "errors"

	"github.com/787516/Matrimonial/internal/models"
	"github.com/787516/Matrimonial/pkg/errors"
	"gorm.io/gorm"
)

type UserRepository struct {
	store
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{store: newStore(db)}
}

// CreateUser creates a new user
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.New(errors.ErrCodeAlreadyExists, "user already exists")
	}
	if stderrors.Is(err, gorm.ErrInvalidData) {
		return errors.New(errors.ErrCodeValidation, "invalid gender or status")
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to create user")
	}
	return nil
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.First(&user, id).Error
	})

	if err == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.ErrCodeNotFound, "user not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to get user")
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Where("email = ?", email).First(&user).Error
	})

	if err == gorm.ErrRecordNotFound {
		return nil, errors.New(errors.ErrCodeNotFound, "user not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to get user")
	}
	return &user, nil
}

// GetTelegramChatID returns the linked Telegram chat of a user, 0 if none.
func (r *UserRepository) GetTelegramChatID(ctx context.Context, userID uint) (int64, error) {
	var user models.User
	err := r.run(ctx, func(db *gorm.DB) error {
		return db.Select("id", "telegram_chat_id").First(&user, userID).Error
	})

	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeInternalError, "failed to get telegram chat")
	}
	return user.TelegramChatID, nil
}

// LinkTelegramChat stores the Telegram chat notifications are delivered to
func (r *UserRepository) LinkTelegramChat(ctx context.Context, userID uint, chatID int64) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("telegram_chat_id", chatID)

	if result.Error != nil {
		return errors.Wrap(result.Error, errors.ErrCodeInternalError, "failed to link telegram chat")
	}
	if result.RowsAffected == 0 {
		return errors.New(errors.ErrCodeNotFound, "user not found")
	}
	return nil
}
