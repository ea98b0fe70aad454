package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bubble/internal/models"
	"bubble/internal/service"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// AddFCMToken registers a device token; already-known tokens are a no-op.
func (r *UserRepository) AddFCMToken(ctx context.Context, userID, token string) error {
	u, err := r.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return fmt.Errorf("%w: user %s", service.ErrNotFound, userID)
	}
	if u.FCMTokens.Contains(token) {
		return nil
	}
	u.FCMTokens = append(u.FCMTokens, token)
	return r.db.WithContext(ctx).
		Model(u).
		Updates(map[string]interface{}{"fcm_tokens": u.FCMTokens, "updated_at": time.Now().UTC()}).Error
}

// RemoveFCMTokens drops the given tokens from the user's token set. Used
// both for explicit unregistration and for pruning tokens FCM rejected.
func (r *UserRepository) RemoveFCMTokens(ctx context.Context, userID string, tokens ...string) error {
	if len(tokens) == 0 {
		return nil
	}
	u, err := r.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return fmt.Errorf("%w: user %s", service.ErrNotFound, userID)
	}
	remaining := u.FCMTokens.Remove(tokens...)
	return r.db.WithContext(ctx).
		Model(u).
		Updates(map[string]interface{}{"fcm_tokens": remaining, "updated_at": time.Now().UTC()}).Error
}
