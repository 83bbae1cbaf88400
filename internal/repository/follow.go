package repository

import (
	"context"
	"time"

	"bailanysta/internal/models"
	"bailanysta/internal/observability"

	"gorm.io/gorm"
)

// FollowRepository defines persistence operations for follow edges.
// Both writes are idempotent at the storage layer.
type FollowRepository interface {
	Follow(ctx context.Context, followerID, followingID uint) error
	Unfollow(ctx context.Context, followerID, followingID uint) error
	IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository returns a new FollowRepository implementation.
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Follow(ctx context.Context, followerID, followingID uint) error {
	defer observability.TrackQuery("follow", "follows")()
	err := r.db.WithContext(ctx).Exec(
		"INSERT INTO follows (follower_id, following_id, created_at) VALUES (?, ?, ?) ON CONFLICT (follower_id, following_id) DO NOTHING",
		followerID, followingID, time.Now().UTC(),
	).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *followRepository) Unfollow(ctx context.Context, followerID, followingID uint) error {
	defer observability.TrackQuery("unfollow", "follows")()
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}
