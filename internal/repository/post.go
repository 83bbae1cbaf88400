package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"bailanysta/internal/models"
	"bailanysta/internal/observability"

	"gorm.io/gorm"
)

// ListFilter narrows a post listing. A nil field means no restriction.
type ListFilter struct {
	// AuthorID restricts to posts written by this user.
	AuthorID *uint
	// FollowerID restricts to posts written by authors this user follows.
	FollowerID *uint
	Limit      int
	Offset     int
}

// PostRepository defines persistence operations for posts, likes, reposts
// and hashtag links. Counter updates run in the same transaction as the
// rows they track.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post, tags []string) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, f ListFilter) ([]*models.Post, error)
	Search(ctx context.Context, tags, terms []string, limit, offset int) ([]*models.Post, error)
	Update(ctx context.Context, postID uint, text string, editedAt time.Time, tags []string) error
	Delete(ctx context.Context, id uint) error
	Repost(ctx context.Context, repost *models.Post, sourceID uint) error
	Like(ctx context.Context, userID, postID uint) error
	Unlike(ctx context.Context, userID, postID uint) error
	Hashtags(ctx context.Context, postID uint) ([]string, error)
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
	HasReposted(ctx context.Context, userID, postID uint) (bool, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository returns a new PostRepository implementation.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post, tags []string) error {
	defer observability.TrackQuery("create", "posts")()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		return linkTags(tx, post.ID, tags)
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("Author").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, f ListFilter) ([]*models.Post, error) {
	defer observability.TrackQuery("list", "posts")()
	q := r.db.WithContext(ctx).Preload("Author")

	if f.AuthorID != nil {
		q = q.Where("author_id = ?", *f.AuthorID)
	}
	if f.FollowerID != nil {
		q = q.Where("author_id IN (?)",
			r.db.Model(&models.Follow{}).Select("following_id").Where("follower_id = ?", *f.FollowerID))
	}

	var posts []*models.Post
	err := q.Order("created_at DESC, id DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// Search returns posts carrying every tag in tags whose text contains every
// term in terms (case-insensitive), newest first.
func (r *postRepository) Search(ctx context.Context, tags, terms []string, limit, offset int) ([]*models.Post, error) {
	defer observability.TrackQuery("search", "posts")()
	q := r.db.WithContext(ctx).Model(&models.Post{}).Preload("Author")

	if len(tags) > 0 {
		tagged := r.db.Model(&models.PostHashtag{}).
			Select("post_hashtags.post_id").
			Joins("JOIN hashtags ON hashtags.id = post_hashtags.hashtag_id").
			Where("hashtags.tag IN ?", tags).
			Group("post_hashtags.post_id").
			Having("COUNT(DISTINCT hashtags.tag) = ?", len(tags))
		q = q.Where("posts.id IN (?)", tagged)
	}

	for _, term := range terms {
		q = q.Where("LOWER(posts.text) LIKE ?", "%"+strings.ToLower(term)+"%")
	}

	var posts []*models.Post
	err := q.Order("posts.created_at DESC, posts.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// Update replaces the text of a post, marks it edited and relinks its
// hashtags from scratch. Counter columns are left untouched so concurrent
// likes are not overwritten.
func (r *postRepository) Update(ctx context.Context, postID uint, text string, editedAt time.Time, tags []string) error {
	defer observability.TrackQuery("update", "posts")()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"text":       text,
			"edited":     true,
			"updated_at": editedAt,
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).UpdateColumns(updates).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.PostHashtag{}).Error; err != nil {
			return err
		}
		return linkTags(tx, postID, tags)
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Delete removes a post together with its likes and hashtag links. Reposts
// of the post are detached, not deleted: their original_post_id becomes NULL.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "posts")()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).
			Where("original_post_id = ?", id).
			UpdateColumn("original_post_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostHashtag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Repost stores the copy and bumps the source's reposts_count. Hashtag links
// are copied verbatim from the source rather than re-extracted, so the
// repost keeps the tags the source had at repost time.
func (r *postRepository) Repost(ctx context.Context, repost *models.Post, sourceID uint) error {
	defer observability.TrackQuery("repost", "posts")()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(repost).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Post{}).
			Where("id = ?", sourceID).
			UpdateColumn("reposts_count", gorm.Expr("reposts_count + 1")).Error; err != nil {
			return err
		}
		return tx.Exec(
			"INSERT INTO post_hashtags (post_id, hashtag_id) SELECT ?, hashtag_id FROM post_hashtags WHERE post_id = ?",
			repost.ID, sourceID,
		).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Like records the like and increments likes_count, once. A duplicate like
// hits the composite primary key and changes nothing.
func (r *postRepository) Like(ctx context.Context, userID, postID uint) error {
	defer observability.TrackQuery("like", "posts")()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(
			"INSERT INTO likes (user_id, post_id, created_at) VALUES (?, ?, ?) ON CONFLICT (user_id, post_id) DO NOTHING",
			userID, postID, time.Now().UTC(),
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return tx.Model(&models.Post{}).
			Where("id = ?", postID).
			UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Unlike removes the like if present and decrements likes_count, which never
// drops below zero.
func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) error {
	defer observability.TrackQuery("unlike", "posts")()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return tx.Model(&models.Post{}).
			Where("id = ? AND likes_count > 0", postID).
			UpdateColumn("likes_count", gorm.Expr("likes_count - 1")).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) Hashtags(ctx context.Context, postID uint) ([]string, error) {
	var tags []string
	err := r.db.WithContext(ctx).
		Model(&models.PostHashtag{}).
		Select("hashtags.tag").
		Joins("JOIN hashtags ON hashtags.id = post_hashtags.hashtag_id").
		Where("post_hashtags.post_id = ?", postID).
		Order("hashtags.tag").
		Pluck("hashtags.tag", &tags).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return tags, nil
}

func (r *postRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *postRepository) HasReposted(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("author_id = ? AND original_post_id = ?", userID, postID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// linkTags upserts each tag and links it to the post. Must run inside the
// caller's transaction.
func linkTags(tx *gorm.DB, postID uint, tags []string) error {
	for _, tag := range tags {
		var h models.Hashtag
		if err := tx.Where("tag = ?", tag).FirstOrCreate(&h, models.Hashtag{Tag: tag}).Error; err != nil {
			return err
		}
		if err := tx.Exec(
			"INSERT INTO post_hashtags (post_id, hashtag_id) VALUES (?, ?) ON CONFLICT (post_id, hashtag_id) DO NOTHING",
			postID, h.ID,
		).Error; err != nil {
			return err
		}
	}
	return nil
}
