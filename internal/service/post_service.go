// Package service implements the application's business logic on top of the
// repository layer.
package service

import (
	"context"
	"strings"
	"time"

	"bailanysta/internal/hashtag"
	"bailanysta/internal/models"
	"bailanysta/internal/observability"
	"bailanysta/internal/repository"
	"bailanysta/internal/validation"
)

// PostService implements post authoring, reactions, feeds and search.
// Viewer IDs of 0 mean an anonymous reader.
type PostService struct {
	postRepo   repository.PostRepository
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
}

type CreatePostInput struct {
	AuthorID uint
	Text     string
}

type UpdatePostInput struct {
	EditorID uint
	PostID   uint
	Text     string
}

type ListPostsInput struct {
	// AuthorUsername filters to a single author when non-empty. An unknown
	// username yields an empty page, not an error.
	AuthorUsername string
	ViewerID       uint
	Limit          int
	Offset         int
}

type FeedInput struct {
	ViewerID uint
	Limit    int
	Offset   int
}

type SearchInput struct {
	Query    string
	ViewerID uint
	Limit    int
	Offset   int
}

func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
) *PostService {
	return &PostService{
		postRepo:   postRepo,
		userRepo:   userRepo,
		followRepo: followRepo,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.PostPublic, error) {
	if err := validation.ValidatePostText(in.Text); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	post := &models.Post{
		AuthorID: in.AuthorID,
		Text:     in.Text,
	}
	if err := s.postRepo.Create(ctx, post, hashtag.Extract(in.Text)); err != nil {
		return nil, err
	}
	observability.PostsCreatedTotal.WithLabelValues("original").Inc()

	return s.GetPost(ctx, post.ID, in.AuthorID)
}

func (s *PostService) GetPost(ctx context.Context, postID, viewerID uint) (*models.PostPublic, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return s.assemble(ctx, post, viewerID)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.PostPublic, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != in.EditorID {
		return nil, models.NewForbiddenError("You can only edit your own posts")
	}
	if err := validation.ValidatePostText(in.Text); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	// Hashtag links are rebuilt from the new text; the old set is gone.
	editedAt := time.Now().UTC()
	if err := s.postRepo.Update(ctx, in.PostID, in.Text, editedAt, hashtag.Extract(in.Text)); err != nil {
		return nil, err
	}

	return s.GetPost(ctx, in.PostID, in.EditorID)
}

// DeletePost removes the caller's post. Deleting a post that no longer
// exists succeeds, so retries are harmless.
func (s *PostService) DeletePost(ctx context.Context, postID, userID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil
		}
		return err
	}
	if post.AuthorID != userID {
		return models.NewForbiddenError("You can only delete your own posts")
	}
	return s.postRepo.Delete(ctx, postID)
}

func (s *PostService) LikePost(ctx context.Context, userID, postID uint) error {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return err
	}
	return s.postRepo.Like(ctx, userID, postID)
}

// UnlikePost is idempotent all the way down: unliking a post you never
// liked, or one that no longer exists, is a silent no-op.
func (s *PostService) UnlikePost(ctx context.Context, userID, postID uint) error {
	return s.postRepo.Unlike(ctx, userID, postID)
}

// RepostPost copies the source text into a new post by userID that points
// back at the source. Reposting your own post is rejected.
func (s *PostService) RepostPost(ctx context.Context, userID, postID uint) (*models.PostPublic, error) {
	source, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if source.AuthorID == userID {
		return nil, models.NewValidationError("You cannot repost your own post")
	}

	repost := &models.Post{
		AuthorID:       userID,
		Text:           source.Text,
		OriginalPostID: &source.ID,
	}
	if err := s.postRepo.Repost(ctx, repost, source.ID); err != nil {
		return nil, err
	}
	observability.PostsCreatedTotal.WithLabelValues("repost").Inc()

	return s.GetPost(ctx, repost.ID, userID)
}

func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) (*models.FeedPage, error) {
	f := repository.ListFilter{Limit: in.Limit, Offset: in.Offset}

	if in.AuthorUsername != "" {
		author, err := s.userRepo.GetByUsername(ctx, in.AuthorUsername)
		if err != nil {
			return nil, err
		}
		if author == nil {
			return &models.FeedPage{Items: []*models.PostPublic{}}, nil
		}
		f.AuthorID = &author.ID
	}

	posts, err := s.postRepo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.page(ctx, posts, in.ViewerID, in.Limit, in.Offset)
}

// PublicFeed returns the global reverse-chronological timeline.
func (s *PostService) PublicFeed(ctx context.Context, in FeedInput) (*models.FeedPage, error) {
	posts, err := s.postRepo.List(ctx, repository.ListFilter{Limit: in.Limit, Offset: in.Offset})
	if err != nil {
		return nil, err
	}
	return s.page(ctx, posts, in.ViewerID, in.Limit, in.Offset)
}

// FollowingFeed returns posts by authors the viewer follows. A viewer who
// follows nobody gets an empty page.
func (s *PostService) FollowingFeed(ctx context.Context, in FeedInput) (*models.FeedPage, error) {
	viewerID := in.ViewerID
	posts, err := s.postRepo.List(ctx, repository.ListFilter{
		FollowerID: &viewerID,
		Limit:      in.Limit,
		Offset:     in.Offset,
	})
	if err != nil {
		return nil, err
	}
	return s.page(ctx, posts, in.ViewerID, in.Limit, in.Offset)
}

// SearchPosts splits the query on whitespace into hashtag tokens (leading
// '#') and plain keywords. A post matches when it carries every named tag
// and its text contains every keyword, case-insensitively.
func (s *PostService) SearchPosts(ctx context.Context, in SearchInput) (*models.FeedPage, error) {
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}

	var tags, terms []string
	for _, token := range strings.Fields(query) {
		if strings.HasPrefix(token, "#") {
			if tag := hashtag.Normalize(token); tag != "" {
				tags = append(tags, tag)
			}
			continue
		}
		terms = append(terms, token)
	}

	posts, err := s.postRepo.Search(ctx, tags, terms, in.Limit, in.Offset)
	if err != nil {
		return nil, err
	}
	return s.page(ctx, posts, in.ViewerID, in.Limit, in.Offset)
}

// page assembles the public representation of posts and computes the next
// offset: present only when the page came back full.
func (s *PostService) page(ctx context.Context, posts []*models.Post, viewerID uint, limit, offset int) (*models.FeedPage, error) {
	items := make([]*models.PostPublic, 0, len(posts))
	for _, post := range posts {
		item, err := s.assemble(ctx, post, viewerID)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	page := &models.FeedPage{Items: items}
	if len(items) == limit {
		next := offset + limit
		page.NextOffset = &next
	}
	return page, nil
}

func (s *PostService) assemble(ctx context.Context, post *models.Post, viewerID uint) (*models.PostPublic, error) {
	counts, err := s.userRepo.ProfileCounts(ctx, post.AuthorID)
	if err != nil {
		return nil, err
	}

	tags, err := s.postRepo.Hashtags(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []string{}
	}

	var liked, reposted bool
	if viewerID != 0 {
		if liked, err = s.postRepo.IsLiked(ctx, viewerID, post.ID); err != nil {
			return nil, err
		}
		if reposted, err = s.postRepo.HasReposted(ctx, viewerID, post.ID); err != nil {
			return nil, err
		}
	}

	return &models.PostPublic{
		ID:             post.ID,
		Author:         publicUser(&post.Author, counts),
		Text:           post.Text,
		CreatedAt:      post.CreatedAt,
		UpdatedAt:      post.UpdatedAt,
		Edited:         post.Edited,
		OriginalPostID: post.OriginalPostID,
		LikesCount:     post.LikesCount,
		RepostsCount:   post.RepostsCount,
		LikedByMe:      liked,
		RepostedByMe:   reposted,
		Hashtags:       tags,
	}, nil
}

func publicUser(u *models.User, c repository.ProfileCounts) models.UserPublic {
	return models.UserPublic{
		ID:             u.ID,
		Username:       u.Username,
		DisplayName:    u.DisplayName,
		Bio:            u.Bio,
		CreatedAt:      u.CreatedAt,
		FollowersCount: c.Followers,
		FollowingCount: c.Following,
		PostsCount:     c.Posts,
	}
}
