package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"bailanysta/internal/models"
	"bailanysta/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn      func(context.Context, *models.Post, []string) error
	getByIDFn     func(context.Context, uint) (*models.Post, error)
	listFn        func(context.Context, repository.ListFilter) ([]*models.Post, error)
	searchFn      func(context.Context, []string, []string, int, int) ([]*models.Post, error)
	updateFn      func(context.Context, uint, string, time.Time, []string) error
	deleteFn      func(context.Context, uint) error
	repostFn      func(context.Context, *models.Post, uint) error
	likeFn        func(context.Context, uint, uint) error
	unlikeFn      func(context.Context, uint, uint) error
	hashtagsFn    func(context.Context, uint) ([]string, error)
	isLikedFn     func(context.Context, uint, uint) (bool, error)
	hasRepostedFn func(context.Context, uint, uint) (bool, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post, tags []string) error {
	return s.createFn(ctx, post, tags)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, f repository.ListFilter) ([]*models.Post, error) {
	return s.listFn(ctx, f)
}
func (s *postRepoStub) Search(ctx context.Context, tags, terms []string, limit, offset int) ([]*models.Post, error) {
	return s.searchFn(ctx, tags, terms, limit, offset)
}
func (s *postRepoStub) Update(ctx context.Context, postID uint, text string, editedAt time.Time, tags []string) error {
	return s.updateFn(ctx, postID, text, editedAt, tags)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) Repost(ctx context.Context, repost *models.Post, sourceID uint) error {
	return s.repostFn(ctx, repost, sourceID)
}
func (s *postRepoStub) Like(ctx context.Context, userID, postID uint) error {
	return s.likeFn(ctx, userID, postID)
}
func (s *postRepoStub) Unlike(ctx context.Context, userID, postID uint) error {
	return s.unlikeFn(ctx, userID, postID)
}
func (s *postRepoStub) Hashtags(ctx context.Context, postID uint) ([]string, error) {
	return s.hashtagsFn(ctx, postID)
}
func (s *postRepoStub) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	return s.isLikedFn(ctx, userID, postID)
}
func (s *postRepoStub) HasReposted(ctx context.Context, userID, postID uint) (bool, error) {
	return s.hasRepostedFn(ctx, userID, postID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, _ *models.Post, _ []string) error { return nil },
		getByIDFn: func(_ context.Context, _ uint) (*models.Post, error) {
			return &models.Post{ID: 1, AuthorID: 1, Author: models.User{ID: 1, Username: "alice"}}, nil
		},
		listFn:        func(_ context.Context, _ repository.ListFilter) ([]*models.Post, error) { return nil, nil },
		searchFn:      func(_ context.Context, _, _ []string, _, _ int) ([]*models.Post, error) { return nil, nil },
		updateFn:      func(_ context.Context, _ uint, _ string, _ time.Time, _ []string) error { return nil },
		deleteFn:      func(_ context.Context, _ uint) error { return nil },
		repostFn:      func(_ context.Context, _ *models.Post, _ uint) error { return nil },
		likeFn:        func(_ context.Context, _, _ uint) error { return nil },
		unlikeFn:      func(_ context.Context, _, _ uint) error { return nil },
		hashtagsFn:    func(_ context.Context, _ uint) ([]string, error) { return nil, nil },
		isLikedFn:     func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		hasRepostedFn: func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn        func(context.Context, *models.User) error
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	getByLoginFn    func(context.Context, string) (*models.User, error)
	emailTakenFn    func(context.Context, string) (bool, error)
	profileCountsFn func(context.Context, uint) (repository.ProfileCounts, error)
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	return s.getByLoginFn(ctx, login)
}
func (s *userRepoStub) EmailTaken(ctx context.Context, email string) (bool, error) {
	return s.emailTakenFn(ctx, email)
}
func (s *userRepoStub) ProfileCounts(ctx context.Context, userID uint) (repository.ProfileCounts, error) {
	return s.profileCountsFn(ctx, userID)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn: func(_ context.Context, _ *models.User) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "alice"}, nil
		},
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByLoginFn:    func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		emailTakenFn:    func(_ context.Context, _ string) (bool, error) { return false, nil },
		profileCountsFn: func(_ context.Context, _ uint) (repository.ProfileCounts, error) {
			return repository.ProfileCounts{}, nil
		},
	}
}

// followRepoStub is a stub for repository.FollowRepository.
type followRepoStub struct {
	followFn      func(context.Context, uint, uint) error
	unfollowFn    func(context.Context, uint, uint) error
	isFollowingFn func(context.Context, uint, uint) (bool, error)
}

func (s *followRepoStub) Follow(ctx context.Context, followerID, followingID uint) error {
	return s.followFn(ctx, followerID, followingID)
}
func (s *followRepoStub) Unfollow(ctx context.Context, followerID, followingID uint) error {
	return s.unfollowFn(ctx, followerID, followingID)
}
func (s *followRepoStub) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	return s.isFollowingFn(ctx, followerID, followingID)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		followFn:      func(_ context.Context, _, _ uint) error { return nil },
		unfollowFn:    func(_ context.Context, _, _ uint) error { return nil },
		isFollowingFn: func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
	}
}

// assertAppError asserts that err is an AppError carrying the given code.
func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func TestPostService_CreatePost_Validation(t *testing.T) {
	t.Parallel()

	svc := NewPostService(noopPostRepo(), noopUserRepo(), noopFollowRepo())
	ctx := context.Background()

	tests := []struct {
		name string
		text string
	}{
		{name: "empty text", text: ""},
		{name: "text too long", text: strings.Repeat("x", 281)},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.CreatePost(ctx, CreatePostInput{AuthorID: 1, Text: tc.text})
			assertAppError(t, err, "VALIDATION_ERROR")
		})
	}
}

func TestPostService_CreatePost_MaxLengthIsRunes(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	var created *models.Post
	repo.createFn = func(_ context.Context, post *models.Post, _ []string) error {
		post.ID = 5
		created = post
		return nil
	}
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return &models.Post{ID: id, AuthorID: 1, Author: models.User{ID: 1, Username: "alice"}}, nil
	}
	svc := NewPostService(repo, noopUserRepo(), noopFollowRepo())

	// 280 multibyte runes must pass the length check.
	_, err := svc.CreatePost(context.Background(), CreatePostInput{AuthorID: 1, Text: strings.Repeat("ю", 280)})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, uint(1), created.AuthorID)
}

func TestPostService_CreatePost_PassesExtractedTags(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	var gotTags []string
	repo.createFn = func(_ context.Context, post *models.Post, tags []string) error {
		post.ID = 7
		gotTags = tags
		return nil
	}
	svc := NewPostService(repo, noopUserRepo(), noopFollowRepo())

	_, err := svc.CreatePost(context.Background(), CreatePostInput{AuthorID: 1, Text: "shipping #Go and #databases, mostly #go"})
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "databases"}, gotTags)
}

func TestPostService_UpdatePost_Ownership(t *testing.T) {
	t.Parallel()

	t.Run("non-author cannot edit", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
			return &models.Post{ID: 1, AuthorID: 10}, nil
		}
		svc := NewPostService(repo, noopUserRepo(), noopFollowRepo())
		_, err := svc.UpdatePost(context.Background(), UpdatePostInput{EditorID: 1, PostID: 1, Text: "new"})
		assertAppError(t, err, "FORBIDDEN")
	})

	t.Run("missing post is not found", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
			return nil, models.NewNotFoundError("Post", uint(99))
		}
		svc := NewPostService(repo, noopUserRepo(), noopFollowRepo())
		_, err := svc.UpdatePost(context.Background(), UpdatePostInput{EditorID: 1, PostID: 1, Text: "new"})
		assertAppError(t, err, "NOT_FOUND")
	})

	t.Run("author edit relinks tags", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
			return &models.Post{ID: 1, AuthorID: 1, Author: models.User{ID: 1, Username: "alice"}}, nil
		}
		var gotText string
		var gotTags []string
		repo.updateFn = func(_ context.Context, _ uint, text string, _ time.Time, tags []string) error {
			gotText = text
			gotTags = tags
			return nil
		}
		svc := NewPostService(repo, noopUserRepo(), noopFollowRepo())
		_, err := svc.UpdatePost(context.Background(), UpdatePostInput{EditorID: 1, PostID: 1, Text: "now about #rust"})
		require.NoError(t, err)
		assert.Equal(t, "now about #rust", gotText)
		assert.Equal(t, []string{"rust"}, gotTags)
	})
}

func TestPostService_DeletePost(t *testing.T) {
	t.Parallel()

	t.Run("absent post succeeds without deleting", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
			return nil, models.NewNotFoundError("Post", uint(99))
		}
		deleted := false
		repo.deleteFn = func(_ context.Context, _ uint) error {
			deleted = true
			return nil
		}
		svc := NewPostService(repo, noopUserRepo(), noopFollowRepo())
		err := svc.DeletePost(context.Background(), 1, 1)
		assert.NoError(t, err)
		assert.False(t, deleted, "delete must not reach the repository for an absent post")
	})

	t.Run("non-author cannot delete", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
			return &models.Post{ID: 1, AuthorID: 10}, nil
		}
		svc := NewPostService(repo, noopUserRepo(), noopFollowRepo())
		err := svc.DeletePost(context.Background(), 1, 1)
		assertAppError(t, err, "FORBIDDEN")
	})

	t.Run("author can delete", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
			return &models.Post{ID: 1, AuthorID: 1}, nil
		}
		svc := NewPostService(repo, noopUserRepo(), noopFollowRepo())
		assert.NoError(t, svc.DeletePost(context.Background(), 1, 1))
	})
}

func TestPostService_UnlikePost_IsIdempotent(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
		t.Error("unlike must not look up the post first")
		return nil, models.NewNotFoundError("Post", uint(99))
	}
	unliked := false
	repo.unlikeFn = func(_ context.Context, _, _ uint) error {
		unliked = true
		return nil
	}
	svc := NewPostService(repo, noopUserRepo(), noopFollowRepo())

	assert.NoError(t, svc.UnlikePost(context.Background(), 1, 9999))
	assert.True(t, unliked)
}

func TestPostService_RepostPost(t *testing.T) {
	t.Parallel()

	t.Run("own post is rejected", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Post, error) {
			return &models.Post{ID: 7, AuthorID: 1}, nil
		}
		svc := NewPostService(repo, noopUserRepo(), noopFollowRepo())
		_, err := svc.RepostPost(context.Background(), 1, 7)
		assertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("copies source text and link", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
			if id == 7 {
				return &models.Post{ID: 7, AuthorID: 2, Text: "original #go"}, nil
			}
			return &models.Post{ID: id, AuthorID: 1, Text: "original #go", Author: models.User{ID: 1, Username: "alice"}}, nil
		}
		var gotRepost *models.Post
		var gotSourceID uint
		repo.repostFn = func(_ context.Context, repost *models.Post, sourceID uint) error {
			repost.ID = 11
			gotRepost = repost
			gotSourceID = sourceID
			return nil
		}
		svc := NewPostService(repo, noopUserRepo(), noopFollowRepo())
		_, err := svc.RepostPost(context.Background(), 1, 7)
		require.NoError(t, err)
		require.NotNil(t, gotRepost)
		assert.Equal(t, "original #go", gotRepost.Text)
		require.NotNil(t, gotRepost.OriginalPostID)
		assert.Equal(t, uint(7), *gotRepost.OriginalPostID)
		assert.Equal(t, uint(7), gotSourceID)
	})
}

func TestPostService_ListPosts_UnknownAuthor(t *testing.T) {
	t.Parallel()

	listed := false
	repo := noopPostRepo()
	repo.listFn = func(_ context.Context, _ repository.ListFilter) ([]*models.Post, error) {
		listed = true
		return nil, nil
	}
	svc := NewPostService(repo, noopUserRepo(), noopFollowRepo())

	page, err := svc.ListPosts(context.Background(), ListPostsInput{AuthorUsername: "ghost", Limit: 20})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Nil(t, page.NextOffset)
	assert.False(t, listed, "unknown author must short-circuit before listing")
}

func TestPostService_Pagination_NextOffset(t *testing.T) {
	t.Parallel()

	makePosts := func(n int) []*models.Post {
		posts := make([]*models.Post, 0, n)
		for i := 0; i < n; i++ {
			posts = append(posts, &models.Post{
				ID:       uint(i + 1),
				AuthorID: 1,
				Author:   models.User{ID: 1, Username: "alice"},
			})
		}
		return posts
	}

	t.Run("full page advances offset", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.listFn = func(_ context.Context, _ repository.ListFilter) ([]*models.Post, error) {
			return makePosts(2), nil
		}
		svc := NewPostService(repo, noopUserRepo(), noopFollowRepo())
		page, err := svc.PublicFeed(context.Background(), FeedInput{Limit: 2, Offset: 4})
		require.NoError(t, err)
		require.NotNil(t, page.NextOffset)
		assert.Equal(t, 6, *page.NextOffset)
	})

	t.Run("short page ends pagination", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		repo.listFn = func(_ context.Context, _ repository.ListFilter) ([]*models.Post, error) {
			return makePosts(1), nil
		}
		svc := NewPostService(repo, noopUserRepo(), noopFollowRepo())
		page, err := svc.PublicFeed(context.Background(), FeedInput{Limit: 2, Offset: 4})
		require.NoError(t, err)
		assert.Nil(t, page.NextOffset)
	})
}

func TestPostService_FollowingFeed_ScopesToViewer(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	var gotFilter repository.ListFilter
	repo.listFn = func(_ context.Context, f repository.ListFilter) ([]*models.Post, error) {
		gotFilter = f
		return nil, nil
	}
	svc := NewPostService(repo, noopUserRepo(), noopFollowRepo())

	_, err := svc.FollowingFeed(context.Background(), FeedInput{ViewerID: 3, Limit: 20})
	require.NoError(t, err)
	require.NotNil(t, gotFilter.FollowerID)
	assert.Equal(t, uint(3), *gotFilter.FollowerID)
}

func TestPostService_SearchPosts(t *testing.T) {
	t.Parallel()

	t.Run("empty query is rejected", func(t *testing.T) {
		t.Parallel()
		svc := NewPostService(noopPostRepo(), noopUserRepo(), noopFollowRepo())
		_, err := svc.SearchPosts(context.Background(), SearchInput{Query: "   ", Limit: 20})
		assertAppError(t, err, "VALIDATION_ERROR")
	})

	t.Run("query splits into tags and keywords", func(t *testing.T) {
		t.Parallel()
		repo := noopPostRepo()
		var gotTags, gotTerms []string
		repo.searchFn = func(_ context.Context, tags, terms []string, _, _ int) ([]*models.Post, error) {
			gotTags = tags
			gotTerms = terms
			return nil, nil
		}
		svc := NewPostService(repo, noopUserRepo(), noopFollowRepo())
		_, err := svc.SearchPosts(context.Background(), SearchInput{Query: "#Go databases #Testing", Limit: 20})
		require.NoError(t, err)
		assert.Equal(t, []string{"go", "testing"}, gotTags)
		assert.Equal(t, []string{"databases"}, gotTerms)
	})
}

func TestPostService_AnonymousViewerSkipsReactionLookups(t *testing.T) {
	t.Parallel()

	repo := noopPostRepo()
	repo.isLikedFn = func(_ context.Context, _, _ uint) (bool, error) {
		t.Error("IsLiked must not be called for anonymous viewers")
		return false, nil
	}
	repo.hasRepostedFn = func(_ context.Context, _, _ uint) (bool, error) {
		t.Error("HasReposted must not be called for anonymous viewers")
		return false, nil
	}
	svc := NewPostService(repo, noopUserRepo(), noopFollowRepo())

	post, err := svc.GetPost(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.False(t, post.LikedByMe)
	assert.False(t, post.RepostedByMe)
	assert.NotNil(t, post.Hashtags)
}
