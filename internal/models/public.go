package models

import "time"

// UserPublic is the API representation of a user, including live
// relationship counts.
type UserPublic struct {
	ID             uint      `json:"id"`
	Username       string    `json:"username"`
	DisplayName    *string   `json:"display_name"`
	Bio            string    `json:"bio"`
	CreatedAt      time.Time `json:"created_at"`
	FollowersCount int64     `json:"followers_count"`
	FollowingCount int64     `json:"following_count"`
	PostsCount     int64     `json:"posts_count"`
}

// PostPublic is the API representation of a post. LikedByMe and
// RepostedByMe are false for anonymous readers.
type PostPublic struct {
	ID             uint       `json:"id"`
	Author         UserPublic `json:"author"`
	Text           string     `json:"text"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at"`
	Edited         bool       `json:"edited"`
	OriginalPostID *uint      `json:"original_post_id"`
	LikesCount     int        `json:"likes_count"`
	RepostsCount   int        `json:"reposts_count"`
	LikedByMe      bool       `json:"liked_by_me"`
	RepostedByMe   bool       `json:"reposted_by_me"`
	Hashtags       []string   `json:"hashtags"`
}

// FeedPage is one page of posts. NextOffset is nil when the page was not
// full, signalling the end of the listing.
type FeedPage struct {
	Items      []*PostPublic `json:"items"`
	NextOffset *int          `json:"next_offset"`
}

// TokenResponse is returned by the login endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
