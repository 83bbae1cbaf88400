package models

import "time"

// Post is a piece of user-authored content, at most 280 characters.
// A post with a non-nil OriginalPostID is a repost; when the source post
// is deleted the reference is set to NULL and the repost survives as a
// regular post.
//
// LikesCount and RepostsCount are denormalized counters maintained in the
// same transaction as the rows they summarize.
type Post struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	AuthorID       uint      `gorm:"not null;index" json:"author_id"`
	Author         User      `gorm:"foreignKey:AuthorID" json:"author"`
	Text           string    `gorm:"type:text;not null" json:"text"`
	Edited         bool      `gorm:"not null;default:false" json:"edited"`
	OriginalPostID *uint     `gorm:"index" json:"original_post_id,omitempty"`
	OriginalPost   *Post     `gorm:"foreignKey:OriginalPostID" json:"-"`
	LikesCount     int       `gorm:"not null;default:0" json:"likes_count"`
	RepostsCount   int       `gorm:"not null;default:0" json:"reposts_count"`
	CreatedAt      time.Time `json:"created_at"`
	// UpdatedAt stays nil until the first edit.
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false" json:"updated_at,omitempty"`
}
