// Package models contains data structures for the application's domain models.
package models

import "time"

// User represents a registered account.
// Email is optional and globally unique when present; lookups on it are
// case-insensitive.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Username    string    `gorm:"unique;not null" json:"username"`
	Email       *string   `gorm:"unique" json:"email,omitempty"`
	Password    string    `gorm:"not null" json:"-"`
	DisplayName *string   `json:"display_name,omitempty"`
	Bio         string    `json:"bio"`
	CreatedAt   time.Time `json:"created_at"`

	Posts []Post `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"posts,omitempty"`
}
