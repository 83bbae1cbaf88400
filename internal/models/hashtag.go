package models

// Hashtag stores a tag exactly once, lowercased and without the leading '#'.
type Hashtag struct {
	ID  uint   `gorm:"primaryKey" json:"id"`
	Tag string `gorm:"unique;not null" json:"tag"`
}

// PostHashtag links a post to a hashtag extracted from its text.
type PostHashtag struct {
	PostID    uint `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	HashtagID uint `gorm:"primaryKey;autoIncrement:false" json:"hashtag_id"`

	Post    Post    `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	Hashtag Hashtag `gorm:"foreignKey:HashtagID;constraint:OnDelete:CASCADE" json:"-"`
}
