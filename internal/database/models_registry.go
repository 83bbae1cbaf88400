package database

import "bailanysta/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Post{},
		&models.Follow{},
		&models.Like{},
		&models.Hashtag{},
		&models.PostHashtag{},
	}
}
