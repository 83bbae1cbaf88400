package seed

import (
	"context"
	"testing"

	"bailanysta/internal/database"
	"bailanysta/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSeedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestSeeder_Run(t *testing.T) {
	db := setupSeedDB(t)
	s := NewSeeder(db, Options{NumUsers: 5, NumPosts: 30, SkipBcrypt: true, MaxDays: 7})

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("seeding failed: %v", err)
	}

	var userCount, postCount int64
	db.Model(&models.User{}).Count(&userCount)
	db.Model(&models.Post{}).Count(&postCount)
	if userCount == 0 {
		t.Fatal("expected users to be created")
	}
	if postCount < 30 {
		t.Fatalf("expected at least 30 posts, got %d", postCount)
	}

	var posts []models.Post
	if err := db.Find(&posts).Error; err != nil {
		t.Fatalf("failed to load posts: %v", err)
	}
	for _, p := range posts {
		if n := len([]rune(p.Text)); n == 0 || n > 280 {
			t.Fatalf("post %d has invalid length %d", p.ID, n)
		}
		if p.LikesCount < 0 || p.RepostsCount < 0 {
			t.Fatalf("post %d has negative counters", p.ID)
		}
	}

	// likes_count must match the number of like rows per post
	for _, p := range posts {
		var likes int64
		db.Model(&models.Like{}).Where("post_id = ?", p.ID).Count(&likes)
		if int64(p.LikesCount) != likes {
			t.Fatalf("post %d: likes_count=%d but %d like rows", p.ID, p.LikesCount, likes)
		}
	}

	// no self-follows in the generated graph
	var selfFollows int64
	db.Model(&models.Follow{}).Where("follower_id = following_id").Count(&selfFollows)
	if selfFollows != 0 {
		t.Fatalf("found %d self-follow edges", selfFollows)
	}
}

func TestSeeder_ClearAll(t *testing.T) {
	db := setupSeedDB(t)
	s := NewSeeder(db, Options{NumUsers: 3, NumPosts: 5, SkipBcrypt: true})

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("seeding failed: %v", err)
	}
	if err := s.ClearAll(); err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}

	var users, posts, likes int64
	db.Model(&models.User{}).Count(&users)
	db.Model(&models.Post{}).Count(&posts)
	db.Model(&models.Like{}).Count(&likes)
	if users != 0 || posts != 0 || likes != 0 {
		t.Fatalf("expected empty tables after cleanup, got users=%d posts=%d likes=%d", users, posts, likes)
	}
}

func TestPostText_WithinLimit(t *testing.T) {
	s := NewSeeder(nil, Options{})
	for i := 0; i < 50; i++ {
		text := s.postText()
		if n := len([]rune(text)); n == 0 || n > 280 {
			t.Fatalf("generated text has invalid length %d: %q", n, text)
		}
	}
}
