// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"bailanysta/internal/hashtag"
	"bailanysta/internal/models"
	"bailanysta/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
	// SkipBcrypt stores a precomputed hash instead of hashing per user.
	// Bcrypt dominates seeding time for large user counts.
	SkipBcrypt bool
	// MaxDays spreads post timestamps over the past N days (default 90).
	MaxDays int
}

var topics = []string{
	"go", "databases", "devops", "music", "travel", "coffee", "running",
	"books", "photography", "startups", "linux", "cooking", "chess",
	"astronomy", "cycling", "gamedev", "opensource", "design",
}

var postTemplates = []func(topic, second, sentence string) string{
	func(topic, _, sentence string) string {
		return fmt.Sprintf("Spent the evening on %s. %s #%s", topic, sentence, topic)
	},
	func(topic, second, sentence string) string {
		return fmt.Sprintf("Hot take: %s is underrated. %s #%s #%s", topic, sentence, topic, second)
	},
	func(topic, _, _ string) string {
		return fmt.Sprintf("Day %d of learning %s and it finally clicked. #%s", gofakeit.Number(1, 100), topic, topic)
	},
	func(topic, _, _ string) string {
		return fmt.Sprintf("Can anyone recommend a good resource on %s? #%s", topic, topic)
	},
	func(topic, _, sentence string) string {
		return fmt.Sprintf("%s #%s", sentence, topic)
	},
}

// Seeder populates the database with realistic demo data. Writes go through
// the repositories so denormalized counters and hashtag links stay correct.
type Seeder struct {
	db      *gorm.DB
	users   repository.UserRepository
	posts   repository.PostRepository
	follows repository.FollowRepository
	opts    Options
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:      db,
		users:   repository.NewUserRepository(db),
		posts:   repository.NewPostRepository(db),
		follows: repository.NewFollowRepository(db),
		opts:    opts,
	}
}

// ClearAll removes all seeded data. Order matters for foreign keys.
func (s *Seeder) ClearAll() error {
	log.Println("🧹 Cleaning database...")
	tables := []interface{}{
		&models.PostHashtag{},
		&models.Hashtag{},
		&models.Like{},
		&models.Follow{},
		&models.Post{},
		&models.User{},
	}
	for _, table := range tables {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error; err != nil {
			return fmt.Errorf("failed to clean %T: %w", table, err)
		}
	}
	return nil
}

// Run seeds users, posts, follows, likes and reposts.
func (s *Seeder) Run(ctx context.Context) error {
	users, err := s.createUsers(ctx)
	if err != nil {
		return err
	}
	posts, err := s.createPosts(ctx, users)
	if err != nil {
		return err
	}
	if err := s.createFollows(ctx, users); err != nil {
		return err
	}
	if err := s.createLikes(ctx, users, posts); err != nil {
		return err
	}
	if err := s.createReposts(ctx, users, posts); err != nil {
		return err
	}
	return nil
}

func (s *Seeder) createUsers(ctx context.Context) ([]*models.User, error) {
	log.Printf("👤 Creating %d users...", s.opts.NumUsers)

	password, err := s.passwordHash()
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, s.opts.NumUsers)
	for i := 0; i < s.opts.NumUsers; i++ {
		username := fmt.Sprintf("%s%d", strings.ToLower(gofakeit.Username()), gofakeit.Number(10, 99))
		display := gofakeit.Name()
		user := &models.User{
			Username:    username,
			Password:    password,
			DisplayName: &display,
			Bio:         gofakeit.Sentence(8),
		}
		// roughly a third of users sign up without an email
		if gofakeit.Number(0, 2) > 0 {
			email := strings.ToLower(fmt.Sprintf("%s@%s", username, gofakeit.DomainName()))
			user.Email = &email
		}
		if err := s.users.Create(ctx, user); err != nil {
			// username collisions from gofakeit are rare but possible
			log.Printf("  skipping user %s: %v", username, err)
			continue
		}
		users = append(users, user)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("no users created")
	}
	log.Printf("  created %d users", len(users))
	return users, nil
}

func (s *Seeder) passwordHash() (string, error) {
	if s.opts.SkipBcrypt {
		// hash of "password123" with cost 10
		return "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy", nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (s *Seeder) createPosts(ctx context.Context, users []*models.User) ([]*models.Post, error) {
	log.Printf("📝 Creating %d posts...", s.opts.NumPosts)

	maxDays := s.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}

	posts := make([]*models.Post, 0, s.opts.NumPosts)
	for i := 0; i < s.opts.NumPosts; i++ {
		author := users[rand.Intn(len(users))]
		post := &models.Post{
			AuthorID:  author.ID,
			Text:      s.postText(),
			CreatedAt: time.Now().UTC().Add(-time.Duration(rand.Intn(maxDays*24)) * time.Hour),
		}
		if err := s.posts.Create(ctx, post, hashtag.Extract(post.Text)); err != nil {
			return nil, fmt.Errorf("failed to create post: %w", err)
		}
		posts = append(posts, post)
	}
	log.Printf("  created %d posts", len(posts))
	return posts, nil
}

func (s *Seeder) postText() string {
	topic := topics[rand.Intn(len(topics))]
	second := topics[rand.Intn(len(topics))]
	tpl := postTemplates[rand.Intn(len(postTemplates))]
	text := tpl(topic, second, gofakeit.Sentence(6))
	// posts are capped at 280 runes
	if runes := []rune(text); len(runes) > 280 {
		text = string(runes[:280])
	}
	return text
}

func (s *Seeder) createFollows(ctx context.Context, users []*models.User) error {
	log.Println("🔗 Creating follow graph...")

	created := 0
	for _, follower := range users {
		// each user follows a handful of others
		for n := gofakeit.Number(1, 8); n > 0; n-- {
			target := users[rand.Intn(len(users))]
			if target.ID == follower.ID {
				continue
			}
			if err := s.follows.Follow(ctx, follower.ID, target.ID); err != nil {
				return fmt.Errorf("failed to create follow: %w", err)
			}
			created++
		}
	}
	log.Printf("  created %d follow edges", created)
	return nil
}

func (s *Seeder) createLikes(ctx context.Context, users []*models.User, posts []*models.Post) error {
	log.Println("❤️  Creating likes...")

	created := 0
	for _, post := range posts {
		for n := gofakeit.Number(0, 6); n > 0; n-- {
			user := users[rand.Intn(len(users))]
			liked, err := s.posts.IsLiked(ctx, user.ID, post.ID)
			if err != nil {
				return fmt.Errorf("failed to check like: %w", err)
			}
			if liked {
				continue
			}
			if err := s.posts.Like(ctx, user.ID, post.ID); err != nil {
				return fmt.Errorf("failed to create like: %w", err)
			}
			created++
		}
	}
	log.Printf("  created %d likes", created)
	return nil
}

func (s *Seeder) createReposts(ctx context.Context, users []*models.User, posts []*models.Post) error {
	log.Println("🔁 Creating reposts...")

	target := len(posts) / 10
	created := 0
	for attempts := 0; created < target && attempts < target*5; attempts++ {
		source := posts[rand.Intn(len(posts))]
		user := users[rand.Intn(len(users))]
		if user.ID == source.AuthorID || source.OriginalPostID != nil {
			continue
		}
		reposted, err := s.posts.HasReposted(ctx, user.ID, source.ID)
		if err != nil {
			return fmt.Errorf("failed to check repost: %w", err)
		}
		if reposted {
			continue
		}
		repost := &models.Post{
			AuthorID:       user.ID,
			Text:           source.Text,
			OriginalPostID: &source.ID,
		}
		if err := s.posts.Repost(ctx, repost, source.ID); err != nil {
			return fmt.Errorf("failed to create repost: %w", err)
		}
		created++
	}
	log.Printf("  created %d reposts", created)
	return nil
}
