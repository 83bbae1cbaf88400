package service

import (
	"context"

	"bailanysta/internal/models"
	"bailanysta/internal/repository"
)

// UserService implements public profiles and the follow graph.
type UserService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
}

func NewUserService(userRepo repository.UserRepository, followRepo repository.FollowRepository) *UserService {
	return &UserService{userRepo: userRepo, followRepo: followRepo}
}

// Profile returns a user's public profile with denormalized counts.
func (s *UserService) Profile(ctx context.Context, username string) (*models.UserPublic, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	return s.public(ctx, user)
}

func (s *UserService) Me(ctx context.Context, userID uint) (*models.UserPublic, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.public(ctx, user)
}

// Follow makes userID follow the user named by username. Following someone
// you already follow is a no-op.
func (s *UserService) Follow(ctx context.Context, userID uint, username string) error {
	target, err := s.target(ctx, userID, username)
	if err != nil {
		return err
	}
	return s.followRepo.Follow(ctx, userID, target.ID)
}

// Unfollow removes the follow edge if present.
func (s *UserService) Unfollow(ctx context.Context, userID uint, username string) error {
	target, err := s.target(ctx, userID, username)
	if err != nil {
		return err
	}
	return s.followRepo.Unfollow(ctx, userID, target.ID)
}

func (s *UserService) target(ctx context.Context, userID uint, username string) (*models.User, error) {
	target, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	if target.ID == userID {
		return nil, models.NewValidationError("You cannot follow yourself")
	}
	return target, nil
}

func (s *UserService) public(ctx context.Context, user *models.User) (*models.UserPublic, error) {
	counts, err := s.userRepo.ProfileCounts(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	pub := publicUser(user, counts)
	return &pub, nil
}
