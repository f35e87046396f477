package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kimshinchol/nnponline-sub000/internal/constants"
	"github.com/kimshinchol/nnponline-sub000/internal/models"
	"github.com/kimshinchol/nnponline-sub000/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrCannotDeleteSelf = errors.New("admins cannot delete their own account")

// UserService covers the admin-facing user management surface.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// ListUsers returns all active users.
func (s *UserService) ListUsers() ([]models.User, error) {
	return s.userRepo.List()
}

// UpdateUserInput represents a partial admin edit of a user record
type UpdateUserInput struct {
	Email      *string
	Team       *models.Team
	IsAdmin    *bool
	IsApproved *bool
	Password   *string
}

// UpdateUser applies a partial update to a user. Approval flips through
// here: PATCH with is_approved=true is the admin approval step.
func (s *UserService) UpdateUser(id uint64, input UpdateUserInput) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if input.Email != nil {
		user.Email = strings.TrimSpace(*input.Email)
	}
	if input.Team != nil {
		if !input.Team.Valid() {
			return nil, ErrInvalidTeam
		}
		user.Team = *input.Team
	}
	if input.IsAdmin != nil {
		user.IsAdmin = *input.IsAdmin
	}
	if input.IsApproved != nil {
		user.IsApproved = *input.IsApproved
	}
	if input.Password != nil {
		if len(*input.Password) < constants.MinPasswordLength {
			return nil, ErrPasswordTooShort
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, ErrFailedToHashPassword
		}
		user.PasswordHash = string(hashed)
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// DeleteUser soft-deletes a user; their username is stamped onto their tasks
// so historical display survives.
func (s *UserService) DeleteUser(id, actorID uint64) error {
	if id == actorID {
		return ErrCannotDeleteSelf
	}

	if _, err := s.userRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.userRepo.SoftDelete(id, time.Now()); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return nil
}
