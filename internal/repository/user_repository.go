package repository

import (
	"time"

	"github.com/kimshinchol/nnponline-sub000/internal/database"
	"github.com/kimshinchol/nnponline-sub000/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// FindByID finds an active user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.Scopes(database.ActiveRows).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds an active user by username
func (r *GormUserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Scopes(database.ActiveRows).
		Where("username = ?", username).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List lists active users
func (r *GormUserRepository) List() ([]models.User, error) {
	var users []models.User
	if err := r.db.Scopes(database.ActiveRows).
		Order("id ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ListByTeam lists active users belonging to a team
func (r *GormUserRepository) ListByTeam(team models.Team) ([]models.User, error) {
	var users []models.User
	if err := r.db.Scopes(database.ActiveRows).
		Where("team = ?", team).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Count counts all users, including soft-deleted ones
func (r *GormUserRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Count(&count).Error
	return count, err
}

// Update saves all fields of a user
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// SoftDelete flags the user deleted and stamps their username onto their
// tasks in the same transaction, so historical task display survives.
func (r *GormUserRepository) SoftDelete(id uint64, at time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Task{}).
			Where("user_id = ?", id).
			Update("username", user.Username).Error; err != nil {
			return err
		}

		return tx.Model(&user).Updates(map[string]interface{}{
			"is_deleted": true,
			"deleted_at": at,
		}).Error
	})
}
