package repository

import (
	"time"

	"github.com/kimshinchol/nnponline-sub000/internal/database"
	"github.com/kimshinchol/nnponline-sub000/internal/models"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a new project
func (r *GormProjectRepository) Create(project *models.Project) error {
	return r.db.Create(project).Error
}

// FindByID finds an active project by ID
func (r *GormProjectRepository) FindByID(id uint64) (*models.Project, error) {
	var project models.Project
	if err := r.db.Scopes(database.ActiveRows).First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// ListActive lists active projects, newest first
func (r *GormProjectRepository) ListActive() ([]models.Project, error) {
	var projects []models.Project
	if err := r.db.Scopes(database.ActiveRows).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// SoftDelete flags the project deleted and stamps its name onto its tasks in
// the same transaction.
func (r *GormProjectRepository) SoftDelete(id uint64, at time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.First(&project, id).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Task{}).
			Where("project_id = ?", id).
			Update("project_name", project.Name).Error; err != nil {
			return err
		}

		return tx.Model(&project).Updates(map[string]interface{}{
			"is_active":  false,
			"is_deleted": true,
			"deleted_at": at,
		}).Error
	})
}
