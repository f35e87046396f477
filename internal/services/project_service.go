package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kimshinchol/nnponline-sub000/internal/models"
	"github.com/kimshinchol/nnponline-sub000/internal/repository"
	"gorm.io/gorm"
)

var ErrProjectNameRequired = errors.New("project name is required")

// ProjectService handles project grouping for tasks.
type ProjectService struct {
	projectRepo repository.ProjectRepository
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo repository.ProjectRepository) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
	}
}

// CreateProject creates an active project. Any authenticated user may create
// projects.
func (s *ProjectService) CreateProject(name string) (*models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrProjectNameRequired
	}

	project := &models.Project{
		Name:     name,
		IsActive: true,
	}

	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// ListProjects returns active projects, newest first.
func (s *ProjectService) ListProjects() ([]models.Project, error) {
	return s.projectRepo.ListActive()
}

// DeleteProject soft-deletes a project. The project's name is stamped onto
// its tasks first so task history stays readable after the project is gone.
func (s *ProjectService) DeleteProject(id uint64) error {
	if _, err := s.projectRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to find project: %w", err)
	}

	if err := s.projectRepo.SoftDelete(id, time.Now()); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}
