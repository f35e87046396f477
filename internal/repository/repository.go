package repository

import (
	"time"

	"github.com/kimshinchol/nnponline-sub000/internal/models"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID
	FindByID(id uint64) (*models.Task, error)

	// List retrieves tasks matching the filter, ordered per the filter
	List(filter TaskFilter) ([]models.Task, error)

	// Update saves all fields of a task
	Update(task *models.Task) error

	// UpdateStatus sets only the status column
	UpdateStatus(id uint64, status models.TaskStatus) error

	// AcceptCoWork transfers ownership of a co-work task to newOwner.
	// The update is conditional on the task still being in the co-work pool;
	// the returned count is the number of rows transferred (0 or 1).
	AcceptCoWork(id uint64, newOwner *models.User) (int64, error)

	// Delete removes a task permanently
	Delete(id uint64) error

	// CountRange counts tasks with created_at in [from, to)
	CountRange(from, to time.Time) (int64, error)

	// DeleteRange removes tasks with created_at in [from, to), returning the
	// number of rows removed
	DeleteRange(from, to time.Time) (int64, error)

	// ArchiveMatching flags matching tasks as archived, returning the count
	ArchiveMatching(cutoff *time.Time, status *models.TaskStatus, projectID *uint64) (int64, error)

	// StampUsername backfills the username snapshot on all tasks owned by a user
	StampUsername(userID uint64, username string) error

	// StampProjectName backfills the project name snapshot on a project's tasks
	StampProjectName(projectID uint64, name string) error
}

// TaskFilter holds the visibility rules for listing tasks.
//
// Archived and CoWork are tri-state: nil excludes nothing on that axis,
// pointers restrict to the given value. Every view except the archive
// listing sets Archived=false; every view except the co-work pool sets
// CoWork=false.
type TaskFilter struct {
	UserID      *uint64
	UserIDs     []uint64
	ProjectID   *uint64
	CoWork      *bool
	Archived    *bool
	CreatedFrom *time.Time
	CreatedTo   *time.Time

	// Order by status rank (not-started, in-progress, completed) before
	// created_at DESC; otherwise created_at DESC only.
	OrderByStatusRank bool
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds an active user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds an active user by username
	FindByUsername(username string) (*models.User, error)

	// List lists active users
	List() ([]models.User, error)

	// ListByTeam lists active users belonging to a team
	ListByTeam(team models.Team) ([]models.User, error)

	// Count counts all users, including soft-deleted ones
	Count() (int64, error)

	// Update saves all fields of a user
	Update(user *models.User) error

	// SoftDelete flags a user deleted and stamps their username onto their
	// tasks so historical display survives the deletion
	SoftDelete(id uint64, at time.Time) error
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a new project
	Create(project *models.Project) error

	// FindByID finds an active project by ID
	FindByID(id uint64) (*models.Project, error)

	// ListActive lists active projects, newest first
	ListActive() ([]models.Project, error)

	// SoftDelete flags a project deleted and stamps its name onto its tasks
	SoftDelete(id uint64, at time.Time) error
}
