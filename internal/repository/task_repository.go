package repository

import (
	"time"

	"github.com/kimshinchol/nnponline-sub000/internal/models"
	"gorm.io/gorm"
)

// statusRankOrder sorts not-started before in-progress before completed.
const statusRankOrder = "CASE tasks.status WHEN 'not-started' THEN 0 WHEN 'in-progress' THEN 1 ELSE 2 END, tasks.created_at DESC"

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID
func (r *GormTaskRepository) FindByID(id uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves tasks matching the filter
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, error) {
	var tasks []models.Task

	query := r.db.Model(&models.Task{})

	if filter.UserID != nil {
		query = query.Where("tasks.user_id = ?", *filter.UserID)
	}
	if filter.UserIDs != nil {
		if len(filter.UserIDs) == 0 {
			return []models.Task{}, nil
		}
		query = query.Where("tasks.user_id IN ?", filter.UserIDs)
	}
	if filter.ProjectID != nil {
		query = query.Where("tasks.project_id = ?", *filter.ProjectID)
	}
	if filter.CoWork != nil {
		query = query.Where("tasks.is_co_work = ?", *filter.CoWork)
	}
	if filter.Archived != nil {
		query = query.Where("tasks.is_archived = ?", *filter.Archived)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("tasks.created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("tasks.created_at < ?", *filter.CreatedTo)
	}

	if filter.OrderByStatusRank {
		query = query.Order(statusRankOrder)
	} else {
		query = query.Order("tasks.created_at DESC")
	}

	if err := query.Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

// Update saves all fields of a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// UpdateStatus sets only the status column
func (r *GormTaskRepository) UpdateStatus(id uint64, status models.TaskStatus) error {
	return r.db.Model(&models.Task{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// AcceptCoWork transfers ownership conditionally on the task still being in
// the co-work pool, so two racing acceptors cannot both win.
func (r *GormTaskRepository) AcceptCoWork(id uint64, newOwner *models.User) (int64, error) {
	result := r.db.Model(&models.Task{}).
		Where("id = ? AND is_co_work = ?", id, true).
		Updates(map[string]interface{}{
			"user_id":    newOwner.ID,
			"username":   newOwner.Username,
			"is_co_work": false,
		})
	return result.RowsAffected, result.Error
}

// Delete removes a task permanently
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Task{}, id).Error
}

// CountRange counts tasks with created_at in [from, to)
func (r *GormTaskRepository) CountRange(from, to time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Task{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error
	return count, err
}

// DeleteRange removes tasks with created_at in [from, to). The selection is
// recomputed here rather than reusing a previously exported id set.
func (r *GormTaskRepository) DeleteRange(from, to time.Time) (int64, error) {
	result := r.db.
		Where("created_at >= ? AND created_at < ?", from, to).
		Delete(&models.Task{})
	return result.RowsAffected, result.Error
}

// ArchiveMatching flags matching tasks as archived
func (r *GormTaskRepository) ArchiveMatching(cutoff *time.Time, status *models.TaskStatus, projectID *uint64) (int64, error) {
	query := r.db.Model(&models.Task{}).Where("is_archived = ?", false)

	if cutoff != nil {
		query = query.Where("created_at < ?", *cutoff)
	}
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if projectID != nil {
		query = query.Where("project_id = ?", *projectID)
	}

	result := query.Update("is_archived", true)
	return result.RowsAffected, result.Error
}

// StampUsername backfills the username snapshot on all tasks owned by a user
func (r *GormTaskRepository) StampUsername(userID uint64, username string) error {
	return r.db.Model(&models.Task{}).
		Where("user_id = ?", userID).
		Update("username", username).Error
}

// StampProjectName backfills the project name snapshot on a project's tasks
func (r *GormTaskRepository) StampProjectName(projectID uint64, name string) error {
	return r.db.Model(&models.Task{}).
		Where("project_id = ?", projectID).
		Update("project_name", name).Error
}
