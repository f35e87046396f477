package dto

import (
	"time"

	"github.com/kimshinchol/nnponline-sub000/internal/models"
)

// TaskDTO represents a task in API responses. Username and ProjectName are
// the denormalized display snapshots, possibly refreshed from the live user
// set by the listing view.
type TaskDTO struct {
	ID               uint64            `json:"id"`
	Title            string            `json:"title"`
	Description      *string           `json:"description"`
	Status           models.TaskStatus `json:"status"`
	UserID           uint64            `json:"user_id"`
	ProjectID        uint64            `json:"project_id"`
	Username         string            `json:"username"`
	ProjectName      string            `json:"project_name"`
	IsCoWork         bool              `json:"is_co_work"`
	IsArchived       bool              `json:"is_archived"`
	OriginalUserID   *uint64           `json:"original_user_id,omitempty"`
	OriginalUsername *string           `json:"original_username,omitempty"`
	DueDate          *time.Time        `json:"due_date"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:               task.ID,
		Title:            task.Title,
		Description:      task.Description,
		Status:           task.Status,
		UserID:           task.UserID,
		ProjectID:        task.ProjectID,
		Username:         task.Username,
		ProjectName:      task.ProjectName,
		IsCoWork:         task.IsCoWork,
		IsArchived:       task.IsArchived,
		OriginalUserID:   task.OriginalUserID,
		OriginalUsername: task.OriginalUsername,
		DueDate:          task.DueDate,
		CreatedAt:        task.CreatedAt,
		UpdatedAt:        task.UpdatedAt,
	}
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, t := range tasks {
		dtos[i] = ToTaskDTO(t)
	}
	return dtos
}
