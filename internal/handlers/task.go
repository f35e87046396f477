package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kimshinchol/nnponline-sub000/internal/clock"
	"github.com/kimshinchol/nnponline-sub000/internal/dto"
	apierrors "github.com/kimshinchol/nnponline-sub000/internal/errors"
	"github.com/kimshinchol/nnponline-sub000/internal/middleware"
	"github.com/kimshinchol/nnponline-sub000/internal/models"
	"github.com/kimshinchol/nnponline-sub000/internal/services"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// CreateTask creates a personal task owned by the requester.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	h.createTask(c, false)
}

// CreateCoWorkTask creates a task directly in the co-work pool.
func (h *TaskHandler) CreateCoWorkTask(c *gin.Context) {
	h.createTask(c, true)
}

func (h *TaskHandler) createTask(c *gin.Context, coWork bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateTaskRequest struct {
		Title       string            `json:"title" binding:"required"`
		Description *string           `json:"description"`
		Status      models.TaskStatus `json:"status"`
		DueDate     *time.Time        `json:"due_date"`
		ProjectID   uint64            `json:"project_id" binding:"required"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate,
		ProjectID:   req.ProjectID,
		UserID:      userID,
		CoWork:      coWork,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// ListUserTasks returns the requester's tasks for one calendar day,
// defaulting to today.
func (h *TaskHandler) ListUserTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	date, ok := optionalDateParam(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.ListPersonal(userID, date)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": dto.ToTaskDTOs(tasks)})
}

// ListTasksByDate returns every user's tasks for the requested calendar day.
func (h *TaskHandler) ListTasksByDate(c *gin.Context) {
	dateStr := c.Query("date")
	if dateStr == "" {
		apierrors.BadRequest(c, "date parameter is required")
		return
	}
	date, err := clock.ParseDate(dateStr)
	if err != nil {
		apierrors.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
		return
	}

	tasks, err := h.taskService.ListByDate(date)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": dto.ToTaskDTOs(tasks)})
}

// ListTeamTasks returns today's tasks for one team (or a requested day).
func (h *TaskHandler) ListTeamTasks(c *gin.Context) {
	team := models.Team(c.Param("team"))

	date, ok := optionalDateParam(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.ListTeam(team, date)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": dto.ToTaskDTOs(tasks)})
}

// ListProjectTasks returns tasks of one project, or of all projects when no
// id is given.
func (h *TaskHandler) ListProjectTasks(c *gin.Context) {
	var projectID *uint64
	if idStr := c.Param("id"); idStr != "" {
		id, err := strconv.ParseUint(idStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid project ID")
			return
		}
		projectID = &id
	}

	tasks, err := h.taskService.ListProject(projectID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": dto.ToTaskDTOs(tasks)})
}

// ListCoWorkTasks returns the pending co-work pool.
func (h *TaskHandler) ListCoWorkTasks(c *gin.Context) {
	tasks, err := h.taskService.ListCoWork()
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": dto.ToTaskDTOs(tasks)})
}

// ListArchivedTasks returns archived tasks.
func (h *TaskHandler) ListArchivedTasks(c *gin.Context) {
	tasks, err := h.taskService.ListArchived()
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": dto.ToTaskDTOs(tasks)})
}

// UpdateTask applies a partial edit to a task the requester owns.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	// Parse raw JSON to tell "absent" from "null" on the nullable fields.
	var rawReq map[string]any
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var input services.UpdateTaskInput
	if title, ok := rawReq["title"].(string); ok {
		input.Title = &title
	}
	if raw, ok := rawReq["description"]; ok {
		if raw == nil {
			input.ClearDescription = true
		} else if desc, ok := raw.(string); ok {
			input.Description = &desc
		}
	}
	if status, ok := rawReq["status"].(string); ok {
		s := models.TaskStatus(status)
		input.Status = &s
	}
	if raw, ok := rawReq["due_date"]; ok {
		if raw == nil {
			input.ClearDueDate = true
		} else if dueDateStr, ok := raw.(string); ok {
			parsed, err := time.Parse(time.RFC3339, dueDateStr)
			if err != nil {
				apierrors.BadRequest(c, "Invalid due_date, expected RFC3339")
				return
			}
			input.DueDate = &parsed
		}
	}

	task, err := h.taskService.UpdateTask(taskID, userID, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateTaskStatus sets the status field only.
func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	type StatusRequest struct {
		Status models.TaskStatus `json:"status" binding:"required"`
	}

	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.UpdateStatus(taskID, userID, req.Status)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask deletes a task the requester owns (or any co-work task).
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(taskID, userID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// MoveToCoWork hands a personal task off to the co-work pool.
func (h *TaskHandler) MoveToCoWork(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	task, err := h.taskService.MoveToCoWork(taskID, userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// AcceptCoWork claims a co-work task for the requester.
func (h *TaskHandler) AcceptCoWork(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	task, err := h.taskService.AcceptCoWork(taskID, userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// ArchiveTasks bulk-archives tasks matching the request filters (admin).
func (h *TaskHandler) ArchiveTasks(c *gin.Context) {
	type ArchiveRequest struct {
		CutoffDate string             `json:"cutoff_date"`
		Status     *models.TaskStatus `json:"status"`
		ProjectID  *uint64            `json:"project_id"`
	}

	var req ArchiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var input services.ArchiveInput
	if req.CutoffDate != "" {
		day, err := clock.ParseDate(req.CutoffDate)
		if err != nil {
			apierrors.BadRequest(c, "Invalid cutoff_date, expected YYYY-MM-DD")
			return
		}
		// Inclusive of the cutoff day.
		cutoff := day.Add(24 * time.Hour)
		input.Cutoff = &cutoff
	}
	input.Status = req.Status
	input.ProjectID = req.ProjectID

	count, err := h.taskService.Archive(input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Tasks archived",
		"archived": count,
	})
}

// optionalDateParam parses ?date= when present. Returns ok=false after
// responding 400 for a malformed value.
func optionalDateParam(c *gin.Context) (*time.Time, bool) {
	dateStr := c.Query("date")
	if dateStr == "" {
		return nil, true
	}
	date, err := clock.ParseDate(dateStr)
	if err != nil {
		apierrors.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
		return nil, false
	}
	return &date, true
}

func taskIDParam(c *gin.Context) (uint64, bool) {
	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return 0, false
	}
	return taskID, true
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidTeam):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotTaskOwner):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrAlreadyCoWork),
		errors.Is(err, services.ErrNotCoWork):
		apierrors.Conflict(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
