package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kimshinchol/nnponline-sub000/internal/clock"
	"github.com/kimshinchol/nnponline-sub000/internal/models"
	"github.com/kimshinchol/nnponline-sub000/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrProjectNotFound = errors.New("project not found")
	ErrNotTaskOwner    = errors.New("only the task owner can perform this action")
	ErrInvalidStatus   = errors.New("status must be not-started, in-progress or completed")
	ErrInvalidTeam     = errors.New("unknown team")
	ErrAlreadyCoWork   = errors.New("task is already in the co-work pool")
	ErrNotCoWork       = errors.New("task is not in the co-work pool")
	ErrTitleRequired   = errors.New("title is required")
)

// unknownOwner is the display fallback when a task's owner cannot be
// resolved and no snapshot survives.
const unknownOwner = "Unknown"

// TaskService owns the task lifecycle (personal-active, co-work-pending,
// archived) and the visibility rules of every task view.
type TaskService struct {
	taskRepo    repository.TaskRepository
	userRepo    repository.UserRepository
	projectRepo repository.ProjectRepository
	now         func() time.Time
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository, projectRepo repository.ProjectRepository) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		userRepo:    userRepo,
		projectRepo: projectRepo,
		now:         time.Now,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description *string
	Status      models.TaskStatus
	DueDate     *time.Time
	ProjectID   uint64
	UserID      uint64

	// CoWork creates the task directly in the co-work pool.
	CoWork bool
}

// CreateTask creates a task owned by input.UserID. The owner's username and
// the project's name are stamped onto the task at write time.
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}

	if input.Status == "" {
		input.Status = models.TaskStatusNotStarted
	}
	if !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	// A task born in the co-work pool starts fresh for whoever accepts it;
	// callers cannot pick its status.
	if input.CoWork {
		input.Status = models.TaskStatusNotStarted
	}

	owner, err := s.userRepo.FindByID(input.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve task owner: %w", err)
	}

	project, err := s.projectRepo.FindByID(input.ProjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to resolve project: %w", err)
	}

	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		DueDate:     input.DueDate,
		UserID:      owner.ID,
		ProjectID:   project.ID,
		Username:    owner.Username,
		ProjectName: project.Name,
		IsCoWork:    input.CoWork,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// ListPersonal returns the requesting user's tasks for a single UTC+9
// calendar day (today when date is nil). Archived and co-work tasks are
// excluded.
func (s *TaskService) ListPersonal(userID uint64, date *time.Time) ([]models.Task, error) {
	day := s.now()
	if date != nil {
		day = *date
	}
	from, to := clock.DayWindow(day)

	return s.taskRepo.List(repository.TaskFilter{
		UserID:            &userID,
		CoWork:            boolPtr(false),
		Archived:          boolPtr(false),
		CreatedFrom:       &from,
		CreatedTo:         &to,
		OrderByStatusRank: true,
	})
}

// ListByDate returns every user's tasks created on the given UTC+9 calendar
// day, status-ranked, with owner usernames attached.
func (s *TaskService) ListByDate(date time.Time) ([]models.Task, error) {
	from, to := clock.DayWindow(date)

	tasks, err := s.taskRepo.List(repository.TaskFilter{
		CoWork:            boolPtr(false),
		Archived:          boolPtr(false),
		CreatedFrom:       &from,
		CreatedTo:         &to,
		OrderByStatusRank: true,
	})
	if err != nil {
		return nil, err
	}

	return s.annotateOwners(tasks), nil
}

// ListTeam returns today's tasks owned by members of the given team (or the
// given day when date is non-nil), status-ranked, with usernames attached.
func (s *TaskService) ListTeam(team models.Team, date *time.Time) ([]models.Task, error) {
	if !team.Valid() {
		return nil, ErrInvalidTeam
	}

	members, err := s.userRepo.ListByTeam(team)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve team members: %w", err)
	}

	memberIDs := make([]uint64, 0, len(members))
	for _, m := range members {
		memberIDs = append(memberIDs, m.ID)
	}

	day := s.now()
	if date != nil {
		day = *date
	}
	from, to := clock.DayWindow(day)

	tasks, err := s.taskRepo.List(repository.TaskFilter{
		UserIDs:           memberIDs,
		CoWork:            boolPtr(false),
		Archived:          boolPtr(false),
		CreatedFrom:       &from,
		CreatedTo:         &to,
		OrderByStatusRank: true,
	})
	if err != nil {
		return nil, err
	}

	return s.annotateOwners(tasks), nil
}

// ListProject returns the tasks of one project, or of all projects when
// projectID is nil, newest first, with usernames attached.
func (s *TaskService) ListProject(projectID *uint64) ([]models.Task, error) {
	tasks, err := s.taskRepo.List(repository.TaskFilter{
		ProjectID: projectID,
		CoWork:    boolPtr(false),
		Archived:  boolPtr(false),
	})
	if err != nil {
		return nil, err
	}

	return s.annotateOwners(tasks), nil
}

// ListCoWork returns the pending co-work pool, newest first.
func (s *TaskService) ListCoWork() ([]models.Task, error) {
	tasks, err := s.taskRepo.List(repository.TaskFilter{
		CoWork:   boolPtr(true),
		Archived: boolPtr(false),
	})
	if err != nil {
		return nil, err
	}

	return s.annotateOwners(tasks), nil
}

// ListArchived returns archived tasks, newest first.
func (s *TaskService) ListArchived() ([]models.Task, error) {
	tasks, err := s.taskRepo.List(repository.TaskFilter{
		Archived: boolPtr(true),
	})
	if err != nil {
		return nil, err
	}

	return s.annotateOwners(tasks), nil
}

// UpdateTaskInput represents a partial task update
type UpdateTaskInput struct {
	Title            *string
	Description      *string
	ClearDescription bool
	Status           *models.TaskStatus
	DueDate          *time.Time
	ClearDueDate     bool
}

// UpdateTask applies a partial update. Only the owner may edit their task.
func (s *TaskService) UpdateTask(taskID, actorID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}

	if task.UserID != actorID {
		return nil, ErrNotTaskOwner
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrTitleRequired
		}
		task.Title = *input.Title
	}
	if input.ClearDescription {
		task.Description = nil
	} else if input.Description != nil {
		task.Description = input.Description
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		task.Status = *input.Status
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// UpdateStatus sets the status field. Status transitions are independent of
// the co-work and archive flags and never gate them.
func (s *TaskService) UpdateStatus(taskID, actorID uint64, status models.TaskStatus) (*models.Task, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}

	if task.UserID != actorID {
		return nil, ErrNotTaskOwner
	}

	if err := s.taskRepo.UpdateStatus(taskID, status); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	task.Status = status
	return task, nil
}

// MoveToCoWork pushes a personal task into the co-work pool, recording the
// pre-handoff owner.
func (s *TaskService) MoveToCoWork(taskID, actorID uint64) (*models.Task, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}

	if task.IsCoWork {
		return nil, ErrAlreadyCoWork
	}
	if task.UserID != actorID {
		return nil, ErrNotTaskOwner
	}

	originalID := task.UserID
	originalName := task.Username
	task.OriginalUserID = &originalID
	task.OriginalUsername = &originalName
	task.IsCoWork = true

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to move task to co-work: %w", err)
	}

	return task, nil
}

// AcceptCoWork transfers ownership of a co-work task to the acceptor. The
// transfer is atomic: a second concurrent acceptor loses and gets
// ErrNotCoWork. All fields besides ownership and the co-work flag are
// preserved verbatim.
func (s *TaskService) AcceptCoWork(taskID, actorID uint64) (*models.Task, error) {
	acceptor, err := s.userRepo.FindByID(actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve acceptor: %w", err)
	}

	if _, err := s.findTask(taskID); err != nil {
		return nil, err
	}

	rows, err := s.taskRepo.AcceptCoWork(taskID, acceptor)
	if err != nil {
		return nil, fmt.Errorf("failed to accept co-work task: %w", err)
	}
	if rows == 0 {
		return nil, ErrNotCoWork
	}

	return s.findTask(taskID)
}

// DeleteTask deletes a task. Personal tasks may only be deleted by their
// owner; co-work tasks belong to the shared pool and may be deleted by any
// authenticated user.
func (s *TaskService) DeleteTask(taskID, actorID uint64) error {
	task, err := s.findTask(taskID)
	if err != nil {
		return err
	}

	if !task.IsCoWork && task.UserID != actorID {
		return ErrNotTaskOwner
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// ArchiveInput filters the admin bulk-archive operation
type ArchiveInput struct {
	Cutoff    *time.Time
	Status    *models.TaskStatus
	ProjectID *uint64
}

// Archive flags matching tasks as archived. Archived tasks disappear from
// every normal view but stay in storage.
func (s *TaskService) Archive(input ArchiveInput) (int64, error) {
	if input.Status != nil && !input.Status.Valid() {
		return 0, ErrInvalidStatus
	}

	count, err := s.taskRepo.ArchiveMatching(input.Cutoff, input.Status, input.ProjectID)
	if err != nil {
		return 0, fmt.Errorf("failed to archive tasks: %w", err)
	}

	return count, nil
}

func (s *TaskService) findTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// annotateOwners resolves each task's owner username from the live user set.
// When the owner is gone the stamped snapshot is displayed; a task with
// neither falls back to "Unknown".
func (s *TaskService) annotateOwners(tasks []models.Task) []models.Task {
	if len(tasks) == 0 {
		return tasks
	}

	users, err := s.userRepo.List()
	if err != nil {
		// Snapshots still render; live resolution is best effort.
		users = nil
	}

	names := make(map[uint64]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}

	for i := range tasks {
		if name, ok := names[tasks[i].UserID]; ok {
			tasks[i].Username = name
		} else if tasks[i].Username == "" {
			tasks[i].Username = unknownOwner
		}
	}

	return tasks
}

func boolPtr(b bool) *bool {
	return &b
}
