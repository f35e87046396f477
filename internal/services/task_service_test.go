package services

import (
	"testing"
	"time"

	"github.com/kimshinchol/nnponline-sub000/internal/clock"
	"github.com/kimshinchol/nnponline-sub000/internal/models"
	"github.com/kimshinchol/nnponline-sub000/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type serviceTestEnv struct {
	db          *gorm.DB
	taskService *TaskService
	taskRepo    repository.TaskRepository
	userRepo    repository.UserRepository
	projectRepo repository.ProjectRepository
}

// fixedNow is the instant all "today" computations use in these tests:
// 2024-03-02 in UTC+9 (03-01 20:00 UTC).
var fixedNow = time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)

func setupServiceTestEnv(t *testing.T) serviceTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Task{},
	)
	require.NoError(t, err)

	taskRepo := repository.NewTaskRepository(db)
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)

	svc := NewTaskService(taskRepo, userRepo, projectRepo)
	svc.now = func() time.Time { return fixedNow }

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return serviceTestEnv{
		db:          db,
		taskService: svc,
		taskRepo:    taskRepo,
		userRepo:    userRepo,
		projectRepo: projectRepo,
	}
}

func (env serviceTestEnv) createUser(t *testing.T, username string, team models.Team) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		PasswordHash: "hashedpassword",
		Team:         team,
		IsApproved:   true,
	}
	require.NoError(t, env.db.Create(user).Error)
	return user
}

func (env serviceTestEnv) createProject(t *testing.T, name string) *models.Project {
	t.Helper()
	project := &models.Project{Name: name, IsActive: true}
	require.NoError(t, env.db.Create(project).Error)
	return project
}

func (env serviceTestEnv) createTaskAt(t *testing.T, owner *models.User, project *models.Project, title string, status models.TaskStatus, createdAt time.Time) *models.Task {
	t.Helper()
	task := &models.Task{
		Title:       title,
		Status:      status,
		UserID:      owner.ID,
		ProjectID:   project.ID,
		Username:    owner.Username,
		ProjectName: project.Name,
		CreatedAt:   createdAt,
	}
	require.NoError(t, env.db.Create(task).Error)
	return task
}

func TestCreateTask_StampsSnapshots(t *testing.T) {
	env := setupServiceTestEnv(t)
	user := env.createUser(t, "alice", models.TeamPM)
	project := env.createProject(t, "Launch")

	task, err := env.taskService.CreateTask(CreateTaskInput{
		Title:     "Draft spec",
		ProjectID: project.ID,
		UserID:    user.ID,
	})
	require.NoError(t, err)

	assert.NotZero(t, task.ID)
	assert.Equal(t, "alice", task.Username)
	assert.Equal(t, "Launch", task.ProjectName)
	assert.Equal(t, models.TaskStatusNotStarted, task.Status)
	assert.False(t, task.IsCoWork)
	assert.False(t, task.IsArchived)
}

func TestCreateTask_MissingProject(t *testing.T) {
	env := setupServiceTestEnv(t)
	user := env.createUser(t, "alice", models.TeamPM)

	_, err := env.taskService.CreateTask(CreateTaskInput{
		Title:     "Orphan",
		ProjectID: 999,
		UserID:    user.ID,
	})
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestCreateTask_InvalidStatus(t *testing.T) {
	env := setupServiceTestEnv(t)
	user := env.createUser(t, "alice", models.TeamPM)
	project := env.createProject(t, "Launch")

	_, err := env.taskService.CreateTask(CreateTaskInput{
		Title:     "Bad status",
		Status:    "paused",
		ProjectID: project.ID,
		UserID:    user.ID,
	})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestCreateTask_CoWorkPool(t *testing.T) {
	env := setupServiceTestEnv(t)
	user := env.createUser(t, "alice", models.TeamPM)
	project := env.createProject(t, "Launch")

	task, err := env.taskService.CreateTask(CreateTaskInput{
		Title:     "Shared chore",
		ProjectID: project.ID,
		UserID:    user.ID,
		CoWork:    true,
	})
	require.NoError(t, err)
	assert.True(t, task.IsCoWork)
	assert.Equal(t, models.TaskStatusNotStarted, task.Status)
}

func TestCreateTask_CoWorkIgnoresRequestedStatus(t *testing.T) {
	env := setupServiceTestEnv(t)
	user := env.createUser(t, "alice", models.TeamPM)
	project := env.createProject(t, "Launch")

	// A personal create may carry a status, a pool create may not.
	task, err := env.taskService.CreateTask(CreateTaskInput{
		Title:     "Pre-done chore",
		Status:    models.TaskStatusCompleted,
		ProjectID: project.ID,
		UserID:    user.ID,
		CoWork:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusNotStarted, task.Status)

	personal, err := env.taskService.CreateTask(CreateTaskInput{
		Title:     "Already finished",
		Status:    models.TaskStatusCompleted,
		ProjectID: project.ID,
		UserID:    user.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, personal.Status)
}

func TestMoveToCoWork_RecordsOriginalOwner(t *testing.T) {
	env := setupServiceTestEnv(t)
	user := env.createUser(t, "alice", models.TeamPM)
	project := env.createProject(t, "Launch")
	task := env.createTaskAt(t, user, project, "Handoff", models.TaskStatusInProgress, fixedNow)

	moved, err := env.taskService.MoveToCoWork(task.ID, user.ID)
	require.NoError(t, err)

	assert.True(t, moved.IsCoWork)
	require.NotNil(t, moved.OriginalUserID)
	require.NotNil(t, moved.OriginalUsername)
	assert.Equal(t, user.ID, *moved.OriginalUserID)
	assert.Equal(t, "alice", *moved.OriginalUsername)

	// Moving again is rejected.
	_, err = env.taskService.MoveToCoWork(task.ID, user.ID)
	assert.ErrorIs(t, err, ErrAlreadyCoWork)
}

func TestMoveToCoWork_NotOwner(t *testing.T) {
	env := setupServiceTestEnv(t)
	alice := env.createUser(t, "alice", models.TeamPM)
	bob := env.createUser(t, "bob", models.TeamCM)
	project := env.createProject(t, "Launch")
	task := env.createTaskAt(t, alice, project, "Hers", models.TaskStatusNotStarted, fixedNow)

	_, err := env.taskService.MoveToCoWork(task.ID, bob.ID)
	assert.ErrorIs(t, err, ErrNotTaskOwner)
}

func TestAcceptCoWork_TransfersOwnershipAndPreservesFields(t *testing.T) {
	env := setupServiceTestEnv(t)
	alice := env.createUser(t, "alice", models.TeamPM)
	bob := env.createUser(t, "bob", models.TeamCM)
	project := env.createProject(t, "Launch")
	task := env.createTaskAt(t, alice, project, "Review deck", models.TaskStatusInProgress, fixedNow)

	_, err := env.taskService.MoveToCoWork(task.ID, alice.ID)
	require.NoError(t, err)

	accepted, err := env.taskService.AcceptCoWork(task.ID, bob.ID)
	require.NoError(t, err)

	assert.Equal(t, bob.ID, accepted.UserID)
	assert.Equal(t, "bob", accepted.Username)
	assert.False(t, accepted.IsCoWork)

	// Everything else is preserved verbatim.
	assert.Equal(t, "Review deck", accepted.Title)
	assert.Equal(t, models.TaskStatusInProgress, accepted.Status)
	assert.Equal(t, project.ID, accepted.ProjectID)
	require.NotNil(t, accepted.OriginalUserID)
	assert.Equal(t, alice.ID, *accepted.OriginalUserID)
}

func TestAcceptCoWork_SecondAcceptorLoses(t *testing.T) {
	env := setupServiceTestEnv(t)
	alice := env.createUser(t, "alice", models.TeamPM)
	bob := env.createUser(t, "bob", models.TeamCM)
	carol := env.createUser(t, "carol", models.TeamCC)
	project := env.createProject(t, "Launch")
	task := env.createTaskAt(t, alice, project, "Contested", models.TaskStatusNotStarted, fixedNow)

	_, err := env.taskService.MoveToCoWork(task.ID, alice.ID)
	require.NoError(t, err)

	_, err = env.taskService.AcceptCoWork(task.ID, bob.ID)
	require.NoError(t, err)

	_, err = env.taskService.AcceptCoWork(task.ID, carol.ID)
	assert.ErrorIs(t, err, ErrNotCoWork)

	// Bob keeps the task.
	final, err := env.taskRepo.FindByID(task.ID)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, final.UserID)
}

func TestAcceptCoWork_MissingTask(t *testing.T) {
	env := setupServiceTestEnv(t)
	bob := env.createUser(t, "bob", models.TeamCM)

	_, err := env.taskService.AcceptCoWork(999, bob.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestVisibility_ArchivedExcludedEverywhere(t *testing.T) {
	env := setupServiceTestEnv(t)
	user := env.createUser(t, "alice", models.TeamPM)
	project := env.createProject(t, "Launch")
	task := env.createTaskAt(t, user, project, "Old work", models.TaskStatusCompleted, fixedNow)

	count, err := env.taskService.Archive(ArchiveInput{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	personal, err := env.taskService.ListPersonal(user.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, personal)

	team, err := env.taskService.ListTeam(models.TeamPM, nil)
	require.NoError(t, err)
	assert.Empty(t, team)

	projectView, err := env.taskService.ListProject(&project.ID)
	require.NoError(t, err)
	assert.Empty(t, projectView)

	coWork, err := env.taskService.ListCoWork()
	require.NoError(t, err)
	assert.Empty(t, coWork)

	byDate, err := env.taskService.ListByDate(fixedNow)
	require.NoError(t, err)
	assert.Empty(t, byDate)

	archived, err := env.taskService.ListArchived()
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, task.ID, archived[0].ID)
}

func TestVisibility_CoWorkOnlyInPool(t *testing.T) {
	env := setupServiceTestEnv(t)
	user := env.createUser(t, "alice", models.TeamPM)
	project := env.createProject(t, "Launch")
	task := env.createTaskAt(t, user, project, "Shared", models.TaskStatusNotStarted, fixedNow)

	_, err := env.taskService.MoveToCoWork(task.ID, user.ID)
	require.NoError(t, err)

	personal, err := env.taskService.ListPersonal(user.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, personal)

	team, err := env.taskService.ListTeam(models.TeamPM, nil)
	require.NoError(t, err)
	assert.Empty(t, team)

	pool, err := env.taskService.ListCoWork()
	require.NoError(t, err)
	require.Len(t, pool, 1)
	assert.Equal(t, task.ID, pool[0].ID)
}

func TestVisibility_StatusOrdering(t *testing.T) {
	env := setupServiceTestEnv(t)
	user := env.createUser(t, "alice", models.TeamPM)
	project := env.createProject(t, "Launch")

	env.createTaskAt(t, user, project, "done", models.TaskStatusCompleted, fixedNow)
	env.createTaskAt(t, user, project, "fresh", models.TaskStatusNotStarted, fixedNow.Add(time.Minute))
	env.createTaskAt(t, user, project, "rolling", models.TaskStatusInProgress, fixedNow.Add(2*time.Minute))

	tasks, err := env.taskService.ListByDate(fixedNow)
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	assert.Equal(t, models.TaskStatusNotStarted, tasks[0].Status)
	assert.Equal(t, models.TaskStatusInProgress, tasks[1].Status)
	assert.Equal(t, models.TaskStatusCompleted, tasks[2].Status)
}

func TestVisibility_PersonalDefaultsToToday(t *testing.T) {
	env := setupServiceTestEnv(t)
	user := env.createUser(t, "alice", models.TeamPM)
	project := env.createProject(t, "Launch")

	today := env.createTaskAt(t, user, project, "today", models.TaskStatusNotStarted, fixedNow)
	env.createTaskAt(t, user, project, "yesterday", models.TaskStatusNotStarted, fixedNow.Add(-24*time.Hour))

	tasks, err := env.taskService.ListPersonal(user.ID, nil)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, today.ID, tasks[0].ID)
}

func TestVisibility_DayBoundaryAt1500UTC(t *testing.T) {
	env := setupServiceTestEnv(t)
	user := env.createUser(t, "alice", models.TeamPM)
	project := env.createProject(t, "Launch")

	// 2024-03-01T15:30Z falls on 03-02 in UTC+9; 14:30Z stays on 03-01.
	late := env.createTaskAt(t, user, project, "late", models.TaskStatusNotStarted,
		time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC))
	env.createTaskAt(t, user, project, "early", models.TaskStatusNotStarted,
		time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC))

	day, err := clock.ParseDate("2024-03-02")
	require.NoError(t, err)

	tasks, err := env.taskService.ListByDate(day)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, late.ID, tasks[0].ID)
}

func TestVisibility_TeamRestrictsByMembership(t *testing.T) {
	env := setupServiceTestEnv(t)
	alice := env.createUser(t, "alice", models.TeamPM)
	bob := env.createUser(t, "bob", models.TeamCM)
	project := env.createProject(t, "Launch")

	mine := env.createTaskAt(t, alice, project, "pm task", models.TaskStatusNotStarted, fixedNow)
	env.createTaskAt(t, bob, project, "cm task", models.TaskStatusNotStarted, fixedNow)

	tasks, err := env.taskService.ListTeam(models.TeamPM, nil)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, mine.ID, tasks[0].ID)
	assert.Equal(t, "alice", tasks[0].Username)

	_, err = env.taskService.ListTeam("XX", nil)
	assert.ErrorIs(t, err, ErrInvalidTeam)
}

func TestDeleteTask_Permissions(t *testing.T) {
	env := setupServiceTestEnv(t)
	alice := env.createUser(t, "alice", models.TeamPM)
	bob := env.createUser(t, "bob", models.TeamCM)
	project := env.createProject(t, "Launch")

	personal := env.createTaskAt(t, alice, project, "personal", models.TaskStatusNotStarted, fixedNow)
	shared := env.createTaskAt(t, alice, project, "shared", models.TaskStatusNotStarted, fixedNow)
	_, err := env.taskService.MoveToCoWork(shared.ID, alice.ID)
	require.NoError(t, err)

	// Non-owner cannot delete a personal task.
	err = env.taskService.DeleteTask(personal.ID, bob.ID)
	assert.ErrorIs(t, err, ErrNotTaskOwner)

	// Anyone may delete a co-work task.
	err = env.taskService.DeleteTask(shared.ID, bob.ID)
	assert.NoError(t, err)

	// Owner deletes their own.
	err = env.taskService.DeleteTask(personal.ID, alice.ID)
	assert.NoError(t, err)
}

func TestUpdateStatus_OwnerOnlyAndValidated(t *testing.T) {
	env := setupServiceTestEnv(t)
	alice := env.createUser(t, "alice", models.TeamPM)
	bob := env.createUser(t, "bob", models.TeamCM)
	project := env.createProject(t, "Launch")
	task := env.createTaskAt(t, alice, project, "work", models.TaskStatusNotStarted, fixedNow)

	_, err := env.taskService.UpdateStatus(task.ID, alice.ID, "stalled")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = env.taskService.UpdateStatus(task.ID, bob.ID, models.TaskStatusCompleted)
	assert.ErrorIs(t, err, ErrNotTaskOwner)

	updated, err := env.taskService.UpdateStatus(task.ID, alice.ID, models.TaskStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, updated.Status)
}

func TestUpdateStatus_IndependentOfCoWorkFlag(t *testing.T) {
	env := setupServiceTestEnv(t)
	alice := env.createUser(t, "alice", models.TeamPM)
	project := env.createProject(t, "Launch")
	task := env.createTaskAt(t, alice, project, "shared", models.TaskStatusNotStarted, fixedNow)

	_, err := env.taskService.MoveToCoWork(task.ID, alice.ID)
	require.NoError(t, err)

	updated, err := env.taskService.UpdateStatus(task.ID, alice.ID, models.TaskStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusInProgress, updated.Status)
	assert.True(t, updated.IsCoWork, "status change must not clear the co-work flag")
}

func TestProjectSoftDelete_StampsNameOntoTasks(t *testing.T) {
	env := setupServiceTestEnv(t)
	alice := env.createUser(t, "alice", models.TeamPM)
	project := env.createProject(t, "Alpha")
	projectService := NewProjectService(env.projectRepo)

	task := env.createTaskAt(t, alice, project, "historic", models.TaskStatusCompleted, fixedNow)
	// Simulate a legacy row without a snapshot.
	require.NoError(t, env.db.Model(&models.Task{}).Where("id = ?", task.ID).Update("project_name", "").Error)

	require.NoError(t, projectService.DeleteProject(project.ID))

	var reloaded models.Task
	require.NoError(t, env.db.First(&reloaded, task.ID).Error)
	assert.Equal(t, "Alpha", reloaded.ProjectName)

	active, err := projectService.ListProjects()
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestUserSoftDelete_StampsUsernameOntoTasks(t *testing.T) {
	env := setupServiceTestEnv(t)
	admin := env.createUser(t, "admin", models.TeamPM)
	alice := env.createUser(t, "alice", models.TeamCM)
	project := env.createProject(t, "Launch")
	userService := NewUserService(env.userRepo)

	task := env.createTaskAt(t, alice, project, "hers", models.TaskStatusNotStarted, fixedNow)
	require.NoError(t, env.db.Model(&models.Task{}).Where("id = ?", task.ID).Update("username", "").Error)

	require.NoError(t, userService.DeleteUser(alice.ID, admin.ID))

	var reloaded models.Task
	require.NoError(t, env.db.First(&reloaded, task.ID).Error)
	assert.Equal(t, "alice", reloaded.Username)

	_, err := env.userRepo.FindByUsername("alice")
	assert.Error(t, err)
}
