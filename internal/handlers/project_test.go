package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kimshinchol/nnponline-sub000/internal/database"
	"github.com/kimshinchol/nnponline-sub000/internal/dto"
	"github.com/kimshinchol/nnponline-sub000/internal/models"
	"github.com/kimshinchol/nnponline-sub000/internal/repository"
	"github.com/kimshinchol/nnponline-sub000/internal/services"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type projectTestEnv struct {
	db      *gorm.DB
	handler *ProjectHandler
}

func setupProjectTestEnv(t *testing.T) projectTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Task{},
	)
	require.NoError(t, err)

	database.SetDB(db)

	projectRepo := repository.NewProjectRepository(db)
	handler := NewProjectHandler(services.NewProjectService(projectRepo))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	gin.SetMode(gin.TestMode)

	return projectTestEnv{db: db, handler: handler}
}

func TestProjectHandler_Create(t *testing.T) {
	env := setupProjectTestEnv(t)

	body, err := json.Marshal(map[string]string{"name": "Launch"})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/projects", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	env.handler.CreateProject(c)

	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.ProjectDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "Launch", response.Name)
	require.True(t, response.IsActive)
}

func TestProjectHandler_Create_MissingName(t *testing.T) {
	env := setupProjectTestEnv(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/projects", bytes.NewReader([]byte(`{}`)))
	c.Request.Header.Set("Content-Type", "application/json")

	env.handler.CreateProject(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProjectHandler_Delete_HidesProjectFromList(t *testing.T) {
	env := setupProjectTestEnv(t)

	project := &models.Project{Name: "Alpha", IsActive: true}
	require.NoError(t, env.db.Create(project).Error)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/api/projects/1", nil)
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	env.handler.DeleteProject(c)

	require.Equal(t, http.StatusOK, w.Code)

	w2 := httptest.NewRecorder()
	c2, _ := gin.CreateTestContext(w2)
	c2.Request = httptest.NewRequest(http.MethodGet, "/api/projects", nil)

	env.handler.ListProjects(c2)

	require.Equal(t, http.StatusOK, w2.Code)

	var response struct {
		Projects []dto.ProjectDTO `json:"projects"`
	}
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &response))
	require.Empty(t, response.Projects)

	// The row itself survives as a soft-deleted record.
	var count int64
	env.db.Model(&models.Project{}).Count(&count)
	require.Equal(t, int64(1), count)
}

func TestProjectHandler_Delete_NotFound(t *testing.T) {
	env := setupProjectTestEnv(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/api/projects/999", nil)
	c.Params = gin.Params{{Key: "id", Value: "999"}}

	env.handler.DeleteProject(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}
