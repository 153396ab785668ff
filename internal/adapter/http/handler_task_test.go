package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsboard/opsboard/internal/domain"
)

func seedTask(t *testing.T, env *testEnv, creatorID string, assigneeID *string) *domain.Task {
	t.Helper()

	task := domain.NewTask("broken deploy", "investigate", domain.TaskPriorityHigh, creatorID)
	task.AssigneeID = assigneeID
	require.NoError(t, env.taskRepo.Create(context.Background(), task))
	return task
}

func TestTaskRoutesRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/v1/tasks", "", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/tasks", "Bearer not-a-token", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateAndGetTask(t *testing.T) {
	env := newTestEnv(t)
	dev := domain.Actor{ID: uuid.NewString(), Role: domain.RoleDeveloper}

	resp := env.do(t, http.MethodPost, "/api/v1/tasks", bearerFor(dev), map[string]interface{}{
		"title":    "set up alerting",
		"priority": "MEDIUM",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	data := decodeEnvelope(t, resp)

	taskID, _ := data["id"].(string)
	require.NotEmpty(t, taskID)
	assert.Equal(t, "TODO", data["status"])
	assert.Equal(t, dev.ID, data["creator_id"])

	resp = env.do(t, http.MethodGet, "/api/v1/tasks/"+taskID, bearerFor(dev), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data = decodeEnvelope(t, resp)
	assert.Equal(t, "set up alerting", data["title"])
}

func TestUpdateTaskAssigneeStatusOnly(t *testing.T) {
	env := newTestEnv(t)
	assignee := domain.Actor{ID: uuid.NewString(), Role: domain.RoleDeveloper}
	task := seedTask(t, env, uuid.NewString(), &assignee.ID)

	// Status change is allowed for the assignee.
	resp := env.do(t, http.MethodPut, "/api/v1/tasks/"+task.ID, bearerFor(assignee), map[string]interface{}{
		"status": "DONE",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := decodeEnvelope(t, resp)
	assert.Equal(t, "DONE", data["status"])
	assert.NotEmpty(t, data["completed_at"])

	// Any field beyond status rejects the whole request.
	resp = env.do(t, http.MethodPut, "/api/v1/tasks/"+task.ID, bearerFor(assignee), map[string]interface{}{
		"status": "IN_PROGRESS",
		"title":  "renamed",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	stored, err := env.taskRepo.FindByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusDone, stored.Status)
	assert.Equal(t, "broken deploy", stored.Title)
}

func TestUpdateTaskStrangerForbidden(t *testing.T) {
	env := newTestEnv(t)
	task := seedTask(t, env, uuid.NewString(), nil)
	stranger := domain.Actor{ID: uuid.NewString(), Role: domain.RoleDeveloper}

	resp := env.do(t, http.MethodPut, "/api/v1/tasks/"+task.ID, bearerFor(stranger), map[string]interface{}{
		"status": "IN_PROGRESS",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestUpdateTaskEmptyPatch(t *testing.T) {
	env := newTestEnv(t)
	creator := domain.Actor{ID: uuid.NewString(), Role: domain.RoleDeveloper}
	task := seedTask(t, env, creator.ID, nil)

	resp := env.do(t, http.MethodPut, "/api/v1/tasks/"+task.ID, bearerFor(creator), map[string]interface{}{
		"unknown_field": "x",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateTaskNotFound(t *testing.T) {
	env := newTestEnv(t)
	admin := domain.Actor{ID: uuid.NewString(), Role: domain.RoleAdmin}

	resp := env.do(t, http.MethodPut, "/api/v1/tasks/"+uuid.NewString(), bearerFor(admin), map[string]interface{}{
		"status": "DONE",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateTaskExplicitNullClearsAssignee(t *testing.T) {
	env := newTestEnv(t)
	creator := domain.Actor{ID: uuid.NewString(), Role: domain.RoleDeveloper}
	assigneeID := uuid.NewString()
	task := seedTask(t, env, creator.ID, &assigneeID)

	resp := env.do(t, http.MethodPut, "/api/v1/tasks/"+task.ID, bearerFor(creator), map[string]interface{}{
		"assignee_id": nil,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	stored, err := env.taskRepo.FindByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.AssigneeID)
}

func TestDeleteTaskRoleGate(t *testing.T) {
	env := newTestEnv(t)
	creator := domain.Actor{ID: uuid.NewString(), Role: domain.RoleDeveloper}
	task := seedTask(t, env, creator.ID, nil)

	// Even the creator cannot delete without an admin or PM role.
	resp := env.do(t, http.MethodDelete, "/api/v1/tasks/"+task.ID, bearerFor(creator), nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	pm := domain.Actor{ID: uuid.NewString(), Role: domain.RolePM}
	resp = env.do(t, http.MethodDelete, "/api/v1/tasks/"+task.ID, bearerFor(pm), nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, err := env.taskRepo.FindByID(context.Background(), task.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestListTasksInvalidStatusFilter(t *testing.T) {
	env := newTestEnv(t)
	dev := domain.Actor{ID: uuid.NewString(), Role: domain.RoleDeveloper}

	resp := env.do(t, http.MethodGet, "/api/v1/tasks?status=BOGUS", bearerFor(dev), nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTaskStats(t *testing.T) {
	env := newTestEnv(t)
	dev := domain.Actor{ID: uuid.NewString(), Role: domain.RoleDeveloper}

	task := seedTask(t, env, dev.ID, nil)
	task.TransitionStatus(domain.TaskStatusDone, time.Now())
	require.NoError(t, env.taskRepo.Update(context.Background(), task))
	seedTask(t, env, dev.ID, nil)

	resp := env.do(t, http.MethodGet, "/api/v1/tasks/stats", bearerFor(dev), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := decodeEnvelope(t, resp)
	assert.Equal(t, float64(2), data["total"])
}
