package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/opsboard/opsboard/internal/adapter/http/middleware"
	"github.com/opsboard/opsboard/internal/adapter/http/response"
	"github.com/opsboard/opsboard/internal/domain"
	"github.com/opsboard/opsboard/internal/policy"
	"github.com/opsboard/opsboard/internal/usecase"
	apperror "github.com/opsboard/opsboard/pkg/error"
)

// TaskHandler handles HTTP requests for tasks
type TaskHandler struct {
	taskUseCase *usecase.TaskUseCase
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskUseCase *usecase.TaskUseCase) *TaskHandler {
	return &TaskHandler{
		taskUseCase: taskUseCase,
	}
}

// RegisterRoutes registers task routes on an authenticated subrouter
func (h *TaskHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/tasks", h.CreateTask).Methods("POST")
	router.HandleFunc("/tasks", h.ListTasks).Methods("GET")
	router.HandleFunc("/tasks/stats", h.GetTaskStats).Methods("GET")
	router.HandleFunc("/tasks/{id}", h.GetTask).Methods("GET")
	router.HandleFunc("/tasks/{id}", h.UpdateTask).Methods("PUT")
	router.HandleFunc("/tasks/{id}", h.DeleteTask).Methods("DELETE")
}

// CreateTask handles task creation
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req usecase.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	task, err := h.taskUseCase.CreateTask(r.Context(), actor, req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "Task created", task)
}

// GetTask handles retrieving a single task
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["id"]

	task, err := h.taskUseCase.GetTask(r.Context(), taskID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "OK", task)
}

// ListTasks handles listing tasks with filters
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	filter := domain.TaskFilter{}

	if status := r.URL.Query().Get("status"); status != "" {
		s, err := domain.ParseTaskStatus(status)
		if err != nil {
			response.BadRequest(w, "Invalid status filter")
			return
		}
		filter.Status = &s
	}

	if priority := r.URL.Query().Get("priority"); priority != "" {
		p, err := domain.ParseTaskPriority(priority)
		if err != nil {
			response.BadRequest(w, "Invalid priority filter")
			return
		}
		filter.Priority = &p
	}

	if creatorID := r.URL.Query().Get("creator_id"); creatorID != "" {
		filter.CreatorID = &creatorID
	}

	if assigneeID := r.URL.Query().Get("assignee_id"); assigneeID != "" {
		filter.AssigneeID = &assigneeID
	}

	if teamID := r.URL.Query().Get("team_id"); teamID != "" {
		filter.TeamID = &teamID
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	tasks, total, err := h.taskUseCase.ListTasks(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "OK", map[string]interface{}{
		"tasks":  tasks,
		"total":  total,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

// UpdateTask handles partial task updates. The body is decoded field by
// field so that explicit nulls survive (clearing assignee_id) and so the
// exact set of requested fields reaches the policy engine.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	taskID := mux.Vars(r)["id"]

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	patch, err := decodeTaskPatch(raw)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	task, err := h.taskUseCase.UpdateTask(r.Context(), actor, taskID, patch)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Task updated", task)
}

// DeleteTask handles task deletion
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	taskID := mux.Vars(r)["id"]

	if err := h.taskUseCase.DeleteTask(r.Context(), actor, taskID); err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Task deleted", nil)
}

// GetTaskStats handles task statistics
func (h *TaskHandler) GetTaskStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.taskUseCase.GetTaskStats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "OK", stats)
}

// decodeTaskPatch converts the raw body into a typed patch, keeping only
// recognized fields. Unknown keys are ignored; unparsable values are a 400.
func decodeTaskPatch(raw map[string]json.RawMessage) (usecase.TaskPatch, error) {
	patch := usecase.TaskPatch{}

	for _, field := range policy.TaskUpdateFieldNames {
		value, present := raw[field]
		if !present {
			continue
		}
		patch.Fields = append(patch.Fields, field)

		if string(value) == "null" {
			continue
		}

		var err error
		switch field {
		case policy.FieldTitle:
			err = json.Unmarshal(value, &patch.Title)
		case policy.FieldDescription:
			err = json.Unmarshal(value, &patch.Description)
		case policy.FieldStatus:
			var s string
			if err = json.Unmarshal(value, &s); err == nil {
				var status domain.TaskStatus
				status, err = domain.ParseTaskStatus(s)
				if err == nil {
					patch.Status = &status
				}
			}
		case policy.FieldPriority:
			var p string
			if err = json.Unmarshal(value, &p); err == nil {
				var priority domain.TaskPriority
				priority, err = domain.ParseTaskPriority(p)
				if err == nil {
					patch.Priority = &priority
				}
			}
		case policy.FieldDueDate:
			var t time.Time
			if err = json.Unmarshal(value, &t); err == nil {
				patch.DueDate = &t
			}
		case policy.FieldStartDate:
			var t time.Time
			if err = json.Unmarshal(value, &t); err == nil {
				patch.StartDate = &t
			}
		case policy.FieldAssigneeID:
			err = json.Unmarshal(value, &patch.AssigneeID)
		case policy.FieldTeamID:
			err = json.Unmarshal(value, &patch.TeamID)
		}
		if err != nil {
			return usecase.TaskPatch{}, apperror.NewBadRequest("Invalid value for field " + field)
		}
	}

	return patch, nil
}
