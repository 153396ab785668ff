package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/opsboard/opsboard/internal/domain"
	"github.com/opsboard/opsboard/internal/policy"
	"github.com/opsboard/opsboard/internal/ports"
)

// CreateTaskRequest represents the request to create a task
type CreateTaskRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    domain.TaskPriority `json:"priority"`
	AssigneeID  *string             `json:"assignee_id,omitempty"`
	TeamID      *string             `json:"team_id,omitempty"`
	DueDate     *time.Time          `json:"due_date,omitempty"`
	StartDate   *time.Time          `json:"start_date,omitempty"`
}

// TaskPatch is a partial task update. Fields lists the recognized field names
// present in the request body; a name in Fields with a nil pointer means the
// client sent an explicit null (clearing the value where that is meaningful).
type TaskPatch struct {
	Fields      []string
	Title       *string
	Description *string
	Status      *domain.TaskStatus
	Priority    *domain.TaskPriority
	DueDate     *time.Time
	StartDate   *time.Time
	AssigneeID  *string
	TeamID      *string
}

// Has reports whether the named field was present in the request.
func (p TaskPatch) Has(field string) bool {
	for _, f := range p.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// TaskUseCase handles task business logic: creation, policy-gated mutation
// with derived-timestamp maintenance, deletion, listing and stats.
type TaskUseCase struct {
	taskRepo      ports.TaskRepository
	notifyService ports.NotificationService
	now           func() time.Time
}

// NewTaskUseCase creates a new task use case
func NewTaskUseCase(taskRepo ports.TaskRepository, notifyService ports.NotificationService) *TaskUseCase {
	return &TaskUseCase{
		taskRepo:      taskRepo,
		notifyService: notifyService,
		now:           time.Now,
	}
}

// CreateTask creates a new task owned by the actor.
func (uc *TaskUseCase) CreateTask(ctx context.Context, actor domain.Actor, req CreateTaskRequest) (*domain.Task, error) {
	if req.Title == "" {
		return nil, domain.NewDomainError("title is required")
	}
	if req.Priority == "" {
		req.Priority = domain.TaskPriorityMedium
	}
	if _, err := domain.ParseTaskPriority(string(req.Priority)); err != nil {
		return nil, err
	}

	task := domain.NewTask(req.Title, req.Description, req.Priority, actor.ID)
	task.AssigneeID = req.AssigneeID
	task.TeamID = req.TeamID
	task.DueDate = req.DueDate
	task.StartDate = req.StartDate

	if err := uc.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if task.AssigneeID != nil && uc.notifyService != nil {
		_ = uc.notifyService.NotifyTaskAssigned(ctx, task, *task.AssigneeID)
	}

	return task, nil
}

// GetTask retrieves a task by ID.
func (uc *TaskUseCase) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	if id == "" {
		return nil, domain.ErrTaskNotFound
	}
	return uc.taskRepo.FindByID(ctx, id)
}

// UpdateTask applies a partial update on behalf of the actor. The policy
// engine is consulted first with the persisted snapshot; a rejection means
// nothing is written. Approved patches are applied as one atomic update with
// the completion timestamp maintained by the status transition.
func (uc *TaskUseCase) UpdateTask(ctx context.Context, actor domain.Actor, id string, patch TaskPatch) (*domain.Task, error) {
	if len(patch.Fields) == 0 {
		return nil, domain.ErrNoValidUpdates
	}

	task, err := uc.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	snap := policy.Snapshot{CreatorID: task.CreatorID, AssigneeID: task.AssigneeID}
	if err := policy.TaskUpdate(actor, snap, patch.Fields); err != nil {
		return nil, err
	}

	now := uc.now()
	prevAssignee := task.AssigneeID
	prevStatus := task.Status

	uc.applyTaskPatch(task, patch, now)
	task.UpdatedAt = now

	if err := uc.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}

	if uc.notifyService != nil {
		if task.AssigneeID != nil && (prevAssignee == nil || *prevAssignee != *task.AssigneeID) {
			_ = uc.notifyService.NotifyTaskAssigned(ctx, task, *task.AssigneeID)
		}
		if task.Status == domain.TaskStatusDone && prevStatus != domain.TaskStatusDone {
			_ = uc.notifyService.NotifyTaskCompleted(ctx, task)
		}
	}

	return task, nil
}

// applyTaskPatch writes the approved fields onto the entity. Status goes
// through the domain transition so CompletedAt stays consistent with DONE.
func (uc *TaskUseCase) applyTaskPatch(task *domain.Task, patch TaskPatch, now time.Time) {
	if patch.Has(policy.FieldTitle) && patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Has(policy.FieldDescription) && patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Has(policy.FieldPriority) && patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.Has(policy.FieldDueDate) {
		task.DueDate = patch.DueDate
	}
	if patch.Has(policy.FieldStartDate) {
		task.StartDate = patch.StartDate
	}
	if patch.Has(policy.FieldAssigneeID) {
		task.AssigneeID = patch.AssigneeID
	}
	if patch.Has(policy.FieldTeamID) {
		task.TeamID = patch.TeamID
	}
	if patch.Has(policy.FieldStatus) && patch.Status != nil {
		task.TransitionStatus(*patch.Status, now)
	}
}

// DeleteTask removes a task. Only admins and PMs may delete, regardless of
// any creator or assignee relationship.
func (uc *TaskUseCase) DeleteTask(ctx context.Context, actor domain.Actor, id string) error {
	if !policy.CanDeleteTask(actor) {
		return fmt.Errorf("role %s may not delete tasks: %w", actor.Role, domain.ErrForbidden)
	}
	return uc.taskRepo.Delete(ctx, id)
}

// ListTasks retrieves tasks matching the filter.
func (uc *TaskUseCase) ListTasks(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	tasks, err := uc.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	count, err := uc.taskRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	return tasks, count, nil
}

// GetTaskStats returns aggregate task counts for the dashboard.
func (uc *TaskUseCase) GetTaskStats(ctx context.Context) (*domain.TaskStats, error) {
	return uc.taskRepo.Stats(ctx)
}
