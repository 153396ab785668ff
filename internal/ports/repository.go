package ports

import (
	"context"

	"github.com/opsboard/opsboard/internal/domain"
)

// TaskRepository defines the interface for task persistence
type TaskRepository interface {
	// Create saves a new task
	Create(ctx context.Context, task *domain.Task) error

	// FindByID retrieves a task by its ID
	FindByID(ctx context.Context, id string) (*domain.Task, error)

	// Update persists changes to an existing task as a single atomic write
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task
	Delete(ctx context.Context, id string) error

	// List retrieves tasks based on filter criteria
	List(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error)

	// Count returns the number of tasks matching the filter
	Count(ctx context.Context, filter domain.TaskFilter) (int, error)

	// Stats returns aggregate task counts
	Stats(ctx context.Context) (*domain.TaskStats, error)
}

// IncidentRepository defines the interface for incident persistence
type IncidentRepository interface {
	// Create saves a new incident
	Create(ctx context.Context, incident *domain.Incident) error

	// FindByID retrieves an incident by its ID
	FindByID(ctx context.Context, id string) (*domain.Incident, error)

	// Update persists changes to an existing incident as a single atomic write
	Update(ctx context.Context, incident *domain.Incident) error

	// List retrieves incidents based on filter criteria
	List(ctx context.Context, filter domain.IncidentFilter) ([]*domain.Incident, error)

	// Count returns the number of incidents matching the filter
	Count(ctx context.Context, filter domain.IncidentFilter) (int, error)

	// Stats returns aggregate incident counts
	Stats(ctx context.Context) (*domain.IncidentStats, error)
}

// CommentRepository defines the interface for comment persistence
type CommentRepository interface {
	// Create saves a new comment
	Create(ctx context.Context, comment *domain.Comment) error

	// ListByParent retrieves comments for a task or incident, oldest first
	ListByParent(ctx context.Context, parentType domain.ParentType, parentID string, limit, offset int) ([]*domain.Comment, error)

	// CountByParent returns the total number of comments on a parent
	CountByParent(ctx context.Context, parentType domain.ParentType, parentID string) (int, error)
}

// AttachmentRepository defines the interface for attachment metadata persistence
type AttachmentRepository interface {
	// Create saves a new attachment record
	Create(ctx context.Context, attachment *domain.Attachment) error

	// FindByID retrieves an attachment by its ID
	FindByID(ctx context.Context, id string) (*domain.Attachment, error)

	// ListByParent retrieves attachments for a task or incident
	ListByParent(ctx context.Context, parentType domain.ParentType, parentID string) ([]*domain.Attachment, error)

	// Delete removes an attachment record
	Delete(ctx context.Context, id string) error
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Create saves a new user
	Create(ctx context.Context, user *domain.User) error

	// FindByID retrieves a user by its ID
	FindByID(ctx context.Context, id string) (*domain.User, error)

	// FindByEmail retrieves a user by email
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}
