package ports

import (
	"context"

	"github.com/opsboard/opsboard/internal/domain"
)

// NotificationService delivers best-effort notifications about entity
// activity. Delivery failures are logged by callers and never fail the
// originating request; the actual transport (email, chat, webhook) is an
// external collaborator.
type NotificationService interface {
	// NotifyTaskAssigned fires when a task gains or changes assignee
	NotifyTaskAssigned(ctx context.Context, task *domain.Task, assigneeID string) error

	// NotifyTaskCompleted fires when a task transitions to DONE
	NotifyTaskCompleted(ctx context.Context, task *domain.Task) error

	// NotifyIncidentCreated fires when an incident is created, including
	// through the external ingestion endpoint
	NotifyIncidentCreated(ctx context.Context, incident *domain.Incident) error

	// NotifyIncidentResolved fires when an incident transitions to RESOLVED
	NotifyIncidentResolved(ctx context.Context, incident *domain.Incident) error

	// NotifyCommentAdded fires when a comment is added to a task or incident
	NotifyCommentAdded(ctx context.Context, comment *domain.Comment) error
}

// NoopNotificationService discards every notification. Used when no
// notification transport is configured and as the default in tests.
type NoopNotificationService struct{}

func NewNoopNotificationService() *NoopNotificationService {
	return &NoopNotificationService{}
}

func (s *NoopNotificationService) NotifyTaskAssigned(ctx context.Context, task *domain.Task, assigneeID string) error {
	return nil
}

func (s *NoopNotificationService) NotifyTaskCompleted(ctx context.Context, task *domain.Task) error {
	return nil
}

func (s *NoopNotificationService) NotifyIncidentCreated(ctx context.Context, incident *domain.Incident) error {
	return nil
}

func (s *NoopNotificationService) NotifyIncidentResolved(ctx context.Context, incident *domain.Incident) error {
	return nil
}

func (s *NoopNotificationService) NotifyCommentAdded(ctx context.Context, comment *domain.Comment) error {
	return nil
}
