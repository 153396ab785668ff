package notify

import (
	"context"

	"github.com/opsboard/opsboard/internal/domain"
	"github.com/opsboard/opsboard/internal/service/logger"
)

// LogNotifier writes notifications to the structured log. It stands in for a
// real transport (email, chat, webhook) until one is configured.
type LogNotifier struct {
	log logger.Logger
}

// NewLogNotifier creates a log-backed notification service
func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{log: log.WithFields(map[string]interface{}{"component": "notify"})}
}

func (n *LogNotifier) NotifyTaskAssigned(ctx context.Context, task *domain.Task, assigneeID string) error {
	n.log.Info(ctx, "task assigned", map[string]interface{}{
		"task_id":     task.ID,
		"assignee_id": assigneeID,
	})
	return nil
}

func (n *LogNotifier) NotifyTaskCompleted(ctx context.Context, task *domain.Task) error {
	n.log.Info(ctx, "task completed", map[string]interface{}{
		"task_id": task.ID,
	})
	return nil
}

func (n *LogNotifier) NotifyIncidentCreated(ctx context.Context, incident *domain.Incident) error {
	n.log.Info(ctx, "incident created", map[string]interface{}{
		"incident_id": incident.ID,
		"tier":        string(incident.Tier),
	})
	return nil
}

func (n *LogNotifier) NotifyIncidentResolved(ctx context.Context, incident *domain.Incident) error {
	n.log.Info(ctx, "incident resolved", map[string]interface{}{
		"incident_id": incident.ID,
	})
	return nil
}

func (n *LogNotifier) NotifyCommentAdded(ctx context.Context, comment *domain.Comment) error {
	n.log.Info(ctx, "comment added", map[string]interface{}{
		"comment_id":  comment.ID,
		"parent_type": string(comment.ParentType),
		"parent_id":   comment.ParentID,
	})
	return nil
}
