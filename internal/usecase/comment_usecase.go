package usecase

import (
	"context"
	"fmt"

	"github.com/opsboard/opsboard/internal/domain"
	"github.com/opsboard/opsboard/internal/ports"
)

// CommentUseCase handles comment business logic. Comment creation is
// deliberately open: any authenticated caller may comment on any task or
// incident they can view, so no mutation policy is consulted here.
type CommentUseCase struct {
	commentRepo   ports.CommentRepository
	taskRepo      ports.TaskRepository
	incidentRepo  ports.IncidentRepository
	notifyService ports.NotificationService
}

// NewCommentUseCase creates a new comment use case
func NewCommentUseCase(
	commentRepo ports.CommentRepository,
	taskRepo ports.TaskRepository,
	incidentRepo ports.IncidentRepository,
	notifyService ports.NotificationService,
) *CommentUseCase {
	return &CommentUseCase{
		commentRepo:   commentRepo,
		taskRepo:      taskRepo,
		incidentRepo:  incidentRepo,
		notifyService: notifyService,
	}
}

// CreateComment adds a comment to a task or incident on behalf of the actor.
func (uc *CommentUseCase) CreateComment(ctx context.Context, actor domain.Actor, parentType domain.ParentType, parentID, body string) (*domain.Comment, error) {
	if err := uc.parentExists(ctx, parentType, parentID); err != nil {
		return nil, err
	}

	comment := domain.NewComment(parentType, parentID, actor.ID, body)
	if err := comment.IsValid(); err != nil {
		return nil, err
	}

	if err := uc.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	if uc.notifyService != nil {
		_ = uc.notifyService.NotifyCommentAdded(ctx, comment)
	}

	return comment, nil
}

// ListComments retrieves comments on a task or incident, oldest first.
func (uc *CommentUseCase) ListComments(ctx context.Context, parentType domain.ParentType, parentID string, limit, offset int) ([]*domain.Comment, int, error) {
	if err := uc.parentExists(ctx, parentType, parentID); err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	comments, err := uc.commentRepo.ListByParent(ctx, parentType, parentID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list comments: %w", err)
	}

	count, err := uc.commentRepo.CountByParent(ctx, parentType, parentID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count comments: %w", err)
	}

	return comments, count, nil
}

func (uc *CommentUseCase) parentExists(ctx context.Context, parentType domain.ParentType, parentID string) error {
	switch parentType {
	case domain.ParentTypeTask:
		_, err := uc.taskRepo.FindByID(ctx, parentID)
		return err
	case domain.ParentTypeIncident:
		_, err := uc.incidentRepo.FindByID(ctx, parentID)
		return err
	}
	return domain.NewDomainError("invalid parent type")
}
