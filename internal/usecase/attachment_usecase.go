package usecase

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/opsboard/opsboard/internal/domain"
	"github.com/opsboard/opsboard/internal/policy"
	"github.com/opsboard/opsboard/internal/ports"
)

// UploadAttachmentRequest carries the metadata of a file upload. Content is
// read exactly once and streamed to the file store.
type UploadAttachmentRequest struct {
	ParentType  domain.ParentType
	ParentID    string
	FileName    string
	ContentType string
	SizeBytes   int64
	Content     io.Reader
}

// AttachmentUseCase handles attachment uploads, downloads and policy-gated
// deletion.
type AttachmentUseCase struct {
	attachmentRepo ports.AttachmentRepository
	taskRepo       ports.TaskRepository
	incidentRepo   ports.IncidentRepository
	fileStore      ports.FileStore
	maxSizeBytes   int64
	allowedTypes   map[string]struct{}
}

// NewAttachmentUseCase creates a new attachment use case. allowedTypes is the
// MIME allow-list; an empty list accepts any content type.
func NewAttachmentUseCase(
	attachmentRepo ports.AttachmentRepository,
	taskRepo ports.TaskRepository,
	incidentRepo ports.IncidentRepository,
	fileStore ports.FileStore,
	maxSizeBytes int64,
	allowedTypes []string,
) *AttachmentUseCase {
	allowed := make(map[string]struct{}, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[t] = struct{}{}
	}
	return &AttachmentUseCase{
		attachmentRepo: attachmentRepo,
		taskRepo:       taskRepo,
		incidentRepo:   incidentRepo,
		fileStore:      fileStore,
		maxSizeBytes:   maxSizeBytes,
		allowedTypes:   allowed,
	}
}

// Upload validates and stores a file attached to a task or incident. Any
// authenticated caller may upload; only deletion is policy-gated.
func (uc *AttachmentUseCase) Upload(ctx context.Context, actor domain.Actor, req UploadAttachmentRequest) (*domain.Attachment, error) {
	if req.FileName == "" {
		return nil, domain.NewDomainError("file name is required")
	}
	if uc.maxSizeBytes > 0 && req.SizeBytes > uc.maxSizeBytes {
		return nil, domain.NewDomainError(fmt.Sprintf("file exceeds maximum size of %d bytes", uc.maxSizeBytes))
	}
	if len(uc.allowedTypes) > 0 {
		if _, ok := uc.allowedTypes[req.ContentType]; !ok {
			return nil, domain.NewDomainError(fmt.Sprintf("content type %q not allowed", req.ContentType))
		}
	}

	if _, err := uc.parentAssignee(ctx, req.ParentType, req.ParentID); err != nil {
		return nil, err
	}

	attachment := domain.NewAttachment(req.ParentType, req.ParentID, actor.ID, req.FileName, req.ContentType, req.SizeBytes)

	key := path.Join(string(req.ParentType), req.ParentID, attachment.ID+path.Ext(req.FileName))
	storagePath, err := uc.fileStore.Save(ctx, key, req.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to store attachment: %w", err)
	}
	attachment.StoragePath = storagePath

	if err := uc.attachmentRepo.Create(ctx, attachment); err != nil {
		// Keep the store consistent with the metadata on failure.
		_ = uc.fileStore.Remove(ctx, storagePath)
		return nil, fmt.Errorf("failed to create attachment record: %w", err)
	}

	return attachment, nil
}

// Download returns the attachment record and a reader over its content. The
// caller must close the reader.
func (uc *AttachmentUseCase) Download(ctx context.Context, id string) (*domain.Attachment, io.ReadCloser, error) {
	attachment, err := uc.attachmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	content, err := uc.fileStore.Open(ctx, attachment.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open attachment content: %w", err)
	}

	return attachment, content, nil
}

// ListAttachments retrieves attachment records for a task or incident.
func (uc *AttachmentUseCase) ListAttachments(ctx context.Context, parentType domain.ParentType, parentID string) ([]*domain.Attachment, error) {
	if _, err := uc.parentAssignee(ctx, parentType, parentID); err != nil {
		return nil, err
	}
	return uc.attachmentRepo.ListByParent(ctx, parentType, parentID)
}

// Delete removes an attachment. Permitted for the uploader, any admin, or
// the current assignee of the parent entity.
func (uc *AttachmentUseCase) Delete(ctx context.Context, actor domain.Actor, id string) error {
	attachment, err := uc.attachmentRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	parentAssignee, err := uc.parentAssignee(ctx, attachment.ParentType, attachment.ParentID)
	if err != nil {
		// The parent may have been deleted out from under the
		// attachment; uploader and admin can still clean up.
		parentAssignee = nil
	}

	if !policy.CanDeleteAttachment(actor, attachment.UploaderID, parentAssignee) {
		return fmt.Errorf("caller may not delete this attachment: %w", domain.ErrForbidden)
	}

	if err := uc.attachmentRepo.Delete(ctx, id); err != nil {
		return err
	}

	// Content removal is best-effort; the record is already gone.
	_ = uc.fileStore.Remove(ctx, attachment.StoragePath)

	return nil
}

func (uc *AttachmentUseCase) parentAssignee(ctx context.Context, parentType domain.ParentType, parentID string) (*string, error) {
	switch parentType {
	case domain.ParentTypeTask:
		task, err := uc.taskRepo.FindByID(ctx, parentID)
		if err != nil {
			return nil, err
		}
		return task.AssigneeID, nil
	case domain.ParentTypeIncident:
		incident, err := uc.incidentRepo.FindByID(ctx, parentID)
		if err != nil {
			return nil, err
		}
		return incident.AssigneeID, nil
	}
	return nil, domain.NewDomainError("invalid parent type")
}
