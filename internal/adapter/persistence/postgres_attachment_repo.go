package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/opsboard/opsboard/internal/domain"
	"github.com/opsboard/opsboard/internal/ports"
)

// PostgresAttachmentRepository implements AttachmentRepository using PostgreSQL
type PostgresAttachmentRepository struct {
	db *sql.DB
}

// NewPostgresAttachmentRepository creates a new PostgreSQL attachment repository
func NewPostgresAttachmentRepository(db *sql.DB) ports.AttachmentRepository {
	return &PostgresAttachmentRepository{db: db}
}

const attachmentColumns = `id, parent_type, parent_id, uploader_id, file_name, content_type, size_bytes, storage_path, created_at`

// Create saves a new attachment record
func (r *PostgresAttachmentRepository) Create(ctx context.Context, attachment *domain.Attachment) error {
	query := `
		INSERT INTO attachments (` + attachmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		attachment.ID,
		string(attachment.ParentType),
		attachment.ParentID,
		attachment.UploaderID,
		attachment.FileName,
		attachment.ContentType,
		attachment.SizeBytes,
		attachment.StoragePath,
		attachment.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create attachment: %w", err)
	}

	return nil
}

// FindByID retrieves an attachment by its ID
func (r *PostgresAttachmentRepository) FindByID(ctx context.Context, id string) (*domain.Attachment, error) {
	query := `SELECT ` + attachmentColumns + ` FROM attachments WHERE id = $1`

	var attachment domain.Attachment
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&attachment.ID,
		&attachment.ParentType,
		&attachment.ParentID,
		&attachment.UploaderID,
		&attachment.FileName,
		&attachment.ContentType,
		&attachment.SizeBytes,
		&attachment.StoragePath,
		&attachment.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrAttachmentNotFound
		}
		return nil, fmt.Errorf("failed to find attachment: %w", err)
	}

	return &attachment, nil
}

// ListByParent retrieves attachments for a parent, newest first
func (r *PostgresAttachmentRepository) ListByParent(ctx context.Context, parentType domain.ParentType, parentID string) ([]*domain.Attachment, error) {
	query := `
		SELECT ` + attachmentColumns + `
		FROM attachments
		WHERE parent_type = $1 AND parent_id = $2
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, string(parentType), parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attachments: %w", err)
	}
	defer rows.Close()

	var attachments []*domain.Attachment

	for rows.Next() {
		var attachment domain.Attachment
		err := rows.Scan(
			&attachment.ID,
			&attachment.ParentType,
			&attachment.ParentID,
			&attachment.UploaderID,
			&attachment.FileName,
			&attachment.ContentType,
			&attachment.SizeBytes,
			&attachment.StoragePath,
			&attachment.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		attachments = append(attachments, &attachment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attachments: %w", err)
	}

	return attachments, nil
}

// Delete removes an attachment record
func (r *PostgresAttachmentRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM attachments WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return domain.ErrAttachmentNotFound
	}

	return nil
}
