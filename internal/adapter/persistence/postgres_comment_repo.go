package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/opsboard/opsboard/internal/domain"
	"github.com/opsboard/opsboard/internal/ports"
)

// PostgresCommentRepository implements CommentRepository using PostgreSQL
type PostgresCommentRepository struct {
	db *sql.DB
}

// NewPostgresCommentRepository creates a new PostgreSQL comment repository
func NewPostgresCommentRepository(db *sql.DB) ports.CommentRepository {
	return &PostgresCommentRepository{db: db}
}

// Create saves a new comment
func (r *PostgresCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	query := `
		INSERT INTO comments (id, parent_type, parent_id, author_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		comment.ID,
		string(comment.ParentType),
		comment.ParentID,
		comment.AuthorID,
		comment.Body,
		comment.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	return nil
}

// ListByParent retrieves comments for a parent, oldest first
func (r *PostgresCommentRepository) ListByParent(ctx context.Context, parentType domain.ParentType, parentID string, limit, offset int) ([]*domain.Comment, error) {
	query := `
		SELECT id, parent_type, parent_id, author_id, body, created_at
		FROM comments
		WHERE parent_type = $1 AND parent_id = $2
		ORDER BY created_at ASC
	`

	args := []interface{}{string(parentType), parentID}
	argIndex := 3

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, limit)
		argIndex++
	}

	if offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	var comments []*domain.Comment

	for rows.Next() {
		var comment domain.Comment
		err := rows.Scan(
			&comment.ID,
			&comment.ParentType,
			&comment.ParentID,
			&comment.AuthorID,
			&comment.Body,
			&comment.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, &comment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}

	return comments, nil
}

// CountByParent returns the number of comments on a parent
func (r *PostgresCommentRepository) CountByParent(ctx context.Context, parentType domain.ParentType, parentID string) (int, error) {
	query := `SELECT COUNT(*) FROM comments WHERE parent_type = $1 AND parent_id = $2`

	var count int
	err := r.db.QueryRowContext(ctx, query, string(parentType), parentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count comments: %w", err)
	}

	return count, nil
}
