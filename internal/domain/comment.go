package domain

import (
	"time"

	"github.com/google/uuid"
)

// ParentType identifies which aggregate a comment or attachment belongs to.
type ParentType string

const (
	ParentTypeTask     ParentType = "task"
	ParentTypeIncident ParentType = "incident"
)

// ParseParentType validates a raw parent type string.
func ParseParentType(s string) (ParentType, error) {
	switch ParentType(s) {
	case ParentTypeTask, ParentTypeIncident:
		return ParentType(s), nil
	}
	return "", NewDomainError("invalid parent type")
}

// Comment represents a comment on a task or incident
type Comment struct {
	ID         string     `json:"id"`
	ParentType ParentType `json:"parent_type"`
	ParentID   string     `json:"parent_id"`
	AuthorID   string     `json:"author_id"`
	Body       string     `json:"body"`
	CreatedAt  time.Time  `json:"created_at"`
}

// NewComment creates a new comment
func NewComment(parentType ParentType, parentID, authorID, body string) *Comment {
	return &Comment{
		ID:         uuid.NewString(),
		ParentType: parentType,
		ParentID:   parentID,
		AuthorID:   authorID,
		Body:       body,
		CreatedAt:  time.Now(),
	}
}

// IsValid checks if the comment is valid
func (c *Comment) IsValid() error {
	if c.ParentID == "" {
		return ErrEmptyParentID
	}
	if c.AuthorID == "" {
		return ErrEmptyAuthorID
	}
	if c.Body == "" {
		return ErrEmptyCommentBody
	}
	if c.ParentType != ParentTypeTask && c.ParentType != ParentTypeIncident {
		return NewDomainError("invalid parent type")
	}
	return nil
}

// Comment errors
var (
	ErrEmptyParentID    = NewDomainError("parent ID cannot be empty")
	ErrEmptyAuthorID    = NewDomainError("author ID cannot be empty")
	ErrEmptyCommentBody = NewDomainError("comment body cannot be empty")
)
