package domain

import (
	"time"

	"github.com/google/uuid"
)

// Attachment represents a file attached to a task or incident
type Attachment struct {
	ID          string     `json:"id"`
	ParentType  ParentType `json:"parent_type"`
	ParentID    string     `json:"parent_id"`
	UploaderID  string     `json:"uploader_id"`
	FileName    string     `json:"file_name"`
	ContentType string     `json:"content_type"`
	SizeBytes   int64      `json:"size_bytes"`
	StoragePath string     `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewAttachment creates a new attachment record. StoragePath is filled in by
// the file store once the bytes are written.
func NewAttachment(parentType ParentType, parentID, uploaderID, fileName, contentType string, sizeBytes int64) *Attachment {
	return &Attachment{
		ID:          uuid.NewString(),
		ParentType:  parentType,
		ParentID:    parentID,
		UploaderID:  uploaderID,
		FileName:    fileName,
		ContentType: contentType,
		SizeBytes:   sizeBytes,
		CreatedAt:   time.Now(),
	}
}
