package domain

// DomainError represents a domain-specific error
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// Custom errors
var (
	ErrTaskNotFound       = NewDomainError("task not found")
	ErrIncidentNotFound   = NewDomainError("incident not found")
	ErrCommentNotFound    = NewDomainError("comment not found")
	ErrAttachmentNotFound = NewDomainError("attachment not found")
	ErrUserNotFound       = NewDomainError("user not found")

	ErrForbidden      = NewDomainError("forbidden")
	ErrNoValidUpdates = NewDomainError("no valid updates")

	ErrInvalidStatus   = NewDomainError("invalid status")
	ErrInvalidPriority = NewDomainError("invalid priority")
	ErrInvalidTier     = NewDomainError("invalid tier")

	ErrInvalidCredentials = NewDomainError("invalid email or password")
	ErrEmailTaken         = NewDomainError("email already registered")
)
