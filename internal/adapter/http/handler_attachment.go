package http

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/opsboard/opsboard/internal/adapter/http/middleware"
	"github.com/opsboard/opsboard/internal/adapter/http/response"
	"github.com/opsboard/opsboard/internal/domain"
	"github.com/opsboard/opsboard/internal/usecase"
)

// AttachmentHandler handles file uploads, downloads and deletion
type AttachmentHandler struct {
	attachmentUseCase *usecase.AttachmentUseCase
	maxUploadBytes    int64
}

// NewAttachmentHandler creates a new attachment handler
func NewAttachmentHandler(attachmentUseCase *usecase.AttachmentUseCase, maxUploadBytes int64) *AttachmentHandler {
	return &AttachmentHandler{
		attachmentUseCase: attachmentUseCase,
		maxUploadBytes:    maxUploadBytes,
	}
}

// RegisterRoutes registers attachment routes on an authenticated subrouter
func (h *AttachmentHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/tasks/{id}/attachments", h.parentHandler(domain.ParentTypeTask, h.upload)).Methods("POST")
	router.HandleFunc("/tasks/{id}/attachments", h.parentHandler(domain.ParentTypeTask, h.list)).Methods("GET")
	router.HandleFunc("/incidents/{id}/attachments", h.parentHandler(domain.ParentTypeIncident, h.upload)).Methods("POST")
	router.HandleFunc("/incidents/{id}/attachments", h.parentHandler(domain.ParentTypeIncident, h.list)).Methods("GET")
	router.HandleFunc("/attachments/{id}", h.Download).Methods("GET")
	router.HandleFunc("/attachments/{id}", h.Delete).Methods("DELETE")
}

func (h *AttachmentHandler) parentHandler(parentType domain.ParentType, fn func(http.ResponseWriter, *http.Request, domain.ParentType, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fn(w, r, parentType, mux.Vars(r)["id"])
	}
}

func (h *AttachmentHandler) upload(w http.ResponseWriter, r *http.Request, parentType domain.ParentType, parentID string) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		response.BadRequest(w, "Invalid multipart body")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "Missing file field")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")

	attachment, err := h.attachmentUseCase.Upload(r.Context(), actor, usecase.UploadAttachmentRequest{
		ParentType:  parentType,
		ParentID:    parentID,
		FileName:    header.Filename,
		ContentType: contentType,
		SizeBytes:   header.Size,
		Content:     file,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "Attachment uploaded", attachment)
}

func (h *AttachmentHandler) list(w http.ResponseWriter, r *http.Request, parentType domain.ParentType, parentID string) {
	attachments, err := h.attachmentUseCase.ListAttachments(r.Context(), parentType, parentID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "OK", map[string]interface{}{
		"attachments": attachments,
	})
}

// Download streams the attachment content
func (h *AttachmentHandler) Download(w http.ResponseWriter, r *http.Request) {
	attachmentID := mux.Vars(r)["id"]

	attachment, content, err := h.attachmentUseCase.Download(r.Context(), attachmentID)
	if err != nil {
		writeError(w, err)
		return
	}
	defer content.Close()

	w.Header().Set("Content-Type", attachment.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachment.FileName))
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, content)
}

// Delete removes an attachment, subject to the attachment deletion policy
func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	attachmentID := mux.Vars(r)["id"]

	if err := h.attachmentUseCase.Delete(r.Context(), actor, attachmentID); err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Attachment deleted", nil)
}
