package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/opsboard/opsboard/internal/adapter/http/middleware"
	"github.com/opsboard/opsboard/internal/adapter/http/response"
	"github.com/opsboard/opsboard/internal/domain"
	"github.com/opsboard/opsboard/internal/usecase"
)

// CommentHandler handles HTTP requests for comments on tasks and incidents
type CommentHandler struct {
	commentUseCase *usecase.CommentUseCase
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(commentUseCase *usecase.CommentUseCase) *CommentHandler {
	return &CommentHandler{
		commentUseCase: commentUseCase,
	}
}

// RegisterRoutes registers comment routes on an authenticated subrouter
func (h *CommentHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/tasks/{id}/comments", h.parentHandler(domain.ParentTypeTask, h.createComment)).Methods("POST")
	router.HandleFunc("/tasks/{id}/comments", h.parentHandler(domain.ParentTypeTask, h.listComments)).Methods("GET")
	router.HandleFunc("/incidents/{id}/comments", h.parentHandler(domain.ParentTypeIncident, h.createComment)).Methods("POST")
	router.HandleFunc("/incidents/{id}/comments", h.parentHandler(domain.ParentTypeIncident, h.listComments)).Methods("GET")
}

func (h *CommentHandler) parentHandler(parentType domain.ParentType, fn func(http.ResponseWriter, *http.Request, domain.ParentType, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fn(w, r, parentType, mux.Vars(r)["id"])
	}
}

func (h *CommentHandler) createComment(w http.ResponseWriter, r *http.Request, parentType domain.ParentType, parentID string) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	comment, err := h.commentUseCase.CreateComment(r.Context(), actor, parentType, parentID, req.Body)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusCreated, "Comment created", comment)
}

func (h *CommentHandler) listComments(w http.ResponseWriter, r *http.Request, parentType domain.ParentType, parentID string) {
	limit := 0
	offset := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if v, err := strconv.Atoi(limitStr); err == nil {
			limit = v
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if v, err := strconv.Atoi(offsetStr); err == nil {
			offset = v
		}
	}

	comments, total, err := h.commentUseCase.ListComments(r.Context(), parentType, parentID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "OK", map[string]interface{}{
		"comments": comments,
		"total":    total,
	})
}
