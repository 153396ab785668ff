package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/opsboard/opsboard/internal/adapter/http/middleware"
	"github.com/opsboard/opsboard/internal/adapter/http/response"
	"github.com/opsboard/opsboard/internal/usecase"
)

// AuthHandler handles login and current-user lookups
type AuthHandler struct {
	authUseCase *usecase.AuthUseCase
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authUseCase *usecase.AuthUseCase) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
	}
}

// RegisterPublicRoutes registers routes reachable without a session
func (h *AuthHandler) RegisterPublicRoutes(router *mux.Router) {
	router.HandleFunc("/auth/login", h.Login).Methods("POST")
}

// RegisterRoutes registers routes requiring a session
func (h *AuthHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/auth/me", h.Me).Methods("GET")
}

// Login handles credential verification and token issuance
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req usecase.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	resp, err := h.authUseCase.Login(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Login successful", resp)
}

// Me returns the full user record behind the session token
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	user, err := h.authUseCase.GetUser(r.Context(), actor.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "OK", user)
}
