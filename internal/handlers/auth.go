package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"chatroom-backend/internal/models"
	"chatroom-backend/internal/services"
)

type loginService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
}

type AuthHandler struct {
	authService loginService
}

func NewAuthHandler(authService loginService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tokens, err := h.authService.Login(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokens)
}

// Shared helpers

const maxBodyBytes = 1 << 20 // 1MB

// decodeJSON reads a capped JSON body into dst and writes the error response on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("Request body exceeds 1MB limit"))
		return false
	}
	writeJSON(w, http.StatusUnprocessableEntity, errorResp("Invalid request body"))
	return false
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(detail string) models.ErrorResponse {
	return models.ErrorResponse{Detail: detail}
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation   *services.ValidationError
		unauthorized *services.UnauthorizedError
	)
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusUnprocessableEntity, errorResp(validation.Message))
	case errors.As(err, &unauthorized):
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeJSON(w, http.StatusUnauthorized, errorResp(unauthorized.Message))
	default:
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("Internal server error"))
	}
}
