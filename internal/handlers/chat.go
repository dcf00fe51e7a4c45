package handlers

import (
	"context"
	"net/http"

	"chatroom-backend/internal/middleware"
	"chatroom-backend/internal/models"
)

type chatService interface {
	Chat(ctx context.Context, username, message string, remember bool) (*models.ChatResponse, error)
}

type ChatHandler struct {
	chatService chatService
}

func NewChatHandler(chatService chatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Message == nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResp("message is required"))
		return
	}

	username := middleware.GetUsername(r.Context())
	resp, err := h.chatService.Chat(r.Context(), username, *req.Message, req.Remember())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
