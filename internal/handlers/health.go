package handlers

import (
	"net/http"

	"chatroom-backend/internal/models"
)

const healthMessage = "WK11 Chat API running"

func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{Status: "ok", Message: healthMessage})
}
