package handler

import (
	"mentorlink/backend/internal/chathub"
	"mentorlink/backend/internal/storage"

	"go.uber.org/zap"
)

// Handler carries the dependencies shared by all HTTP endpoints.
type Handler struct {
	Hub       *chathub.ManagerService
	Storage   storage.Storage
	JWTSecret []byte
	Logger    *zap.Logger
}

func NewHandler(hub *chathub.ManagerService, s storage.Storage, jwtSecret []byte, logger *zap.Logger) *Handler {
	return &Handler{
		Hub:       hub,
		Storage:   s,
		JWTSecret: jwtSecret,
		Logger:    logger,
	}
}
