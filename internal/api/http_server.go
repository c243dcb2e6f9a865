package api

import (
	"imagetag/internal/config"
	"imagetag/internal/model"
	"imagetag/internal/service"
	"imagetag/internal/storage"
)

// HTTPHandler holds the dependencies shared by the HTTP handlers.
type HTTPHandler struct {
	cfg     config.Config
	repo    model.Repository
	storage storage.Storage

	imageService *service.ImageService
}

// NewHTTPHandler creates the handler set.
func NewHTTPHandler(cfg config.Config, repo model.Repository, store storage.Storage, imageService *service.ImageService) *HTTPHandler {
	return &HTTPHandler{
		cfg:          cfg,
		repo:         repo,
		storage:      store,
		imageService: imageService,
	}
}
