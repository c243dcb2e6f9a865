package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"imagetag/internal/entity"
	"imagetag/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type newImageRequest struct {
	ImageURL        string  `json:"image_url"`
	ImageBase64     string  `json:"image_base64"`
	Label           *string `json:"label"`
	ObjectDetection bool    `json:"object_detection"`
}

// CreateImage handles POST /api/images. The body supplies an image URL or a
// base64 payload (exactly one), an optional label, and whether to run object
// detection. The response is the stored image with its tags.
func (h *HTTPHandler) CreateImage(c *gin.Context) {
	if h.repo == nil {
		ServiceUnavailable(c, "image repository not available")
		return
	}

	var req newImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 120*time.Second)
	defer cancel()

	image, err := h.imageService.CreateImage(ctx, service.CreateImageParams{
		ImageURL:        req.ImageURL,
		ImageBase64:     req.ImageBase64,
		Label:           req.Label,
		ObjectDetection: req.ObjectDetection,
	})
	if err != nil {
		h.respondCreateImageError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entity.ImageToResult(image))
}

func (h *HTTPHandler) respondCreateImageError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidImageInput):
		BadRequest(c, ErrCodeInvalidRequest, err.Error())
	case errors.Is(err, service.ErrDetectionUnavailable):
		ServiceUnavailable(c, err.Error())
	default:
		if apiErr, ok := service.DetectionError(err); ok {
			// Forward Imagga's client-class statuses, e.g. an image URL
			// that points at nothing.
			if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
				ErrorResponse(c, apiErr.StatusCode, ErrCodeDetectionFailed, apiErr.Message)
				return
			}
			logrus.WithError(err).Error("object detection failed")
			ErrorResponse(c, http.StatusBadGateway, ErrCodeDetectionFailed, "object detection failed")
			return
		}
		logrus.WithError(err).Error("failed to create image")
		InternalError(c, "failed to create image")
	}
}

// ListImages handles GET /api/images. The objects parameter requests images
// carrying every listed tag, some_objects images carrying at least one; both
// together are rejected.
func (h *HTTPHandler) ListImages(c *gin.Context) {
	if h.repo == nil {
		ServiceUnavailable(c, "image repository not available")
		return
	}

	var query entity.ImageQuery
	if raw, ok := c.GetQuery("objects"); ok {
		query.ContainsAll = splitTagList(raw)
	}
	if raw, ok := c.GetQuery("some_objects"); ok {
		query.ContainsAny = splitTagList(raw)
	}
	if query.ContainsAll != nil && query.ContainsAny != nil {
		BadRequest(c, ErrCodeInvalidRequest, "cannot specify both an objects list and a some_objects list")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	images, err := h.repo.ListImages(ctx, query)
	if err != nil {
		if errors.Is(err, entity.ErrConflictingFilter) {
			BadRequest(c, ErrCodeInvalidRequest, err.Error())
			return
		}
		logrus.WithError(err).Error("failed to list images")
		InternalError(c, "failed to load images")
		return
	}

	c.JSON(http.StatusOK, entity.ImageListResponse{Images: entity.ImagesToResults(images)})
}

// GetImageByID handles GET /api/images/:id.
func (h *HTTPHandler) GetImageByID(c *gin.Context) {
	if h.repo == nil {
		ServiceUnavailable(c, "image repository not available")
		return
	}

	imageID, ok := parseIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	image, err := h.repo.GetImage(ctx, imageID)
	if err != nil {
		if errors.Is(err, entity.ErrImageNotFound) {
			NotFound(c, ErrCodeImageNotFound, "image not found")
			return
		}
		logrus.WithError(err).WithField("id", imageID).Error("failed to load image")
		InternalError(c, "failed to load image")
		return
	}

	c.JSON(http.StatusOK, entity.ImageToResult(image))
}

// DeleteImage handles DELETE /api/images/:id.
func (h *HTTPHandler) DeleteImage(c *gin.Context) {
	if h.repo == nil {
		ServiceUnavailable(c, "image repository not available")
		return
	}

	imageID, ok := parseIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.repo.DeleteImage(ctx, imageID); err != nil {
		if errors.Is(err, entity.ErrImageNotFound) {
			NotFound(c, ErrCodeImageNotFound, "image not found")
			return
		}
		logrus.WithError(err).WithField("id", imageID).Error("failed to delete image")
		InternalError(c, "failed to delete image")
		return
	}

	c.Status(http.StatusNoContent)
}

func parseIDParam(c *gin.Context) (uint, bool) {
	rawID := strings.TrimSpace(c.Param("id"))
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, ErrCodeInvalidRequest, "invalid image id")
		return 0, false
	}
	return uint(id), true
}

// splitTagList parses a comma-separated tag list. Empty segments are
// dropped; an empty input yields an empty, non-nil list, which the query
// layer treats as a vacuous filter.
func splitTagList(raw string) []string {
	parts := strings.Split(raw, ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		names = append(names, trimmed)
	}
	return names
}
