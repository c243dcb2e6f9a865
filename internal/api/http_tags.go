package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"imagetag/internal/entity"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ListTags handles GET /api/tags, returning every tag with the number of
// images it is attached to.
func (h *HTTPHandler) ListTags(c *gin.Context) {
	if h.repo == nil {
		ServiceUnavailable(c, "tag repository not available")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	tags, err := h.repo.ListTags(ctx)
	if err != nil {
		logrus.WithError(err).Error("failed to list tags")
		InternalError(c, "failed to load tags")
		return
	}

	c.JSON(http.StatusOK, entity.TagListResponse{Tags: entity.TagsToDTOs(tags)})
}

// DeleteTag handles DELETE /api/tags/:id, removing the tag and its image
// associations.
func (h *HTTPHandler) DeleteTag(c *gin.Context) {
	if h.repo == nil {
		ServiceUnavailable(c, "tag repository not available")
		return
	}

	rawID := strings.TrimSpace(c.Param("id"))
	tagID, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil || tagID == 0 {
		BadRequest(c, ErrCodeInvalidRequest, "invalid tag id")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.repo.DeleteTag(ctx, uint(tagID)); err != nil {
		if errors.Is(err, entity.ErrTagNotFound) {
			NotFound(c, ErrCodeTagNotFound, "tag not found")
			return
		}
		logrus.WithError(err).Error("failed to delete tag")
		InternalError(c, "failed to delete tag")
		return
	}

	c.Status(http.StatusNoContent)
}
