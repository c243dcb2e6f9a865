package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"imagetag/internal/detect"
	"imagetag/internal/entity"
	"imagetag/internal/model"
	"imagetag/internal/storage"
	"imagetag/internal/utils"

	"github.com/sirupsen/logrus"
)

var (
	// ErrInvalidImageInput is returned when the caller supplies neither or
	// both of an image URL and inline image data.
	ErrInvalidImageInput = errors.New("expected an image URL or base64 encoded image, not both")

	// ErrDetectionUnavailable is returned when object detection is requested
	// but no detection client is configured.
	ErrDetectionUnavailable = errors.New("object detection is not configured")
)

// Detector supplies tag names for an image. Satisfied by *detect.Client.
type Detector interface {
	DetectURL(ctx context.Context, imageURL string) ([]string, error)
	DetectBase64(ctx context.Context, imageBase64 string) ([]string, error)
}

// ImageService orchestrates image creation: optional object detection, the
// atomic insert (tags, junction rows, upload, URL patch), and the hydrated
// read-back.
type ImageService struct {
	repo       model.Repository
	storage    storage.Storage
	detector   Detector
	publicBase string
}

// NewImageService creates an image service. detector may be nil when object
// detection is not configured.
func NewImageService(repo model.Repository, store storage.Storage, detector Detector, publicBaseURL string) *ImageService {
	return &ImageService{
		repo:       repo,
		storage:    store,
		detector:   detector,
		publicBase: normalisePublicBase(publicBaseURL),
	}
}

// CreateImageParams carries one image creation request. Exactly one of
// ImageURL and ImageBase64 must be set.
type CreateImageParams struct {
	ImageURL        string
	ImageBase64     string
	Label           *string
	ObjectDetection bool
}

// CreateImage runs detection when requested, inserts the image atomically,
// and returns the stored image with its tags.
func (s *ImageService) CreateImage(ctx context.Context, params CreateImageParams) (*entity.DbImage, error) {
	hasURL := strings.TrimSpace(params.ImageURL) != ""
	hasData := strings.TrimSpace(params.ImageBase64) != ""
	if hasURL == hasData {
		return nil, ErrInvalidImageInput
	}

	var tagNames []string
	if params.ObjectDetection {
		if s.detector == nil {
			return nil, ErrDetectionUnavailable
		}
		var err error
		if hasURL {
			tagNames, err = s.detector.DetectURL(ctx, params.ImageURL)
		} else {
			tagNames, err = s.detector.DetectBase64(ctx, params.ImageBase64)
		}
		if err != nil {
			return nil, fmt.Errorf("detect objects: %w", err)
		}
	}

	ins := entity.ImageInsert{
		Label:    params.Label,
		TagNames: tagNames,
	}

	if hasURL {
		ins.URL = strings.TrimSpace(params.ImageURL)
	} else {
		data, ext, err := utils.DecodeImagePayload(params.ImageBase64)
		if err != nil {
			return nil, fmt.Errorf("decode image payload: %w", err)
		}
		ins.Data = data
		ins.Extension = ext
		ins.Upload = s.uploadFunc(ext)
	}

	imageID, err := s.repo.InsertImage(ctx, ins)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"image_id": imageID,
		"tags":     len(tagNames),
	}).Info("image created")

	return s.repo.GetImage(ctx, imageID)
}

// uploadFunc stores raw bytes under the assigned image id and returns the
// final public URL. It runs inside the insert transaction, so a failure here
// discards the image row instead of leaving it pointing at the placeholder.
func (s *ImageService) uploadFunc(ext string) entity.UploadFunc {
	return func(ctx context.Context, data []byte, imageID uint) (string, error) {
		key, err := s.storage.Save(ctx, data, storage.ImageObjectName(imageID, ext))
		if err != nil {
			return "", err
		}
		return s.PublicURL(key), nil
	}
}

// PublicURL turns a storage key into the URL clients fetch the file from.
// Absolute URLs are passed through untouched.
func (s *ImageService) PublicURL(key string) string {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return trimmed
	}
	return fmt.Sprintf("%s/%s", s.publicBase, strings.TrimLeft(trimmed, "/"))
}

// DetectionError reports whether the error came from the detection
// collaborator and, when Imagga returned a client-class status, surfaces it.
func DetectionError(err error) (*detect.APIStatusError, bool) {
	var apiErr *detect.APIStatusError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func normalisePublicBase(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		trimmed = "/files"
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return strings.TrimRight(trimmed, "/")
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	return strings.TrimRight(trimmed, "/")
}
