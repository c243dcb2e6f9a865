package detect

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"imagetag/internal/config"

	"github.com/sirupsen/logrus"
)

const imaggaBaseURL = "https://api.imagga.com/v2"

// APIStatusError carries a non-2xx status reported by Imagga together with
// its error text, so the caller can forward client-class failures.
type APIStatusError struct {
	StatusCode int
	Message    string
}

func (e *APIStatusError) Error() string {
	return fmt.Sprintf("imagga returned status %d: %s", e.StatusCode, e.Message)
}

// Client asks the Imagga tagging API which objects appear in an image.
type Client struct {
	authorization string
	baseURL       string
	httpClient    *http.Client
}

// NewClient builds an Imagga client from the configured credentials. Missing
// credentials are a configuration error reported at startup, never a panic
// during a request.
func NewClient(cfg config.Config) (*Client, error) {
	key := strings.TrimSpace(cfg.ImaggaAPIKey)
	secret := strings.TrimSpace(cfg.ImaggaAPISecret)
	if key == "" || secret == "" {
		return nil, errors.New("imagga api key/secret are not configured")
	}

	auth := base64.StdEncoding.EncodeToString([]byte(key + ":" + secret))
	return &Client{
		authorization: "Basic " + auth,
		baseURL:       imaggaBaseURL,
		httpClient:    &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// WithBaseURL overrides the API endpoint. Used in tests.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = strings.TrimRight(base, "/")
	return c
}

// DetectURL returns the english tag names Imagga detects in the image behind
// the given URL.
func (c *Client) DetectURL(ctx context.Context, imageURL string) ([]string, error) {
	endpoint := fmt.Sprintf("%s/tags?image_url=%s", c.baseURL, url.QueryEscape(imageURL))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build imagga request: %w", err)
	}
	return c.tags(req)
}

// DetectBase64 returns the english tag names Imagga detects in the given
// base64-encoded image data.
func (c *Client) DetectBase64(ctx context.Context, imageBase64 string) ([]string, error) {
	form := url.Values{}
	form.Set("image_base64", imageBase64)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tags", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build imagga request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.tags(req)
}

func (c *Client) tags(req *http.Request) ([]string, error) {
	req.Header.Set("Authorization", c.authorization)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("imagga request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read imagga response: %w", err)
	}

	var parsed taggingResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, &APIStatusError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
		}
		return nil, fmt.Errorf("decode imagga response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		logrus.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"error":  parsed.Status.ErrorText,
		}).Warn("imagga request failed")
		return nil, &APIStatusError{StatusCode: resp.StatusCode, Message: parsed.Status.ErrorText}
	}

	// A 200 without a result means the API contract changed under us.
	if parsed.Result == nil {
		return nil, errors.New("imagga returned 200 OK without a result")
	}

	names := make([]string, 0, len(parsed.Result.Tags))
	for _, tag := range parsed.Result.Tags {
		names = append(names, tag.Translations.English)
	}
	return names, nil
}

// taggingResponse mirrors the Imagga response body. Result is absent on
// failures; Status.ErrorText is empty on success. Confidence values and
// non-english translations are ignored.
type taggingResponse struct {
	Result *taggingResult `json:"result"`
	Status taggingStatus  `json:"status"`
}

type taggingResult struct {
	Tags []taggedObject `json:"tags"`
}

type taggedObject struct {
	Confidence   float64         `json:"confidence"`
	Translations tagTranslations `json:"tag"`
}

type tagTranslations struct {
	English string `json:"en"`
}

type taggingStatus struct {
	ErrorText string `json:"text"`
	Type      string `json:"type"`
}
