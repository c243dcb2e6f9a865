package detect

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"imagetag/internal/config"
)

func testClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(config.Config{
		ImaggaAPIKey:    "key",
		ImaggaAPISecret: "secret",
	})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client.WithBaseURL(server.URL), server
}

func TestNewClientMissingCredentials(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
	}{
		{name: "no credentials", cfg: config.Config{}},
		{name: "missing secret", cfg: config.Config{ImaggaAPIKey: "key"}},
		{name: "missing key", cfg: config.Config{ImaggaAPISecret: "secret"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewClient(tt.cfg); err == nil {
				t.Error("expected an error for missing credentials")
			}
		})
	}
}

func TestDetectURL(t *testing.T) {
	var gotAuth string
	var gotImageURL string

	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotImageURL = r.URL.Query().Get("image_url")
		json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]any{
				"tags": []map[string]any{
					{"confidence": 92.5, "tag": map[string]string{"en": "cat"}},
					{"confidence": 71.0, "tag": map[string]string{"en": "pet"}},
				},
			},
			"status": map[string]string{"text": "", "type": "success"},
		})
	})

	tags, err := client.DetectURL(context.Background(), "http://example.com/cat.png")
	if err != nil {
		t.Fatalf("DetectURL failed: %v", err)
	}

	// base64("key:secret")
	if gotAuth != "Basic a2V5OnNlY3JldA==" {
		t.Errorf("unexpected authorization header %q", gotAuth)
	}
	if gotImageURL != "http://example.com/cat.png" {
		t.Errorf("unexpected image_url %q", gotImageURL)
	}
	if len(tags) != 2 || tags[0] != "cat" || tags[1] != "pet" {
		t.Fatalf("expected [cat pet], got %v", tags)
	}
}

func TestDetectBase64(t *testing.T) {
	var gotBase64 string

	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse form: %v", err)
		}
		gotBase64 = r.PostFormValue("image_base64")
		json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]any{
				"tags": []map[string]any{
					{"confidence": 88.0, "tag": map[string]string{"en": "dog"}},
				},
			},
			"status": map[string]string{"text": "", "type": "success"},
		})
	})

	tags, err := client.DetectBase64(context.Background(), "aGVsbG8=")
	if err != nil {
		t.Fatalf("DetectBase64 failed: %v", err)
	}
	if gotBase64 != "aGVsbG8=" {
		t.Errorf("unexpected image_base64 %q", gotBase64)
	}
	if len(tags) != 1 || tags[0] != "dog" {
		t.Fatalf("expected [dog], got %v", tags)
	}
}

func TestDetectForwardsAPIErrors(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"status": map[string]string{"text": "invalid image url", "type": "error"},
		})
	})

	_, err := client.DetectURL(context.Background(), "http://nowhere.invalid/x.png")
	if err == nil {
		t.Fatal("expected an error")
	}

	var apiErr *APIStatusError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIStatusError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", apiErr.StatusCode)
	}
	if apiErr.Message != "invalid image url" {
		t.Errorf("unexpected message %q", apiErr.Message)
	}
}

func TestDetectMissingResult(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"status": map[string]string{"text": "", "type": "success"},
		})
	})

	_, err := client.DetectURL(context.Background(), "http://example.com/cat.png")
	if err == nil {
		t.Fatal("expected an error for a 200 response without a result")
	}
}
