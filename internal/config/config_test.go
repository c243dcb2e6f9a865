package config

import "testing"

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		cfg         Config
		expectError bool
	}{
		{name: "no credentials", cfg: Config{}},
		{name: "both credentials", cfg: Config{ImaggaAPIKey: "key", ImaggaAPISecret: "secret"}},
		{name: "key without secret", cfg: Config{ImaggaAPIKey: "key"}, expectError: true},
		{name: "secret without key", cfg: Config{ImaggaAPISecret: "secret"}, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.expectError && err == nil {
				t.Fatal("expected an error")
			}
			if !tt.expectError && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestDetectionConfigured(t *testing.T) {
	if (Config{}).DetectionConfigured() {
		t.Error("empty config should not report detection configured")
	}
	cfg := Config{ImaggaAPIKey: "key", ImaggaAPISecret: "secret"}
	if !cfg.DetectionConfigured() {
		t.Error("config with credentials should report detection configured")
	}
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig()
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}
	if cfg.HTTPPort != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.HTTPPort)
	}
	if cfg.DBType != "sqlite" {
		t.Errorf("expected default db type sqlite, got %q", cfg.DBType)
	}
	if cfg.StorageType != "local" {
		t.Errorf("expected default storage type local, got %q", cfg.StorageType)
	}
	if cfg.StoragePublicBaseURL != "/files" {
		t.Errorf("expected default public base /files, got %q", cfg.StoragePublicBaseURL)
	}
}
