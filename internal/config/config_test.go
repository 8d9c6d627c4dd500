package config

import (
	"testing"

	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.ImagesDirectory != "assets/images" {
		t.Errorf("Expected images directory assets/images, got %s", cfg.ImagesDirectory)
	}
	if cfg.MaxSizeKB != 500 {
		t.Errorf("Expected max size 500, got %d", cfg.MaxSizeKB)
	}
	if cfg.JPEGQuality != 85 || cfg.WebPQuality != 85 {
		t.Errorf("Expected qualities 85/85, got %d/%d", cfg.JPEGQuality, cfg.WebPQuality)
	}
	if cfg.MaxDimension != 1920 {
		t.Errorf("Expected max dimension 1920, got %d", cfg.MaxDimension)
	}
	if cfg.MaxSizeBytes() != 500*1024 {
		t.Errorf("Expected %d bytes, got %d", 500*1024, cfg.MaxSizeBytes())
	}
}

func TestLoadIgnoresEnvironment(t *testing.T) {
	t.Setenv("MAX_SIZE_KB", "1")

	cfg, err := Load(viper.New())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.MaxSizeKB != 500 {
		t.Errorf("Expected environment to be ignored, got max size %d", cfg.MaxSizeKB)
	}
}

func TestLoadBoundLoggingKey(t *testing.T) {
	v := viper.New()
	v.Set("logging.level", "debug")

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected level debug, got %s", cfg.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "zero max size", mutate: func(c *Config) { c.MaxSizeKB = 0 }, wantErr: true},
		{name: "negative dimension", mutate: func(c *Config) { c.MaxDimension = -1 }, wantErr: true},
		{name: "jpeg quality too high", mutate: func(c *Config) { c.JPEGQuality = 101 }, wantErr: true},
		{name: "webp quality zero", mutate: func(c *Config) { c.WebPQuality = 0 }, wantErr: true},
		{name: "empty temp suffix", mutate: func(c *Config) { c.TempSuffix = "" }, wantErr: true},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "loud" }, wantErr: true},
		{name: "no extensions", mutate: func(c *Config) { c.SupportedExtensions = nil }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExtensionHelpers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SupportedExtensions = []string{"PNG", ".Jpg"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}

	tests := []struct {
		ext  string
		want bool
	}{
		{".png", true},
		{".PNG", true},
		{".jpg", true},
		{".webp", false},
		{".txt", false},
	}
	for _, tt := range tests {
		if got := cfg.IsImageExtension(tt.ext); got != tt.want {
			t.Errorf("IsImageExtension(%q) = %v, want %v", tt.ext, got, tt.want)
		}
	}

	if !cfg.IsTempFile("photo.png.tmp") {
		t.Error("Expected photo.png.tmp to be a temp file")
	}
	if cfg.IsTempFile("photo.png") {
		t.Error("Expected photo.png not to be a temp file")
	}
}
