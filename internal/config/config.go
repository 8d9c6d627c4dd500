package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the main configuration structure.
// It is built once at startup and passed by value, so components never share mutable state.
type Config struct {
	ImagesDirectory     string        `mapstructure:"images_directory"`
	MaxSizeKB           int           `mapstructure:"max_size_kb"`
	JPEGQuality         int           `mapstructure:"jpeg_quality"`
	WebPQuality         int           `mapstructure:"webp_quality"`
	MaxDimension        int           `mapstructure:"max_dimension"`
	TempSuffix          string        `mapstructure:"temp_suffix"`
	HookName            string        `mapstructure:"hook_name"`
	SupportedExtensions []string      `mapstructure:"supported_extensions"`
	JPEG                JPEGConfig    `mapstructure:"jpeg"`
	Logging             LoggingConfig `mapstructure:"logging"`
}

// JPEGConfig contains JPEG encoder settings
type JPEGConfig struct {
	// Encoder is the name or path of a mozjpeg cjpeg binary. Empty disables it.
	Encoder string `mapstructure:"encoder"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"` // MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
	Compress   bool   `mapstructure:"compress"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() Config {
	return Config{
		ImagesDirectory: "assets/images",
		MaxSizeKB:       500,
		JPEGQuality:     85,
		WebPQuality:     85,
		MaxDimension:    1920,
		TempSuffix:      ".tmp",
		HookName:        "pre-commit",
		SupportedExtensions: []string{
			".png", ".jpg", ".jpeg", ".webp",
		},
		JPEG: JPEGConfig{
			Encoder: "cjpeg",
		},
		Logging: LoggingConfig{
			Level:      "warn",
			FilePath:   "",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     30,
			Compress:   true,
		},
	}
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("images_directory", d.ImagesDirectory)
	v.SetDefault("max_size_kb", d.MaxSizeKB)
	v.SetDefault("jpeg_quality", d.JPEGQuality)
	v.SetDefault("webp_quality", d.WebPQuality)
	v.SetDefault("max_dimension", d.MaxDimension)
	v.SetDefault("temp_suffix", d.TempSuffix)
	v.SetDefault("hook_name", d.HookName)
	v.SetDefault("supported_extensions", d.SupportedExtensions)
	v.SetDefault("jpeg.encoder", d.JPEG.Encoder)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file_path", d.Logging.FilePath)
	v.SetDefault("logging.max_size", d.Logging.MaxSize)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
	v.SetDefault("logging.max_age", d.Logging.MaxAge)
	v.SetDefault("logging.compress", d.Logging.Compress)
}

// Load builds the configuration from v. No config file or environment is read:
// thresholds are fixed, and only keys the caller bound to flags can differ from the defaults.
func Load(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration and normalizes extensions.
func (c *Config) Validate() error {
	if c.ImagesDirectory == "" {
		return fmt.Errorf("images_directory is required")
	}
	if c.MaxSizeKB <= 0 {
		return fmt.Errorf("max_size_kb must be positive, got %d", c.MaxSizeKB)
	}
	if c.MaxDimension <= 0 {
		return fmt.Errorf("max_dimension must be positive, got %d", c.MaxDimension)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("jpeg_quality must be between 1 and 100, got %d", c.JPEGQuality)
	}
	if c.WebPQuality < 1 || c.WebPQuality > 100 {
		return fmt.Errorf("webp_quality must be between 1 and 100, got %d", c.WebPQuality)
	}
	if c.TempSuffix == "" {
		return fmt.Errorf("temp_suffix is required")
	}
	if len(c.SupportedExtensions) == 0 {
		return fmt.Errorf("supported_extensions must not be empty")
	}

	c.SupportedExtensions = normalizeExtensions(c.SupportedExtensions)

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", c.Logging.Level)
	}

	return nil
}

// MaxSizeBytes returns the size threshold in bytes.
func (c Config) MaxSizeBytes() int64 {
	return int64(c.MaxSizeKB) * 1024
}

// IsImageExtension checks if the extension is for a supported image file
func (c Config) IsImageExtension(ext string) bool {
	ext = strings.ToLower(ext)
	for _, supportedExt := range c.SupportedExtensions {
		if ext == supportedExt {
			return true
		}
	}
	return false
}

// IsTempFile reports whether name carries the temporary suffix of a rewrite.
func (c Config) IsTempFile(name string) bool {
	return strings.HasSuffix(name, c.TempSuffix)
}

func normalizeExtensions(extensions []string) []string {
	normalized := make([]string, len(extensions))
	for i, ext := range extensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized[i] = ext
	}
	return normalized
}
