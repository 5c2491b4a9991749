package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port string

	// Upload limits
	MaxUploadBytes int64

	// OCR
	OCRLanguages string // "+"-separated tesseract tags, e.g. "ron+eng"

	// Rasterization
	RasterDPI            int
	RasterFallbackMutool bool

	// PDF text extraction
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 26214400), // 25 MiB

		OCRLanguages: envOr("OCR_LANGUAGES", "ron+eng"),

		RasterDPI:            envInt("RASTER_DPI", 300),
		RasterFallbackMutool: envBool("RASTER_FALLBACK_MUTOOL", true),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 26214400
	}
	if cfg.RasterDPI <= 0 {
		cfg.RasterDPI = 300
	}

	return cfg
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if strings.TrimSpace(c.OCRLanguages) == "" {
		return fmt.Errorf("OCR_LANGUAGES must not be empty")
	}
	if c.RasterDPI < 72 || c.RasterDPI > 1200 {
		return fmt.Errorf("RASTER_DPI out of range: %d", c.RasterDPI)
	}
	return nil
}

// Languages splits the configured tesseract language string into tags.
func (c Config) Languages() []string {
	return strings.Split(c.OCRLanguages, "+")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
