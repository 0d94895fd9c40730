package image

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"medinsight-server-go/internal/platform/config"
	"medinsight-server-go/internal/platform/logging"
)

// Validator performs layered checks against incoming image payloads: size and
// dimension bounds, format allow-list, magic bytes, and a real decode of the
// image header. No validation happens beyond what decoding itself performs;
// anything image.DecodeConfig accepts within the configured bounds passes.
type Validator struct {
	config *config.SecurityConfig
	logger *logging.Logger
}

func NewValidator(cfg *config.SecurityConfig, logger *logging.Logger) *Validator {
	return &Validator{
		config: cfg,
		logger: logger,
	}
}

var imageSignatures = map[string][]byte{
	"jpeg": {0xFF, 0xD8},
	"jpg":  {0xFF, 0xD8},
	"png":  {0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A},
	"gif":  {0x47, 0x49, 0x46, 0x38},
	"webp": {0x52, 0x49, 0x46, 0x46},
	"bmp":  {0x42, 0x4D},
}

// ValidateBytes runs the full validation chain against raw upload bytes.
func (v *Validator) ValidateBytes(raw []byte, declaredFormat string) ValidationResult {
	result := ValidationResult{IsValid: false}

	if len(raw) == 0 {
		result.Error = fmt.Errorf("empty image payload")
		return result
	}

	if v.config.MaxFileSize > 0 && int64(len(raw)) > v.config.MaxFileSize {
		result.Error = fmt.Errorf(
			"file size exceeds limit: %d bytes (max %d bytes)",
			len(raw),
			v.config.MaxFileSize,
		)
		result.Risk = "file too large"
		v.logger.WarnTag("IMAGE",
			"oversized upload rejected: size=%d max=%d declared=%s",
			len(raw), v.config.MaxFileSize, declaredFormat)
		return result
	}

	if declaredFormat != "" && !v.isFormatAllowed(declaredFormat) {
		result.Error = fmt.Errorf("unsupported format: %s", declaredFormat)
		result.Risk = "unapproved format"
		return result
	}

	decodeResult := v.validateDecoding(raw, declaredFormat)
	if !decodeResult.IsValid {
		if declaredFormat != "" && !v.matchesSignature(raw, declaredFormat) {
			header := fmt.Sprintf("%x", raw[:minInt(len(raw), 16)])
			v.logger.WarnTag("IMAGE",
				"file signature mismatch: declared=%s header=%s", declaredFormat, header)
		}
		return decodeResult
	}

	result = decodeResult
	result.IsValid = true
	result.FileSize = int64(len(raw))
	return result
}

func (v *Validator) isFormatAllowed(format string) bool {
	if v.config == nil || len(v.config.AllowedFormats) == 0 {
		return true
	}
	format = strings.ToLower(format)
	for _, allowed := range v.config.AllowedFormats {
		if strings.ToLower(allowed) == format {
			return true
		}
	}
	return false
}

func (v *Validator) matchesSignature(raw []byte, format string) bool {
	signature, ok := imageSignatures[strings.ToLower(format)]
	if !ok || len(signature) == 0 {
		return true
	}
	if len(raw) < len(signature) {
		return false
	}
	return bytes.Equal(signature, raw[:len(signature)])
}

// scanForForeignContent rejects payloads that start with executable or
// archive signatures regardless of what the filename claims.
func (v *Validator) scanForForeignContent(raw []byte) bool {
	foreignSignatures := [][]byte{
		{0x4D, 0x5A},             // PE executable
		{0x25, 0x50, 0x44, 0x46}, // PDF
		{0x50, 0x4B, 0x03, 0x04}, // zip
		{0x1F, 0x8B, 0x08},       // gzip
	}

	for _, signature := range foreignSignatures {
		if bytes.HasPrefix(raw, signature) {
			v.logger.WarnTag("IMAGE",
				"foreign payload signature detected: %x", signature)
			return true
		}
	}
	return false
}

func (v *Validator) validateDecoding(raw []byte, declaredFormat string) ValidationResult {
	result := ValidationResult{Format: declaredFormat}

	cfg, actualFormat, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		result.Error = fmt.Errorf("decode image: %w", err)
		result.Risk = "corrupted image data"
		return result
	}

	if actualFormat != "" {
		result.Format = actualFormat
	}

	if v.config.MaxWidth > 0 && v.config.MaxHeight > 0 &&
		(cfg.Width > v.config.MaxWidth || cfg.Height > v.config.MaxHeight) {
		result.Error = fmt.Errorf("dimensions exceed limit: %dx%d (max %dx%d)",
			cfg.Width, cfg.Height, v.config.MaxWidth, v.config.MaxHeight)
		result.Risk = "dimensions too large"
		return result
	}

	totalPixels := int64(cfg.Width) * int64(cfg.Height)
	if v.config.MaxPixels > 0 && totalPixels > v.config.MaxPixels {
		result.Error = fmt.Errorf("pixel count exceeds limit: %d (max %d)",
			totalPixels, v.config.MaxPixels)
		result.Risk = "pixel count too high"
		return result
	}

	if v.config.EnableDeepScan && v.scanForForeignContent(raw) {
		result.Error = fmt.Errorf("payload is not a plain image")
		result.Risk = "foreign content"
		return result
	}

	result.IsValid = true
	result.Width = cfg.Width
	result.Height = cfg.Height
	result.FileSize = int64(len(raw))

	v.logger.DebugTag("IMAGE",
		"validation success: format=%s width=%d height=%d size=%d",
		result.Format, result.Width, result.Height, result.FileSize)

	return result
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
