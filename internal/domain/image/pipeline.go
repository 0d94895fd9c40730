package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"medinsight-server-go/internal/platform/config"
	platformerrors "medinsight-server-go/internal/platform/errors"
	"medinsight-server-go/internal/platform/logging"
)

// Pipeline streams an uploaded byte stream through validation into a Bitmap.
// Decode failure aborts the intake with no partial state retained.
type Pipeline struct {
	validator *Validator
	logger    *logging.Logger
	security  *config.SecurityConfig
}

// Options configures the pipeline behaviour.
type Options struct {
	Security *config.SecurityConfig
	Logger   *logging.Logger
}

// Input describes a streaming image payload.
type Input struct {
	Reader         io.Reader
	DeclaredFormat string
	Source         string
}

// NewPipeline constructs an intake pipeline.
func NewPipeline(opts Options) (*Pipeline, error) {
	if opts.Security == nil {
		return nil, fmt.Errorf("security config is required")
	}
	if opts.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &Pipeline{
		validator: NewValidator(opts.Security, opts.Logger),
		logger:    opts.Logger,
		security:  opts.Security,
	}, nil
}

// Process reads the input once, base64-encoding alongside the raw copy, then
// validates and returns the decoded Bitmap.
func (p *Pipeline) Process(ctx context.Context, input Input) (*Bitmap, error) {
	if input.Reader == nil {
		return nil, platformerrors.New(platformerrors.KindDomain, "image.process", "image reader is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	maxSize := p.security.MaxFileSize
	if maxSize <= 0 {
		maxSize = 5 * 1024 * 1024
	}

	limited := &io.LimitedReader{
		R: input.Reader,
		N: maxSize + 1,
	}

	rawBuf := bytes.NewBuffer(make([]byte, 0, 32*1024))
	base64Buf := bytes.NewBuffer(make([]byte, 0, 64*1024))

	encoder := base64.NewEncoder(base64.StdEncoding, base64Buf)
	writer := io.MultiWriter(rawBuf, encoder)

	if _, err := io.Copy(writer, limited); err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindDomain, "image.process", "stream image bytes", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindDomain, "image.process", "finalise base64 encoding", err)
	}

	if limited.N <= 0 {
		return nil, platformerrors.New(platformerrors.KindDomain, "image.process",
			fmt.Sprintf("image exceeds maximum size of %d bytes", maxSize))
	}

	rawBytes := rawBuf.Bytes()
	validation := p.validator.ValidateBytes(rawBytes, input.DeclaredFormat)
	if !validation.IsValid {
		err := validation.Error
		if err == nil {
			err = fmt.Errorf("image validation failed")
		}
		return nil, platformerrors.Wrap(platformerrors.KindDomain, "image.process", "image rejected", err)
	}

	sanitised := make([]byte, len(rawBytes))
	copy(sanitised, rawBytes)

	return &Bitmap{
		Bytes:  sanitised,
		Base64: base64Buf.String(),
		Format: validation.Format,
		Width:  validation.Width,
		Height: validation.Height,
	}, nil
}

// FormatFromFilename maps a declared filename onto the intake format hint.
// Unknown extensions default to jpeg, matching what browsers most often send.
func FormatFromFilename(filename string) string {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".jpg"), strings.HasSuffix(lower, ".jpeg"):
		return "jpeg"
	case strings.HasSuffix(lower, ".png"):
		return "png"
	case strings.HasSuffix(lower, ".gif"):
		return "gif"
	case strings.HasSuffix(lower, ".bmp"):
		return "bmp"
	case strings.HasSuffix(lower, ".webp"):
		return "webp"
	case strings.HasSuffix(lower, ".dcm"), strings.HasSuffix(lower, ".dicom"):
		return "dicom"
	default:
		return "jpeg"
	}
}
