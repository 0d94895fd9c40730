package report

import (
	"context"
	"time"

	"medinsight-server-go/internal/domain/image"
)

// Generator produces report text from a prompt and one or more images. The
// vision provider satisfies this; tests substitute a fake.
type Generator interface {
	Generate(ctx context.Context, prompt string, images []*image.Bitmap) (string, error)
}

// AnalyzeRequest carries one uploaded image through a single-image feature.
type AnalyzeRequest struct {
	SessionID         string
	FeatureKey        string
	IncludeConfidence bool
	Image             image.Input
}

// CompareRequest carries two uploads through the comparison feature.
type CompareRequest struct {
	SessionID         string
	IncludeConfidence bool
	First             image.Input
	Second            image.Input
}

// Result is the outcome of an analysis or comparison call. Width and Height
// describe the first analysed image; comparison results leave them zero.
type Result struct {
	ReportText  string    `json:"report_text"`
	ReportType  string    `json:"report_type"`
	FeatureKey  string    `json:"feature_key"`
	Width       int       `json:"width,omitempty"`
	Height      int       `json:"height,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}
