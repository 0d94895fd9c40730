// Package prompt holds the fixed catalog of analysis features. Each feature
// pairs the page metadata shown to the user with the instruction template
// dispatched to the inference endpoint.
package prompt

import (
	platformerrors "medinsight-server-go/internal/platform/errors"
)

// Feature keys accepted by the analysis API.
const (
	KeyClassification = "classification"
	KeyXRay           = "xray"
	KeyCT             = "ct"
	KeyMRI            = "mri"
	KeyUltrasound     = "ultrasound"
	KeyComparison     = "comparison"
)

// ConfidenceSuffix is appended to any template when the caller asks for
// per-finding confidence scores.
const ConfidenceSuffix = "\n\nIMPORTANT: Include a confidence score (0-100%) for each finding."

// Feature describes one analysis mode.
type Feature struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Template    string `json:"-"`
	// ImageCount is the number of uploads the feature consumes per request.
	ImageCount int `json:"image_count"`
}

var catalog = []Feature{
	{
		Key:         KeyClassification,
		Title:       "Medical Image Classification",
		Description: "Automatic image type detection with confidence scoring",
		Template: "Classify this medical image: X-ray, CT, MRI, or Ultrasound.\n" +
			"Provide: 1) Classification 2) Confidence % 3) Key features 4) Image quality assessment",
		ImageCount: 1,
	},
	{
		Key:         KeyXRay,
		Title:       "X-ray Analysis",
		Description: "Comprehensive X-ray diagnostic reporting",
		Template: "Expert radiologist analysis. Provide structured report:\n" +
			"1. Image Quality & Positioning 2. Anatomical Findings 3. Abnormalities (if any)\n" +
			"4. Impression 5. Recommendations. Include confidence scores.",
		ImageCount: 1,
	},
	{
		Key:         KeyCT,
		Title:       "CT Scan Analysis",
		Description: "Detailed CT scan clinical interpretation",
		Template: "CT imaging specialist analysis:\n" +
			"1. Technical details 2. Anatomical region 3. Density analysis 4. Measurements\n" +
			"5. Clinical impression 6. Follow-up recommendations. Include confidence scores.",
		ImageCount: 1,
	},
	{
		Key:         KeyMRI,
		Title:       "MRI Scan Analysis",
		Description: "Advanced MRI interpretation with sequence analysis",
		Template: "MRI specialist report:\n" +
			"1. Sequence type 2. Anatomical region 3. Signal characteristics 4. Findings\n" +
			"5. Differential diagnosis 6. Clinical correlation 7. Follow-up. Include confidence scores.",
		ImageCount: 1,
	},
	{
		Key:         KeyUltrasound,
		Title:       "Ultrasound Analysis",
		Description: "Ultrasound imaging diagnostic summary",
		Template: "Sonography expert analysis:\n" +
			"1. Examination type 2. Image quality 3. Echogenicity patterns 4. Measurements\n" +
			"5. Doppler findings 6. Impression 7. Recommendations. Include confidence scores.",
		ImageCount: 1,
	},
	{
		Key:         KeyComparison,
		Title:       "Image Comparison",
		Description: "Side-by-side comparison of two studies",
		Template: "Compare these two medical images. Provide:\n" +
			"1. Similarities and differences\n" +
			"2. Changes observed (if temporal comparison)\n" +
			"3. Clinical significance of differences\n" +
			"4. Recommendations",
		ImageCount: 2,
	},
}

var byKey = func() map[string]Feature {
	m := make(map[string]Feature, len(catalog))
	for _, f := range catalog {
		m[f.Key] = f
	}
	return m
}()

// All returns the catalog in presentation order.
func All() []Feature {
	out := make([]Feature, len(catalog))
	copy(out, catalog)
	return out
}

// Get resolves a feature by key.
func Get(key string) (Feature, error) {
	f, ok := byKey[key]
	if !ok {
		return Feature{}, platformerrors.New(platformerrors.KindDomain, "prompt.get",
			"unknown analysis feature: "+key)
	}
	return f, nil
}

// Build assembles the final instruction text for a feature, optionally
// appending the confidence-score directive.
func Build(key string, includeConfidence bool) (string, error) {
	f, err := Get(key)
	if err != nil {
		return "", err
	}
	text := f.Template
	if includeConfidence {
		text += ConfidenceSuffix
	}
	return text, nil
}
