package image

import (
	"testing"

	platformtesting "medinsight-server-go/internal/platform/testing"
)

func TestValidatorRejectsForeignPayloads(t *testing.T) {
	sec := testSecurity()
	validator := NewValidator(sec, platformtesting.SetupTestLogger(t))

	tests := []struct {
		name string
		data []byte
	}{
		{"empty payload", nil},
		{"executable header", []byte{0x4D, 0x5A, 0x90, 0x00}},
		{"pdf header", []byte("%PDF-1.4 rest of doc")},
		{"truncated png", []byte{0x89, 0x50, 0x4E, 0x47}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validator.ValidateBytes(tt.data, "png")
			if result.IsValid {
				t.Fatal("expected validation failure")
			}
			if result.Error == nil {
				t.Fatal("expected validation error to be populated")
			}
		})
	}
}

func TestValidatorReportsRealFormat(t *testing.T) {
	validator := NewValidator(testSecurity(), platformtesting.SetupTestLogger(t))

	data := encodeJPEG(t, 40, 30)
	result := validator.ValidateBytes(data, "png")
	if !result.IsValid {
		t.Fatalf("expected valid result, got error: %v", result.Error)
	}
	if result.Format != "jpeg" {
		t.Errorf("format = %s, want jpeg (decoder wins over declared hint)", result.Format)
	}
	if result.Width != 40 || result.Height != 30 {
		t.Errorf("dimensions = %dx%d, want 40x30", result.Width, result.Height)
	}
}

func TestValidatorEnforcesPixelBudget(t *testing.T) {
	sec := testSecurity()
	sec.MaxPixels = 100
	validator := NewValidator(sec, platformtesting.SetupTestLogger(t))

	result := validator.ValidateBytes(encodePNG(t, 20, 20), "png")
	if result.IsValid {
		t.Fatal("expected pixel budget rejection")
	}
	if result.Risk != "pixel count too high" {
		t.Errorf("risk = %q, want pixel budget risk", result.Risk)
	}
}
