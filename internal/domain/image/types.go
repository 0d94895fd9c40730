package image

import "encoding/base64"

// Bitmap is the decoded in-memory representation of an uploaded image: the
// sanitised raw bytes plus the dimensions and format the decoder reported.
// Bytes is the canonical payload; the base64 form is a cached view of it.
type Bitmap struct {
	Bytes  []byte `json:"data"`
	Base64 string `json:"-"`
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// DataBase64 returns the base64 form of the payload, encoding on first use
// when the cached copy is absent (e.g. after a store round trip).
func (b *Bitmap) DataBase64() string {
	if b.Base64 == "" && len(b.Bytes) > 0 {
		b.Base64 = base64.StdEncoding.EncodeToString(b.Bytes)
	}
	return b.Base64
}

// ValidationResult captures the outcome of intake validation.
type ValidationResult struct {
	IsValid  bool
	Format   string
	Width    int
	Height   int
	FileSize int64
	Error    error
	Risk     string
}
