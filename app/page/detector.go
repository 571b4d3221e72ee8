package page

import (
	"crypto/sha256"
	"encoding/hex"
)

// Tracking mirrors the persisted per-locale tracking entry: the URL the
// content was fetched from and the digest of the last successfully
// processed fetch.
type Tracking struct {
	URL  string
	Hash string
}

// Detector decides whether freshly fetched content needs reprocessing.
// Fetching is unavoidable, parsing is the expensive step this skips.
type Detector struct{}

func NewDetector() *Detector {
	return &Detector{}
}

// Run computes the content digest and reports whether extraction should run.
// A nil prev (first fetch), a URL reassignment or a digest mismatch all mean
// changed; force overrides an unchanged verdict.
func (d *Detector) Run(data []byte, pageURL string, prev *Tracking, force bool) (string, bool) {
	digest := Digest(data)

	if prev == nil {
		return digest, true
	}
	if prev.URL != pageURL {
		// The recorded digest belongs to different content; compare is void.
		return digest, true
	}
	if prev.Hash != digest {
		return digest, true
	}

	return digest, force
}

// Digest returns the SHA-256 hex digest of the content.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
