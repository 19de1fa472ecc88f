package model

import "fmt"

// Byte size units
const (
	KiB = 1024
	MiB = 1024 * KiB
	GiB = 1024 * MiB
)

// AcquisitionResult describes a downloaded artifact.
// The orchestrator owns ArtifactPath after Fetch returns and deletes it once.
type AcquisitionResult struct {
	ArtifactPath    string
	SizeBytes       int64
	Width           int // 0 when unknown
	Height          int // 0 when unknown
	DurationSeconds int // 0 when unknown
	IsAudioOnly     bool
}

// SizeMB returns the artifact size in mebibytes
func (r *AcquisitionResult) SizeMB() float64 {
	return float64(r.SizeBytes) / MiB
}

// Meta returns the physical metadata carried by the result
func (r *AcquisitionResult) Meta() MediaMeta {
	return MediaMeta{
		SizeBytes:       r.SizeBytes,
		Width:           r.Width,
		Height:          r.Height,
		DurationSeconds: r.DurationSeconds,
		HasVideo:        !r.IsAudioOnly,
	}
}

// String returns a short human readable description
func (r *AcquisitionResult) String() string {
	if r.IsAudioOnly {
		return fmt.Sprintf("audio %.1fMB", r.SizeMB())
	}
	if r.Width > 0 && r.Height > 0 {
		return fmt.Sprintf("video %dx%d %.1fMB", r.Width, r.Height, r.SizeMB())
	}
	return fmt.Sprintf("video %.1fMB", r.SizeMB())
}
