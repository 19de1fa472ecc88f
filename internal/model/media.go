package model

// Encoding is one downloadable format reported by the probe
type Encoding struct {
	FormatID       string
	Ext            string
	HasVideo       bool
	HasAudio       bool
	Height         int     // 0 when unknown
	FPS            float64 // 0 when unknown
	Filesize       int64   // 0 when unknown
	FilesizeApprox int64   // 0 when unknown
}

// IsAudioOnly reports whether the encoding carries audio without video
func (e Encoding) IsAudioOnly() bool {
	return e.HasAudio && !e.HasVideo
}

// IsMuxed reports whether the encoding carries both audio and video
func (e Encoding) IsMuxed() bool {
	return e.HasAudio && e.HasVideo
}

// Size returns the exact size when known, otherwise the approximate one
func (e Encoding) Size() int64 {
	if e.Filesize > 0 {
		return e.Filesize
	}
	return e.FilesizeApprox
}

// VideoInfo is the validated result of a metadata probe
type VideoInfo struct {
	ID         string
	Title      string
	Duration   float64
	WebpageURL string
	Encodings  []Encoding

	// FromPlaylist is set when the probed URL was a playlist and only the
	// first entry was kept.
	FromPlaylist bool
}

// MediaMeta is the physical metadata of a file on disk
type MediaMeta struct {
	SizeBytes       int64
	Width           int // 0 when unknown
	Height          int // 0 when unknown
	DurationSeconds int // 0 when unknown
	HasVideo        bool
}
