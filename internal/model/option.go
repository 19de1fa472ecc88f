package model

// OptionKind tells whether an option yields audio only or a muxed video
type OptionKind string

const (
	OptionAudio OptionKind = "audio"
	OptionVideo OptionKind = "video"
)

// Tier labels
const (
	LabelAudio  = "Audio Only"
	LabelHigh   = "High"
	LabelMedium = "Medium"
	LabelLow    = "Low"
)

// BestAudioRef is the placeholder encoding reference used when the source
// lists no audio-only encoding. The acquirer resolves it to the best audio.
const BestAudioRef = "bestaudio"

// QualityOption is one user-selectable download choice
type QualityOption struct {
	Kind            OptionKind `json:"kind"`
	EncodingRef     string     `json:"encoding_ref"`
	Label           string     `json:"label"`
	ApproxSizeBytes int64      `json:"approx_size_bytes,omitempty"` // 0 when unknown
	Container       string     `json:"container"`
}

// IsAudio reports whether the option produces an audio-only artifact
func (o QualityOption) IsAudio() bool {
	return o.Kind == OptionAudio
}

// Icon returns the glyph shown in front of the option label
func (o QualityOption) Icon() string {
	if o.IsAudio() {
		return "🎵"
	}
	return "📹"
}
