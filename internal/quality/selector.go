package quality

import (
	"fmt"
	"sort"

	"github.com/ytget/ytgrab-bot/internal/model"
)

// Selection defaults
const (
	// MinRankFPS is used for encodings with unknown or lower frame rate
	MinRankFPS = 30

	// DefaultAudioContainer is the container of the synthesized audio option
	DefaultAudioContainer = "m4a"

	// MaxOptions is the number of options Derive can return
	MaxOptions = 4
)

// VideoContainers are the containers accepted for video tiers
var (
	VideoContainers = []string{"mp4", "webm"}
)

// Derive returns the options for info in display order: audio, then the
// high, medium and low video tiers that exist. An info without encodings
// yields no options.
func Derive(info *model.VideoInfo) []model.QualityOption {
	if info == nil || len(info.Encodings) == 0 {
		return nil
	}

	options := make([]model.QualityOption, 0, MaxOptions)
	options = append(options, audioOption(info.Encodings))

	videos := rankVideos(info.Encodings)
	n := len(videos)
	if n == 0 {
		return options
	}

	options = append(options, videoOption(videos[0], model.LabelHigh))
	if n >= 3 {
		options = append(options, videoOption(videos[n/2], model.LabelMedium))
	}
	if n >= 2 {
		options = append(options, videoOption(videos[n-1], model.LabelLow))
	}
	return options
}

// ButtonText returns the label shown on the option's button
func ButtonText(o model.QualityOption) string {
	return fmt.Sprintf("%s %s%s", o.Icon(), o.Label, FormatFilesize(o.ApproxSizeBytes))
}

func audioOption(encodings []model.Encoding) model.QualityOption {
	for _, e := range encodings {
		if e.IsAudioOnly() {
			return model.QualityOption{
				Kind:            model.OptionAudio,
				EncodingRef:     e.FormatID,
				Label:           model.LabelAudio,
				ApproxSizeBytes: e.Size(),
				Container:       e.Ext,
			}
		}
	}
	return model.QualityOption{
		Kind:        model.OptionAudio,
		EncodingRef: model.BestAudioRef,
		Label:       model.LabelAudio,
		Container:   DefaultAudioContainer,
	}
}

func videoOption(e model.Encoding, tier string) model.QualityOption {
	label := tier
	if e.Height > 0 {
		label = fmt.Sprintf("%s (%dp)", tier, e.Height)
	}
	return model.QualityOption{
		Kind:            model.OptionVideo,
		EncodingRef:     e.FormatID,
		Label:           label,
		ApproxSizeBytes: e.Size(),
		Container:       e.Ext,
	}
}

// rankVideos keeps muxed encodings in accepted containers, best first
func rankVideos(encodings []model.Encoding) []model.Encoding {
	videos := make([]model.Encoding, 0, len(encodings))
	for _, e := range encodings {
		if e.IsMuxed() && isVideoContainer(e.Ext) {
			videos = append(videos, e)
		}
	}
	sort.SliceStable(videos, func(i, j int) bool {
		return rank(videos[i]) > rank(videos[j])
	})
	return videos
}

func rank(e model.Encoding) float64 {
	fps := e.FPS
	if fps < MinRankFPS {
		fps = MinRankFPS
	}
	return float64(e.Height) * fps
}

func isVideoContainer(ext string) bool {
	for _, c := range VideoContainers {
		if ext == c {
			return true
		}
	}
	return false
}
