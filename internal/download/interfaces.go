package download

import (
	"context"

	"github.com/ytget/ytgrab-bot/internal/model"
)

// Acquirer defines the interface for the download service.
type Acquirer interface {
	// Fetch downloads req and returns the artifact. The caller owns the
	// returned ArtifactPath and must delete it.
	Fetch(ctx context.Context, req Request) (*model.AcquisitionResult, error)
}

// Request describes one acquisition
type Request struct {
	URL         string
	EncodingRef string
	OwnerID     int64
	Platform    string
}

// Spec is the resolved yt-dlp invocation for a request
type Spec struct {
	URL            string
	Format         string
	OutputTemplate string
	CookiesPath    string
	ExtractAudio   bool
	AudioFormat    string
	MergeFormat    string
}

// Runner executes a download spec.
type Runner interface {
	Run(ctx context.Context, spec Spec) error
}
