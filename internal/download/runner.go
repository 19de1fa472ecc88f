package download

import (
	"context"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"github.com/rs/zerolog"
)

// YtdlpRunner runs downloads with the yt-dlp binary
type YtdlpRunner struct {
	executable string
	log        zerolog.Logger
}

// NewYtdlpRunner creates a runner using executable, or the yt-dlp found
// on PATH when empty
func NewYtdlpRunner(executable string, log zerolog.Logger) *YtdlpRunner {
	return &YtdlpRunner{executable: executable, log: log}
}

// Run executes spec
func (r *YtdlpRunner) Run(ctx context.Context, spec Spec) error {
	dl := r.command(spec)
	dl.ProgressFunc(ProgressInterval, func(update ytdlp.ProgressUpdate) {
		r.logProgress(&update)
	})

	_, err := dl.Run(ctx, spec.URL)
	return err
}

// command builds the download invocation. NoMtime keeps the artifact's
// mtime at download time instead of the source's Last-Modified.
func (r *YtdlpRunner) command(spec Spec) *ytdlp.Command {
	dl := ytdlp.New().
		ForceOverwrites().
		NoPlaylist().
		NoMtime().
		NoWarnings().
		Format(spec.Format).
		Output(spec.OutputTemplate)

	if r.executable != "" {
		dl.SetExecutable(r.executable)
	}
	if spec.CookiesPath != "" {
		dl.Cookies(spec.CookiesPath)
	}
	if spec.ExtractAudio {
		dl.ExtractAudio().AudioFormat(spec.AudioFormat)
	}
	if spec.MergeFormat != "" {
		dl.MergeOutputFormat(spec.MergeFormat)
	}
	return dl
}

// logProgress reports download progress at debug level
func (r *YtdlpRunner) logProgress(update *ytdlp.ProgressUpdate) {
	ev := r.log.Debug().Int64("downloaded", int64(update.DownloadedBytes))
	if update.TotalBytes > 0 {
		ev = ev.Int64("total", int64(update.TotalBytes)).
			Float64("percent", float64(update.DownloadedBytes)/float64(update.TotalBytes)*100)
	}
	if eta := update.ETA(); eta > 0 {
		ev = ev.Dur("eta", eta.Round(time.Second))
	}
	ev.Msg("download progress")
}
