package probe

// Package probe asks yt-dlp for the metadata of a URL without downloading
// it and validates the answer into a model.VideoInfo.
