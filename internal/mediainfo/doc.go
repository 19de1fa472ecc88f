package mediainfo

// Package mediainfo reads dimensions, duration and size of downloaded
// artifacts with ffprobe.
