package platform

// Package platform contains source-site and filesystem glue: platform
// detection from URLs, strict decoding of yt-dlp metadata, YouTube playlist
// resolution, and artifact naming, discovery and cleanup in the scratch
// directory.
