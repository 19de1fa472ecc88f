package download

// Package download implements the acquirer built on top of yt-dlp
// (via github.com/lrstanley/go-ytdlp). It fetches one chosen encoding into a
// uniquely named scratch file, locates the result, reads its physical
// metadata and removes every partial file when anything goes wrong.
