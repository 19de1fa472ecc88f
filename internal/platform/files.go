package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// File permissions
const (
	DefaultDirPermissions = 0755
)

// Artifact naming
const (
	ArtifactSeparator  = "_"
	ArtifactRandomLen  = 8
	OutputExtTemplate  = ".%(ext)s"
	DefaultPlatformTag = "media"
)

// ArtifactExtensions lists output containers in lookup order
var (
	ArtifactExtensions = []string{".mp4", ".webm", ".mkv", ".avi", ".mov", ".m4a", ".mp3", ".ogg"}
)

// AudioExtensions are containers delivered as audio
var (
	AudioExtensions = []string{".m4a", ".mp3", ".ogg", ".opus", ".aac"}
)

// Leftovers written by yt-dlp while a download is in progress
var (
	SkippedExtensions = []string{".part", ".ytdl", ".temp"}
)

var artifactNamePattern = regexp.MustCompile(`^[a-z0-9]+_-?\d+_(\d+)_[0-9a-f]{8}(\..+)?$`)

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// ArtifactBase returns a unique extensionless path for one download of owner
func ArtifactBase(dir, platformName string, owner int64, now time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:ArtifactRandomLen]
	name := strings.Join([]string{
		platformTag(platformName),
		strconv.FormatInt(owner, 10),
		strconv.FormatInt(now.UnixMilli(), 10),
		random,
	}, ArtifactSeparator)
	return filepath.Join(dir, name)
}

// OutputTemplate returns the yt-dlp output template for an artifact base
func OutputTemplate(base string) string {
	return base + OutputExtTemplate
}

// FindArtifact returns the first existing file for base, trying the known
// containers in order and then the bare base
func FindArtifact(base string) (string, error) {
	for _, ext := range ArtifactExtensions {
		candidate := base + ext
		if isRegularFile(candidate) {
			return candidate, nil
		}
	}
	if isRegularFile(base) {
		return base, nil
	}
	return "", fmt.Errorf("no output file for %s", filepath.Base(base))
}

// RemoveArtifacts deletes every file written for base, including partial
// downloads. It returns the number of files removed.
func RemoveArtifacts(base string) int {
	matches, err := filepath.Glob(globEscape(base) + "*")
	if err != nil {
		return 0
	}
	removed := 0
	for _, m := range matches {
		if err := os.Remove(m); err == nil {
			removed++
		}
	}
	return removed
}

// RemoveArtifact deletes a single artifact; a missing file is not an error
func RemoveArtifact(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// ExistingFile returns path when it names a readable regular file, else ""
func ExistingFile(path string) string {
	if path == "" || !isRegularFile(path) {
		return ""
	}
	return path
}

// IsAudioFile reports whether path has an audio container extension
func IsAudioFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, a := range AudioExtensions {
		if ext == a {
			return true
		}
	}
	return false
}

// IsArtifactName reports whether a file name follows the artifact scheme
func IsArtifactName(name string) bool {
	return artifactNamePattern.MatchString(name)
}

// ArtifactCreatedAt returns the creation time encoded in an artifact name
func ArtifactCreatedAt(name string) (time.Time, bool) {
	m := artifactNamePattern.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, false
	}
	millis, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(millis), true
}

// SweepStaleArtifacts removes artifact files in dir created before now
// minus maxAge. Age comes from the name, not the mtime, which yt-dlp may
// copy from the source. Files not following the artifact scheme are left alone.
func SweepStaleArtifacts(dir string, maxAge time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := now.Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		created, ok := ArtifactCreatedAt(entry.Name())
		if !ok || !created.Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

// isPartial reports whether name is an in-progress yt-dlp file
func isPartial(name string) bool {
	for _, ext := range SkippedExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && !isPartial(path)
}

func platformTag(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return DefaultPlatformTag
	}
	return b.String()
}

// globEscape quotes glob metacharacters so a literal path can be used as a
// pattern prefix
func globEscape(path string) string {
	var b strings.Builder
	for _, r := range path {
		switch r {
		case '*', '?', '[', ']':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
