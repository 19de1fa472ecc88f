package model

import "time"

// Session is the pending choice of one owner between probe and callback.
// At most one session exists per owner; a newer one replaces the older.
type Session struct {
	OwnerID   int64
	SourceURL string // URL exactly as submitted
	ItemURL   string // concrete item to fetch when SourceURL was a playlist
	Platform  string
	CreatedAt time.Time
}

// FetchURL returns the URL the acquirer should download
func (s *Session) FetchURL() string {
	if s.ItemURL != "" {
		return s.ItemURL
	}
	return s.SourceURL
}

// Expired reports whether the session is older than ttl at now
func (s *Session) Expired(now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(s.CreatedAt) >= ttl
}

// Submission is an inbound text message that carried a URL
type Submission struct {
	OwnerID int64
	ChatID  int64
	URL     string
}

// Callback is an inbound button press
type Callback struct {
	ID        string
	CallerID  int64
	ChatID    int64
	MessageID int
	Data      string
}

// MessageRef addresses a message that can be edited later
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// Button is one inline choice shown with a message
type Button struct {
	Text string
	Data string
}
