package dispatch

// Package dispatch delivers an artifact to the user through an ordered list
// of upload strategies: the typed media upload first, then a generic
// document upload.
