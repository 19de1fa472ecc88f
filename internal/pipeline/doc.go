package pipeline

// Package pipeline drives one request from an inbound URL to a delivered
// file: detect, probe, present options, take the session on callback,
// acquire, validate size, dispatch, and clean up the artifact.
//
// Every inbound event is handled on its own goroutine. Requests of
// different owners never wait for each other; requests of one owner are
// serialized by the exactly-once session take.
