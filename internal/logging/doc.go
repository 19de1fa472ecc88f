package logging

// Package logging builds the zerolog logger shared by every component.
