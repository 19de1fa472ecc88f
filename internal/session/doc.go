package session

// Package session keeps the pending quality choice of each owner between the
// probe and the button press. Stores guarantee at most one live session per
// owner and exactly-once Take under concurrent callbacks.
