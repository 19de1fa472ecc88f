package quality

// Package quality derives the user-facing download choices from a probe
// result: one audio option plus up to three video tiers.
