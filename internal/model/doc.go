package model

// Package model defines domain data structures shared by the acquisition
// pipeline: sessions, quality options, probe results, acquisition results,
// callback tokens, pipeline states and the error taxonomy. Types carry no
// behavior beyond small helpers so every stage can depend on them freely.
