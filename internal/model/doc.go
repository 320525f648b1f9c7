// Package model defines the entities shared between the BDMV parsers and the
// analysis pipeline: streams, play items, playlists, clips, episodes, and the
// aggregate disc analysis.
//
// All time values originate as 45 kHz tick counts; milliseconds are derived.
// Playlists, play items, and clips are produced by the parsers. The analysis
// pipeline then sets each play item's Label and each playlist's
// Classification in place, on the values it was given; it does not copy them.
package model
