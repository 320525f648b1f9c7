// Package export serializes a DiscAnalysis: the bdpl.disc.v1 JSON document
// and per-episode M3U debug playlists. All times in serialized form are
// milliseconds derived from 45 kHz ticks.
package export
