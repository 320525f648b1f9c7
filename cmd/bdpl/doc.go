// Command bdpl analyzes a Blu-ray BDMV backup directory and infers its
// logical episode structure: which playlists are episodes, in what order, and
// with what confidence.
package main
