// Package disc scans a BDMV backup directory: it reads the metadata files,
// fans them out to the binary parsers, gathers navigation hints, and runs the
// analysis pipeline to produce a DiscAnalysis.
package disc
