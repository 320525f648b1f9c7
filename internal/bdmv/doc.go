// Package bdmv parses the big-endian binary metadata files of a Blu-ray BDMV
// directory: MPLS playlists, CLPI clip info, index.bdmv, MovieObject.bdmv, and
// (experimentally) Interactive Graphics menu streams.
//
// Parsers are pure over their input buffers. A fatal condition (bad magic,
// truncated required section, declared length overrunning the buffer) aborts
// the single file; malformed sub-blocks are skipped using their declared
// lengths and reported as warnings.
package bdmv
