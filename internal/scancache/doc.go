// Package scancache persists completed disc analyses in SQLite, keyed by a
// fingerprint of the disc's playlist and clip info files, so rescanning an unchanged
// backup returns instantly. A file lock serializes access across processes.
package scancache
