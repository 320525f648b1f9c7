// Package testsupport provides shared builders for tests: in-memory model
// entities and byte-level BDMV fixtures (MPLS, CLPI, index, MovieObject, and
// IG menu streams) assembled in the same big-endian layouts the parsers read.
package testsupport
