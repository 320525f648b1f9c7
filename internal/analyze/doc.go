// Package analyze infers the logical episode structure of a parsed BDMV
// disc. It composes small pure stages: playlist signatures and dedup,
// duration clustering, a segment reuse graph, segment/playlist
// classification, episode inference, and a deterministic explainer.
//
// Every stage is a pure function of its predecessors' outputs; set-valued
// intermediates are materialized as sorted sequences before they influence
// the result, so two runs over the same inputs agree byte for byte.
package analyze
