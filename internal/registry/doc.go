// Package registry holds the static lookup tables for domain guidance and
// critic personas embedded into phase instructions.
//
// Both tables deliberately fall back instead of failing: an unknown domain
// key resolves to the general guidance and a blank critic name resolves to a
// generic persona. A missing classification should degrade a reasoning run,
// not abort it. The tables are read-only for the process lifetime.
package registry
