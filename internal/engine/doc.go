// Package engine is the boundary to the external BWT engine (index build,
// k-mer search, sequence extension, dump). It never imports app, cli or
// pipeline; the pipeline depends only on the Engine interface so tests can
// swap in a fake.
package engine
