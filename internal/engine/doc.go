// Package engine is the boundary to the barcode decode engine. The engine
// is pluggable: the default build carries no concrete decoder to avoid
// pulling decode dependencies implicitly, and Decode fails with
// ErrNoBackend. Enable the gozxing-backed decoder with the build tag
// `barkit_gozxing`:
//
//	go build -tags=barkit_gozxing ./...
//
// Process-wide execution options (worker threads, hardware acceleration)
// apply to every decode in the process and freeze at the first Decode call.
package engine
