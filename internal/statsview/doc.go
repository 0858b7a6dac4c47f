// Package statsview serves runtime statistics of the simulator over HTTP. It
// is only functional when built with the statsview build tag:
//
//	go build -tags statsview ./cmd/segsim
//
// Graphs are then available at
//
//	localhost:12600/debug/statsview
//
// and the standard pprof pages at localhost:12600/debug/pprof/.
package statsview

// DefaultAddress is the address the statistics server listens on.
const DefaultAddress = "localhost:12600"

const url = "/debug/statsview"
