// Package report exposes the built store to the external reporting layer.
//
// The Service is the read-only query interface: entity summaries, reference
// and closure listings, per-mod operations, classified conflicts, fragile
// warnings and aggregate counts. Every query is a snapshot over the
// finished build; there is no subscription or streaming path.
//
// The Handler publishes the same interface over HTTP (Fiber) for remote
// consumers, and the Publisher uploads run artifacts to object storage.
package report
