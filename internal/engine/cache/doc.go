// Package cache memoises engine projections on disk.
//
// Entries are JSON files under ~/.ghgledger/cache/ named by a content
// fingerprint of the projection inputs: the records that can affect the
// result, the time window and the factor table identity. Any change to those
// inputs yields a new key, so stale entries are never read; they simply age
// out by TTL. A miss is never an error for callers, who recompute.
package cache
