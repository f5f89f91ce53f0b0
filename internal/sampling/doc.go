// Package sampling downsamples readings into fixed-width time buckets.
//
// Buckets are anchored at a start time and are left-open, right-closed:
// a reading at start+5m belongs to the bucket ending at start+5m, a reading
// at start+5m+1s to the bucket ending at start+10m. Each bucket is reduced to
// one reading stamped with the bucket boundary.
//
// The pieces are usable on their own:
//   - Boundary computes the bucket boundary for a timestamp
//   - GroupBy partitions items by key in ascending key order
//   - LatestInBucket is the default Aggregator
//   - Sampler wires them together per measurement kind
package sampling
