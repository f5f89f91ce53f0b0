// Package measurement defines the core data types shared by every stage of
// the sampler.
//
// Key types:
//   - Reading: one timestamped sensor observation with a value and a kind
//   - Kind: the closed set of measurement categories (TEMP, SpO2)
package measurement
