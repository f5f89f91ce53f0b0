// Package source loads raw readings into memory.
//
// The package provides:
//   - JSONFile for monitor exports ({"measurementTime", "measurementValue", "type"})
//   - ParquetFile for columnar exports (time_ms, value, kind)
//   - CSVFile for delimited exports, read through DuckDB
//   - ProtodelimFile for length-delimited protobuf records
//
// Every source reports a missing file as errors.ErrSourceNotFound and
// undecodable content as errors.ErrMalformedInput.
package source
