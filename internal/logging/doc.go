// Package logging builds slog loggers for the CLI and render pipeline.
//
// Two output formats are supported: a compact console handler that hoists the
// component attribute into the line prefix, and a JSON handler for log
// aggregation. Attr helpers keep call sites terse and give every package the
// same field vocabulary.
//
// Construct loggers through New or NewFromConfig so level parsing and output
// routing stay consistent across commands.
package logging
