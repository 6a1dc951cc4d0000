// Package domain defines the core business entities for ragbot.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Record: A row pulled from the tabular data source
//   - Schema: The ordered field layout of one business domain
//   - IndexedChunk: A piece of record text with its vector and metadata
//   - Match / TaggedMatch: Ephemeral similarity results for one query
//   - Settings: Process configuration resolved at start-up
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
