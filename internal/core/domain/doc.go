// Package domain defines the core business entities for zotcast.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Record: A snapshot of one bibliographic item from the source library
//   - Note: A child note attached to a record
//   - ChangeSet: A record detected as changed, with its triggering date
//   - WatermarkRow: One row of the persisted collection/watermark/channel table
//   - RenderedMessage: Chat, plain-text and HTML renderings of a change
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
