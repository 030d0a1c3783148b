// Package domain defines the core business entities for archivevault.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Archive: An imported ZIP and its pipeline status
//   - MainDocument: Structured fields extracted from the instruction document
//   - Block: One paragraph of the instruction document
//   - Attachment: Any other entry, nested ZIPs expanded one level
//   - Annotation: A user note on an archive
//   - Hit: One search result (block, field, annotation or attachment)
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
