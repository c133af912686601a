// Package domain defines the core business entities for mailtriage.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - EmailRecord: The canonical normalized representation of one message
//   - ClassificationResult: A record paired with its handling category
//   - RawMessage: The provider message shape resolved at the adapter boundary
//   - Category: The closed set of handling categories
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
