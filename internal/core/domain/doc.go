// Package domain defines the core business entities for clausecheck.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ComplianceRule and Catalog: the rules a contract is checked against
//   - RawDocument: opaque bytes plus a declared media type
//   - Document: extracted plaintext
//   - Chunk: an overlapping segment of a Document
//   - EvaluationResult and Report: the outcome of a compliance run
//   - SessionConfig: the explicit per-session configuration object
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
