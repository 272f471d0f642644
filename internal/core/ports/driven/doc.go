// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for a compliance run:
//
//   - NormaliserRegistry / Normaliser: extracts plaintext from raw bytes
//   - PostProcessorPipeline: splits plaintext into chunks
//   - EmbeddingService: turns chunk and query text into vectors
//   - VectorIndex: stores vectors and answers nearest-neighbour queries
//   - LLMService: adjudicates rules the keyword scan could not settle
//   - RuleSource: loads the compliance rule catalog
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - DocumentSource: fetches a contract from a remote location
//   - Metrics: records rule outcomes and latencies
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
