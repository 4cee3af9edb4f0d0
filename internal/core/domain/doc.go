// Package domain defines the core entities for insight.
//
// This package is the innermost layer of the hexagon. It has NO external
// dependencies and defines the fundamental types:
//
//   - Document: An ingested PDF and the aggregate of its chunks
//   - Chunk: A bounded span of page text, the unit of retrieval
//   - Candidate: A chunk returned by similarity search with its score
//   - Answer: A generated answer with validated citations
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
