// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - EmbeddingService: Maps text to unit-norm vectors
//   - LLMService: Produces the structured draft answer
//   - PageExtractor: Turns PDF bytes into per-page text
//   - IndexPersistence: Durable vectors, chunks and documents
//   - UploadStore: Keeps the original PDF payloads
//   - ConfigStore: Application configuration
//   - PromptStore: Answer prompt templates
//   - Chunker: Splits extracted pages into chunks
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingCache: Caches query embeddings between runs
//   - FolderWatcher: Feeds the watch command
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
