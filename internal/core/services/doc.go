// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The Store owns the aligned vector and chunk sequences. Retriever,
// AnswerAssembler and the ingest, query and document services are built on
// top of it.
//
// Services are pure Go with no CGO dependencies.
package services
