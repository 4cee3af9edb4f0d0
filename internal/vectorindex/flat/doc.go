// Package flat provides an exhaustive inner-product vector index.
//
// Every search scans all stored vectors, so results are exact. The index
// supports appending but not point deletion; removing vectors means building
// a new index from the survivors.
//
// An Index value is never modified after it is returned. Append produces a
// new Index that may share storage with the old one, so an Index can be read
// from any number of goroutines while a writer prepares its successor.
package flat
