package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
)

// indexStore implements driven.IndexPersistence.
type indexStore struct {
	store *Store
}

var _ driven.IndexPersistence = (*indexStore)(nil)

// Append stores a document whose chunks and vectors occupy positions base
// through base+len(chunks)-1.
func (s *indexStore) Append(
	ctx context.Context, base int, doc domain.Document, chunks []domain.Chunk, vectors [][]float32,
) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("sqlite: %w: %d vectors for %d chunks", domain.ErrConsistency, len(vectors), len(chunks))
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&count); err != nil {
			return fmt.Errorf("counting chunks: %w", err)
		}
		if count != base {
			return fmt.Errorf("sqlite: %w: append at position %d, database holds %d", domain.ErrConsistency, base, count)
		}

		if err := insertDocument(ctx, tx, doc); err != nil {
			return err
		}
		return insertRows(ctx, tx, base, chunks, vectors)
	})
}

// Replace overwrites all three tables with snap.
func (s *indexStore) Replace(ctx context.Context, snap *domain.IndexSnapshot) error {
	if snap.Len() != len(snap.Vectors) {
		return fmt.Errorf("sqlite: %w: %d vectors for %d chunks", domain.ErrConsistency, len(snap.Vectors), snap.Len())
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"index_vectors", "chunks", "documents"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clearing %s: %w", table, err)
			}
		}
		for _, doc := range snap.Documents {
			if err := insertDocument(ctx, tx, doc); err != nil {
				return err
			}
		}
		return insertRows(ctx, tx, 0, snap.Chunks, snap.Vectors)
	})
}

// Load reads everything back in position order and checks that the chunk
// and vector tables agree position for position.
func (s *indexStore) Load(ctx context.Context) (*domain.IndexSnapshot, error) {
	snap := &domain.IndexSnapshot{}

	docs, err := s.loadDocuments(ctx)
	if err != nil {
		return nil, err
	}
	snap.Documents = docs

	chunkRows, err := s.store.db.QueryContext(ctx, `
		SELECT position, chunk_id, document_id, document_name, page_number, chunk_index, text
		FROM chunks ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer chunkRows.Close()

	for chunkRows.Next() {
		var position int
		var c domain.Chunk
		if err := chunkRows.Scan(&position, &c.ID, &c.DocumentID, &c.DocumentName,
			&c.PageNumber, &c.Index, &c.Text); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		if position != len(snap.Chunks) {
			return nil, fmt.Errorf("sqlite: %w: chunk position %d, expected %d",
				domain.ErrConsistency, position, len(snap.Chunks))
		}
		snap.Chunks = append(snap.Chunks, c)
	}
	if err := chunkRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	vectorRows, err := s.store.db.QueryContext(ctx, `
		SELECT position, dims, vector FROM index_vectors ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer vectorRows.Close()

	for vectorRows.Next() {
		var position, dims int
		var blob []byte
		if err := vectorRows.Scan(&position, &dims, &blob); err != nil {
			return nil, fmt.Errorf("scanning vector: %w", err)
		}
		if position != len(snap.Vectors) {
			return nil, fmt.Errorf("sqlite: %w: vector position %d, expected %d",
				domain.ErrConsistency, position, len(snap.Vectors))
		}
		if len(blob) != dims*4 {
			return nil, fmt.Errorf("sqlite: %w: vector %d has %d bytes for %d dims",
				domain.ErrConsistency, position, len(blob), dims)
		}
		snap.Vectors = append(snap.Vectors, bytesToFloat32Slice(blob))
	}
	if err := vectorRows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vectors: %w", err)
	}

	if len(snap.Vectors) != len(snap.Chunks) {
		return nil, fmt.Errorf("sqlite: %w: %d vectors for %d chunks",
			domain.ErrConsistency, len(snap.Vectors), len(snap.Chunks))
	}

	return snap, nil
}

func (s *indexStore) loadDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, filename, upload_time, page_count, chunk_count, file_size
		FROM documents ORDER BY upload_time, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var doc domain.Document
		var uploaded string
		if err := rows.Scan(&doc.ID, &doc.Filename, &uploaded, &doc.PageCount, &doc.ChunkCount, &doc.FileSize); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		doc.UploadTime, err = time.Parse(time.RFC3339Nano, uploaded)
		if err != nil {
			return nil, fmt.Errorf("parsing upload time of %s: %w", doc.ID, err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *indexStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func insertDocument(ctx context.Context, tx *sql.Tx, doc domain.Document) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO documents (id, filename, upload_time, page_count, chunk_count, file_size)
		VALUES (?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.Filename, doc.UploadTime.UTC().Format(time.RFC3339Nano),
		doc.PageCount, doc.ChunkCount, doc.FileSize)
	if err != nil {
		return fmt.Errorf("inserting document %s: %w", doc.ID, err)
	}
	return nil
}

func insertRows(ctx context.Context, tx *sql.Tx, base int, chunks []domain.Chunk, vectors [][]float32) error {
	chunkStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (position, chunk_id, document_id, document_name, page_number, chunk_index, text)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing chunk insert: %w", err)
	}
	defer chunkStmt.Close()

	vectorStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO index_vectors (position, dims, vector) VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing vector insert: %w", err)
	}
	defer vectorStmt.Close()

	for i := range chunks {
		position := base + i
		c := chunks[i]
		if _, err := chunkStmt.ExecContext(ctx, position, c.ID, c.DocumentID, c.DocumentName,
			c.PageNumber, c.Index, c.Text); err != nil {
			return fmt.Errorf("inserting chunk %d: %w", position, err)
		}
		if _, err := vectorStmt.ExecContext(ctx, position, len(vectors[i]), float32SliceToBytes(vectors[i])); err != nil {
			return fmt.Errorf("inserting vector %d: %w", position, err)
		}
	}
	return nil
}
