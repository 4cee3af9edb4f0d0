package flat

import (
	"container/heap"
	"errors"
	"fmt"
	"slices"
)

// ErrDimensionMismatch indicates a vector does not match the index dimension.
var ErrDimensionMismatch = errors.New("flat: dimension mismatch")

// Hit is a search result.
type Hit struct {
	// Position is the vector's insertion position.
	Position int

	// Score is the inner product with the query.
	Score float32
}

// Index is an append-only exhaustive inner-product index.
type Index struct {
	dim  int
	rows [][]float32
}

// New returns an empty index for vectors of the given dimension.
func New(dim int) (*Index, error) {
	if dim <= 0 {
		return nil, errors.New("flat: dimension must be positive")
	}
	return &Index{dim: dim}, nil
}

// FromVectors builds an index holding vectors in order.
func FromVectors(dim int, vectors [][]float32) (*Index, error) {
	ix, err := New(dim)
	if err != nil {
		return nil, err
	}
	return ix.Append(vectors...)
}

// Dim returns the vector dimension.
func (ix *Index) Dim() int {
	return ix.dim
}

// Len returns the number of stored vectors.
func (ix *Index) Len() int {
	return len(ix.rows)
}

// Vector returns the vector at position i. The slice must not be modified.
func (ix *Index) Vector(i int) []float32 {
	return ix.rows[i]
}

// Vectors returns all stored vectors in position order. The slices must not
// be modified.
func (ix *Index) Vectors() [][]float32 {
	return slices.Clip(ix.rows)
}

// Append returns a new index with vectors added after the existing ones.
// The receiver is left unchanged. Vectors are copied.
//
// Appending twice to the same Index invalidates the first result; callers
// keep appending to the latest index only.
func (ix *Index) Append(vectors ...[]float32) (*Index, error) {
	for i, v := range vectors {
		if len(v) != ix.dim {
			return nil, fmt.Errorf("%w: vector %d has %d dimensions, want %d", ErrDimensionMismatch, i, len(v), ix.dim)
		}
	}

	// Readers of the receiver only see rows[:len], so growing into spare
	// capacity never touches anything they can observe.
	rows := ix.rows
	for _, v := range vectors {
		rows = append(rows, slices.Clone(v))
	}

	return &Index{dim: ix.dim, rows: rows}, nil
}

// Search returns the k vectors with the highest inner product against query,
// best first. Equal scores are ordered by ascending position. Fewer than k
// hits are returned when the index holds fewer vectors.
func (ix *Index) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != ix.dim {
		return nil, fmt.Errorf("%w: query has %d dimensions, want %d", ErrDimensionMismatch, len(query), ix.dim)
	}
	if k <= 0 || len(ix.rows) == 0 {
		return nil, nil
	}
	k = min(k, len(ix.rows))

	h := make(worstFirst, 0, k)
	for pos, row := range ix.rows {
		hit := Hit{Position: pos, Score: dot(query, row)}
		if len(h) < k {
			heap.Push(&h, hit)
			continue
		}
		if better(hit, h[0]) {
			h[0] = hit
			heap.Fix(&h, 0)
		}
	}

	hits := []Hit(h)
	slices.SortFunc(hits, func(a, b Hit) int {
		switch {
		case better(a, b):
			return -1
		case better(b, a):
			return 1
		default:
			return 0
		}
	})

	return hits, nil
}

// better reports whether a ranks ahead of b.
func better(a, b Hit) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Position < b.Position
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// worstFirst is a heap with the lowest ranked hit at the root.
type worstFirst []Hit

func (h worstFirst) Len() int           { return len(h) }
func (h worstFirst) Less(i, j int) bool { return better(h[j], h[i]) }
func (h worstFirst) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *worstFirst) Push(x any) { *h = append(*h, x.(Hit)) }

func (h *worstFirst) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
