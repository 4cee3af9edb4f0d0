package flat

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidDimension(t *testing.T) {
	_, err := New(0)
	assert.Error(t, err)

	_, err = New(-3)
	assert.Error(t, err)
}

func TestIndex_EmptySearch(t *testing.T) {
	ix, err := New(3)
	require.NoError(t, err)

	hits, err := ix.Search([]float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.Equal(t, 0, ix.Len())
}

func TestIndex_AppendDoesNotMutateReceiver(t *testing.T) {
	base, err := FromVectors(2, [][]float32{{1, 0}})
	require.NoError(t, err)

	next, err := base.Append([]float32{0, 1}, []float32{0.5, 0.5})
	require.NoError(t, err)

	assert.Equal(t, 1, base.Len())
	assert.Equal(t, 3, next.Len())
	assert.Equal(t, []float32{1, 0}, next.Vector(0))
	assert.Equal(t, []float32{0.5, 0.5}, next.Vector(2))
}

func TestIndex_AppendCopiesVectors(t *testing.T) {
	v := []float32{1, 2}
	ix, err := FromVectors(2, [][]float32{v})
	require.NoError(t, err)

	v[0] = 99
	assert.Equal(t, float32(1), ix.Vector(0)[0])
}

func TestIndex_AppendDimensionMismatch(t *testing.T) {
	ix, err := New(3)
	require.NoError(t, err)

	_, err = ix.Append([]float32{1, 2, 3}, []float32{1, 2})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Equal(t, 0, ix.Len())
}

func TestIndex_SearchDimensionMismatch(t *testing.T) {
	ix, err := FromVectors(2, [][]float32{{1, 0}})
	require.NoError(t, err)

	_, err = ix.Search([]float32{1, 0, 0}, 1)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestIndex_SearchOrdersByScore(t *testing.T) {
	ix, err := FromVectors(2, [][]float32{
		{0, 1},     // 0.0
		{1, 0},     // 1.0
		{0.6, 0.8}, // 0.6
		{-1, 0},    // -1.0
	})
	require.NoError(t, err)

	hits, err := ix.Search([]float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Equal(t, 1, hits[0].Position)
	assert.Equal(t, 2, hits[1].Position)
	assert.Equal(t, 0, hits[2].Position)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
	assert.InDelta(t, 0.6, hits[1].Score, 1e-6)
}

func TestIndex_SearchTiesByPosition(t *testing.T) {
	ix, err := FromVectors(2, [][]float32{
		{0, 1},
		{1, 0},
		{0, 1},
		{1, 0},
		{1, 0},
	})
	require.NoError(t, err)

	hits, err := ix.Search([]float32{1, 0}, 4)
	require.NoError(t, err)
	require.Len(t, hits, 4)

	positions := []int{hits[0].Position, hits[1].Position, hits[2].Position, hits[3].Position}
	assert.Equal(t, []int{1, 3, 4, 0}, positions)
}

func TestIndex_SearchKLargerThanSize(t *testing.T) {
	ix, err := FromVectors(1, [][]float32{{0.1}, {0.3}, {0.2}})
	require.NoError(t, err)

	hits, err := ix.Search([]float32{1}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, []int{1, 2, 0}, []int{hits[0].Position, hits[1].Position, hits[2].Position})
}

func TestIndex_SearchNonPositiveK(t *testing.T) {
	ix, err := FromVectors(1, [][]float32{{1}})
	require.NoError(t, err)

	hits, err := ix.Search([]float32{1}, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndex_SearchMatchesBruteForce(t *testing.T) {
	const dim = 4
	var vectors [][]float32
	for i := 0; i < 200; i++ {
		vectors = append(vectors, []float32{
			float32((i * 7) % 13),
			float32((i * 3) % 11),
			float32((i * 5) % 7),
			float32(i % 5),
		})
	}
	ix, err := FromVectors(dim, vectors)
	require.NoError(t, err)

	query := []float32{0.5, -0.25, 1, 0.1}
	for _, k := range []int{1, 5, 17, 200} {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			hits, err := ix.Search(query, k)
			require.NoError(t, err)
			require.Len(t, hits, k)

			for i := 1; i < len(hits); i++ {
				assert.True(t, better(hits[i-1], hits[i]), "hit %d out of order", i)
			}

			// Every vector left out scores no better than the last hit.
			included := make(map[int]bool)
			for _, h := range hits {
				included[h.Position] = true
			}
			last := hits[len(hits)-1]
			for pos, v := range vectors {
				if included[pos] {
					continue
				}
				assert.False(t, better(Hit{Position: pos, Score: dot(query, v)}, last))
			}
		})
	}
}

func TestIndex_ConcurrentSearchDuringAppend(t *testing.T) {
	ix, err := FromVectors(2, [][]float32{{1, 0}, {0, 1}})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				hits, err := ix.Search([]float32{1, 0}, 2)
				assert.NoError(t, err)
				assert.Len(t, hits, 2)
			}
		}()
	}

	next := ix
	for i := 0; i < 200; i++ {
		next, err = next.Append([]float32{float32(i), 1})
		require.NoError(t, err)
	}
	wg.Wait()

	assert.Equal(t, 2, ix.Len())
	assert.Equal(t, 202, next.Len())
}
