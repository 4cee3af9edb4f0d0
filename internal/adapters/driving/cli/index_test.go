package cli

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/insight/internal/core/domain"
)

func TestIndexStatsCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, _, err := execute(t, "index", "stats")

	require.NoError(t, err)
	assert.Contains(t, out, "Documents:  2")
	assert.Contains(t, out, "Chunks:     10")
	assert.Contains(t, out, "Dimensions: 1536")
}

func TestIndexRebuildCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, _, err := execute(t, "index", "rebuild")

	require.NoError(t, err)
	assert.Contains(t, out, "Rebuilt index: 2 documents, 10 chunks")
}

func TestIndexRebuildCmd_Inconsistent(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	testServices.index.err = fmt.Errorf("%w: 9 chunks after reload, want 10", domain.ErrConsistency)

	_, _, err := execute(t, "index", "rebuild")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConsistency)
	assert.Contains(t, err.Error(), "failed to rebuild index")
}

func TestIndexCmd_RejectsArgs(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, _, err := execute(t, "index", "stats", "extra")

	assert.Error(t, err)
}
