package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/insight/internal/core/domain"
)

func TestDocumentCmd_Use(t *testing.T) {
	assert.Equal(t, "document", documentCmd.Use)
	assert.Equal(t, "Manage ingested documents", documentCmd.Short)
}

func TestDocumentCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0, len(documentCmd.Commands()))
	for _, cmd := range documentCmd.Commands() {
		names = append(names, cmd.Name())
	}

	assert.ElementsMatch(t, []string{"list", "get", "delete", "open"}, names)
}

func TestDocumentGetCmd_RequiresExactlyOneArg(t *testing.T) {
	_, _, err := execute(t, "document", "get")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestDocumentListCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, _, err := execute(t, "document", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "doc-a")
	assert.Contains(t, out, "annual-report.pdf")
	assert.Contains(t, out, "Pages:    12  Chunks: 40")
	assert.Contains(t, out, "2026-02-03 14:05:00")
	assert.Contains(t, out, "Total: 2 documents")
}

func TestDocumentListCmd_Empty(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	testServices.document.docs = nil

	out, _, err := execute(t, "document", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No documents ingested.")
}

func TestDocumentListCmd_JSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer func() { documentJSON = false }()

	out, _, err := execute(t, "document", "list", "--json")
	require.NoError(t, err)

	var docs []domain.Document
	require.NoError(t, json.Unmarshal([]byte(out), &docs))
	require.Len(t, docs, 2)
	assert.Equal(t, "doc-b", docs[1].ID)
	assert.Contains(t, out, `"document_id": "doc-a"`)
}

func TestDocumentGetCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, _, err := execute(t, "document", "get", "doc-b")

	require.NoError(t, err)
	assert.Contains(t, out, "Document: doc-b")
	assert.Contains(t, out, "handbook.pdf")
	assert.Contains(t, out, "Size:     1024 bytes")
}

func TestDocumentGetCmd_NotFound(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, _, err := execute(t, "document", "get", "nope")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "failed to get document")
}

func TestDocumentDeleteCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, _, err := execute(t, "document", "delete", "doc-a")

	require.NoError(t, err)
	assert.Equal(t, []string{"doc-a"}, testServices.document.deleted)
	assert.Contains(t, out, "Deleted document doc-a")
}

func TestDocumentDeleteCmd_NotFound(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, _, err := execute(t, "document", "delete", "nope")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, testServices.document.deleted)
}

func TestDocumentOpenCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, _, err := execute(t, "document", "open", "doc-a")

	require.NoError(t, err)
	assert.Equal(t, []string{"doc-a"}, testServices.actions.opened)
	assert.Contains(t, out, "Opening doc-a")

	_, _, err = execute(t, "document", "open", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
