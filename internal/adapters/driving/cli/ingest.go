package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file.pdf...]",
	Short: "Ingest PDF documents",
	Long: `Extracts the text of each PDF, splits it into chunks, embeds the chunks
and adds them to the index. Files are processed in order; a failure is
reported and the remaining files are still ingested.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	failed := 0
	for _, path := range args {
		content, err := os.ReadFile(path)
		if err != nil {
			cmd.PrintErrf("%s: %v\n", path, err)
			failed++
			continue
		}

		result, err := ingestService.Ingest(cmd.Context(), filepath.Base(path), content)
		if err != nil {
			cmd.PrintErrf("%s: %v\n", path, err)
			failed++
			continue
		}

		cmd.Printf("Ingested %s: %d pages, %d chunks (id %s)\n",
			result.Filename, result.PageCount, result.ChunkCount, result.DocumentID)
	}

	if failed > 0 {
		return fmt.Errorf("failed to ingest %d of %d files", failed, len(args))
	}
	return nil
}
