package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/insight/internal/core/domain"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Ingest PDFs as they appear in a directory",
	Long: `Watches the top level of a directory and ingests every PDF created in it.

While the command runs, a PDF that is rewritten is re-ingested and a PDF
that is deleted is removed from the index. Files that were already in the
directory when watching started are left alone; use 'insight ingest' for
those. Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchService == nil {
		return errors.New("watch service not configured")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dir := args[0]
	cmd.Printf("Watching %s for PDFs (Ctrl+C to stop)\n", dir)

	err := watchService.Watch(ctx, dir, func(e domain.WatchEvent) {
		printWatchEvent(cmd, e)
	})
	if err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}

func printWatchEvent(cmd *cobra.Command, e domain.WatchEvent) {
	switch e.Action {
	case domain.WatchIngested:
		cmd.Printf("+ %s (%d chunks, id %s)\n", e.Path, e.ChunkCount, e.DocumentID)
	case domain.WatchReplaced:
		cmd.Printf("~ %s (%d chunks, id %s)\n", e.Path, e.ChunkCount, e.DocumentID)
	case domain.WatchRemoved:
		cmd.Printf("- %s (id %s)\n", e.Path, e.DocumentID)
	case domain.WatchFailed:
		cmd.PrintErrf("! %s: %v\n", e.Path, e.Err)
	case domain.WatchSkipped:
	}
}
