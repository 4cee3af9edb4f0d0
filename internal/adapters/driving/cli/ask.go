package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/insight/internal/core/domain"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the ingested documents",
	Long: `Retrieves the passages most similar to the question and asks the
language model to answer from them. The answer lists the document and page
of every cited passage.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	question := strings.Join(args, " ")
	answer, err := queryService.Ask(cmd.Context(), question)
	if err != nil {
		return fmt.Errorf("failed to answer: %w", err)
	}

	if askJSON {
		data, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printAnswer(cmd, answer)
	return nil
}

func printAnswer(cmd *cobra.Command, answer *domain.Answer) {
	cmd.Println(answer.Answer)
	cmd.Println()
	cmd.Printf("Confidence: %.0f%%  (%d ms)\n", answer.Confidence*100, answer.ProcessingTimeMS)

	if len(answer.Citations) == 0 {
		return
	}
	cmd.Println()
	cmd.Println("Sources:")
	for i, c := range answer.Citations {
		cmd.Printf("  [%d] %s, page %d (%.2f)\n", i+1, c.DocumentName, c.PageNumber, c.RelevanceScore)
		if c.TextExcerpt != "" {
			cmd.Printf("      %s\n", c.TextExcerpt)
		}
	}
}
