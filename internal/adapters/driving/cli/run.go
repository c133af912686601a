package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Ingest unread mail, then classify the stored records",
	Long: `Runs the full pipeline: first every unread message is archived to
blob storage, then every stored record is classified. Equivalent to
running "mailtriage ingest" followed by "mailtriage classify".`,
	RunE: runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	ctx := context.Background()

	ingestReport, err := ingestor.Ingest(ctx)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	cmd.Printf("Ingested %d message(s), %d failed.\n", ingestReport.Processed, ingestReport.Failed)

	classifyReport, err := classifyRunner.ClassifyAll(ctx, defaultPrefix)
	if err != nil {
		return fmt.Errorf("classify failed: %w", err)
	}
	cmd.Printf("Classified %d record(s), %d failed.\n", classifyReport.Classified, classifyReport.Failed)

	return nil
}
