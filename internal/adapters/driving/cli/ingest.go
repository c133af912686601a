package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Archive unread mail to blob storage",
	Long: `Reads every unread message from the configured mailbox, writes a
normalised JSON record to blob storage and marks the message read.
Messages that fail are left unread and picked up by the next run.`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	report, err := ingestor.Ingest(context.Background())
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Ingested %d message(s), %d failed.\n", report.Processed, report.Failed)
	return nil
}
