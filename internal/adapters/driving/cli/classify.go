package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [prefix]",
	Short: "Classify stored email records",
	Long: `Classifies every email record under the given key prefix and writes
one result object per record. The prefix defaults to the configured
emails prefix. Re-running overwrites earlier results for the same
records.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	prefix := defaultPrefix
	if len(args) > 0 {
		prefix = args[0]
	}

	report, err := classifyRunner.ClassifyAll(context.Background(), prefix)
	if err != nil {
		return fmt.Errorf("classify failed: %w", err)
	}

	cmd.Printf("Classified %d record(s), %d failed.\n", report.Classified, report.Failed)
	return nil
}
