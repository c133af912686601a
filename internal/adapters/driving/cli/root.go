// Package cli provides the command-line interface driving adapter.
// Commands call the driving ports; the composition root in cmd/mailtriage
// injects the concrete services before Execute runs.
package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/ledgerline/mailtriage/internal/core/ports/driving"
	"github.com/ledgerline/mailtriage/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Injected services. Nil until SetServices or the setup hook runs.
var (
	ingestor       driving.Ingestor
	classifyRunner driving.ClassifyRunner
)

// setupFn builds the services on first use so that commands which never
// touch the pipeline (version, help) work without any configuration.
var setupFn func() error

var (
	verboseFlag bool
	configFlag  string
)

var rootCmd = &cobra.Command{
	Use:   "mailtriage",
	Short: "Archive unread mail to blob storage and classify it",
	Long: `Mailtriage drains a mailbox in two stages.

The ingest stage reads every unread message, writes a normalised JSON
record to blob storage and only then marks the message read, so a crash
never loses mail. The classify stage assigns each stored record one
handling category using an LLM and writes a result object per record.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verboseFlag {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "config directory (default ~/.mailtriage)")
}

// defaultPrefix is the record prefix classify uses when no argument is
// given. The composition root sets it from the storage configuration.
var defaultPrefix string

// SetServices injects the pipeline services. Used by the composition root
// and by tests that stub the ports.
func SetServices(ing driving.Ingestor, cls driving.ClassifyRunner) {
	ingestor = ing
	classifyRunner = cls
}

// SetDefaultPrefix sets the record prefix used when classify is run
// without an explicit argument.
func SetDefaultPrefix(prefix string) {
	defaultPrefix = prefix
}

// SetSetup registers a lazy initialiser that builds the services from
// configuration the first time a pipeline command runs.
func SetSetup(fn func() error) {
	setupFn = fn
}

// ConfigDir returns the value of the --config flag.
func ConfigDir() string {
	return configFlag
}

// ensureServices runs the setup hook if the services are not yet wired.
func ensureServices() error {
	if ingestor != nil && classifyRunner != nil {
		return nil
	}
	if setupFn != nil {
		if err := setupFn(); err != nil {
			return err
		}
	}
	if ingestor == nil || classifyRunner == nil {
		return errors.New("pipeline services not configured")
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
