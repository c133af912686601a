// Command mailtriage archives unread mail to blob storage and classifies
// the stored records with an LLM. It is the composition root: adapters
// are constructed here and injected into the CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"google.golang.org/api/option"
	storage "google.golang.org/api/storage/v1"

	"github.com/ledgerline/mailtriage/internal/adapters/driven/auth"
	"github.com/ledgerline/mailtriage/internal/adapters/driven/blob/gcs"
	configfile "github.com/ledgerline/mailtriage/internal/adapters/driven/config/file"
	"github.com/ledgerline/mailtriage/internal/adapters/driven/llm/anthropic"
	"github.com/ledgerline/mailtriage/internal/adapters/driven/mailbox/gmail"
	"github.com/ledgerline/mailtriage/internal/adapters/driven/mailbox/imap"
	"github.com/ledgerline/mailtriage/internal/adapters/driving/cli"
	"github.com/ledgerline/mailtriage/internal/core/domain"
	"github.com/ledgerline/mailtriage/internal/core/ports/driven"
	"github.com/ledgerline/mailtriage/internal/core/services"
	"github.com/ledgerline/mailtriage/internal/logger"
)

// mailboxCloser holds the connected mailbox so main can close it after
// the command finishes. Set by the setup hook.
var mailboxCloser driven.Mailbox

func main() {
	cli.SetSetup(setup)

	err := cli.Execute()

	if mailboxCloser != nil {
		if closeErr := mailboxCloser.Close(); closeErr != nil {
			logger.Warn("closing mailbox: %v", closeErr)
		}
	}

	if err != nil {
		os.Exit(1)
	}
}

// setup builds the pipeline services from configuration. It runs lazily,
// on the first command that needs the pipeline, so "version" and "help"
// never require a config file.
func setup() error {
	ctx := context.Background()

	cfg, err := configfile.LoadConfig(cli.ConfigDir())
	if err != nil {
		return err
	}

	mailbox, err := connectMailbox(ctx, cfg)
	if err != nil {
		return err
	}
	mailboxCloser = mailbox

	storageSvc, err := storage.NewService(ctx, option.WithScopes(storage.DevstorageReadWriteScope))
	if err != nil {
		return fmt.Errorf("create storage client: %w", err)
	}
	store := gcs.NewStore(storageSvc, cfg.Storage.Bucket)

	classifier, err := anthropic.NewClassifier(anthropic.Config{
		APIKey:  cfg.Classifier.APIKey,
		BaseURL: cfg.Classifier.BaseURL,
		Model:   cfg.Classifier.Model,
	})
	if err != nil {
		return err
	}
	if err := classifier.Ping(ctx); err != nil {
		return fmt.Errorf("classifier unreachable: %w", err)
	}

	promptDir := ""
	if dir := cli.ConfigDir(); dir != "" {
		promptDir = filepath.Join(dir, "prompts")
	}
	prompts, err := configfile.NewPromptStore(promptDir)
	if err != nil {
		return err
	}

	ingestSvc := services.NewIngestService(mailbox, store, cfg.Storage.EmailsPrefix)
	classifySvc := services.NewClassifyService(store, classifier, cfg.Storage.ResultsPrefix, cfg.Classifier.Workers)
	classifySvc.SetPromptStore(prompts)

	cli.SetServices(ingestSvc, classifySvc)
	cli.SetDefaultPrefix(cfg.Storage.EmailsPrefix)

	return nil
}

// connectMailbox builds the configured mail source.
func connectMailbox(ctx context.Context, cfg *configfile.Config) (driven.Mailbox, error) {
	switch cfg.Mailbox.Provider {
	case "gmail":
		ts, err := auth.TokenSourceFromFiles(ctx, cfg.Mailbox.Credentials, cfg.Mailbox.Token)
		if err != nil {
			return nil, err
		}
		svc, err := gmail.NewService(ctx, ts)
		if err != nil {
			return nil, fmt.Errorf("create gmail client: %w", err)
		}
		return gmail.NewMailbox(svc, cfg.Mailbox.Query), nil

	case "imap":
		return imap.Dial(imap.Config{
			Address:  cfg.Mailbox.IMAP.Address,
			Username: cfg.Mailbox.IMAP.Username,
			Password: cfg.Mailbox.IMAP.Password,
			Folder:   cfg.Mailbox.IMAP.Folder,
		})

	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedProvider, cfg.Mailbox.Provider)
	}
}
