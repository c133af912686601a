package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerline/mailtriage/internal/core/domain"
	"github.com/ledgerline/mailtriage/internal/core/ports/driven"
	"github.com/ledgerline/mailtriage/internal/core/ports/driving"
	"github.com/ledgerline/mailtriage/internal/logger"
)

// Ensure ClassifyService implements the interface.
var _ driving.ClassifyRunner = (*ClassifyService)(nil)

// defaultClassifyPrompt is the fallback template when no PromptStore is
// configured. It expects one %s placeholder for the rendered email.
const defaultClassifyPrompt = `I need you to classify the following email into one of these categories:
1. STANDARD_FAQ: Answerable by standard FAQ, no complex information needed
2. REQUIRES_RAG: Requires response by LLM using RAG for more complex questions
3. CRM_ADDITION: Sender needs to be added to CRM, appears to be a new contact or lead
4. NEEDS_INFO: More information needed from sender before we can properly respond

Please respond with ONLY the category name (e.g., "STANDARD_FAQ"). Here's the email:

%s`

// ClassifyService assigns a handling category to every stored record and
// persists one result per record. Records are independent, so the batch
// may fan out across workers; results for the same source key always land
// at the same derived key, so a re-run overwrites rather than appends.
type ClassifyService struct {
	store         driven.BlobStore
	classifier    driven.Classifier
	promptStore   driven.PromptStore
	resultsPrefix string
	workers       int
	now           func() time.Time
}

// NewClassifyService creates a classification pipeline writing results
// under resultsPrefix (DefaultResultPrefix when empty). workers below 1
// run the batch sequentially.
func NewClassifyService(store driven.BlobStore, classifier driven.Classifier, resultsPrefix string, workers int) *ClassifyService {
	if resultsPrefix == "" {
		resultsPrefix = DefaultResultPrefix
	}
	if workers < 1 {
		workers = 1
	}
	return &ClassifyService{
		store:         store,
		classifier:    classifier,
		resultsPrefix: resultsPrefix,
		workers:       workers,
		now:           time.Now,
	}
}

// SetPromptStore sets the prompt store for loading a customised
// classification template. If not set, the embedded default is used.
func (s *ClassifyService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// ClassifyAll classifies every record under prefix (DefaultRecordPrefix
// when empty). A failed listing fails the run; a failure on any single
// record is logged, counted and skipped.
func (s *ClassifyService) ClassifyAll(ctx context.Context, prefix string) (*driving.ClassifyReport, error) {
	if prefix == "" {
		prefix = DefaultRecordPrefix
	}

	report := &driving.ClassifyReport{RunID: uuid.NewString()}

	keys, err := s.store.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	if len(keys) == 0 {
		logger.Info("no records to classify under %s", prefix)
		return report, nil
	}

	logger.Info("classifying %d records with model %s (run %s)", len(keys), s.classifier.ModelName(), report.RunID)

	workers := s.workers
	if workers > len(keys) {
		workers = len(keys)
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	keyCh := make(chan string)

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for key := range keyCh {
				if err := s.classifyOne(ctx, key); err != nil {
					logger.Error("classifying %s: %v", key, err)
					mu.Lock()
					report.Failed++
					mu.Unlock()
					continue
				}
				mu.Lock()
				report.Classified++
				mu.Unlock()
			}
		}()
	}

feed:
	for _, key := range keys {
		select {
		case keyCh <- key:
		case <-ctx.Done():
			break feed
		}
	}
	close(keyCh)
	wg.Wait()

	logger.Info("classification complete: %d classified, %d failed", report.Classified, report.Failed)
	return report, nil
}

// classifyOne handles a single record: read, parse (with legacy
// fallback), classify, persist the result.
func (s *ClassifyService) classifyOne(ctx context.Context, key string) error {
	data, err := s.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("read record: %w", err)
	}

	rec, err := ParseRecord(data)
	if err != nil {
		return fmt.Errorf("parse record: %w", err)
	}

	response, err := s.classifier.Classify(ctx, s.buildPrompt(rec))
	if err != nil {
		return fmt.Errorf("classify: %w", err)
	}

	classification := strings.TrimSpace(response)
	if !domain.KnownCategory(classification) {
		// Persisted verbatim regardless; the closed set is not
		// enforced at this layer.
		logger.Warn("classifier returned %q for %s, outside the known category set", classification, key)
	}

	result := domain.ClassificationResult{
		OriginalKey:    key,
		EmailData:      rec,
		Classification: classification,
		ClassifiedAt:   s.now().Format(time.RFC3339),
	}
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	resultKey := domain.ResultKey(s.resultsPrefix, key)
	if err := s.store.Put(ctx, resultKey, out); err != nil {
		return fmt.Errorf("store result: %w", err)
	}

	logger.Debug("saved classification result to %s", resultKey)
	return nil
}

// buildPrompt renders the classification request for one record,
// defaulting any canonical field the stored blob left empty.
func (s *ClassifyService) buildPrompt(rec domain.EmailRecord) string {
	subject := rec.Subject
	if subject == "" {
		subject = domain.DefaultSubject
	}
	sender := rec.Sender
	if sender == "" {
		sender = domain.DefaultSender
	}
	content := fmt.Sprintf("Subject: %s\nFrom: %s\n\n%s", subject, sender, rec.Body)

	template := defaultClassifyPrompt
	if s.promptStore != nil {
		if loaded, err := s.promptStore.Load(driven.PromptClassify); err == nil && loaded != "" {
			template = loaded
		}
	}
	return fmt.Sprintf(template, content)
}
