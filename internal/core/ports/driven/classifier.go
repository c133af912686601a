package driven

import "context"

// Classifier submits a prompt to a hosted language model and returns its
// response text. Failures are surfaced to the caller and are not retried
// here; the classification pipeline treats them as per-record faults.
type Classifier interface {
	// Classify sends the prompt and returns the model's raw text
	// response. The caller trims and persists it verbatim.
	Classify(ctx context.Context, prompt string) (string, error)

	// ModelName returns the identifier of the model being used.
	ModelName() string
}
