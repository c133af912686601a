// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Mailbox: Lists, fetches and flags messages at the mail provider
//   - BlobStore: Key/value blob persistence (records and results)
//   - Classifier: Text-in/text-out language model call
//
// # Optional Interfaces
//
//   - PromptStore: User-editable prompt templates. When nil, the
//     classification pipeline uses its embedded default prompt.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
