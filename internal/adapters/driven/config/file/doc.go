// Package file provides file-based implementations of driven port interfaces.
// These adapters read data from the local filesystem.
//
// Adapters:
//   - Config: TOML-based runtime configuration
//   - PromptStore: user-editable prompt templates with embedded defaults
package file
