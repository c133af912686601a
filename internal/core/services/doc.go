// Package services implements the driving port interfaces.
// Services contain the core pipeline logic - normalization, ingestion
// and classification - and orchestrate calls to driven ports (adapters).
//
// Services are pure Go with no provider SDK dependencies.
package services
