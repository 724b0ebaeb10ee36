// Package orchestrator wires the template lookup -> form model -> theme ->
// renderer pipeline and composes prompts from submitted values, providing
// dependency injection friendly helpers for consumers that prefer a single
// entry point.
package orchestrator
