// Package pipeline provides the step framework the launcher uses to run the
// four scraping stages: a Step interface, a registry with dependency-order
// resolution, per-step runtime state, and a sequential manager. CommandStep
// adapts an external stage binary into a Step, propagating its exit code.
package pipeline
