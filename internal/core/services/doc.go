// Package services implements the core workflows: block tree extraction,
// image analysis, the indexing orchestrator, grounded answering, and
// billing aggregation. Services depend only on the driven ports.
package services
