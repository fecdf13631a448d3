// Package domain contains the core business entities and pure logic for
// notisync: the Notion block taxonomy, change detection, identifier
// parsing, model pricing, and the result types returned by workflows.
// It has no dependencies on adapters or external services.
package domain
