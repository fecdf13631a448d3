// Package driven defines the contracts notisync's core depends on:
// the Notion page source, the remote artifact store, the vision model,
// the settings registry, and the cost log. Adapters implement them.
package driven
