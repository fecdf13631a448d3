// Package driving defines the service contracts exposed to the CLI and
// the HTTP API.
package driving
