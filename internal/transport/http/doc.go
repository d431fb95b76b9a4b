// Package http contains the HTTP transport layer: Chi routers and handlers
// that translate requests into service calls and render RFC 7807 problem
// responses on failure.
package http
