// Package app assembles the application: configuration, logging,
// observability, services, router, and HTTP server lifecycle.
package app
