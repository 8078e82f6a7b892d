// Package client contains the transport and storage plumbing of the
// RecipeBook CLI: an HTTP client for the server API and the local SQLite
// database with its embedded goose migrations.
//
// Errors
//
// Transport failures wrap ErrUnavailable and 401 responses wrap
// ErrUnauthorized. Other statuses are mapped to the shared sentinels in
// internal/common (not found, duplicate identity, validation) so services
// can branch with errors.Is.
package client
