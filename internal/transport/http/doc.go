// Package http contains the chi HTTP handlers for the dataset cleaning and
// inventory APIs. Handlers depend on service interfaces, log through slog
// and report failures as RFC 7807 problem details via the shared
// ErrorHandler.
package http
