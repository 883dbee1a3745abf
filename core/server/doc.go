// Package server holds the HTTP server configuration.
//
// It defines the listen port and the API key used by the auth middleware.
// The actual Fiber application is assembled in the start command; this package
// only carries the configuration section so that core/config can compose it.
package server
