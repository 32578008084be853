// Package server holds the configuration for the read-only query API.
//
// The API is the pull-based snapshot interface consumed by the external
// reporting layer. It never mutates the store; a build must have completed
// before the server is started.
package server
