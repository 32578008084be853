// Package middleware groups the HTTP middleware of the query API.
//
// Cross-cutting concerns live in subpackages so each can be registered
// independently:
//
//   - auth: API key validation protecting the query routes.
//   - rayid: assigns every request a ray ID (honoring an incoming X-Ray-Id
//     header) and exposes it to the zap request logger for tracing.
//
// The serve command registers rayid first, then request logging, then auth,
// so every log line of a rejected request still carries its ray ID.
package middleware
