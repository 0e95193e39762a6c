// Package api hosts the HTTP server, middleware, and REST handlers for logo
// discovery. Notable routes:
//   - GET /healthz and /readyz for Kubernetes probes.
//   - GET /metrics for Prometheus scraping.
//   - POST /v1/logos/discover to run discovery and return the logo bytes.
//   - POST /v1/companies/{symbol}/logo to discover, store and record a
//     company's logo; GET on the same path returns the stored record.
package api
