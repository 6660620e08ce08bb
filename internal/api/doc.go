// Package api provides the HTTP front door of the Aurora home skill.
//
// Directives arrive as JSON on POST /api/v1/directives and are answered with
// the response envelope produced by the directive router. Operational
// endpoints sit alongside:
//
//	POST /api/v1/directives   handle one directive
//	GET  /api/v1/health       liveness plus channel API reachability
//	GET  /api/v1/metrics      runtime and gateway cache statistics (JSON)
//	GET  /metrics             Prometheus exposition
//
// The server follows the same lifecycle pattern as other infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api
