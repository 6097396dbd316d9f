// Package api provides the JSON transport used to talk to the console backend.
//
// Every backend route lives under a single base path (by default
// http://localhost:8000/api). The [Client] adds a request ID to each call,
// records Prometheus metrics per logical operation, and opens an OpenTelemetry
// span around the round trip. Non-2xx answers are returned as [*Error] so callers
// can classify them with [IsNotFound] and [IsServerError].
//
// The client makes exactly one attempt per call. Retrying is left to the caller.
package api
