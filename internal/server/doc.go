// Package server exposes a Bridge to the host frame over HTTP.
//
// Routes:
//
//	POST /api/records  store one payload ({"value": <json>})
//	GET  /api/records  fetch every record
//	POST /api/relay    relay every record to event-stream subscribers
//	GET  /api/events   Server-Sent Events stream of relay events
//	GET  /healthz      liveness
//	GET  /metrics      Prometheus metrics
//
// Relay events reach the host as SSE messages whose event name is
// record.EventName and whose data is the record.Event JSON.
package server
