// Package relay delivers record events to the host frame.
//
// The host frame is whatever consumes the records a bridge relays: a Go
// channel in-process, a line-oriented reader on stdout, or browser
// subscribers on the HTTP event stream. Each of these is an Emitter, and
// the bridge is handed one explicitly instead of broadcasting globally.
package relay
