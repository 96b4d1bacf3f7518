// Package metrics holds the process-wide blobrelay counters and gauges.
//
// Counters are registered once in the VictoriaMetrics default set and
// exposed in Prometheus text format by WritePrometheus.
package metrics

import (
	"io"
	"sync/atomic"

	vm "github.com/VictoriaMetrics/metrics"
)

var (
	// RecordsStored counts committed writes.
	RecordsStored = vm.NewCounter("blobrelay_records_stored_total")

	// WriteErrors counts write transactions that failed after a successful open.
	WriteErrors = vm.NewCounter("blobrelay_write_errors_total")

	// OpenErrors counts failed store opens, from any operation.
	OpenErrors = vm.NewCounter("blobrelay_open_errors_total")

	// Fetches counts successful fetch-all reads.
	Fetches = vm.NewCounter("blobrelay_fetches_total")

	// FetchErrors counts fetch-all reads that failed.
	FetchErrors = vm.NewCounter("blobrelay_fetch_errors_total")

	// RelaysEmitted counts events handed to an emitter.
	RelaysEmitted = vm.NewCounter("blobrelay_relay_events_total")

	// HubSubscribers reports connected event-stream subscribers.
	HubSubscribers = vm.NewGauge("blobrelay_hub_subscribers", func() float64 {
		return float64(hubSubscribers.Load())
	})

	// HubDropped counts events dropped for a full subscriber buffer.
	HubDropped = vm.NewCounter("blobrelay_hub_dropped_total")

	// FetchDuration tracks fetch-all latency in seconds.
	FetchDuration = vm.NewSummary("blobrelay_fetch_duration_seconds")
)

var hubSubscribers atomic.Int64

// SubscriberJoined raises the HubSubscribers gauge by one.
func SubscriberJoined() {
	hubSubscribers.Add(1)
}

// SubscriberLeft lowers the HubSubscribers gauge by one.
func SubscriberLeft() {
	hubSubscribers.Add(-1)
}

// WritePrometheus writes every registered metric in Prometheus text format.
// Process metrics (go_*, process_*) are included.
func WritePrometheus(w io.Writer) {
	vm.WritePrometheus(w, true)
}
