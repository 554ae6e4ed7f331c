package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsCreated counts oracle events allocated with committed nonces.
	EventsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oracle_events_created_total",
		Help: "Number of oracle events created.",
	})

	// EventsAnnounced counts signed announcements.
	EventsAnnounced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oracle_events_announced_total",
		Help: "Number of oracle events announced.",
	})

	// EventsAttested counts completed attestations.
	EventsAttested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oracle_events_attested_total",
		Help: "Number of oracle events attested.",
	})

	// AttestationFailures counts rejected or failed attestation attempts.
	AttestationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oracle_attestation_failures_total",
		Help: "Number of attestation attempts that failed.",
	})

	// FeedErrors counts failed upstream data feed requests.
	FeedErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oracle_feed_errors_total",
		Help: "Number of failed data feed requests.",
	})
)
