// Package observability builds the zap loggers used by the commands and
// exports shared segment pool counters to Prometheus.
package observability
