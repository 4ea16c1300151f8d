// Package metrics defines the sinks that observe extraction, packing and
// assignment runs. Sinks like PromSink and InfluxSink live in infra/metrics
// and register themselves with the factory; NewSink returns a
// MultiSink automatically when several sinks are configured.
package metrics
