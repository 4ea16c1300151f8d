package metrics

import (
	"fmt"
	"strings"

	"github.com/kilianp07/shiftplan/core/factory"
)

// SinkNop is the type name of the sink that records nothing.
const SinkNop = "nop"

var sinkRegistry = factory.NewRegistry[MetricsSink]()

// RegisterSink adds a sink factory under a type name such as "prometheus".
func RegisterSink(name string, f factory.Factory[MetricsSink]) error {
	return sinkRegistry.Register(name, f)
}

// SinkTypes lists the registered sink types.
func SinkTypes() []string { return sinkRegistry.Names() }

// NewSink builds the sinks listed in cfg. "nop" entries are skipped; with
// nothing left NopSink is returned and a single sink is returned unwrapped.
func NewSink(cfg Config) (MetricsSink, error) {
	var sinks []MetricsSink
	for i, c := range cfg.Sinks {
		if c.Type == "" {
			return nil, fmt.Errorf("metrics sink %d: type is required (known: %s)", i, strings.Join(SinkTypes(), ", "))
		}
		if c.Type == SinkNop {
			continue
		}
		s, err := sinkRegistry.Create(c)
		if err != nil {
			return nil, fmt.Errorf("metrics sink %d (%s): %w", i, c.Type, err)
		}
		sinks = append(sinks, s)
	}
	switch len(sinks) {
	case 0:
		return NopSink{}, nil
	case 1:
		return sinks[0], nil
	}
	return NewMultiSink(sinks...), nil
}
