package statsd

import (
	"sync"
	"time"
)

// Sample is one metric captured by a Recorder.
type Sample struct {
	Kind  string
	Name  string
	Value float64
	Tags  map[string]string
}

// Recorder is an in-memory Sink for tests.
type Recorder struct {
	mu      sync.Mutex
	samples []Sample
}

var _ Sink = (*Recorder)(nil)

func (r *Recorder) add(s Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, s)
}

func (r *Recorder) Count(name string, value int64, tags map[string]string) {
	r.add(Sample{Kind: "c", Name: name, Value: float64(value), Tags: tags})
}

func (r *Recorder) Gauge(name string, value float64, tags map[string]string) {
	r.add(Sample{Kind: "g", Name: name, Value: value, Tags: tags})
}

func (r *Recorder) Timing(name string, value time.Duration, tags map[string]string) {
	r.add(Sample{Kind: "ms", Name: name, Value: float64(value.Milliseconds()), Tags: tags})
}

// Named returns the samples recorded under name, in order.
func (r *Recorder) Named(name string) []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Sample
	for _, s := range r.samples {
		if s.Name == name {
			out = append(out, s)
		}
	}
	return out
}
