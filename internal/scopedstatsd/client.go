// Package scopedstatsd wraps a statsd client so trace client internals
// can report their own health with a fixed set of tags, and without
// checking for a missing client at every call site.
package scopedstatsd

import (
	"time"

	"github.com/DataDog/datadog-go/statsd"
)

// Client represents the statsd client functions that trace backends
// report with.
type Client interface {
	Gauge(name string, value float64, tags []string, rate float64) error
	Count(name string, value int64, tags []string, rate float64) error
	Incr(name string, tags []string, rate float64) error
	Timing(name string, value time.Duration, tags []string, rate float64) error
}

// Ensure takes a statsd client and wraps it in such a way that it is
// safe to store in a struct if it should be nil. Otherwise returns
// the Client unchanged.
func Ensure(cl Client) Client {
	if cl == nil {
		return &ScopedClient{}
	}
	return cl
}

// ScopedClient appends its tags to every metric it reports. A nil
// ScopedClient, or one without an inner client, discards everything.
type ScopedClient struct {
	client  *statsd.Client
	addTags []string
}

var _ Client = &ScopedClient{}

func (s *ScopedClient) tags(tags []string) []string {
	if len(s.addTags) == 0 {
		return tags
	}
	out := make([]string, 0, len(tags)+len(s.addTags))
	out = append(out, tags...)
	return append(out, s.addTags...)
}

func (s *ScopedClient) Gauge(name string, value float64, tags []string, rate float64) error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Gauge(name, value, s.tags(tags), rate)
}

func (s *ScopedClient) Count(name string, value int64, tags []string, rate float64) error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Count(name, value, s.tags(tags), rate)
}

func (s *ScopedClient) Incr(name string, tags []string, rate float64) error {
	return s.Count(name, 1, tags, rate)
}

func (s *ScopedClient) Timing(name string, value time.Duration, tags []string, rate float64) error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Timing(name, value, s.tags(tags), rate)
}

// NewClient wraps inner, adding addTags to everything it reports.
func NewClient(inner *statsd.Client, addTags ...string) *ScopedClient {
	return &ScopedClient{
		client:  inner,
		addTags: addTags,
	}
}
