// Package metrics standardises the metric names and tags the gateway emits.
package metrics

import (
	"strconv"
	"time"

	obserrors "github.com/mhsn/forumweb/internal/observability/errors"
	"github.com/mhsn/forumweb/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultError   = "error"
)

// Session transitions.
const (
	TransitionBootstrap    = "bootstrap"
	TransitionLogin        = "login"
	TransitionRegister     = "register"
	TransitionLogout       = "logout"
	TransitionProfile      = "profile_update"
	TransitionDelete       = "account_delete"
	TransitionForcedLogout = "forced_logout"
)

// SessionMetric captures one session lifecycle event.
type SessionMetric struct {
	Transition string
	Result     string
	Duration   time.Duration
	Err        error
}

// EmitSessionTransition counts session.<transition> and optionally times it.
func EmitSessionTransition(sink statsd.Sink, in SessionMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{"result": in.Result}
	if in.Err != nil {
		tags["error_class"] = obserrors.Classify(in.Err)
	}

	sink.Count("session."+in.Transition, 1, tags)
	if in.Duration > 0 {
		sink.Timing("session."+in.Transition+".duration", in.Duration, CloneTags(tags))
	}
}

// EmitAPIRequest records one backend round trip. status is 0 when no
// response arrived.
func EmitAPIRequest(sink statsd.Sink, method string, status int, d time.Duration, err error) {
	if sink == nil {
		return
	}
	tags := map[string]string{
		"method": method,
		"status": strconv.Itoa(status),
	}
	if err != nil {
		tags["error_class"] = obserrors.Classify(err)
	}
	sink.Timing("api.request", d, tags)
}

// EmitLiveSessions reports how many live sessions the registry holds and how
// many were just pushed out by the capacity bound.
func EmitLiveSessions(sink statsd.Sink, n, evicted int) {
	if sink == nil {
		return
	}
	sink.Gauge("session.live", float64(n), nil)
	if evicted > 0 {
		sink.Count("session.live.evicted", int64(evicted), nil)
	}
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
