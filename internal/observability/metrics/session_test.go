package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/mhsn/forumweb/internal/observability/statsd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitSessionTransition(t *testing.T) {
	var rec statsd.Recorder

	EmitSessionTransition(&rec, SessionMetric{Transition: TransitionLogin, Result: ResultSuccess, Duration: 20 * time.Millisecond})
	EmitSessionTransition(&rec, SessionMetric{Transition: TransitionBootstrap, Result: ResultError, Err: errors.New("boom")})

	login := rec.Named("session.login")
	require.Len(t, login, 1)
	assert.Equal(t, "success", login[0].Tags["result"])
	assert.Len(t, rec.Named("session.login.duration"), 1)

	boot := rec.Named("session.bootstrap")
	require.Len(t, boot, 1)
	assert.Equal(t, "other", boot[0].Tags["error_class"])
	assert.Empty(t, rec.Named("session.bootstrap.duration"))
}

func TestEmitAPIRequest(t *testing.T) {
	var rec statsd.Recorder
	EmitAPIRequest(&rec, "GET", 401, time.Millisecond, nil)

	got := rec.Named("api.request")
	require.Len(t, got, 1)
	assert.Equal(t, map[string]string{"method": "GET", "status": "401"}, got[0].Tags)
}

func TestEmitLiveSessions(t *testing.T) {
	var rec statsd.Recorder
	EmitLiveSessions(&rec, 3, 0)
	assert.Empty(t, rec.Named("session.live.evicted"))

	EmitLiveSessions(&rec, 3, 2)
	assert.Len(t, rec.Named("session.live"), 2)
	evicted := rec.Named("session.live.evicted")
	require.Len(t, evicted, 1)
	assert.Equal(t, float64(2), evicted[0].Value)
}

func TestNilSinkIsIgnored(t *testing.T) {
	EmitSessionTransition(nil, SessionMetric{Transition: TransitionLogout})
	EmitAPIRequest(nil, "GET", 200, 0, nil)
	EmitLiveSessions(nil, 1, 1)
	assert.Nil(t, CloneTags(nil))
}
