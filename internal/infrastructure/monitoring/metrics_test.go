package monitoring

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRequest(t *testing.T) {
	m := NewMetrics()

	m.RecordRequest("element/chunk/update", "success", 20*time.Millisecond)
	m.RecordRequest("element/chunk/update", "success", 10*time.Millisecond)
	m.RecordRequest("security/login", "unauthorized", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("element/chunk/update", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("security/login", "unauthorized")))
}

func TestCounters(t *testing.T) {
	m := NewMetrics()

	m.IncSessionRotated()
	m.RecordWorkflow("login", "success")
	m.RecordAutoSync("armed")
	m.AddBuffersUnbound(2)
	m.SetBreakerState("connector", 2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionRotated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WorkflowsTotal.WithLabelValues("login", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AutoSyncTotal.WithLabelValues("armed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BuffersUnbound))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BreakerState.WithLabelValues("connector")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("a", "b", time.Second)
		m.IncSessionRotated()
		m.RecordWorkflow("w", "o")
		m.RecordAutoSync("r")
		m.AddBuffersUnbound(1)
		m.SetBreakerState("connector", 0)
	})
}

func TestWriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.RecordWorkflow("remove", "success")

	path := filepath.Join(t.TempDir(), "modxel.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `modxel_workflows_total{outcome="success",workflow="remove"} 1`)
}
