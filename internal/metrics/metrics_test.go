package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	m := New()

	m.ObserveLayout("Sided Layout", time.Millisecond)
	m.ObserveLayout("Sided Layout", time.Millisecond)
	m.AddRenderFailures(2)
	m.AddRenderFailures(0)
	m.SetCounts(3, 1)
	m.RecordRequest("tilesCount", "OK")
	m.RecordReload(nil)
	m.RecordReload(errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.LayoutPasses.WithLabelValues("Sided Layout")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RenderFailures))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Tiles))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Workspaces))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("tilesCount", "OK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConfigReloads.WithLabelValues("error")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveLayout("x", time.Second)
		m.AddRenderFailures(1)
		m.SetCounts(1, 1)
		m.RecordRequest("a", "b")
		m.RecordReload(nil)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.SetCounts(4, 2)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "twm_tiles 4"), "body:\n%s", body)
}
