package handler

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewwphillips/castnet/internal/errs"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	m.request("POST", 200)
	m.request("POST", 200)
	m.request("DELETE", 400)
	m.compileError(errs.Syntax)
	m.ObserveDB("read", 3*time.Millisecond)

	assert.Equal(t, 2.0, promtest.ToFloat64(m.requests.WithLabelValues("POST", "200")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.requests.WithLabelValues("DELETE", "400")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.compileErrors.WithLabelValues("SYNTAX")))
	assert.Equal(t, 1, promtest.CollectAndCount(m.dbDuration))

	// Registering twice fails
	_, err = NewMetrics(reg)
	assert.Error(t, err)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.request("GET", 200)
		m.compileError(errs.Mismatch)
		m.ObserveDB("write", time.Second)
	})
}

func TestGetPath(t *testing.T) {
	pathData := map[string]struct {
		in       string
		expected []string
	}{
		"Empty":        {"", nil},
		"Root":         {"/", nil},
		"Key":          {"/projects", []string{"projects"}},
		"KeyID":        {"/projects/p1", []string{"projects", "p1"}},
		"Trailing":     {"/projects/", []string{"projects"}},
		"DoubleSlash":  {"//projects//p1", []string{"projects", "p1"}},
		"ForwardSlash": {"/samples/a{forwardSlash}b{forwardSlash}c", []string{"samples", "a/b/c"}},
	}
	for name, data := range pathData {
		assert.Equal(t, data.expected, getPath(data.in), name)
	}
}
