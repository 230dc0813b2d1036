package diag_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/katalvlaran/anchorset/diag"
	"github.com/katalvlaran/anchorset/matrix"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a Sink that counts calls.
type recorder struct {
	missing, built, rounds, runs int
}

func (r *recorder) MissingMeasurement(string, string, bool) { r.missing++ }
func (r *recorder) MatrixBuilt([]string, matrix.Matrix) { r.built++ }
func (r *recorder) RoundCompleted(int, string, float64, int) { r.rounds++ }
func (r *recorder) RunCompleted(string, int, int, float64, time.Duration, error) { r.runs++ }

func TestNewMulti(t *testing.T) {
	assert.Equal(t, diag.Nop{}, diag.NewMulti())
	assert.Equal(t, diag.Nop{}, diag.NewMulti(nil, nil))

	a := &recorder{}
	assert.Same(t, a, diag.NewMulti(nil, a))

	b := &recorder{}
	s := diag.NewMulti(a, nil, b)
	s.MissingMeasurement("x", "y", true)
	s.MatrixBuilt(nil, nil)
	s.RoundCompleted(1, "x", 1, 2)
	s.RunCompleted("id", 1, 1, 0, time.Second, nil)
	for _, r := range []*recorder{a, b} {
		assert.Equal(t, recorder{1, 1, 1, 1}, *r)
	}
}

func TestOrNop(t *testing.T) {
	assert.Equal(t, diag.Nop{}, diag.OrNop(nil))
	r := &recorder{}
	assert.Same(t, r, diag.OrNop(r))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l, err := diag.NewLoggerTo(&buf, "json", "debug")
	require.NoError(t, err)
	l.Debug("hello", "k", 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "DEBUG", rec["level"])

	_, err = diag.NewLoggerTo(&buf, "xml", "info")
	assert.ErrorIs(t, err, diag.ErrUnknownFormat)
	_, err = diag.NewLoggerTo(&buf, "text", "loud")
	assert.ErrorIs(t, err, diag.ErrUnknownLevel)

	lvl, err := diag.ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, lvl)
}

func TestContextLogger(t *testing.T) {
	assert.Same(t, slog.Default(), diag.FromContext(context.Background()))

	l := diag.DiscardLogger()
	ctx := diag.NewContext(context.Background(), l)
	assert.Same(t, l, diag.FromContext(ctx))
}

func TestSlogSink(t *testing.T) {
	var buf bytes.Buffer
	l, err := diag.NewLoggerTo(&buf, "text", "debug")
	require.NoError(t, err)
	s := diag.NewSlogSink(l)
	assert.Same(t, l, s.Logger())

	m, err := matrix.NewDenseFrom([][]float64{{0, 1.5}, {2, 0}})
	require.NoError(t, err)

	s.MissingMeasurement("10.0.0.1:1", "10.0.0.2:1", true)
	s.MatrixBuilt([]string{"a", "b"}, m)
	s.RoundCompleted(1, "b", 0.25, 3)
	s.RunCompleted("01ABC", 3, 1, 0.25, time.Millisecond, nil)
	s.RunCompleted("01ABD", 0, 0, 0, time.Millisecond, errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, "missing latency measurement")
	assert.Contains(t, out, "side=row")
	assert.Equal(t, 2, strings.Count(out, "latency matrix row"))
	assert.Contains(t, out, "node=b")
	assert.Contains(t, out, "reduction round")
	assert.Contains(t, out, "anchor selection done")
	assert.Contains(t, out, "run_id=01ABC")
	assert.Contains(t, out, "anchor selection failed")
	assert.Contains(t, out, "err=boom")
}

func TestSlogSink_MatrixTraceSkippedAboveDebug(t *testing.T) {
	var buf bytes.Buffer
	l, err := diag.NewLoggerTo(&buf, "text", "info")
	require.NoError(t, err)
	m, err := matrix.NewDense(2, 2)
	require.NoError(t, err)

	diag.NewSlogSink(l).MatrixBuilt([]string{"a", "b"}, m)
	assert.Empty(t, buf.String())
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := diag.NewMetrics(reg)

	mat, err := matrix.NewDense(4, 4)
	require.NoError(t, err)

	m.MissingMeasurement("a", "b", true)
	m.MissingMeasurement("a", "c", false)
	m.MissingMeasurement("a", "d", false)
	m.MatrixBuilt(nil, mat)
	m.RoundCompleted(1, "a", 0.5, 3)
	m.RoundCompleted(2, "b", 0.25, 2)
	m.RunCompleted("id", 2, 2, 0.25, 10*time.Millisecond, nil)
	m.RunCompleted("id2", 0, 0, 0, time.Millisecond, errors.New("x"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.MissingMeasurements.WithLabelValues("row")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.MissingMeasurements.WithLabelValues("column")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MatricesBuilt))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RoundsCompleted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues("error")))
	assert.Equal(t, 0.25, testutil.ToFloat64(m.LastHyperVolume))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Survivors))

	n, err := testutil.GatherAndCount(reg, "anchorset_rounds_completed_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestWriteText(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := diag.NewMetrics(reg)
	m.RoundCompleted(1, "a", 1, 1)

	var buf bytes.Buffer
	require.NoError(t, diag.WriteText(&buf, reg))
	assert.Contains(t, buf.String(), "# TYPE anchorset_rounds_completed_total counter")
	assert.Contains(t, buf.String(), "anchorset_rounds_completed_total 1")
}
