package anchor_test

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/katalvlaran/anchorset/anchor"
	"github.com/katalvlaran/anchorset/diag"
	"github.com/katalvlaran/anchorset/latency"
)

// regularRequest builds n equidistant nodes on subnet net, raw latency l.
func regularRequest(t *testing.T, subnet, n int, l uint32, remove int) anchor.Request {
	t.Helper()
	nodes := make([]latency.NodeIdent, n)
	for i := range nodes {
		nodes[i] = latency.MustParseNodeIdent(fmt.Sprintf("10.%d.0.%d:7000", subnet, i+1))
	}
	cands, err := latency.NewCandidateSet(nodes...)
	require.NoError(t, err)
	tbl := latency.NewTable()
	for _, a := range nodes {
		for _, b := range nodes {
			if a != b {
				tbl.Set(a, b, l)
			}
		}
	}
	return anchor.Request{Candidates: cands, Table: tbl, Remove: remove}
}

func newRecorder() (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	sr := tracetest.NewSpanRecorder()
	return sr, sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
}

func attrMap(kvs []attribute.KeyValue) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value, len(kvs))
	for _, kv := range kvs {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, anchor.DefaultConfig().Validate())

	tests := []struct {
		name string
		cfg  anchor.Config
	}{
		{"zero parallelism", anchor.Config{Parallelism: 0, Tolerance: 1e-9}},
		{"negative tolerance", anchor.Config{Parallelism: 1, Tolerance: -1}},
		{"nan tolerance", anchor.Config{Parallelism: 1, Tolerance: math.NaN()}},
		{"inf tolerance", anchor.Config{Parallelism: 1, Tolerance: math.Inf(1)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.cfg.Validate(), anchor.ErrInvalidConfig)
			_, err := anchor.New(tc.cfg)
			assert.ErrorIs(t, err, anchor.ErrInvalidConfig)
		})
	}
}

func TestSelect_Success(t *testing.T) {
	sr, tp := newRecorder()
	reg := prometheus.NewRegistry()
	metrics := diag.NewMetrics(reg)

	svc, err := anchor.New(anchor.DefaultConfig(),
		anchor.WithTracer(tp.Tracer("test")),
		anchor.WithSink(metrics),
	)
	require.NoError(t, err)

	req := regularRequest(t, 0, 4, 2000, 1)
	resp, err := svc.Select(context.Background(), req)
	require.NoError(t, err)

	_, err = ulid.Parse(resp.RunID)
	assert.NoError(t, err, "run IDs are ULIDs")
	nodes := req.Candidates.Nodes()
	assert.Equal(t, []latency.NodeIdent{nodes[3]}, resp.Result.Removed)
	assert.Equal(t, nodes[:3], resp.Result.Survivors)
	assert.InDelta(t, math.Sqrt(3)/2*4, resp.Result.HyperVolume, 1e-9)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "anchor.Select", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	attrs := attrMap(spans[0].Attributes())
	assert.Equal(t, resp.RunID, attrs["anchorset.run_id"].AsString())
	assert.Equal(t, int64(4), attrs["anchorset.candidates"].AsInt64())
	assert.Equal(t, int64(3), attrs["anchorset.survivors"].AsInt64())

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Runs.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.MatricesBuilt))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RoundsCompleted))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.Survivors))
}

func TestSelect_MissingMeasurement(t *testing.T) {
	sr, tp := newRecorder()
	reg := prometheus.NewRegistry()
	metrics := diag.NewMetrics(reg)
	svc, err := anchor.New(anchor.DefaultConfig(),
		anchor.WithTracer(tp.Tracer("test")),
		anchor.WithSink(metrics),
		anchor.WithRunIDs(func() string { return "fixed" }),
	)
	require.NoError(t, err)

	req := regularRequest(t, 0, 3, 1000, 1)
	extra := latency.MustParseNodeIdent("10.0.0.99:7000")
	cands, err := latency.NewCandidateSet(append(req.Candidates.Nodes(), extra)...)
	require.NoError(t, err)
	req.Candidates = cands

	_, err = svc.Select(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, latency.ErrMissingMeasurement)
	assert.Contains(t, err.Error(), "run fixed")

	var miss *latency.MissingMeasurementError
	require.ErrorAs(t, err, &miss)
	assert.Equal(t, extra, miss.Node())

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	require.NotEmpty(t, spans[0].Events(), "error recorded as span event")

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Runs.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.MissingMeasurements.WithLabelValues("column")))
}

func TestSelect_InvalidRemoveCount(t *testing.T) {
	svc, err := anchor.New(anchor.DefaultConfig())
	require.NoError(t, err)
	_, err = svc.Select(context.Background(), regularRequest(t, 0, 3, 1000, 3))
	assert.Error(t, err)
}

func TestSelect_CancelledContext(t *testing.T) {
	sr, tp := newRecorder()
	var ids atomic.Int32
	svc, err := anchor.New(anchor.DefaultConfig(),
		anchor.WithTracer(tp.Tracer("test")),
		anchor.WithRunIDs(func() string { ids.Add(1); return "x" }),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Select(ctx, regularRequest(t, 0, 3, 1000, 1))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sr.Ended(), "no span for a run that never started")
	assert.Zero(t, ids.Load())
}

func TestSelectMany_OrderAndIndependence(t *testing.T) {
	cfg := anchor.DefaultConfig()
	cfg.Parallelism = 3
	svc, err := anchor.New(cfg)
	require.NoError(t, err)

	reqs := make([]anchor.Request, 8)
	for i := range reqs {
		// Different sizes so each response is recognizable.
		reqs[i] = regularRequest(t, i, 3+i%4, 1000, 1)
	}

	resps, err := svc.SelectMany(context.Background(), reqs)
	require.NoError(t, err)
	require.Len(t, resps, len(reqs))

	seen := make(map[string]bool)
	for i, resp := range resps {
		assert.Lenf(t, resp.Result.Survivors, reqs[i].Candidates.Len()-1, "request %d", i)
		assert.Equal(t, reqs[i].Candidates.At(reqs[i].Candidates.Len()-1), resp.Result.Removed[0])
		assert.False(t, seen[resp.RunID], "run IDs are unique")
		seen[resp.RunID] = true
	}
}

func TestSelectMany_FirstErrorWins(t *testing.T) {
	cfg := anchor.DefaultConfig()
	cfg.Parallelism = 1
	svc, err := anchor.New(cfg)
	require.NoError(t, err)

	reqs := []anchor.Request{
		regularRequest(t, 0, 3, 1000, 1),
		regularRequest(t, 1, 3, 1000, 5),
		regularRequest(t, 2, 3, 1000, 1),
	}
	resps, err := svc.SelectMany(context.Background(), reqs)
	require.Error(t, err)
	assert.Nil(t, resps)
	assert.Contains(t, err.Error(), "request 1")
}

func TestSelectMany_Empty(t *testing.T) {
	svc, err := anchor.New(anchor.DefaultConfig())
	require.NoError(t, err)
	resps, err := svc.SelectMany(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, resps)
}
