// Package anchor wires latency matrix construction and greedy reduction into
// a service: every run gets a ULID, a trace span, sink diagnostics and
// metrics. Independent runs can be executed in parallel.
package anchor

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/anchorset/diag"
	"github.com/katalvlaran/anchorset/latency"
	"github.com/katalvlaran/anchorset/reduce"
)

const tracerName = "github.com/katalvlaran/anchorset/anchor"

// Request is one selection: measurements for a candidate set and how many
// nodes to remove.
type Request struct {
	Candidates *latency.CandidateSet
	Table      *latency.Table
	Remove     int
}

// Response is the outcome of one Request.
type Response struct {
	RunID  string        `yaml:"run_id"`
	Result reduce.Result `yaml:",inline"`
}

// Option configures a Service.
type Option func(*Service)

// WithSink sends diagnostics to s (use diag.NewMulti to combine a slog sink
// and metrics). A nil sink is ignored.
func WithSink(s diag.Sink) Option {
	return func(svc *Service) {
		if s != nil {
			svc.sink = s
		}
	}
}

// WithTracer overrides the tracer. By default the global otel provider is
// used, which is a no-op until one is installed.
func WithTracer(t trace.Tracer) Option {
	return func(svc *Service) {
		if t != nil {
			svc.tracer = t
		}
	}
}

// WithRunIDs overrides run ID generation.
func WithRunIDs(f func() string) Option {
	return func(svc *Service) {
		if f != nil {
			svc.newID = f
		}
	}
}

// Service runs anchor selections.
type Service struct {
	cfg     Config
	sink    diag.Sink
	tracer  trace.Tracer
	newID   func() string
	reducer *reduce.Reducer
}

// New validates cfg and builds a Service.
func New(cfg Config, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	svc := &Service{
		cfg:    cfg,
		sink:   diag.Nop{},
		tracer: otel.Tracer(tracerName),
		newID:  func() string { return ulid.Make().String() },
	}
	for _, set := range opts {
		set(svc)
	}
	svc.reducer = reduce.New(
		reduce.WithSink(svc.sink),
		reduce.WithTolerance(cfg.Tolerance),
	)

	return svc, nil
}

// Config returns the validated configuration.
func (s *Service) Config() Config { return s.cfg }

// Select builds the latency matrix for req and reduces it.
// The context is checked once before the run starts; a run in progress is
// never interrupted.
func (s *Service) Select(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	id := s.newID()
	n := 0
	if req.Candidates != nil {
		n = req.Candidates.Len()
	}

	ctx, span := s.tracer.Start(ctx, "anchor.Select",
		trace.WithAttributes(
			attribute.String("anchorset.run_id", id),
			attribute.Int("anchorset.candidates", n),
			attribute.Int("anchorset.remove", req.Remove),
		),
	)
	defer span.End()

	log := diag.FromContext(ctx)
	log.DebugContext(ctx, "anchor selection start", "run_id", id, "candidates", n, "remove", req.Remove)

	start := time.Now()
	res, err := s.run(req)
	elapsed := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.sink.RunCompleted(id, 0, 0, 0, elapsed, err)
		return Response{}, fmt.Errorf("run %s: %w", id, err)
	}

	span.SetAttributes(
		attribute.Float64("anchorset.hypervolume", res.HyperVolume),
		attribute.Int("anchorset.survivors", len(res.Survivors)),
	)
	span.SetStatus(codes.Ok, "")
	s.sink.RunCompleted(id, len(res.Survivors), len(res.Removed), res.HyperVolume, elapsed, nil)

	return Response{RunID: id, Result: res}, nil
}

func (s *Service) run(req Request) (reduce.Result, error) {
	m, err := latency.BuildMatrix(req.Candidates, req.Table, latency.WithSink(s.sink))
	if err != nil {
		return reduce.Result{}, err
	}
	return s.reducer.ReduceSetByN(req.Candidates.Nodes(), m, req.Remove)
}

// SelectMany runs every request independently, at most Config.Parallelism at
// a time. Responses are in request order. The first failure cancels runs that
// have not started yet and is returned.
func (s *Service) SelectMany(ctx context.Context, reqs []Request) ([]Response, error) {
	out := make([]Response, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Parallelism)
	for i := range reqs {
		g.Go(func() error {
			resp, err := s.Select(gctx, reqs[i])
			if err != nil {
				return fmt.Errorf("request %d: %w", i, err)
			}
			out[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}
