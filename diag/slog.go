package diag

import (
	"context"
	"log/slog"
	"time"

	"github.com/katalvlaran/anchorset/matrix"
)

// SlogSink writes diagnostics as structured slog records.
//
// Levels:
//   - Warn:  missing measurements.
//   - Debug: one record per built matrix row, one per reduction round.
//   - Info:  run completion (Error when the run failed).
type SlogSink struct {
	log *slog.Logger
}

var _ Sink = (*SlogSink)(nil)

// NewSlogSink wraps l. A nil logger falls back to slog.Default().
func NewSlogSink(l *slog.Logger) *SlogSink {
	if l == nil {
		l = slog.Default()
	}
	return &SlogSink{log: l}
}

// Logger returns the underlying logger.
func (s *SlogSink) Logger() *slog.Logger { return s.log }

func (s *SlogSink) MissingMeasurement(from, to string, row bool) {
	side := "column"
	if row {
		side = "row"
	}
	s.log.Warn("missing latency measurement", "from", from, "to", to, "side", side)
}

// MatrixBuilt emits the matrix trace. Rows are skipped entirely when Debug is
// disabled so that large matrices cost nothing at Info.
func (s *SlogSink) MatrixBuilt(labels []string, m matrix.Matrix) {
	ctx := context.Background()
	if !s.log.Enabled(ctx, slog.LevelDebug) || m == nil {
		return
	}
	var i, j int
	var row []float64
	for i = 0; i < m.Rows(); i++ {
		row = make([]float64, m.Cols())
		for j = range row {
			row[j], _ = m.At(i, j)
		}
		s.log.LogAttrs(ctx, slog.LevelDebug, "latency matrix row",
			slog.Int("index", i),
			slog.String("node", label(labels, i)),
			slog.Any("values", row),
		)
	}
}

func (s *SlogSink) RoundCompleted(round int, removed string, hv float64, active int) {
	s.log.Debug("reduction round",
		"round", round,
		"removed", removed,
		"hypervolume", hv,
		"active", active,
	)
}

func (s *SlogSink) RunCompleted(runID string, survivors, removed int, hv float64, elapsed time.Duration, err error) {
	if err != nil {
		s.log.Error("anchor selection failed", "run_id", runID, "elapsed", elapsed, "err", err)
		return
	}
	s.log.Info("anchor selection done",
		"run_id", runID,
		"survivors", survivors,
		"removed", removed,
		"hypervolume", hv,
		"elapsed", elapsed,
	)
}

func label(labels []string, i int) string {
	if i < len(labels) {
		return labels[i]
	}
	return ""
}
