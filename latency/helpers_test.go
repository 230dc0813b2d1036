package latency_test

import (
	"fmt"
	"time"

	"github.com/katalvlaran/anchorset/matrix"
)

// sinkRecorder captures the calls BuildMatrix makes on its diag.Sink.
type sinkRecorder struct {
	missing []string
	labels  []string
	built   int
}

func (r *sinkRecorder) MissingMeasurement(from, to string, row bool) {
	r.missing = append(r.missing, fmt.Sprintf("%s|%s|%t", from, to, row))
}

func (r *sinkRecorder) MatrixBuilt(labels []string, _ matrix.Matrix) {
	r.built++
	r.labels = labels
}

func (r *sinkRecorder) RoundCompleted(int, string, float64, int) {}

func (r *sinkRecorder) RunCompleted(string, int, int, float64, time.Duration, error) {}
