package reduce

import "github.com/katalvlaran/anchorset/matrix"

// Exclude and Restore expose the trial primitives to package reduce_test.
var (
	Exclude = exclude
	Restore = restore
)

// WithEvaluator replaces the hypervolume evaluation. Test-only.
func WithEvaluator(f func(m *matrix.Dense) (float64, error)) Option {
	return func(r *Reducer) { r.eval = f }
}
