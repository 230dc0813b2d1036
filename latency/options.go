// SPDX-License-Identifier: MIT

// Package latency: functional configuration for BuildMatrix.
package latency

import (
	"github.com/katalvlaran/anchorset/diag"
	"github.com/katalvlaran/anchorset/matrix"
)

// UnitDivisor converts raw measurements into canonical matrix units:
// value = float64(raw) / UnitDivisor.
const UnitDivisor = 1000.0

// Option configures BuildMatrix.
type Option func(*options)

type options struct {
	sink       diag.Sink
	matrixOpts []matrix.Option
}

// WithSink reports missing measurements and the built matrix to s.
// A nil sink is ignored.
func WithSink(s diag.Sink) Option {
	return func(o *options) {
		if s != nil {
			o.sink = s
		}
	}
}

// WithMatrixOptions forwards options to the matrix allocation
// (e.g. matrix.WithNoValidateNaNInf).
func WithMatrixOptions(opts ...matrix.Option) Option {
	return func(o *options) { o.matrixOpts = append(o.matrixOpts, opts...) }
}

func gatherOptions(user ...Option) options {
	o := options{sink: diag.Nop{}}
	for _, set := range user {
		set(&o)
	}
	return o
}
