// SPDX-License-Identifier: MIT

// Package matrix: functional configuration for Dense construction and the
// numeric policy. This file defines:
//   - Option / Options (functional options with internal state),
//   - documented defaults (constants),
//   - WithX constructors (panic on nonsensical values),
//   - gatherOptions helper (internal).
package matrix

// ---------- Defaults (single source of truth) ----------

const (
	// DefaultEpsilon is the non-negative tolerance used by AllClose-style checks.
	DefaultEpsilon = 1e-9

	// DefaultValidateNaNInf toggles strict finite-value validation in Set.
	DefaultValidateNaNInf = true
)

const panicEpsilonInvalid = "matrix: WithEpsilon: eps must be finite, non-negative"

// Option mutates internal options. Safe to apply repeatedly (idempotent).
type Option func(*Options)

// Options stores the effective configuration after applying Option setters.
// Fields are unexported; public entry points accept `...Option`.
type Options struct {
	eps            float64 // >= 0; DefaultEpsilon
	validateNaNInf bool    // DefaultValidateNaNInf
}

// Epsilon reports the resolved tolerance.
func (o Options) Epsilon() float64 { return o.eps }

// ValidateNaNInf reports whether Set rejects non-finite values.
func (o Options) ValidateNaNInf() bool { return o.validateNaNInf }

// WithEpsilon sets the numeric tolerance eps used by AllClose.
// Panics when eps is negative or non-finite.
func WithEpsilon(eps float64) Option {
	if isNonFinite(eps) || eps < 0 {
		panic(panicEpsilonInvalid)
	}

	return func(o *Options) { o.eps = eps }
}

// WithValidateNaNInf enables strict finite-value validation (the default).
func WithValidateNaNInf() Option {
	return func(o *Options) { o.validateNaNInf = true }
}

// WithNoValidateNaNInf disables NaN/Inf validation on newly created matrices.
// Existing matrices keep their policy.
func WithNoValidateNaNInf() Option {
	return func(o *Options) { o.validateNaNInf = false }
}

// NewMatrixOptions resolves opts on top of the documented defaults.
func NewMatrixOptions(opts ...Option) Options {
	return gatherOptions(opts...)
}

// gatherOptions applies setters in order (last-writer-wins) over defaults.
// Complexity: O(k) for k=len(user).
func gatherOptions(user ...Option) Options {
	o := Options{
		eps:            DefaultEpsilon,
		validateNaNInf: DefaultValidateNaNInf,
	}
	for _, set := range user {
		set(&o)
	}

	return o
}
