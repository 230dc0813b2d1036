package latency

import (
	"slices"
)

// Table holds raw round-trip measurements keyed by (from, to).
// It is not assumed to be symmetric. A Table is not safe for concurrent
// writers; concurrent readers are fine once population is done.
type Table struct {
	rows map[NodeIdent]map[NodeIdent]uint32
	n    int
}

// Measurement is a single (from, to, raw value) entry.
type Measurement struct {
	From  NodeIdent `yaml:"from"`
	To    NodeIdent `yaml:"to"`
	Value uint32    `yaml:"value"`
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{rows: make(map[NodeIdent]map[NodeIdent]uint32)}
}

// Set stores raw for (from, to), replacing any previous value.
func (t *Table) Set(from, to NodeIdent, raw uint32) {
	row, ok := t.rows[from]
	if !ok {
		row = make(map[NodeIdent]uint32)
		t.rows[from] = row
	}
	if _, seen := row[to]; !seen {
		t.n++
	}
	row[to] = raw
}

// Get returns the raw measurement for (from, to).
func (t *Table) Get(from, to NodeIdent) (uint32, bool) {
	row, ok := t.rows[from]
	if !ok {
		return 0, false
	}
	v, ok := row[to]
	return v, ok
}

// HasRow reports whether from has at least one measurement.
func (t *Table) HasRow(from NodeIdent) bool {
	_, ok := t.rows[from]
	return ok
}

// Len returns the number of stored (from, to) entries.
func (t *Table) Len() int { return t.n }

// Entries returns every measurement ordered by (from, to).
func (t *Table) Entries() []Measurement {
	out := make([]Measurement, 0, t.n)
	for from, row := range t.rows {
		for to, v := range row {
			out = append(out, Measurement{From: from, To: to, Value: v})
		}
	}
	slices.SortFunc(out, func(a, b Measurement) int {
		if c := a.From.Compare(b.From); c != 0 {
			return c
		}
		return a.To.Compare(b.To)
	})
	return out
}

// lookup resolves (from, to) or describes why it cannot.
func (t *Table) lookup(from, to NodeIdent) (uint32, *MissingMeasurementError) {
	if t == nil {
		return 0, &MissingMeasurementError{From: from, To: to, Row: true}
	}
	row, ok := t.rows[from]
	if !ok {
		return 0, &MissingMeasurementError{From: from, To: to, Row: true}
	}
	v, ok := row[to]
	if !ok {
		return 0, &MissingMeasurementError{From: from, To: to}
	}
	return v, nil
}

// Covers checks that every ordered off-diagonal pair of cands has a
// measurement, returning the first gap in index order.
//
// Errors:
//   - ErrNilTable for a nil cands,
//   - *MissingMeasurementError (matches ErrMissingMeasurement).
func (t *Table) Covers(cands *CandidateSet) error {
	if cands == nil {
		return latencyErrorf("Covers", ErrNilTable)
	}
	var i, j int
	for i = 0; i < cands.Len(); i++ {
		for j = 0; j < cands.Len(); j++ {
			if i == j {
				continue
			}
			if _, miss := t.lookup(cands.nodes[i], cands.nodes[j]); miss != nil {
				return latencyErrorf("Covers", miss)
			}
		}
	}
	return nil
}
