package latency

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk measurement document:
//
//	nodes:
//	  - 10.0.0.1:4000
//	  - "[2001:db8::1]:4000"
//	latencies:
//	  - {from: "10.0.0.1:4000", to: "[2001:db8::1]:4000", value: 12500}
//
// value is the raw measurement; BuildMatrix divides it by UnitDivisor.
type File struct {
	Nodes     []NodeIdent   `yaml:"nodes"`
	Latencies []Measurement `yaml:"latencies"`
}

// Decode reads one YAML document from r. Unknown fields are rejected.
//
// Errors:
//   - ErrEmptyCandidateSet for an empty document or no nodes,
//   - ErrInvalidNode, ErrDuplicateNode,
//   - ErrDuplicateMeasurement when a (from, to) pair is listed twice,
//   - YAML syntax errors (wrapped).
func Decode(r io.Reader) (*CandidateSet, *Table, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, latencyErrorf("Decode", ErrEmptyCandidateSet)
		}
		return nil, nil, latencyErrorf("Decode", err)
	}

	return f.Resolve()
}

// Resolve validates f and converts it into a CandidateSet and a Table.
func (f *File) Resolve() (*CandidateSet, *Table, error) {
	if len(f.Nodes) == 0 {
		return nil, nil, latencyErrorf("Decode", ErrEmptyCandidateSet)
	}
	cands, err := NewCandidateSet(f.Nodes...)
	if err != nil {
		return nil, nil, latencyErrorf("Decode", err)
	}

	t := NewTable()
	for i, m := range f.Latencies {
		if !m.From.IsValid() || !m.To.IsValid() {
			return nil, nil, fmt.Errorf("Decode: latencies[%d]: %w", i, ErrInvalidNode)
		}
		if _, dup := t.Get(m.From, m.To); dup {
			return nil, nil, fmt.Errorf("Decode: latencies[%d]: %w: %s -> %s", i, ErrDuplicateMeasurement, m.From, m.To)
		}
		t.Set(m.From, m.To, m.Value)
	}

	return cands, t, nil
}

// Encode writes cands and t as a File document. Measurements are written in
// (from, to) order so output is stable.
func Encode(w io.Writer, cands *CandidateSet, t *Table) error {
	if cands == nil || t == nil {
		return latencyErrorf("Encode", ErrNilTable)
	}
	f := File{Nodes: cands.Nodes(), Latencies: t.Entries()}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&f); err != nil {
		return latencyErrorf("Encode", err)
	}

	return enc.Close()
}

// ReadFile opens path and decodes it.
func ReadFile(path string) (*CandidateSet, *Table, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, nil, latencyErrorf("ReadFile", err)
	}
	defer fh.Close()

	return Decode(fh)
}
