// SPDX-License-Identifier: MIT

package latency

import (
	"fmt"
	"net/netip"
	"slices"
)

// NodeIdent is a peer identity: IP address plus port.
// It is comparable (usable as a map key) and totally ordered by address,
// then port. The zero value is invalid.
type NodeIdent struct {
	ap netip.AddrPort
}

// NewNodeIdent builds a NodeIdent from an address and a port.
func NewNodeIdent(addr netip.Addr, port uint16) NodeIdent {
	return NodeIdent{ap: netip.AddrPortFrom(addr.Unmap(), port)}
}

// ParseNodeIdent parses "ip:port" or "[ipv6]:port".
func ParseNodeIdent(s string) (NodeIdent, error) {
	ap, err := netip.ParseAddrPort(s)
	if err != nil {
		return NodeIdent{}, fmt.Errorf("%w: %q: %w", ErrInvalidNode, s, err)
	}
	return NewNodeIdent(ap.Addr(), ap.Port()), nil
}

// MustParseNodeIdent is ParseNodeIdent that panics on error. For tests and
// static tables.
func MustParseNodeIdent(s string) NodeIdent {
	n, err := ParseNodeIdent(s)
	if err != nil {
		panic(err)
	}
	return n
}

func (n NodeIdent) Addr() netip.Addr         { return n.ap.Addr() }
func (n NodeIdent) Port() uint16             { return n.ap.Port() }
func (n NodeIdent) AddrPort() netip.AddrPort { return n.ap }
func (n NodeIdent) IsValid() bool            { return n.ap.IsValid() }

func (n NodeIdent) String() string {
	if !n.ap.IsValid() {
		return "invalid"
	}
	return n.ap.String()
}

// Compare returns -1, 0 or +1 ordering by address, then port.
func (n NodeIdent) Compare(o NodeIdent) int {
	return n.ap.Compare(o.ap)
}

// MarshalText implements encoding.TextMarshaler.
func (n NodeIdent) MarshalText() ([]byte, error) {
	if !n.ap.IsValid() {
		return nil, ErrInvalidNode
	}
	return n.ap.MarshalText()
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *NodeIdent) UnmarshalText(b []byte) error {
	v, err := ParseNodeIdent(string(b))
	if err != nil {
		return err
	}
	*n = v
	return nil
}

// CandidateSet is an immutable set of unique nodes enumerated in ascending
// order. A node's position in that order is its latency-matrix index.
type CandidateSet struct {
	nodes []NodeIdent
	index map[NodeIdent]int
}

// NewCandidateSet sorts nodes and indexes them.
//
// Errors:
//   - ErrInvalidNode for a zero NodeIdent,
//   - ErrDuplicateNode when a node appears twice.
//
// An empty set is valid here; BuildMatrix rejects it.
func NewCandidateSet(nodes ...NodeIdent) (*CandidateSet, error) {
	sorted := slices.Clone(nodes)
	slices.SortFunc(sorted, NodeIdent.Compare)

	idx := make(map[NodeIdent]int, len(sorted))
	for i, n := range sorted {
		if !n.IsValid() {
			return nil, latencyErrorf("NewCandidateSet", ErrInvalidNode)
		}
		if i > 0 && sorted[i-1] == n {
			return nil, fmt.Errorf("NewCandidateSet: %w: %s", ErrDuplicateNode, n)
		}
		idx[n] = i
	}

	return &CandidateSet{nodes: sorted, index: idx}, nil
}

// Len returns the number of nodes.
func (s *CandidateSet) Len() int { return len(s.nodes) }

// Nodes returns the nodes in ascending order. The slice is a copy.
func (s *CandidateSet) Nodes() []NodeIdent { return slices.Clone(s.nodes) }

// At returns the node with matrix index i.
func (s *CandidateSet) At(i int) NodeIdent { return s.nodes[i] }

// Index returns the matrix index of n.
func (s *CandidateSet) Index(n NodeIdent) (int, bool) {
	i, ok := s.index[n]
	return i, ok
}

// Contains reports whether n is in the set.
func (s *CandidateSet) Contains(n NodeIdent) bool {
	_, ok := s.index[n]
	return ok
}

// Labels returns the String form of every node in index order.
func (s *CandidateSet) Labels() []string {
	out := make([]string, len(s.nodes))
	for i, n := range s.nodes {
		out[i] = n.String()
	}
	return out
}
