/*

This file contains the used-pool set: the only persistent state a position
carries. Membership is idempotent on add, exact on remove, and enumeration
preserves insertion order because valuation walks pools in that order.

*/

package position

import "github.com/ethereum/go-ethereum/common"

type poolSet struct {
	order   []common.Address
	members map[common.Address]struct{}
}

func newPoolSet() *poolSet {
	return &poolSet{
		members: make(map[common.Address]struct{}),
	}
}

// contains reports membership.
func (s *poolSet) contains(pool common.Address) bool {
	_, ok := s.members[pool]
	return ok
}

// add inserts pool and reports whether the set changed. Adding an existing
// member is a no-op.
func (s *poolSet) add(pool common.Address) bool {
	if s.contains(pool) {
		return false
	}
	s.members[pool] = struct{}{}
	s.order = append(s.order, pool)
	return true
}

// remove deletes pool and reports whether the set changed.
func (s *poolSet) remove(pool common.Address) bool {
	if !s.contains(pool) {
		return false
	}
	delete(s.members, pool)
	for i, p := range s.order {
		if p == pool {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// list returns the members in insertion order. The slice is a copy; callers
// may hold it across lock boundaries.
func (s *poolSet) list() []common.Address {
	out := make([]common.Address, len(s.order))
	copy(out, s.order)
	return out
}

func (s *poolSet) len() int {
	return len(s.order)
}
