// ============================================================================
// trajexec
// ============================================================================
//
// Package:     selector
// Description: C2 Controller Selector: given a set of actuated joints,
//              chooses a minimum-cardinality cover of controllers, biased
//              toward currently-active ones, with deterministic
//              tie-breaking via iterative deepening over k-subsets. New
//              component; the combinatorial search has no direct teacher
//              analogue, so it is written from the specification's
//              algorithm description directly (see DESIGN.md).
// License:     MIT
// ============================================================================

package selector

import (
	"fmt"

	"github.com/msto63/trajexec/internal/registry"
	"github.com/msto63/trajexec/internal/setx"
)

// Select returns an ordered cover of controllers (from available; an empty
// available list is an error) whose joint sets union to a
// superset of actuatedJoints, preferring the smallest count and, among
// same-size covers, the one with the most already-active controllers and
// the tightest total joint count.
func Select(actuatedJoints []string, available []*registry.ControllerInfo) ([]string, error) {
	if len(available) == 0 {
		return nil, fmt.Errorf("selector: no controllers available")
	}
	if len(actuatedJoints) == 0 {
		return nil, fmt.Errorf("selector: no joints to cover")
	}

	n := len(available)
	for k := 1; k <= n; k++ {
		best, _, found := bestCoverAtSize(actuatedJoints, available, k)
		if found {
			names := make([]string, len(best))
			for i, c := range best {
				names[i] = c.Name
			}
			return names, nil
		}
	}
	return nil, fmt.Errorf("selector: no cover exists for %d joints among %d controllers", len(actuatedJoints), n)
}

type score struct {
	activeCount int
	negJoints   int
}

// less reports whether s is strictly worse than other (lower is worse).
func (s score) less(other score) bool {
	if s.activeCount != other.activeCount {
		return s.activeCount < other.activeCount
	}
	return s.negJoints < other.negJoints
}

// bestCoverAtSize enumerates every k-subset of available in lexicographic
// order, scoring the covering ones, and returns the best-scoring subset
// encountered first among ties.
func bestCoverAtSize(actuatedJoints []string, available []*registry.ControllerInfo, k int) ([]*registry.ControllerInfo, score, bool) {
	var best []*registry.ControllerInfo
	var bestScore score
	found := false

	combinations(len(available), k, func(indices []int) {
		subset := make([]*registry.ControllerInfo, k)
		for i, idx := range indices {
			subset[i] = available[idx]
		}
		if !covers(subset, actuatedJoints) {
			return
		}
		sc := scoreOf(subset)
		if !found || bestScore.less(sc) {
			best = subset
			bestScore = sc
			found = true
		}
	})

	return best, bestScore, found
}

func covers(subset []*registry.ControllerInfo, actuatedJoints []string) bool {
	var union []string
	for _, c := range subset {
		union = setx.Union(union, c.Joints)
	}
	return setx.SubsetOf(actuatedJoints, union)
}

func scoreOf(subset []*registry.ControllerInfo) score {
	var s score
	totalJoints := 0
	for _, c := range subset {
		if c.Active {
			s.activeCount++
		}
		totalJoints += len(c.Joints)
	}
	s.negJoints = -totalJoints
	return s
}

// combinations calls visit once for every k-subset of {0, ..., n-1}, in
// lexicographic order of the index sets.
func combinations(n, k int, visit func(indices []int)) {
	if k <= 0 || k > n {
		return
	}
	indices := make([]int, k)
	for i := range indices {
		indices[i] = i
	}
	for {
		visit(indices)

		i := k - 1
		for i >= 0 && indices[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		indices[i]++
		for j := i + 1; j < k; j++ {
			indices[j] = indices[j-1] + 1
		}
	}
}
