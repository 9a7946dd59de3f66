package engine

import (
	"fmt"
	"strings"
)

// ChoiceMask is a bitmask of candidate move indices, bit i meaning index i
// is a legal (or still-untried) candidate. At most 64 candidates fit a
// single choice call.
type ChoiceMask uint64

// Bit returns the single-bit mask for index i.
func Bit(i int) ChoiceMask {
	return ChoiceMask(1) << uint(i)
}

// Range returns a mask with bits lo..hi (inclusive) set.
func Range(lo, hi int) ChoiceMask {
	if hi < lo {
		return 0
	}
	n := hi - lo + 1
	var full ChoiceMask
	if n >= 64 {
		full = ^ChoiceMask(0)
	} else {
		full = (ChoiceMask(1) << uint(n)) - 1
	}
	return full << uint(lo)
}

// stats holds per-ply search counters, the ply's killer-move bitmask, and
// extrema observed at that depth. Allocated once per engine for every
// possible ply and reset at the start of each search.
type stats struct {
	// BestChoices is the killer heuristic: indices that recently caused a
	// cutoff at this ply, tried early on subsequent nodes at the same ply.
	BestChoices ChoiceMask

	Visits       uint64
	Choices      uint64
	Revisits     uint64
	Cutoffs      uint64
	EarlyCutoffs uint64

	Wins  [MaxPlayers]uint64
	Draws uint64

	MaxAlpha int
	MinBeta  int
}

// resetCounters zeroes everything except BestChoices, used when a
// re-search wants to keep move-ordering hints from a shallower pass.
func (s *stats) resetCounters() {
	kept := s.BestChoices
	*s = stats{}
	s.BestChoices = kept
}

// Stats is the read-only, cumulative view of search statistics returned to
// callers (e.g. for printing).
type Stats struct {
	Visits       uint64
	Revisits     uint64
	Cutoffs      uint64
	EarlyCutoffs uint64
}

// CumulativeStats sums per-ply counters across every ply searched so far.
func (e *Engine) CumulativeStats() Stats {
	var sum Stats
	for i := 0; i <= e.maxSearchLevel; i++ {
		s := &e.levelStats[i]
		sum.Visits += s.Visits
		sum.Revisits += s.Revisits
		sum.Cutoffs += s.Cutoffs
		sum.EarlyCutoffs += s.EarlyCutoffs
	}
	return sum
}

// LevelStats returns a copy of the per-ply stats for the given depth, or
// the zero value if level is out of range.
func (e *Engine) LevelStats(level int) Stats {
	if level < 0 || level >= len(e.levelStats) {
		return Stats{}
	}
	s := &e.levelStats[level]
	return Stats{Visits: s.Visits, Revisits: s.Revisits, Cutoffs: s.Cutoffs, EarlyCutoffs: s.EarlyCutoffs}
}

// FormatStats renders a per-ply table similar in spirit to the reference
// driver's stderr dump.
func (e *Engine) FormatStats() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%6s %10s %6s %6s %6s %9s %9s\n", "LEVEL", "VISITS", "MEM%", "CUT%", "ECUT%", "MAXALPHA", "MINBETA")
	for level := 1; level <= e.maxSearchLevel; level++ {
		s := &e.levelStats[level]
		if s.Visits == 0 {
			continue
		}
		mem := float64(s.Revisits) * 100 / float64(s.Revisits+s.Visits)
		cut := float64(s.Cutoffs) * 100 / float64(s.Visits)
		ecut := float64(s.EarlyCutoffs) * 100 / float64(s.Visits)
		fmt.Fprintf(&b, "%6d %10d %5.0f%% %5.0f%% %5.0f%% %9d %9d\n", level, s.Visits, mem, cut, ecut, s.MaxAlpha, s.MinBeta)
	}
	return b.String()
}
