package engine

import (
	"encoding/binary"
	"reflect"
)

// ChoiceFunc applies candidate rangestart+index to state and reports
// whether it was accepted. Games call Choice or Chance with one of these
// per decision point; the engine decides how many times, and in what
// order, to call it back.
type ChoiceFunc[S any] func(state *S, index int) bool

// ChanceProbabilities optionally weights a Chance node's candidates instead
// of averaging them uniformly. A nil map means "uniform"; a candidate missing
// from a non-nil map weighs 1. The node's value is the weighted sum divided
// by the sum of the weights used, so the weights need not sum to 1.
type ChanceProbabilities map[int]float64

// Choice lets the engine pick among the set bits of mask, in
// [rangestart, rangestart+63], applying whichever index it settles on via
// fn. It returns false only if every candidate in mask was tried and
// rejected by fn (or mask was empty to begin with).
func Choice[S any](e *Engine, state *S, rangestart int, mask ChoiceMask, fn ChoiceFunc[S]) bool {
	return choiceEx(e, state, rangestart, mask, fn, false, nil)
}

// Chance is like Choice, but scores the candidates as an expectation
// (uniform average) instead of a minimax extremum: used for moves decided
// by an external random process the game doesn't control (a die roll, a
// card draw), not by any player's choice.
func Chance[S any](e *Engine, state *S, rangestart int, mask ChoiceMask, fn ChoiceFunc[S]) bool {
	return choiceEx(e, state, rangestart, mask, fn, true, nil)
}

// ChanceWeighted is Chance with an explicit, non-uniform probability per
// candidate index (the offset from rangestart, not the absolute index).
func ChanceWeighted[S any](e *Engine, state *S, rangestart int, mask ChoiceMask, fn ChoiceFunc[S], probabilities ChanceProbabilities) bool {
	return choiceEx(e, state, rangestart, mask, fn, true, probabilities)
}

func maskBytes(mask ChoiceMask) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(mask))
	return buf[:]
}

// choiceEx is the heart of the engine: it dispatches on Mode, and, when
// searching, runs a bounded alpha-beta minimax (or chance-expectation) pass
// over mask's candidates, memoized by a per-seeking-player transposition
// table and ordered by transposition and killer-move hints.
//
// A chance node marks a transition and, outside of Search mode, resolves
// immediately to one real random draw: scoring a chance node as an
// expectation over every outcome only makes sense while exploring a
// hypothetical tree. Once play (or a random playout, or an interactive
// player's own turn) actually reaches a chance node, exactly one concrete
// outcome has to happen, so it bypasses the normal mode dispatch entirely.
func choiceEx[S any](e *Engine, state *S, rangestart int, mask ChoiceMask, fn ChoiceFunc[S], chance bool, probabilities ChanceProbabilities) bool {
	if chance {
		e.transition()
		if e.mode != Search {
			return makeValidRandomMove(e, state, rangestart, mask, fn)
		}
	}

	if e.mode == Play || e.mode == Interactive {
		// The player to move may have changed since the last SetModePlay:
		// pick Play or Interactive for whoever is to move now.
		e.SetModePlay()
	}

	switch e.mode {
	case Interactive:
		return choiceInteractive(e, state, rangestart, mask, fn)
	case Play:
		return choicePlay(e, state, rangestart, mask, fn)
	case Random:
		return choiceRandom(e, state, rangestart, mask, fn)
	case Search:
		return choiceSearch(e, state, rangestart, mask, fn, chance, probabilities)
	default:
		return false
	}
}

func choiceInteractive[S any](e *Engine, state *S, rangestart int, mask ChoiceMask, fn ChoiceFunc[S]) bool {
	settings := &e.playerSettings[e.currentPlayer]
	if settings.Interactive == nil || mask == 0 {
		return false
	}
	attempt := func(index int) bool {
		return fn(state, rangestart+index)
	}
	return settings.Interactive(e.currentPlayer, mask, attempt)
}

// makeValidRandomMove tries rndFromMask candidates in mask, rolling back
// rejects, until one is accepted or none are left.
func makeValidRandomMove[S any](e *Engine, state *S, rangestart int, mask ChoiceMask, fn ChoiceFunc[S]) bool {
	for mask != 0 {
		i := e.rndFromMask(mask)
		jtop := e.journal.Top()
		if fn(state, rangestart+i) {
			return true
		}
		e.journal.Rollback(jtop)
		mask &^= Bit(i)
	}
	return false
}

func choiceRandom[S any](e *Engine, state *S, rangestart int, mask ChoiceMask, fn ChoiceFunc[S]) bool {
	wasUnderWalkLimit := e.walkLevel < e.maxWalkLevel
	e.walkLevel++
	if mask == 0 {
		return false
	}
	if !wasUnderWalkLimit {
		return true
	}
	return makeValidRandomMove(e, state, rangestart, mask, fn)
}

// choicePlay is only ever reached for a non-chance choice: choiceEx
// resolves a top-level chance node to a real random draw before the mode
// dispatch even runs, the same as Interactive and Random do.
func choicePlay[S any](e *Engine, state *S, rangestart int, mask ChoiceMask, fn ChoiceFunc[S]) bool {
	if e.bestChoiceSeqTop == e.bestChoiceSeqNext {
		e.SetModeSearch(false)

		if e.preliminarySearchIncrement > 0 {
			target := e.maxSearchLevel
			for l := e.preliminarySearchIncrement; l < target; l += e.preliminarySearchIncrement {
				e.maxSearchLevel = l
				choiceSearch(e, state, rangestart, mask, fn, false, nil)
				e.PrintStats()
				e.SetModeSearch(true)
			}
			e.maxSearchLevel = target
		}

		if !choiceSearch(e, state, rangestart, mask, fn, false, nil) {
			e.SetModePlay()
			e.bestChoiceSeqTop, e.bestChoiceSeqNext = 0, 0
			return false
		}
		e.PrintStats()
		e.SetModePlay()
	}

	idx := e.nextChoice()
	if !fn(state, idx) {
		panic("engine: captured best-sequence move was rejected on replay")
	}
	return true
}

type bestChild struct {
	score int
	index int
}

// choiceSearch is the alpha-beta/expectation search proper. It assumes mode
// is already Search (callers that enter via Play arrange that themselves).
func choiceSearch[S any](e *Engine, state *S, rangestart int, mask ChoiceMask, fn ChoiceFunc[S], chance bool, probabilities ChanceProbabilities) bool {
	s := &e.levelStats[e.searchLevel]
	if e.beta < s.MinBeta {
		s.MinBeta = e.beta
	}
	if e.alpha > s.MaxAlpha {
		s.MaxAlpha = e.alpha
	}

	if e.searchLevel >= e.maxSearchLevel {
		if e.maxWalkLevel <= 0 {
			e.updateNodeScore()
			return true
		}
		s.Visits++
		e.walkLevel = 0
		oldMode := e.mode
		e.mode = Random
		// Re-enter choiceEx rather than calling choiceRandom directly: if
		// this horizon-crossing call is itself a chance node, it must still
		// resolve to one unconditional random draw, not the walk-level-gated
		// logic choiceRandom applies to ordinary choices during playout.
		ok := choiceEx(e, state, rangestart, mask, fn, chance, probabilities)
		e.updateNodeScore()
		e.mode = oldMode
		return ok
	}
	s.Visits++

	depthTogo := uint8(e.maxSearchLevel - e.searchLevel)
	hash1 := e.journal.Hash()
	fnID := uintptr(reflect.ValueOf(fn).Pointer())
	salt := uintptr(hash1) + uintptr(rangestart) + fnID
	hash2 := e.hasher(maskBytes(mask), salt)

	tt := e.tt[e.seekingPlayer]
	var entry *ttEntry
	var verified bool
	if e.bestChoiceSeqTop > 0 {
		entry, verified = tt.slot(hash1, hash2)
	} else {
		local := freshEntry()
		entry, verified = &local, false
	}

	if verified && entry.depth >= depthTogo {
		switch entry.bound {
		case Open, Exact, NoValidMoves:
			s.Revisits++
			e.resultScore = entry.score
			return entry.bound != NoValidMoves
		case Lower:
			if entry.score >= e.beta {
				s.Revisits++
				e.resultScore = entry.score
				return true
			}
		case Upper:
			if entry.score <= e.alpha {
				s.Revisits++
				e.resultScore = entry.score
				return true
			}
		}
	}
	if !verified {
		*entry = freshEntry()
	}
	entry.hash = hash1 ^ hash2
	entry.bound = Open
	entry.depth = depthTogo

	isMax := e.currentPlayer == e.seekingPlayer
	oldAlpha, oldBeta := e.alpha, e.beta
	nodeAlpha, nodeBeta := e.alpha, e.beta
	if chance {
		e.alpha = int(MinScore) * MaxPlayers
		e.beta = int(MaxScore) * MaxPlayers
	}

	firstMove := e.choiceSeqTransition < 0
	workingMask := mask
	cutoffMask := s.BestChoices

	var total, denom float64
	var nchoices int
	var top2 [2]bestChild
	top2[0].index, top2[1].index = -1, -1

	cutoff := false

choicePasses:
	for j := 0; j < 4 && !cutoff; j++ {
		var candidates ChoiceMask
		switch j {
		case 0:
			idx := int(entry.bestChildren[0])
			if idx >= 0 && workingMask&Bit(idx) != 0 {
				candidates = Bit(idx)
				workingMask &^= Bit(idx)
			}
		case 1:
			idx := int(entry.bestChildren[1])
			if idx >= 0 && workingMask&Bit(idx) != 0 {
				candidates = Bit(idx)
				workingMask &^= Bit(idx)
			}
		case 2:
			candidates = workingMask & cutoffMask
		case 3:
			candidates = workingMask &^ cutoffMask
		}

		for choices, index := candidates, 0; choices != 0; choices, index = choices>>1, index+1 {
			if choices&1 == 0 {
				continue
			}

			if !chance {
				e.choiceSeq[e.choiceSeqTop] = rangestart + index
				e.choiceSeqTop++
			}
			e.searchLevel++
			jtop := e.journal.Top()

			ok := fn(state, rangestart+index)
			if ok {
				if firstMove {
					e.transition()
				}
				score := e.resultScore

				if !chance {
					if isMax && score > nodeAlpha {
						nodeAlpha = score
						e.alpha = score
						e.keepBestScore(score)
					}
					if !isMax && score < nodeBeta {
						nodeBeta = score
						e.beta = score
					}
				} else {
					w := 1.0
					if probabilities != nil {
						if p, ok := probabilities[index]; ok {
							w = p
						}
					}
					total += float64(score) * w
					denom += w
				}

				switch {
				case nchoices == 0:
					top2[0] = bestChild{score, index}
				case nchoices == 1:
					top2[1] = bestChild{score, index}
				case score > top2[0].score:
					top2[1] = top2[0]
					top2[0] = bestChild{score, index}
				case score > top2[1].score:
					top2[1] = bestChild{score, index}
				}
				nchoices++
			}

			if e.journal.Top() > jtop {
				e.journal.Rollback(jtop)
			}
			e.searchLevel--
			if !chance {
				e.choiceSeqTop--
			}

			if ok && !chance && nodeBeta <= nodeAlpha && !e.fullSearch {
				entry.markBestChoice(index)
				if e.reorderSiblings {
					s.BestChoices |= Bit(index)
				}
				s.Cutoffs++
				if j == 0 && nchoices == 1 {
					s.EarlyCutoffs++
				}
				if isMax {
					e.resultScore = nodeBeta
					entry.bound = Lower
				} else {
					e.resultScore = nodeAlpha
					entry.bound = Upper
				}
				cutoff = true
				break choicePasses
			}
		}
	}

	if !cutoff {
		s.BestChoices &^= workingMask
		switch {
		case nodeAlpha > oldAlpha || nodeBeta < oldBeta:
			entry.bound = Exact
		case isMax:
			entry.bound = Upper
		default:
			entry.bound = Lower
		}
		if isMax {
			e.resultScore = nodeAlpha
		} else {
			e.resultScore = nodeBeta
		}
		if nchoices >= 3 && isMax {
			entry.markBestChoice(top2[1].index)
			entry.markBestChoice(top2[0].index)
		}
	}

	if nchoices > 0 {
		e.levelStats[e.searchLevel+1].Choices += uint64(nchoices)
		if chance {
			if denom == 0 {
				denom = float64(nchoices)
			}
			e.resultScore = int(total / denom)
			entry.bound = Exact
		}
		entry.score = e.resultScore
	} else {
		entry.depth = fullDepth
		entry.bound = NoValidMoves
	}

	e.alpha, e.beta = oldAlpha, oldBeta
	return nchoices > 0
}
