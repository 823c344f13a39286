package move

import (
	"math"

	"github.com/armanbilge/revgo/rng"
)

// Schedule selects which move runs next within a cycle. The driver treats
// every Schedule implementation identically and assumes nothing about how
// it picks beyond what it reports through this interface.
type Schedule interface {
	// NumberOfMovesPerIteration returns how many proposals a single cycle
	// should draw from this schedule.
	NumberOfMovesPerIteration() int
	// NextMove returns the move to run for this proposal. generation is
	// passed through for schedules whose policy depends on it (a
	// SequentialSchedule cycles by proposal count, not generation, but the
	// signature stays uniform across implementations).
	NextMove(generation int, src rng.Source) Move
	// Moves returns every move this schedule holds, in a schedule-defined
	// but stable order — used by the driver for auto-tuning and printing
	// the operator summary.
	Moves() []Move
}

// RandomSchedule samples a move per proposal with probability proportional
// to its weight. NumberOfMovesPerIteration rounds the sum of weights, so a
// schedule over moves summing to weight 3 runs roughly 3 proposals per
// cycle, matching the canonical RevBayes schedule semantics.
type RandomSchedule struct {
	moves       []Move
	cumWeights  []float64
	totalWeight float64
}

// NewRandomSchedule constructs a RandomSchedule over moves. moves must be
// non-empty and every move must report a positive weight.
func NewRandomSchedule(moves []Move) *RandomSchedule {
	s := &RandomSchedule{moves: append([]Move(nil), moves...)}
	s.cumWeights = make([]float64, len(moves))
	sum := 0.0
	for i, m := range moves {
		sum += m.Weight()
		s.cumWeights[i] = sum
	}
	s.totalWeight = sum

	return s
}

func (s *RandomSchedule) NumberOfMovesPerIteration() int {
	return int(math.Round(s.totalWeight))
}

func (s *RandomSchedule) NextMove(generation int, src rng.Source) Move {
	if len(s.moves) == 1 {
		return s.moves[0]
	}
	target := src.Float64() * s.totalWeight
	for i, cw := range s.cumWeights {
		if target < cw {
			return s.moves[i]
		}
	}

	return s.moves[len(s.moves)-1]
}

func (s *RandomSchedule) Moves() []Move { return append([]Move(nil), s.moves...) }

// SequentialSchedule cycles through its moves deterministically, one per
// proposal, wrapping around. Its NumberOfMovesPerIteration is simply the
// number of moves it holds, so a full cycle visits every move exactly once.
type SequentialSchedule struct {
	moves []Move
	next  int
}

// NewSequentialSchedule constructs a SequentialSchedule over moves.
func NewSequentialSchedule(moves []Move) *SequentialSchedule {
	return &SequentialSchedule{moves: append([]Move(nil), moves...)}
}

func (s *SequentialSchedule) NumberOfMovesPerIteration() int { return len(s.moves) }

func (s *SequentialSchedule) NextMove(generation int, src rng.Source) Move {
	m := s.moves[s.next%len(s.moves)]
	s.next++

	return m
}

func (s *SequentialSchedule) Moves() []Move { return append([]Move(nil), s.moves...) }
