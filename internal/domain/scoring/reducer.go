package scoring

import (
	"fmt"
	"math"

	"github.com/turtacn/dockrmsd/internal/domain/assignment"
	"github.com/turtacn/dockrmsd/pkg/errors"
)

// Reduce converts an assignment over m into an RMSD in Å:
//
//	sqrt( Σ_i (cost[i][σ(i)] / Scale) / n )
//
// It returns RMSD_004 when m is empty, and an internal error when pairs is
// not a full assignment over permitted cells.
func Reduce(m *CostMatrix, pairs []assignment.Pair) (float64, error) {
	n := m.Size()
	if n == 0 {
		return 0, errors.NewEmptyStructureError()
	}
	if len(pairs) != n {
		return 0, errors.Internal("assignment does not cover every atom").
			WithDetail(fmt.Sprintf("pairs=%d atoms=%d", len(pairs), n))
	}

	var sum float64
	for _, p := range pairs {
		if p.Row < 0 || p.Row >= n || p.Col < 0 || p.Col >= n {
			return 0, errors.Internal("assignment pair out of range").
				WithDetail(fmt.Sprintf("row=%d col=%d n=%d", p.Row, p.Col, n))
		}
		c, ok := m.Cost(p.Row, p.Col)
		if !ok {
			return 0, errors.Internal("assignment selected a cross-element pair").
				WithDetail(fmt.Sprintf("row=%d col=%d", p.Row, p.Col))
		}
		sum += Dequantize(c) / float64(n)
	}
	return math.Sqrt(sum), nil
}

// NaiveRMSD is the index-order RMSD between the rows and columns of m,
// computed from exact coordinates with no correspondence search. It is
// reported alongside the assignment RMSD for comparison and is NaN for an
// empty matrix.
func NaiveRMSD(m *CostMatrix) float64 {
	n := m.Size()
	if n == 0 {
		return math.NaN()
	}
	ref, cand := m.Reference().Atoms, m.Candidate().Atoms
	var sum float64
	for i := 0; i < n; i++ {
		sum += ref[i].SquaredDistance(cand[i])
	}
	return math.Sqrt(sum / float64(n))
}

//Personal.AI order the ending
