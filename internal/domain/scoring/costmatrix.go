// Package scoring turns a pair of poses into a symmetry-corrected RMSD. It
// builds an element-aware cost matrix, hands it to an assignment.Solver, and
// reduces the optimal correspondence to a single scalar.
package scoring

import (
	"math"

	"github.com/turtacn/dockrmsd/internal/domain/assignment"
	"github.com/turtacn/dockrmsd/internal/domain/structure"
	"github.com/turtacn/dockrmsd/pkg/errors"
)

// Scale converts squared distances in Å² to integer cost units. A cost of
// 10000 is 1 Å².
const Scale = 10000.0

// Quantize maps a squared distance to integer cost units, truncating toward
// zero.
func Quantize(sqDist float64) int64 {
	return int64(Scale * sqDist)
}

// InRange reports whether sqDist quantizes to a cost the solver accepts.
func InRange(sqDist float64) bool {
	v := Scale * sqDist
	return !math.IsNaN(v) && v >= 0 && v <= float64(assignment.MaxCost)
}

// Dequantize maps integer cost units back to Å².
func Dequantize(cost int64) float64 {
	return float64(cost) / Scale
}

// CostMatrix holds the quantized squared distance between every reference
// atom (row) and candidate atom (column). Pairs of different elements hold
// assignment.Forbidden. A CostMatrix is immutable and satisfies
// assignment.Matrix.
type CostMatrix struct {
	n         int
	cells     []int64
	reference *structure.Structure
	candidate *structure.Structure
}

var _ assignment.Matrix = (*CostMatrix)(nil)

// BuildCostMatrix builds the n×n cost matrix for ref and cand. It returns an
// RMSD_002 cardinality error when their heavy-atom counts differ and an
// RMSD_008 range error when a same-element pair is too far apart to quantize.
func BuildCostMatrix(ref, cand *structure.Structure) (*CostMatrix, error) {
	if ref.Len() != cand.Len() {
		return nil, errors.NewCardinalityError(ref.Len(), cand.Len())
	}

	n := ref.Len()
	m := &CostMatrix{n: n, cells: make([]int64, n*n), reference: ref, candidate: cand}
	for i := 0; i < n; i++ {
		ra := ref.Atoms[i]
		row := m.cells[i*n : (i+1)*n]
		for j := 0; j < n; j++ {
			ca := cand.Atoms[j]
			if ra.Element != ca.Element {
				row[j] = assignment.Forbidden
				continue
			}
			d := ra.SquaredDistance(ca)
			if !InRange(d) {
				return nil, errors.NewCoordinateRangeError(ra.Serial, ca.Serial, ra.Element, d)
			}
			row[j] = Quantize(d)
		}
	}
	return m, nil
}

// Size implements assignment.Matrix.
func (m *CostMatrix) Size() int { return m.n }

// Cost implements assignment.Matrix.
func (m *CostMatrix) Cost(i, j int) (int64, bool) {
	c := m.cells[i*m.n+j]
	return c, c != assignment.Forbidden
}

// Reference returns the structure backing the rows.
func (m *CostMatrix) Reference() *structure.Structure { return m.reference }

// Candidate returns the structure backing the columns.
func (m *CostMatrix) Candidate() *structure.Structure { return m.candidate }

//Personal.AI order the ending
