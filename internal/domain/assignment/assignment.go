// Package assignment solves the square minimum-cost assignment problem with
// forbidden cells. The scoring pipeline depends only on the Solver interface;
// NewHungarian returns the default O(n³) implementation.
package assignment

import (
	"errors"
	"fmt"
	"math"
)

// Forbidden marks a cell that must never appear in a solution.
const Forbidden int64 = math.MinInt64

// MaxCost bounds the magnitude of a permitted cell so that potentials and
// path sums cannot overflow int64.
const MaxCost int64 = 1 << 53

var (
	// ErrInfeasible is returned when every perfect matching uses at least one
	// forbidden cell.
	ErrInfeasible = errors.New("assignment: no perfect matching avoids forbidden cells")

	// ErrInvalidMatrix is returned for malformed input: negative size, ragged
	// rows, or a permitted cost beyond MaxCost.
	ErrInvalidMatrix = errors.New("assignment: invalid cost matrix")
)

// Matrix is a read-only square cost matrix.
type Matrix interface {
	// Size returns n for an n×n matrix.
	Size() int
	// Cost returns the cost of pairing row i with column j, and false when
	// the cell is forbidden.
	Cost(i, j int) (int64, bool)
}

// Pair assigns Row to Col.
type Pair struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Solver computes a minimum-total-cost bijection between rows and columns
// that uses no forbidden cell. Pairs are returned sorted by Row.
type Solver interface {
	Solve(m Matrix) ([]Pair, error)
}

// SolverFunc adapts a function to the Solver interface.
type SolverFunc func(m Matrix) ([]Pair, error)

// Solve calls f(m).
func (f SolverFunc) Solve(m Matrix) ([]Pair, error) { return f(m) }

// TotalCost sums the cells selected by pairs. It fails when a pair is out of
// range or selects a forbidden cell.
func TotalCost(m Matrix, pairs []Pair) (int64, error) {
	n := m.Size()
	var sum int64
	for _, p := range pairs {
		if p.Row < 0 || p.Row >= n || p.Col < 0 || p.Col >= n {
			return 0, fmt.Errorf("%w: pair (%d,%d) outside %dx%d", ErrInvalidMatrix, p.Row, p.Col, n, n)
		}
		c, ok := m.Cost(p.Row, p.Col)
		if !ok {
			return 0, fmt.Errorf("%w: pair (%d,%d) is forbidden", ErrInfeasible, p.Row, p.Col)
		}
		sum += c
	}
	return sum, nil
}

// Dense is a row-major Matrix. A cell holding Forbidden is not permitted.
type Dense struct {
	n     int
	cells []int64
}

// NewDense builds a Dense matrix from square rows. Rows are copied.
func NewDense(rows [][]int64) (*Dense, error) {
	n := len(rows)
	d := &Dense{n: n, cells: make([]int64, 0, n*n)}
	for i, r := range rows {
		if len(r) != n {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidMatrix, i, len(r), n)
		}
		d.cells = append(d.cells, r...)
	}
	return d, nil
}

// Size implements Matrix.
func (d *Dense) Size() int { return d.n }

// Cost implements Matrix.
func (d *Dense) Cost(i, j int) (int64, bool) {
	c := d.cells[i*d.n+j]
	return c, c != Forbidden
}

//Personal.AI order the ending
