package assignment

import (
	"fmt"
	"math"
)

// inf is larger than any reachable reduced cost.
const inf int64 = math.MaxInt64 / 4

// Hungarian is the shortest-augmenting-path (Jonker-Volgenant style)
// formulation of the Hungarian method. It runs in O(n³) time and keeps O(n)
// working state; the matrix is read through Matrix.Cost and never copied.
type Hungarian struct{}

// NewHungarian returns the default Solver.
func NewHungarian() *Hungarian { return &Hungarian{} }

// Solve implements Solver.
func (Hungarian) Solve(m Matrix) ([]Pair, error) {
	n := m.Size()
	if n < 0 {
		return nil, fmt.Errorf("%w: negative size %d", ErrInvalidMatrix, n)
	}
	if n == 0 {
		return []Pair{}, nil
	}

	// Index 0 is the virtual root column; rows and columns are 1-based.
	u := make([]int64, n+1)    // row potentials
	v := make([]int64, n+1)    // column potentials
	match := make([]int, n+1)  // match[j] = row assigned to column j
	way := make([]int, n+1)    // predecessor column on the augmenting path
	minv := make([]int64, n+1) // slack per column
	used := make([]bool, n+1)  // column is in the alternating tree

	for i := 1; i <= n; i++ {
		match[0] = i
		j0 := 0
		for j := 0; j <= n; j++ {
			minv[j] = inf
			used[j] = false
		}

		for {
			used[j0] = true
			i0 := match[j0]
			delta := inf
			j1 := -1

			for j := 1; j <= n; j++ {
				if used[j] {
					continue
				}
				c, ok := m.Cost(i0-1, j-1)
				if ok {
					if c > MaxCost || c < -MaxCost {
						return nil, fmt.Errorf("%w: cost %d at (%d,%d) exceeds bound", ErrInvalidMatrix, c, i0-1, j-1)
					}
					if cur := c - u[i0] - v[j]; cur < minv[j] {
						minv[j] = cur
						way[j] = j0
					}
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}

			// Every column outside the tree is unreachable through a
			// permitted cell: row i cannot be matched.
			if j1 < 0 || delta >= inf {
				return nil, ErrInfeasible
			}

			for j := 0; j <= n; j++ {
				if used[j] {
					u[match[j]] += delta
					v[j] -= delta
				} else if minv[j] < inf {
					minv[j] -= delta
				}
			}

			j0 = j1
			if match[j0] == 0 {
				break
			}
		}

		for j0 != 0 {
			j1 := way[j0]
			match[j0] = match[j1]
			j0 = j1
		}
	}

	pairs := make([]Pair, n)
	for j := 1; j <= n; j++ {
		row := match[j] - 1
		pairs[row] = Pair{Row: row, Col: j - 1}
	}
	return pairs, nil
}

//Personal.AI order the ending
