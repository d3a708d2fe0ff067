package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/turtacn/dockrmsd/internal/domain/structure"
	scoringtypes "github.com/turtacn/dockrmsd/pkg/types/scoring"
)

// MappingHeader opens a correspondence listing in the layout DockRMSD prints.
const MappingHeader = "Optimal mapping (First file -> Second file, * indicates correspondence is not one-to-one):"

// Correspondence pairs one reference atom with the candidate atom the
// assignment chose for it.
type Correspondence struct {
	ReferenceIndex  int     `json:"reference_index"`
	ReferenceSerial int     `json:"reference_serial"`
	CandidateIndex  int     `json:"candidate_index"`
	CandidateSerial int     `json:"candidate_serial"`
	Element         string  `json:"element"`
	Distance        float64 `json:"distance"`
}

// Renumbered reports whether the two atoms carry different file serials.
func (c Correspondence) Renumbered() bool {
	return c.ReferenceSerial != c.CandidateSerial
}

// Result is the outcome of scoring one pose pair.
type Result struct {
	Reference string  `json:"reference"`
	Candidate string  `json:"candidate"`
	AtomCount int     `json:"atom_count"`
	RMSD      float64 `json:"rmsd"`
	// NaiveRMSD is the index-order RMSD of the same pair.
	NaiveRMSD float64 `json:"naive_rmsd"`
	// TotalCost is the optimal assignment cost in quantized units.
	TotalCost int64            `json:"total_cost"`
	Mapping   []Correspondence `json:"mapping,omitempty"`
}

// Renumbered returns how many reference atoms were matched to a candidate atom
// with a different serial.
func (r *Result) Renumbered() int {
	n := 0
	for _, c := range r.Mapping {
		if c.Renumbered() {
			n++
		}
	}
	return n
}

// FormatMapping renders the correspondence as DockRMSD does: one
// "<el><serial> -> <el><serial>" line per reference atom, with a trailing
// "*" when the serials differ.
func (r *Result) FormatMapping() string {
	var sb strings.Builder
	sb.WriteString(MappingHeader)
	sb.WriteByte('\n')
	for _, c := range r.Mapping {
		fmt.Fprintf(&sb, "%s%3d -> %s%3d ", c.Element, c.ReferenceSerial, c.Element, c.CandidateSerial)
		if c.Renumbered() {
			sb.WriteByte('*')
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Response converts r into its wire form. The mapping is included only when
// withMapping is set.
func (r *Result) Response(withMapping bool) scoringtypes.ScoreResponse {
	resp := scoringtypes.ScoreResponse{
		Reference:  r.Reference,
		Candidate:  r.Candidate,
		AtomCount:  r.AtomCount,
		RMSD:       r.RMSD,
		NaiveRMSD:  r.NaiveRMSD,
		Renumbered: r.Renumbered(),
	}
	if withMapping {
		resp.Mapping = make([]scoringtypes.MappingEntry, len(r.Mapping))
		for i, c := range r.Mapping {
			resp.Mapping[i] = scoringtypes.MappingEntry{
				ReferenceSerial: c.ReferenceSerial,
				CandidateSerial: c.CandidateSerial,
				Element:         c.Element,
				Distance:        c.Distance,
				Renumbered:      c.Renumbered(),
			}
		}
	}
	return resp
}

func buildMapping(m *CostMatrix, ref, cand *structure.Structure, rows []int) []Correspondence {
	out := make([]Correspondence, len(rows))
	for i, j := range rows {
		c, _ := m.Cost(i, j)
		ra, ca := ref.Atoms[i], cand.Atoms[j]
		out[i] = Correspondence{
			ReferenceIndex:  i,
			ReferenceSerial: ra.Serial,
			CandidateIndex:  j,
			CandidateSerial: ca.Serial,
			Element:         ra.Element,
			Distance:        math.Sqrt(Dequantize(c)),
		}
	}
	return out
}

//Personal.AI order the ending
