package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/dockrmsd/internal/domain/scoring"
	"github.com/turtacn/dockrmsd/internal/infrastructure/monitoring/logging"
	scoringtypes "github.com/turtacn/dockrmsd/pkg/types/scoring"
)

type scoreOptions struct {
	mapping bool
}

// NewScoreCmd creates the score command.
func NewScoreCmd() *cobra.Command {
	opts := &scoreOptions{}

	cmd := &cobra.Command{
		Use:   "score <reference.mol2> <candidate.mol2>",
		Short: "Compute the symmetry-corrected RMSD of a pose pair",
		Long: `Score a docked pose against a reference pose.

Hydrogens are ignored. Heavy atoms are paired by element with an optimal
assignment before the RMSD is taken, so a candidate written with a different
atom order scores the same as the reordered file.

Examples:
  dockrmsd score crystal.mol2 vina1.mol2
  dockrmsd score crystal.mol2 vina1.mol2 --mapping -o json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd, args[0], args[1], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.mapping, "mapping", false, "print the atom correspondence")

	return cmd
}

func runScore(cmd *cobra.Command, referencePath, candidatePath string, opts *scoreOptions) error {
	ctx := cmd.Context()
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	deps, err := buildComponents(ctx, cliCtx, wants{cache: true})
	if err != nil {
		return err
	}
	defer deps.Close()

	var (
		res    *scoring.Result
		cached bool
	)
	if deps.cache != nil {
		ref, cand, err := deps.pipeline.ReadPair(ctx, referencePath, candidatePath)
		if err != nil {
			return err
		}
		res, cached, err = deps.cache.GetOrScore(ctx, ref, cand, func(ctx context.Context) (*scoring.Result, error) {
			return deps.pipeline.ScoreStructures(ctx, ref, cand)
		})
		if err != nil {
			return err
		}
	} else {
		res, err = deps.pipeline.Score(ctx, referencePath, candidatePath)
		if err != nil {
			return err
		}
	}

	cliCtx.Logger.Debug("pair scored",
		logging.String("reference", referencePath),
		logging.String("candidate", candidatePath),
		logging.Int("atoms", res.AtomCount),
		logging.Bool("cached", cached),
	)

	return PrintResult(cmd, newScoreOutput(res, cached, opts.mapping))
}

// scoreOutput renders as the DockRMSD result line in text mode and as the
// API payload in JSON mode.
type scoreOutput struct {
	scoringtypes.ScoreResponse
	result  *scoring.Result
	mapping bool
}

func newScoreOutput(res *scoring.Result, cached, mapping bool) *scoreOutput {
	resp := res.Response(mapping)
	resp.Cached = cached
	return &scoreOutput{ScoreResponse: resp, result: res, mapping: mapping}
}

func (o *scoreOutput) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.ScoreResponse)
}

func (o *scoreOutput) String() string {
	line := fmt.Sprintf("Calculated Docking RMSD: %f", o.RMSD)
	if !o.mapping {
		return line
	}
	return line + "\n" + strings.TrimRight(o.result.FormatMapping(), "\n")
}

func (o *scoreOutput) TableHeaders() []string {
	if o.mapping {
		return []string{"Reference", "Candidate", "Element", "Distance", "Renumbered"}
	}
	return []string{"Reference", "Candidate", "Atoms", "RMSD", "Naive RMSD", "Renumbered"}
}

func (o *scoreOutput) TableRows() [][]string {
	if o.mapping {
		rows := make([][]string, 0, len(o.Mapping))
		for _, m := range o.Mapping {
			rows = append(rows, []string{
				strconv.Itoa(m.ReferenceSerial),
				strconv.Itoa(m.CandidateSerial),
				m.Element,
				strconv.FormatFloat(m.Distance, 'f', 4, 64),
				strconv.FormatBool(m.Renumbered),
			})
		}
		return rows
	}
	return [][]string{{
		o.Reference,
		o.Candidate,
		strconv.Itoa(o.AtomCount),
		strconv.FormatFloat(o.RMSD, 'f', 6, 64),
		strconv.FormatFloat(o.NaiveRMSD, 'f', 6, 64),
		strconv.Itoa(o.ScoreResponse.Renumbered),
	}}
}

//Personal.AI order the ending
