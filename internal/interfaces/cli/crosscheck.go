package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/dockrmsd/internal/application/crosscheck"
)

type crossCheckOptions struct {
	tolerance float64
	binary    string
}

// NewCrossCheckCmd creates the crosscheck command.
func NewCrossCheckCmd() *cobra.Command {
	opts := &crossCheckOptions{}

	cmd := &cobra.Command{
		Use:   "crosscheck <reference.mol2> <candidate.mol2>",
		Short: "Compare the RMSD with the DockRMSD executable",
		Long: `Score a pose pair in process and with the DockRMSD executable configured
under reference_scorer.binary, then report whether the two values agree
within the tolerance. A disagreement exits non-zero after printing the report.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tol := -1.0
			if cmd.Flags().Changed("tolerance") {
				tol = opts.tolerance
			}
			return runCrossCheck(cmd, args[0], args[1], tol, opts.binary)
		},
	}

	cmd.Flags().Float64Var(&opts.tolerance, "tolerance", 0, "allowed |core - reference| RMSD difference (default reference_scorer.tolerance)")
	cmd.Flags().StringVar(&opts.binary, "binary", "", "DockRMSD executable (default reference_scorer.binary)")

	return cmd
}

func runCrossCheck(cmd *cobra.Command, referencePath, candidatePath string, tolerance float64, binary string) error {
	ctx := cmd.Context()
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	if binary != "" {
		cliCtx.Config.ReferenceScorer.Binary = binary
	}

	deps, err := buildComponents(ctx, cliCtx, wants{reference: true})
	if err != nil {
		return err
	}
	defer deps.Close()

	report, checkErr := deps.crossChecker(cliCtx, tolerance).Check(ctx, referencePath, candidatePath)
	if report == nil {
		return checkErr
	}
	if err := PrintResult(cmd, &crossCheckOutput{Report: report}); err != nil {
		return err
	}
	return checkErr
}

type crossCheckOutput struct {
	*crosscheck.Report
}

func (o *crossCheckOutput) verdict() string {
	switch {
	case o.Summary.ToolError != "":
		return color.YellowString("TOOL ERROR")
	case o.Summary.Agree:
		return color.GreenString("AGREE")
	default:
		return color.RedString("MISMATCH")
	}
}

func (o *crossCheckOutput) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Core RMSD:      %f\n", o.Result.RMSD)
	if o.Summary.ToolError != "" {
		fmt.Fprintf(&sb, "Reference tool: %s\n", o.Summary.ToolError)
	} else {
		fmt.Fprintf(&sb, "Reference RMSD: %f\n", o.Summary.ReferenceRMSD)
		fmt.Fprintf(&sb, "Delta:          %g (tolerance %g)\n", o.Summary.Delta, o.Summary.Tolerance)
	}
	fmt.Fprintf(&sb, "Verdict:        %s", o.verdict())
	return sb.String()
}

func (o *crossCheckOutput) TableHeaders() []string {
	return []string{"Core RMSD", "Reference RMSD", "Delta", "Tolerance", "Verdict"}
}

func (o *crossCheckOutput) TableRows() [][]string {
	ref := fmt.Sprintf("%f", o.Summary.ReferenceRMSD)
	if o.Summary.ToolError != "" {
		ref = o.Summary.ToolError
	}
	return [][]string{{
		fmt.Sprintf("%f", o.Result.RMSD),
		ref,
		fmt.Sprintf("%g", o.Summary.Delta),
		fmt.Sprintf("%g", o.Summary.Tolerance),
		o.verdict(),
	}}
}

//Personal.AI order the ending
