package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/dockrmsd/internal/application/batch"
	"github.com/turtacn/dockrmsd/internal/infrastructure/monitoring/logging"
	httpapi "github.com/turtacn/dockrmsd/internal/interfaces/http"
	scoringtypes "github.com/turtacn/dockrmsd/pkg/types/scoring"
)

type batchOptions struct {
	output      string
	format      string
	concurrency int
	itemTimeout time.Duration
	upload      bool
	crossCheck  bool
}

// NewBatchCmd creates the batch command.
func NewBatchCmd() *cobra.Command {
	opts := &batchOptions{}

	cmd := &cobra.Command{
		Use:   "batch <targets-dir>",
		Short: "Score every pose of every target directory",
		Long: `Walk a directory holding one subdirectory per target. Each target must
contain the reference ligand (crystal.mol2), a protein (*.pdb) and the docked
poses (vina1.mol2 ... vinaN.mol2); every pose is scored against the reference.

Without --out or --upload the report is written to stdout. Failed pairs are
report records and do not fail the run.

Examples:
  dockrmsd batch ./targets
  dockrmsd batch ./targets --out results.csv --format csv --concurrency 8
  dockrmsd batch ./targets --out results.jsonl --upload --crosscheck`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.output, "out", "", "report file path")
	cmd.Flags().StringVar(&opts.format, "format", "", "report format: jsonl, csv (default batch.output_format)")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "number of workers (default batch.concurrency)")
	cmd.Flags().DurationVar(&opts.itemTimeout, "item-timeout", 0, "per-pair time limit (default batch.item_timeout)")
	cmd.Flags().BoolVar(&opts.upload, "upload", false, "upload the report to object storage")
	cmd.Flags().BoolVar(&opts.crossCheck, "crosscheck", false, "compare every result with the reference scorer (default batch.cross_check)")

	return cmd
}

func runBatch(cmd *cobra.Command, root string, opts *batchOptions) error {
	ctx := cmd.Context()
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	cfg := cliCtx.Config

	formatName := cfg.Batch.OutputFormat
	if opts.format != "" {
		formatName = opts.format
	}
	format, err := batch.ParseFormat(formatName)
	if err != nil {
		return err
	}
	concurrency := cfg.Batch.Concurrency
	if opts.concurrency > 0 {
		concurrency = opts.concurrency
	}
	itemTimeout := cfg.Batch.ItemTimeout
	if opts.itemTimeout > 0 {
		itemTimeout = opts.itemTimeout
	}
	crossCheck := cfg.Batch.CrossCheck
	if cmd.Flags().Changed("crosscheck") {
		crossCheck = opts.crossCheck
	}

	deps, err := buildComponents(ctx, cliCtx, wants{cache: true, storage: opts.upload, reference: crossCheck})
	if err != nil {
		return err
	}
	defer deps.Close()

	runnerOpts := []batch.RunnerOption{
		batch.WithConcurrency(concurrency),
		batch.WithItemTimeout(itemTimeout),
	}
	if deps.cache != nil {
		runnerOpts = append(runnerOpts, batch.WithCache(deps.cache))
	}
	if crossCheck {
		runnerOpts = append(runnerOpts, batch.WithCrossChecker(deps.crossChecker(cliCtx, -1)))
	}
	if deps.metrics != nil {
		runnerOpts = append(runnerOpts, batch.WithMetrics(deps.metrics))
	}
	runner := batch.NewRunner(deps.pipeline, cliCtx.Logger, runnerOpts...)

	svcOpts := []batch.ServiceOption{
		batch.WithLayout(batch.Layout{
			ReferenceName:       cfg.Batch.ReferenceName,
			PoseGlob:            cfg.Batch.PoseGlob,
			ProteinGlob:         cfg.Batch.ProteinGlob,
			AllowMissingProtein: cfg.Batch.AllowMissingProtein,
		}),
	}
	if deps.uploader != nil {
		var rec batch.UploadRecorder
		if deps.metrics != nil {
			rec = deps.metrics
		}
		svcOpts = append(svcOpts, batch.WithUploader(deps.uploader, rec))
	}
	svc := batch.NewService(runner, cliCtx.Logger, svcOpts...)

	if deps.metrics != nil && cfg.Metrics.Addr != "" {
		stop := serveMetrics(cliCtx, deps)
		defer stop()
	}

	streaming := opts.output == "" && !opts.upload
	req := batch.Request{
		Root:   root,
		Format: format,
		Output: opts.output,
		Upload: opts.upload,
	}
	if streaming {
		req.Stdout = cmd.OutOrStdout()
	}

	run, err := svc.Execute(ctx, req)
	if run != nil {
		s := run.Summary
		cliCtx.Logger.Info("batch run finished",
			logging.String("run_id", s.RunID),
			logging.Int("targets", s.Targets),
			logging.Int("jobs", s.Jobs),
			logging.Int("succeeded", s.Succeeded),
			logging.Int("failed", s.Failed),
			logging.Int("timed_out", s.TimedOut),
			logging.Int("cancelled", s.Cancelled),
		)
	}
	if err != nil {
		return err
	}
	if streaming {
		return nil
	}
	return PrintResult(cmd, &batchSummaryOutput{BatchSummary: run.Summary})
}

// serveMetrics exposes the scoring metrics on metrics.addr until the returned
// func is called.
func serveMetrics(cliCtx *CLIContext, deps *components) func() {
	srv := httpapi.NewServer(httpapi.ServerConfig{
		Addr:            cliCtx.Config.Metrics.Addr,
		ShutdownTimeout: 5 * time.Second,
	}, deps.metrics.Handler(), cliCtx.Logger)

	go func() {
		if err := srv.Start(); err != nil {
			cliCtx.Logger.Warn("metrics endpoint unavailable", logging.Err(err))
		}
	}()
	return func() {
		_ = srv.Stop(context.Background())
	}
}

type batchSummaryOutput struct {
	scoringtypes.BatchSummary
}

func (o *batchSummaryOutput) String() string {
	s := fmt.Sprintf("Run %s: %d targets, %d jobs, %d succeeded, %d failed, %d timed out, %d cancelled",
		o.RunID, o.Targets, o.Jobs, o.Succeeded, o.Failed, o.TimedOut, o.Cancelled)
	if o.Output != "" {
		s += "\nReport: " + o.Output
	}
	if o.ObjectKey != "" {
		s += "\nUploaded: " + o.ObjectKey
	}
	return s
}

func (o *batchSummaryOutput) TableHeaders() []string {
	return []string{"Run", "Targets", "Jobs", "Succeeded", "Failed", "Timed Out", "Cancelled"}
}

func (o *batchSummaryOutput) TableRows() [][]string {
	return [][]string{{
		o.RunID,
		strconv.Itoa(o.Targets),
		strconv.Itoa(o.Jobs),
		strconv.Itoa(o.Succeeded),
		strconv.Itoa(o.Failed),
		strconv.Itoa(o.TimedOut),
		strconv.Itoa(o.Cancelled),
	}}
}

//Personal.AI order the ending
