// Package refscorer runs the native DockRMSD executable and reads its report,
// so the assignment pipeline can be cross-validated against it.
package refscorer

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/turtacn/dockrmsd/internal/domain/scoring"
	"github.com/turtacn/dockrmsd/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/dockrmsd/pkg/errors"
)

const (
	rmsdPrefix     = "Calculated Docking RMSD:"
	mappingsPrefix = "Total # of Possible Mappings:"
)

// errorPrefixes open the lines DockRMSD prints instead of a result.
var errorPrefixes = []string{"Error", "No valid mapping", "Template and query"}

// Evaluation mirrors the report DockRMSD produces for one pair. Error is set
// when the tool declined to score the pair; RMSD is meaningless then.
type Evaluation struct {
	RMSD                  float64 `json:"rmsd"`
	OptimalMapping        string  `json:"optimal_mapping"`
	TotalPossibleMappings float64 `json:"total_of_possible_mappings"`
	Error                 string  `json:"error"`
}

// Failed reports whether the tool returned an error line.
func (e *Evaluation) Failed() bool { return e.Error != "" }

// Evaluator scores a pose pair with an independent implementation.
type Evaluator interface {
	Evaluate(ctx context.Context, referencePath, candidatePath string) (*Evaluation, error)
}

// Config locates the executable.
type Config struct {
	Binary  string
	Timeout time.Duration
	// Args are placed before the two structure paths.
	Args []string
}

// ExecEvaluator runs `<binary> [args...] <reference> <candidate>` and parses
// stdout.
type ExecEvaluator struct {
	cfg    Config
	logger logging.Logger
}

var _ Evaluator = (*ExecEvaluator)(nil)

// NewExecEvaluator validates cfg and returns an evaluator for it.
func NewExecEvaluator(cfg Config, log logging.Logger) (*ExecEvaluator, error) {
	if cfg.Binary == "" {
		return nil, errors.InvalidParam("reference scorer binary is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Minute
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ExecEvaluator{cfg: cfg, logger: log.Named("refscorer")}, nil
}

// Evaluate runs the tool once. A tool-reported error comes back in
// Evaluation.Error; a Go error means the tool could not be run or read.
func (e *ExecEvaluator) Evaluate(ctx context.Context, referencePath, candidatePath string) (*Evaluation, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	args := append(append([]string{}, e.cfg.Args...), referencePath, candidatePath)
	cmd := exec.CommandContext(ctx, e.cfg.Binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	if ctxErr := ctx.Err(); ctxErr != nil {
		code := errors.ErrCodeReferenceScorer
		msg := "reference scorer timed out"
		if stderrors.Is(ctxErr, context.Canceled) {
			code, msg = errors.ErrCodeCancelled, "reference scorer cancelled"
		}
		return nil, errors.Wrap(ctxErr, code, msg).
			WithDetail(fmt.Sprintf("binary=%s timeout=%s", e.cfg.Binary, e.cfg.Timeout))
	}

	eval, parseErr := Parse(stdout.Bytes())
	if runErr != nil {
		var exitErr *exec.ExitError
		if !stderrors.As(runErr, &exitErr) {
			return nil, errors.Wrap(runErr, errors.ErrCodeReferenceScorer, "failed to launch reference scorer").
				WithDetail("binary=" + e.cfg.Binary)
		}
		// A non-zero exit that still printed an error line is a verdict.
		if parseErr != nil || !eval.Failed() {
			return nil, errors.Wrap(runErr, errors.ErrCodeReferenceScorer, "reference scorer exited abnormally").
				WithDetail(strings.TrimSpace(stderr.String()))
		}
	}
	if parseErr != nil {
		return nil, parseErr
	}

	e.logger.Debug("reference scorer finished",
		logging.String("reference", referencePath),
		logging.String("candidate", candidatePath),
		logging.Duration("elapsed", elapsed),
		logging.Float64("rmsd", eval.RMSD),
		logging.String("tool_error", eval.Error),
	)
	return eval, nil
}

// Parse reads a DockRMSD report. It accepts the JSON form of the result
// struct or the plain-text form the command-line tool prints.
func Parse(out []byte) (*Evaluation, error) {
	trimmed := bytes.TrimSpace(out)
	if len(trimmed) == 0 {
		return nil, errors.New(errors.ErrCodeReferenceScorer, "reference scorer produced no output")
	}
	if trimmed[0] == '{' {
		var eval Evaluation
		if err := json.Unmarshal(trimmed, &eval); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeReferenceScorer, "malformed reference scorer json")
		}
		eval.Error = strings.TrimSpace(eval.Error)
		return &eval, nil
	}
	return parseText(trimmed)
}

func parseText(out []byte) (*Evaluation, error) {
	var (
		eval       Evaluation
		sawRMSD    bool
		inMapping  bool
		mapping    strings.Builder
		lineNumber int
	)

	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		lineNumber++
		line := strings.TrimRight(sc.Text(), "\r")
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, rmsdPrefix):
			inMapping = false
			v, err := parseValue(trimmed, rmsdPrefix)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeReferenceScorer, "malformed rmsd line").
					WithDetail(fmt.Sprintf("line %d: %q", lineNumber, trimmed))
			}
			eval.RMSD, sawRMSD = v, true
		case strings.HasPrefix(trimmed, mappingsPrefix):
			inMapping = false
			v, err := parseValue(trimmed, mappingsPrefix)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeReferenceScorer, "malformed mapping count line").
					WithDetail(fmt.Sprintf("line %d: %q", lineNumber, trimmed))
			}
			eval.TotalPossibleMappings = v
		case trimmed == scoring.MappingHeader:
			inMapping = true
			mapping.WriteString(trimmed)
			mapping.WriteByte('\n')
		case isErrorLine(trimmed):
			inMapping = false
			if eval.Error == "" {
				eval.Error = trimmed
			}
		case inMapping && trimmed != "":
			mapping.WriteString(line)
			mapping.WriteByte('\n')
		case trimmed == "":
			inMapping = false
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeReferenceScorer, "failed to read reference scorer output")
	}
	if !sawRMSD && eval.Error == "" {
		return nil, errors.New(errors.ErrCodeReferenceScorer, "reference scorer output has no rmsd line")
	}
	eval.OptimalMapping = mapping.String()
	return &eval, nil
}

func parseValue(line, prefix string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(line, prefix)), 64)
}

func isErrorLine(line string) bool {
	for _, p := range errorPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

//Personal.AI order the ending
