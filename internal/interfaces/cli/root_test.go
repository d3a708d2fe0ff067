package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/dockrmsd/internal/domain/scoring"
	"github.com/turtacn/dockrmsd/internal/testutil"
	"github.com/turtacn/dockrmsd/pkg/errors"
	scoringtypes "github.com/turtacn/dockrmsd/pkg/types/scoring"
)

type cliResult struct {
	stdout string
	stderr string
	err    error
}

// run executes the CLI with a throwaway config so the host's config files
// are never picked up.
func run(t *testing.T, args ...string) cliResult {
	t.Helper()
	cfg := testutil.WriteFile(t, t.TempDir(), "dockrmsd.yaml", "log:\n  level: error\n")

	var stdout, stderr bytes.Buffer
	err := Execute(context.Background(), append([]string{"--config", cfg}, args...), &stdout, &stderr)
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// swappedPair writes a two-atom reference and the same atoms in reverse
// order.
func swappedPair(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	ref := testutil.WriteMOL2(t, dir, "crystal.mol2", testutil.A("C.3", 0, 0, 0), testutil.A("O.2", 1.2, 0, 0))
	cand := testutil.WriteMOL2(t, dir, "vina1.mol2", testutil.A("O.2", 1.2, 0, 0), testutil.A("C.3", 0, 0, 0))
	return ref, cand
}

func fakeTool(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	p := filepath.Join(t.TempDir(), "DockRMSD")
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n"+script), 0o755))
	return p
}

func TestNewRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "dockrmsd", cmd.Use)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, want := range []string{"score", "crosscheck", "batch", "serve", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestExecute_InvalidOutputFormat(t *testing.T) {
	res := run(t, "-o", "yaml", "version")
	require.Error(t, res.err)
	assert.Contains(t, res.stderr, `Error: unknown output format "yaml"`)
}

func TestExecute_InvalidLogLevel(t *testing.T) {
	res := run(t, "--log-level", "loud", "version")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "logger initialization failed")
}

func TestVersion_JSON(t *testing.T) {
	res := run(t, "-o", "json", "version")
	require.NoError(t, res.err)

	var v versionInfo
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &v))
	assert.Equal(t, Version, v.Version)
	assert.Equal(t, runtime.Version(), v.GoVersion)
}

func TestScore_Text(t *testing.T) {
	ref, cand := swappedPair(t)

	res := run(t, "score", ref, cand)
	require.NoError(t, res.err, res.stderr)
	assert.Equal(t, "Calculated Docking RMSD: 0.000000\n", res.stdout)
}

func TestScore_Mapping(t *testing.T) {
	ref, cand := swappedPair(t)

	res := run(t, "score", ref, cand, "--mapping")
	require.NoError(t, res.err, res.stderr)

	lines := strings.Split(strings.TrimRight(res.stdout, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Calculated Docking RMSD: 0.000000", lines[0])
	assert.Equal(t, scoring.MappingHeader, lines[1])
	assert.True(t, strings.HasSuffix(lines[2], "*"), "C1 moved to serial 2: %q", lines[2])
	assert.True(t, strings.HasSuffix(lines[3], "*"), "O2 moved to serial 1: %q", lines[3])
}

func TestScore_JSON(t *testing.T) {
	ref, cand := swappedPair(t)

	res := run(t, "-o", "json", "score", ref, cand, "--mapping")
	require.NoError(t, res.err, res.stderr)

	var resp scoringtypes.ScoreResponse
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &resp))
	assert.Equal(t, 2, resp.AtomCount)
	assert.Equal(t, 0.0, resp.RMSD)
	assert.Equal(t, 2, resp.Renumbered)
	assert.Len(t, resp.Mapping, 2)
	assert.False(t, resp.Cached)
}

func TestScore_Table(t *testing.T) {
	ref, cand := swappedPair(t)

	res := run(t, "-o", "table", "score", ref, cand)
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, strings.ToUpper(res.stdout), "NAIVE RMSD")
	assert.Contains(t, res.stdout, "0.000000")
}

func TestScore_CardinalityError(t *testing.T) {
	dir := t.TempDir()
	ref := testutil.WriteMOL2(t, dir, "ref.mol2", testutil.A("C.3", 0, 0, 0), testutil.A("O.2", 1.2, 0, 0))
	cand := testutil.WriteMOL2(t, dir, "cand.mol2", testutil.A("C.3", 0, 0, 0))

	res := run(t, "score", ref, cand)
	require.Error(t, res.err)
	assert.Equal(t, errors.ErrCodeCardinality, errors.GetCode(res.err))
	assert.True(t, strings.HasPrefix(res.stderr, "Error: "), res.stderr)
	assert.Empty(t, res.stdout)
}

func TestScore_ArgCount(t *testing.T) {
	res := run(t, "score", "only-one.mol2")
	require.Error(t, res.err)
	assert.Contains(t, res.stderr, "accepts 2 arg(s)")
}

func TestCrossCheck_NoBinary(t *testing.T) {
	ref, cand := swappedPair(t)

	res := run(t, "crosscheck", ref, cand)
	require.Error(t, res.err)
	assert.Contains(t, res.stderr, "reference_scorer.binary is not configured")
}

func TestCrossCheck_Agree(t *testing.T) {
	ref, cand := swappedPair(t)
	tool := fakeTool(t, `echo '{"rmsd": 0.0, "total_of_possible_mappings": 2}'`)

	res := run(t, "--no-color", "crosscheck", ref, cand, "--binary", tool)
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "Reference RMSD: 0.000000")
	assert.Contains(t, res.stdout, "AGREE")
}

func TestCrossCheck_Mismatch(t *testing.T) {
	ref, cand := swappedPair(t)
	tool := fakeTool(t, `echo '{"rmsd": 1.5}'`)

	res := run(t, "--no-color", "crosscheck", ref, cand, "--binary", tool, "--tolerance", "0.01")
	require.Error(t, res.err)
	assert.Equal(t, errors.ErrCodeCrossCheckMismatch, errors.GetCode(res.err))
	assert.Contains(t, res.stdout, "MISMATCH", "the report is printed before failing")
	assert.Contains(t, res.stdout, "tolerance 0.01")
}

func TestCrossCheck_ToolError(t *testing.T) {
	ref, cand := swappedPair(t)
	tool := fakeTool(t, `echo 'Error: the two molecules have different numbers of heavy atoms'`)

	res := run(t, "--no-color", "crosscheck", ref, cand, "--binary", tool)
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "TOOL ERROR")
}

// targetsDir builds one complete target with two poses and one target
// without its reference.
func targetsDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	good := filepath.Join(root, "1abc")
	testutil.WriteMOL2(t, good, "crystal.mol2", testutil.A("C.3", 0, 0, 0), testutil.A("O.2", 1.2, 0, 0))
	testutil.WriteFile(t, good, "1abc_protein.pdb", "END\n")
	testutil.WriteMOL2(t, good, "vina1.mol2", testutil.A("O.2", 1.2, 0, 0), testutil.A("C.3", 0, 0, 0))
	testutil.WriteMOL2(t, good, "vina2.mol2", testutil.A("C.3", 0, 0, 1), testutil.A("O.2", 1.2, 0, 1))

	bad := filepath.Join(root, "2xyz")
	testutil.WriteFile(t, bad, "2xyz_protein.pdb", "END\n")
	testutil.WriteMOL2(t, bad, "vina1.mol2", testutil.A("C.3", 0, 0, 0))
	return root
}

func TestBatch_Stdout(t *testing.T) {
	root := targetsDir(t)

	res := run(t, "batch", root, "--concurrency", "2")
	require.NoError(t, res.err, res.stderr)

	var records []scoringtypes.BatchRecord
	sc := bufio.NewScanner(strings.NewReader(res.stdout))
	for sc.Scan() {
		var rec scoringtypes.BatchRecord
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec), sc.Text())
		records = append(records, rec)
	}
	require.Len(t, records, 3)

	assert.Equal(t, "2xyz", records[0].Target)
	assert.Equal(t, scoringtypes.StatusFailed, records[0].Status)
	assert.Equal(t, string(errors.ErrCodeTargetLayout), records[0].ErrorCode)

	assert.Equal(t, scoringtypes.StatusOK, records[1].Status)
	assert.Equal(t, "vina1.mol2", filepath.Base(records[1].Candidate))
	require.NotNil(t, records[1].RMSD)
	assert.Equal(t, 0.0, *records[1].RMSD)

	assert.Equal(t, "vina2.mol2", filepath.Base(records[2].Candidate))
	require.NotNil(t, records[2].RMSD)
	assert.InDelta(t, 1.0, *records[2].RMSD, 1e-3)
}

func TestBatch_CSVFile(t *testing.T) {
	root := targetsDir(t)
	out := filepath.Join(t.TempDir(), "report.csv")

	res := run(t, "batch", root, "--out", out, "--format", "csv")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stdout, "2 succeeded")
	assert.Contains(t, res.stdout, "Report: "+out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, strings.Join(scoringtypes.CSVHeader(), ","), lines[0])
}

func TestBatch_UnknownFormat(t *testing.T) {
	res := run(t, "batch", t.TempDir(), "--format", "parquet")
	require.Error(t, res.err)
	assert.Equal(t, errors.ErrCodeBadRequest, errors.GetCode(res.err))
}

func TestBatch_UploadWithoutStorage(t *testing.T) {
	res := run(t, "batch", targetsDir(t), "--upload")
	require.Error(t, res.err)
	assert.Contains(t, res.stderr, "storage is not configured")
}

//Personal.AI order the ending
