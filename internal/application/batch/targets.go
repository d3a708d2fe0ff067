// Package batch scores every docked pose of every target under a benchmark
// directory against that target's crystal pose.
package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/turtacn/dockrmsd/pkg/errors"
)

// Layout describes where the files of one target live inside its directory.
type Layout struct {
	ReferenceName       string
	PoseGlob            string
	ProteinGlob         string
	AllowMissingProtein bool
}

// DefaultLayout matches the benchmark convention: crystal.mol2, one *.pdb
// and vina1.mol2 … vinaN.mol2.
func DefaultLayout() Layout {
	return Layout{
		ReferenceName: "crystal.mol2",
		PoseGlob:      "vina[1-9]*.mol2",
		ProteinGlob:   "*.pdb",
	}
}

// Target is one subdirectory of the targets root. Err is set when the
// directory does not satisfy the Layout; such a target has no jobs.
type Target struct {
	ID        string
	Dir       string
	Reference string
	Protein   string
	Poses     []string
	Err       error
}

// Job is one (reference, candidate) pair to score.
type Job struct {
	Index     int
	Target    string
	Reference string
	Candidate string
	Protein   string
}

// Discover lists the targets under root in name order. Only an unreadable
// root is an error; per-target layout problems are recorded on Target.Err.
func Discover(root string, layout Layout) ([]Target, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeTargetLayout, "cannot read targets directory").
			WithDetail("path=" + root)
	}

	var targets []Target
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		targets = append(targets, inspect(filepath.Join(root, e.Name()), e.Name(), layout))
	}
	return targets, nil
}

func inspect(dir, id string, layout Layout) Target {
	t := Target{ID: id, Dir: dir}

	ref := filepath.Join(dir, layout.ReferenceName)
	if st, err := os.Stat(ref); err != nil || st.IsDir() {
		t.Err = layoutError(id, "missing reference pose "+layout.ReferenceName)
		return t
	}
	t.Reference = ref

	proteins, err := filepath.Glob(filepath.Join(dir, layout.ProteinGlob))
	if err != nil {
		t.Err = layoutError(id, err.Error())
		return t
	}
	switch {
	case len(proteins) > 0:
		sort.Strings(proteins)
		t.Protein = proteins[0]
	case !layout.AllowMissingProtein:
		t.Err = layoutError(id, "missing protein file "+layout.ProteinGlob)
		return t
	}

	poses, err := filepath.Glob(filepath.Join(dir, layout.PoseGlob))
	if err != nil {
		t.Err = layoutError(id, err.Error())
		return t
	}
	if len(poses) == 0 {
		t.Err = layoutError(id, "no poses match "+layout.PoseGlob)
		return t
	}
	sortPoses(poses)
	t.Poses = poses
	return t
}

func layoutError(target, msg string) error {
	return errors.New(errors.ErrCodeTargetLayout, msg).WithDetail("target=" + target)
}

// Jobs flattens targets into scoring jobs, indexed in order. Targets with a
// layout error contribute none.
func Jobs(targets []Target) []Job {
	var jobs []Job
	for _, t := range targets {
		if t.Err != nil {
			continue
		}
		for _, pose := range t.Poses {
			jobs = append(jobs, Job{
				Index:     len(jobs),
				Target:    t.ID,
				Reference: t.Reference,
				Candidate: pose,
				Protein:   t.Protein,
			})
		}
	}
	return jobs
}

// sortPoses orders vina2.mol2 before vina10.mol2.
func sortPoses(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		a, b := filepath.Base(paths[i]), filepath.Base(paths[j])
		pa, na := splitNumber(a)
		pb, nb := splitNumber(b)
		if pa != pb || na < 0 || nb < 0 || na == nb {
			return a < b
		}
		return na < nb
	})
}

// splitNumber splits "vina12.mol2" into ("vina", 12). The number is -1 when
// the stem does not end in digits.
func splitNumber(name string) (string, int) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	i := strings.LastIndexFunc(stem, func(r rune) bool { return !unicode.IsDigit(r) }) + 1
	if i == len(stem) {
		return stem, -1
	}
	n, err := strconv.Atoi(stem[i:])
	if err != nil {
		return stem, -1
	}
	return stem[:i], n
}

// String is used in log lines.
func (j Job) String() string {
	return fmt.Sprintf("%s/%s", j.Target, filepath.Base(j.Candidate))
}

//Personal.AI order the ending
