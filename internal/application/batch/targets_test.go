package batch

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/dockrmsd/internal/testutil"
	"github.com/turtacn/dockrmsd/pkg/errors"
)

var (
	crystal = []testutil.FixtureAtom{
		testutil.A("C.3", 0, 0, 0),
		testutil.A("O.2", 1, 0, 0),
	}
	swapped = []testutil.FixtureAtom{
		testutil.A("O.2", 1, 0, 0),
		testutil.A("C.3", 0, 0, 0),
	}
	shifted = []testutil.FixtureAtom{
		testutil.A("C.3", 0.5, 0.5, 0),
		testutil.A("O.2", 1, 0, 0),
	}
)

// benchmarkTree lays out:
//
//	good/      crystal, protein, vina1 (identical), vina2 (swapped), vina10 (shifted)
//	bad/       crystal, protein, vina1 with an extra atom
//	noprot/    crystal, vina1
//	noref/     protein, vina1
//	empty/     crystal, protein
func benchmarkTree(t *testing.T) string {
	root := t.TempDir()

	testutil.WriteMOL2(t, filepath.Join(root, "good"), "crystal.mol2", crystal...)
	testutil.WriteFile(t, filepath.Join(root, "good"), "1abc_protein.pdb", "END\n")
	testutil.WriteMOL2(t, filepath.Join(root, "good"), "vina1.mol2", crystal...)
	testutil.WriteMOL2(t, filepath.Join(root, "good"), "vina2.mol2", swapped...)
	testutil.WriteMOL2(t, filepath.Join(root, "good"), "vina10.mol2", shifted...)
	testutil.WriteMOL2(t, filepath.Join(root, "good"), "vina0.mol2", crystal...)
	testutil.WriteFile(t, filepath.Join(root, "good"), "notes.txt", "ignored\n")

	testutil.WriteMOL2(t, filepath.Join(root, "bad"), "crystal.mol2", crystal...)
	testutil.WriteFile(t, filepath.Join(root, "bad"), "p.pdb", "END\n")
	testutil.WriteMOL2(t, filepath.Join(root, "bad"), "vina1.mol2", append(append([]testutil.FixtureAtom{}, crystal...), testutil.A("N.am", 2, 0, 0))...)

	testutil.WriteMOL2(t, filepath.Join(root, "noprot"), "crystal.mol2", crystal...)
	testutil.WriteMOL2(t, filepath.Join(root, "noprot"), "vina1.mol2", crystal...)

	testutil.WriteFile(t, filepath.Join(root, "noref"), "p.pdb", "END\n")
	testutil.WriteMOL2(t, filepath.Join(root, "noref"), "vina1.mol2", crystal...)

	testutil.WriteMOL2(t, filepath.Join(root, "empty"), "crystal.mol2", crystal...)
	testutil.WriteFile(t, filepath.Join(root, "empty"), "p.pdb", "END\n")

	testutil.WriteFile(t, root, "README", "not a target\n")
	return root
}

func byID(targets []Target) map[string]Target {
	out := make(map[string]Target, len(targets))
	for _, tg := range targets {
		out[tg.ID] = tg
	}
	return out
}

func TestDiscover(t *testing.T) {
	root := benchmarkTree(t)

	targets, err := Discover(root, DefaultLayout())
	require.NoError(t, err)

	ids := make([]string, len(targets))
	for i, tg := range targets {
		ids[i] = tg.ID
	}
	assert.Equal(t, []string{"bad", "empty", "good", "noprot", "noref"}, ids)

	m := byID(targets)
	good := m["good"]
	require.NoError(t, good.Err)
	assert.Equal(t, filepath.Join(root, "good", "crystal.mol2"), good.Reference)
	assert.Equal(t, filepath.Join(root, "good", "1abc_protein.pdb"), good.Protein)
	require.Len(t, good.Poses, 3)
	assert.Equal(t, "vina1.mol2", filepath.Base(good.Poses[0]))
	assert.Equal(t, "vina2.mol2", filepath.Base(good.Poses[1]))
	assert.Equal(t, "vina10.mol2", filepath.Base(good.Poses[2]))

	for _, id := range []string{"noprot", "noref", "empty"} {
		assert.True(t, errors.IsCode(m[id].Err, errors.ErrCodeTargetLayout), id)
	}
	assert.Contains(t, m["noref"].Err.Error(), "missing reference pose")
	assert.Contains(t, m["noprot"].Err.Error(), "missing protein file")
	assert.Contains(t, m["empty"].Err.Error(), "no poses match")
	assert.NoError(t, m["bad"].Err)
}

func TestDiscover_AllowMissingProtein(t *testing.T) {
	layout := DefaultLayout()
	layout.AllowMissingProtein = true

	targets, err := Discover(benchmarkTree(t), layout)
	require.NoError(t, err)

	noprot := byID(targets)["noprot"]
	require.NoError(t, noprot.Err)
	assert.Empty(t, noprot.Protein)
	assert.Len(t, noprot.Poses, 1)
}

func TestDiscover_MissingRoot(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "absent"), DefaultLayout())
	assert.True(t, errors.IsCode(err, errors.ErrCodeTargetLayout))
}

func TestJobs(t *testing.T) {
	targets, err := Discover(benchmarkTree(t), DefaultLayout())
	require.NoError(t, err)

	jobs := Jobs(targets)
	require.Len(t, jobs, 4)
	for i, j := range jobs {
		assert.Equal(t, i, j.Index)
	}
	assert.Equal(t, "bad", jobs[0].Target)
	assert.Equal(t, "good/vina1.mol2", jobs[1].String())
	assert.Equal(t, "good/vina10.mol2", jobs[3].String())
}

func TestSplitNumber(t *testing.T) {
	cases := []struct {
		name   string
		prefix string
		n      int
	}{
		{"vina12.mol2", "vina", 12},
		{"vina.mol2", "vina", -1},
		{"7.mol2", "", 7},
	}
	for _, c := range cases {
		p, n := splitNumber(c.name)
		assert.Equal(t, c.prefix, p, c.name)
		assert.Equal(t, c.n, n, c.name)
	}
}

//Personal.AI order the ending
