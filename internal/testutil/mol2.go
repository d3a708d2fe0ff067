package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// FixtureAtom is one ATOM record of a generated MOL2 file.
type FixtureAtom struct {
	Type    string
	X, Y, Z float64
}

// A is shorthand for a FixtureAtom literal.
func A(atomType string, x, y, z float64) FixtureAtom {
	return FixtureAtom{Type: atomType, X: x, Y: y, Z: z}
}

// MOL2 renders a minimal Tripos MOL2 document holding atoms in order,
// followed by an empty bond section.
func MOL2(name string, atoms ...FixtureAtom) string {
	var sb strings.Builder
	sb.WriteString("@<TRIPOS>MOLECULE\n")
	sb.WriteString(name + "\n")
	fmt.Fprintf(&sb, "%5d %5d %5d %5d %5d\n", len(atoms), 0, 0, 0, 0)
	sb.WriteString("SMALL\nUSER_CHARGES\n\n")
	sb.WriteString("@<TRIPOS>ATOM\n")
	for i, a := range atoms {
		element, _, _ := strings.Cut(a.Type, ".")
		fmt.Fprintf(&sb, "%7d %-4s %10.4f %10.4f %10.4f %-6s %3d %-4s %8.4f\n",
			i+1, fmt.Sprintf("%s%d", element, i+1), a.X, a.Y, a.Z, a.Type, 1, "LIG1", 0.0)
	}
	sb.WriteString("@<TRIPOS>BOND\n")
	return sb.String()
}

// WriteMOL2 writes MOL2(name, atoms...) to dir/name and returns the path.
func WriteMOL2(t testing.TB, dir, name string, atoms ...FixtureAtom) string {
	t.Helper()
	return WriteFile(t, dir, name, MOL2(strings.TrimSuffix(name, filepath.Ext(name)), atoms...))
}

// WriteFile writes content to dir/name, creating dir, and returns the path.
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

//Personal.AI order the ending
