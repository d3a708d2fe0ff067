// Package structure holds the typed atomic model that every scoring stage
// consumes, and the Tripos MOL2 reader that produces it. A Structure is
// immutable once read: positions, element labels and serials never change
// after parsing.
package structure

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/spatial/r3"
)

// Hydrogen is the element label excluded from every Structure.
const Hydrogen = "H"

// ─────────────────────────────────────────────────────────────────────────────
// Atom
// ─────────────────────────────────────────────────────────────────────────────

// Atom is one heavy atom of a pose.
type Atom struct {
	// Serial is the 1-based position of the record inside the ATOM block,
	// counted before hydrogens are dropped so it matches the file.
	Serial int `json:"serial"`

	// Name is the atom name column of the record (e.g. "C12").
	Name string `json:"name"`

	// Position is the Cartesian position in Angstrom.
	Position r3.Vec `json:"position"`

	// Type is the full SYBYL atom type (e.g. "C.ar", "N.pl3", "Cl").
	Type string `json:"type"`

	// Element is Type truncated at its first '.'.
	Element string `json:"element"`
}

// SquaredDistance returns |a - b|² between the two atom positions.
func (a Atom) SquaredDistance(b Atom) float64 {
	return r3.Norm2(r3.Sub(a.Position, b.Position))
}

// Label returns the element followed by the serial, e.g. "C12". It is the
// atom identifier used in correspondence listings.
func (a Atom) Label() string {
	return a.Element + strconv.Itoa(a.Serial)
}

// ─────────────────────────────────────────────────────────────────────────────
// Structure
// ─────────────────────────────────────────────────────────────────────────────

// Structure is the ordered heavy-atom list of one pose.
type Structure struct {
	// Source names where the structure came from: a file path or an upload
	// name. It is used in error messages only.
	Source string `json:"source"`

	// Atoms are in file order with hydrogens removed.
	Atoms []Atom `json:"atoms"`
}

// Len returns the number of heavy atoms.
func (s *Structure) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Atoms)
}

// Composition returns the number of atoms per element.
func (s *Structure) Composition() map[string]int {
	out := make(map[string]int)
	if s == nil {
		return out
	}
	for _, a := range s.Atoms {
		out[a.Element]++
	}
	return out
}

// SameComposition reports whether s and other contain the same multiset of
// elements. When it is false no element-preserving bijection can exist.
func (s *Structure) SameComposition(other *Structure) bool {
	if s.Len() != other.Len() {
		return false
	}
	a, b := s.Composition(), other.Composition()
	if len(a) != len(b) {
		return false
	}
	for el, n := range a {
		if b[el] != n {
			return false
		}
	}
	return true
}

// Elements returns the distinct element labels in s, sorted.
func (s *Structure) Elements() []string {
	comp := s.Composition()
	out := make([]string, 0, len(comp))
	for el := range comp {
		out = append(out, el)
	}
	sort.Strings(out)
	return out
}

// Digest returns a hex SHA-256 over the serial, element label and exact
// coordinate bits of every atom, in order. Two structures with equal digests
// score identically against any partner and report the same mapping.
func (s *Structure) Digest() string {
	h := sha256.New()
	var buf [8]byte
	if s != nil {
		for _, a := range s.Atoms {
			binary.LittleEndian.PutUint64(buf[:], uint64(a.Serial))
			h.Write(buf[:])
			h.Write([]byte(a.Element))
			h.Write([]byte{0})
			for _, c := range [3]float64{a.Position.X, a.Position.Y, a.Position.Z} {
				binary.LittleEndian.PutUint64(buf[:], math.Float64bits(c))
				h.Write(buf[:])
			}
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

//Personal.AI order the ending
