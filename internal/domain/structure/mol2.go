package structure

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/turtacn/dockrmsd/pkg/errors"
)

// Tripos record headers recognised by the reader.
const (
	recordPrefix = "@<TRIPOS>"
	atomRecord   = "@<TRIPOS>ATOM"
	bondRecord   = "@<TRIPOS>BOND"
)

// minAtomFields is the smallest token count of a usable ATOM line:
// id, name, x, y, z, type.
const minAtomFields = 6

// maxLineBytes bounds a single MOL2 line.
const maxLineBytes = 1 << 20

type readOptions struct {
	strictSections bool
}

// ReadOption customises Read and ReadFile.
type ReadOption func(*readOptions)

// WithStrictSections makes a missing @<TRIPOS>ATOM header a parse error.
// Without it such input yields an empty Structure.
func WithStrictSections() ReadOption {
	return func(o *readOptions) { o.strictSections = true }
}

// WithStrict is WithStrictSections when strict is true and a no-op otherwise.
func WithStrict(strict bool) ReadOption {
	return func(o *readOptions) { o.strictSections = o.strictSections || strict }
}

// ReadFile opens path and parses it as MOL2. The file is closed on every
// return path. Open and read failures come back as RMSD_001 parse errors.
func ReadFile(path string, opts ...ReadOption) (*Structure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewParseError(path, 0, "cannot open structure file", err)
	}
	defer f.Close()
	return Read(f, path, opts...)
}

// Read parses MOL2 text from r. source is recorded on the Structure and in
// error details.
//
// Only the first molecule's atom block is read: the block opens at
// @<TRIPOS>ATOM, closes at the next @<TRIPOS> header, and scanning stops at
// @<TRIPOS>BOND. Every line in the block contributes tokens 2-4 as x, y, z
// and token 5 as the atom type. Hydrogen atoms are dropped but still consume
// a serial number.
func Read(r io.Reader, source string, opts ...ReadOption) (*Structure, error) {
	var o readOptions
	for _, opt := range opts {
		opt(&o)
	}

	s := &Structure{Source: source}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var (
		lineNo  int
		inAtoms bool
		seen    bool
		serial  int
	)
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())

		if strings.HasPrefix(line, recordPrefix) {
			switch {
			case line == bondRecord:
				return finish(s, o, seen, lineNo)
			case line == atomRecord && !seen:
				inAtoms, seen = true, true
			default:
				inAtoms = false
			}
			continue
		}
		if !inAtoms || line == "" {
			continue
		}

		serial++
		atom, err := parseAtomLine(line, source, lineNo)
		if err != nil {
			return nil, err
		}
		if atom.Element == Hydrogen {
			continue
		}
		atom.Serial = serial
		s.Atoms = append(s.Atoms, atom)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.NewParseError(source, lineNo+1, "cannot read structure file", err)
	}
	return finish(s, o, seen, lineNo)
}

func finish(s *Structure, o readOptions, seen bool, lineNo int) (*Structure, error) {
	if !seen && o.strictSections {
		return nil, errors.NewParseError(s.Source, lineNo, "missing "+atomRecord+" section", nil)
	}
	return s, nil
}

func parseAtomLine(line, source string, lineNo int) (Atom, error) {
	fields := strings.Fields(line)
	if len(fields) < minAtomFields {
		return Atom{}, errors.NewParseError(source, lineNo,
			fmt.Sprintf("atom record has %d fields, need at least %d", len(fields), minAtomFields), nil)
	}

	var xyz [3]float64
	for i := range xyz {
		v, err := strconv.ParseFloat(fields[2+i], 64)
		if err != nil {
			return Atom{}, errors.NewParseError(source, lineNo,
				fmt.Sprintf("coordinate %q is not a number", fields[2+i]), err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Atom{}, errors.NewParseError(source, lineNo,
				fmt.Sprintf("coordinate %q is not finite", fields[2+i]), nil)
		}
		xyz[i] = v
	}

	atomType := fields[5]
	element, _, _ := strings.Cut(atomType, ".")
	return Atom{
		Name:     fields[1],
		Position: r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]},
		Type:     atomType,
		Element:  element,
	}, nil
}

//Personal.AI order the ending
