package lut

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ParseCube reads an Adobe .cube 3D LUT description.
//
// The format is line oriented: a LUT_3D_SIZE directive, optional
// TITLE/DOMAIN_MIN/DOMAIN_MAX/# lines, and one "R G B" float triple
// per data line in canonical order (red fastest, then green, then
// blue). Real-world files carry stray annotations, so malformed data
// lines are dropped individually rather than failing the parse; the
// final length check in NewLattice still rejects files whose
// surviving triples cannot form the declared cube.
func ParseCube(r io.Reader) (*Lattice, error) {
	var (
		size  int
		title string
		table []float32
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			continue
		case strings.HasPrefix(line, "TITLE"):
			title = parseTitle(strings.TrimSpace(strings.TrimPrefix(line, "TITLE")))
		case strings.HasPrefix(line, "DOMAIN_"):
			continue
		case strings.HasPrefix(line, "LUT_3D_SIZE"):
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "LUT_3D_SIZE")))
			if err == nil {
				size = n
			}
		default:
			if rgb, ok := parseTriple(line); ok {
				table = append(table, rgb[0], rgb[1], rgb[2])
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("lut: reading cube data: %w", err)
	}
	if size == 0 {
		return nil, ErrNoSizeDirective
	}
	if len(table) == 0 {
		return nil, ErrEmptyLattice
	}

	lat, err := NewLattice(size, table)
	if err != nil {
		return nil, err
	}
	lat.Title = title
	return lat, nil
}

// parseTitle removes the quoting from a TITLE value. Only a properly
// quoted string loses its quotes; anything else, including a bare
// title that merely ends in a quote character, is kept verbatim.
func parseTitle(raw string) string {
	if unquoted, err := strconv.Unquote(raw); err == nil {
		return unquoted
	}
	return raw
}

// parseTriple extracts the first three float tokens of a data line.
// Extra tokens are ignored; any malformed token skips the whole line.
func parseTriple(line string) ([3]float32, bool) {
	var rgb [3]float32
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return rgb, false
	}
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return rgb, false
		}
		rgb[i] = float32(v)
	}
	return rgb, true
}

// ParseCubeFile parses the .cube file at path. I/O failures surface
// through the same error path as malformed content; the file handle
// is released on every exit path.
func ParseCubeFile(path string) (*Lattice, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lut: open %s: %w", path, err)
	}
	defer f.Close()

	lat, err := ParseCube(f)
	if err != nil {
		return nil, fmt.Errorf("lut: parse %s: %w", path, err)
	}
	return lat, nil
}

// EncodeCube writes the lattice as .cube text in canonical order with
// a unit domain.
func EncodeCube(w io.Writer, lat *Lattice) error {
	bw := bufio.NewWriter(w)
	if lat.Title != "" {
		fmt.Fprintf(bw, "TITLE %q\n", lat.Title)
	}
	fmt.Fprintf(bw, "LUT_3D_SIZE %d\n", lat.Size)
	fmt.Fprintln(bw, "DOMAIN_MIN 0.0 0.0 0.0")
	fmt.Fprintln(bw, "DOMAIN_MAX 1.0 1.0 1.0")
	for i := 0; i < len(lat.Table); i += 3 {
		fmt.Fprintf(bw, "%.6f %.6f %.6f\n", lat.Table[i], lat.Table[i+1], lat.Table[i+2])
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("lut: writing cube data: %w", err)
	}
	return nil
}
