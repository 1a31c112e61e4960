package heightfield

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// Heightfield file format errors.
var (
	ErrInvalidMagic       = errors.New("invalid heightfield magic: expected 'FHGT'")
	ErrUnsupportedVersion = errors.New("unsupported heightfield version")
	ErrTruncatedData      = errors.New("truncated heightfield data")
)

const magic = "FHGT"

// headerSize is magic + version + iterations + roughness.
const headerSize = 4 + 2 + 4 + 8

// Version represents the heightfield file version.
type Version struct {
	Major uint8
	Minor uint8
}

// String returns the version as "Major.Minor".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// CurrentVersion is written by Encode.
var CurrentVersion = Version{Major: 1, Minor: 0}

// Encode writes h in the .hfd binary format:
//
//	"FHGT" | major u8 | minor u8 | iterations u32 | roughness f64 | size² × f64
//
// All numbers are little-endian; cells follow the row-major layout.
func Encode(w io.Writer, h *Heightfield) error {
	bw := bufio.NewWriter(w)

	bw.WriteString(magic)
	bw.WriteByte(CurrentVersion.Major)
	bw.WriteByte(CurrentVersion.Minor)
	if err := binary.Write(bw, binary.LittleEndian, uint32(h.iterations)); err != nil {
		return fmt.Errorf("writing iterations: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, h.roughness); err != nil {
		return fmt.Errorf("writing roughness: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, h.cells); err != nil {
		return fmt.Errorf("writing cells: %w", err)
	}

	return bw.Flush()
}

// Parse decodes a heightfield from raw bytes. The result is frozen.
func Parse(data []byte) (*Heightfield, error) {
	if len(data) < headerSize {
		return nil, ErrTruncatedData
	}

	if string(data[0:4]) != magic {
		return nil, ErrInvalidMagic
	}

	version := Version{Major: data[4], Minor: data[5]}
	if version.Major != CurrentVersion.Major {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedVersion, version)
	}

	r := bytes.NewReader(data[6:])

	var iterations uint32
	var roughness float64
	if err := binary.Read(r, binary.LittleEndian, &iterations); err != nil {
		return nil, fmt.Errorf("%w: reading iterations", ErrTruncatedData)
	}
	if err := binary.Read(r, binary.LittleEndian, &roughness); err != nil {
		return nil, fmt.Errorf("%w: reading roughness", ErrTruncatedData)
	}

	if iterations > MaxIterations {
		return nil, fmt.Errorf("%w: iterations %d exceeds %d", ErrInvalidArgument, iterations, MaxIterations)
	}

	// The body must hold every cell before the grid is allocated.
	size := SizeFor(int(iterations))
	if cells := size * size; r.Len() < cells*8 {
		return nil, fmt.Errorf("%w: need %d cells, have %d bytes", ErrTruncatedData, cells, r.Len())
	}

	h, err := New(int(iterations))
	if err != nil {
		return nil, err
	}
	h.roughness = roughness

	if err := binary.Read(r, binary.LittleEndian, h.cells); err != nil {
		return nil, fmt.Errorf("%w: reading cells", ErrTruncatedData)
	}

	h.Freeze()
	return h, nil
}

// ReadFile parses a heightfield file from disk.
func ReadFile(path string) (*Heightfield, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading heightfield file: %w", err)
	}
	return Parse(data)
}

// WriteFile encodes h to path, replacing any existing file.
func WriteFile(path string, h *Heightfield) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, h); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
