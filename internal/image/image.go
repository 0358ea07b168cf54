// Package image loads the reference binary and extracts instruction
// words for an address range from it.
package image

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"funcmatch/internal/disasm"
	"funcmatch/internal/elfx"
)

// DefaultBase is the load address of the reference image the tool was
// first written against.
const DefaultBase = 0x1D1C85C

var (
	ErrBelowBase  = errors.New("address is below the image base")
	ErrOutOfRange = errors.New("address range lies outside the image")
	ErrNotELF     = errors.New("automatic base requires an ELF image")
)

// Mapper translates a virtual address into an offset into the image buffer.
type Mapper interface {
	Offset(addr uint64) (uint64, error)
}

// BaseMapper maps addresses relative to a single load address.
type BaseMapper struct {
	Base uint64
}

func (m BaseMapper) Offset(addr uint64) (uint64, error) {
	if addr < m.Base {
		return 0, fmt.Errorf("%w: %#x < %#x", ErrBelowBase, addr, m.Base)
	}
	return addr - m.Base, nil
}

func (m BaseMapper) String() string {
	return fmt.Sprintf("base(%#x)", m.Base)
}

// Base selects how addresses are mapped: a fixed load address, or the
// segments of an ELF image when Auto is set.
type Base struct {
	Auto bool
	Addr uint64
}

// ParseBase accepts "auto" or an unsigned integer in Go literal syntax
// (0x prefix for hex).
func ParseBase(s string) (Base, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "auto") {
		return Base{Auto: true}, nil
	}
	addr, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return Base{}, fmt.Errorf("invalid base address %q: %w", s, err)
	}
	return Base{Addr: addr}, nil
}

func (b Base) String() string {
	if b.Auto {
		return "auto"
	}
	return fmt.Sprintf("%#x", b.Addr)
}

// Image is a binary held fully in memory together with its address mapper.
type Image struct {
	Path   string
	Data   []byte
	Mapper Mapper
}

// Load reads the whole file at path and chooses a mapper for it.
func Load(path string, base Base) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	im, err := New(data, base)
	if err != nil {
		return nil, err
	}
	im.Path = path
	return im, nil
}

// New wraps an in-memory image.
func New(data []byte, base Base) (*Image, error) {
	var mapper Mapper = BaseMapper{Base: base.Addr}
	if base.Auto {
		if !elfx.IsELF(data) {
			return nil, ErrNotELF
		}
		ef, err := elfx.Parse(data)
		if err != nil {
			return nil, err
		}
		mapper = ef
	}
	slog.Debug("Image loaded", "size", len(data), "mapper", mapper)
	return &Image{Data: data, Mapper: mapper}, nil
}

// Slice returns the bytes backing [start, end).
func (im *Image) Slice(start, end uint64) ([]byte, error) {
	if end < start {
		return nil, fmt.Errorf("%w: end %#x before start %#x", ErrOutOfRange, end, start)
	}
	off, err := im.Mapper.Offset(start)
	if err != nil {
		return nil, err
	}
	size := end - start
	if off > uint64(len(im.Data)) || size > uint64(len(im.Data))-off {
		return nil, fmt.Errorf("%w: [%#x, %#x) maps to offset %#x, image is %#x bytes",
			ErrOutOfRange, start, end, off, len(im.Data))
	}
	return im.Data[off : off+size], nil
}

// Extract returns the instruction words of [start, end).
func (im *Image) Extract(start, end uint64) (disasm.Sequence, error) {
	code, err := im.Slice(start, end)
	if err != nil {
		return nil, err
	}
	return disasm.Extract(code)
}
