// Package elfx maps virtual addresses of an in-memory ELF image to offsets
// into the same buffer using its PT_LOAD segments.
package elfx

import (
	"bytes"
	"cmp"
	"debug/elf"
	"errors"
	"fmt"
	"slices"
)

// ErrUnmapped is returned for addresses outside every file-backed segment.
var ErrUnmapped = errors.New("address not mapped by any load segment")

type Image struct {
	Machine elf.Machine
	Loads   []Seg
	Text    Section
	Funcs   []Func
}

type Seg struct {
	Vaddr, Off, Filesz uint64
	Flags              elf.ProgFlag
}

type Section struct {
	Name          string
	VA, Off, Size uint64
}

// Func is a sized function symbol from .symtab.
type Func struct {
	Name       string
	Addr, Size uint64
}

// IsELF reports whether data starts with the ELF magic.
func IsELF(data []byte) bool {
	return bytes.HasPrefix(data, []byte(elf.ELFMAG))
}

// Parse reads the program and section headers of an ELF image already
// loaded into memory.
func Parse(data []byte) (*Image, error) {
	f, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse elf: %w", err)
	}
	defer f.Close()

	im := &Image{Machine: f.Machine}
	for _, p := range f.Progs {
		if p.Type != elf.PT_LOAD || p.Filesz == 0 {
			continue
		}
		if p.Off+p.Filesz > uint64(len(data)) {
			return nil, fmt.Errorf("load segment at %#x extends past end of file", p.Vaddr)
		}
		im.Loads = append(im.Loads, Seg{
			Vaddr:  p.Vaddr,
			Off:    p.Off,
			Filesz: p.Filesz,
			Flags:  p.Flags,
		})
	}

	for _, s := range f.Sections {
		if s.Name == ".text" {
			im.Text = Section{s.Name, s.Addr, s.Offset, s.Size}
		}
	}

	// Fall back to the first executable segment when section headers are stripped.
	if im.Text.Size == 0 {
		for _, l := range im.Loads {
			if l.Flags&elf.PF_X != 0 {
				im.Text = Section{"LOAD(exec)", l.Vaddr, l.Off, l.Filesz}
				break
			}
		}
	}
	if len(im.Loads) == 0 {
		return nil, errors.New("elf has no file-backed load segments")
	}
	im.loadFuncs(f)
	return im, nil
}

// loadFuncs keeps the defined, sized function symbols of .symtab in
// address order. Stripped images simply have none.
func (im *Image) loadFuncs(f *elf.File) {
	syms, err := f.Symbols()
	if err != nil {
		return
	}
	for _, sym := range syms {
		if elf.ST_TYPE(sym.Info) != elf.STT_FUNC || sym.Value == 0 || sym.Size == 0 {
			continue
		}
		im.Funcs = append(im.Funcs, Func{Name: sym.Name, Addr: sym.Value, Size: sym.Size})
	}
	slices.SortStableFunc(im.Funcs, func(a, b Func) int {
		return cmp.Compare(a.Addr, b.Addr)
	})
}

// VA2Off translates a virtual address into a file offset
// using PT_LOAD segments. It returns false if VA is unmapped.
func (im *Image) VA2Off(va uint64) (uint64, bool) {
	for _, l := range im.Loads {
		if va >= l.Vaddr && va < l.Vaddr+l.Filesz {
			return l.Off + (va - l.Vaddr), true
		}
	}
	return 0, false
}

// Offset implements the address mapper contract used by the image package.
func (im *Image) Offset(va uint64) (uint64, error) {
	off, ok := im.VA2Off(va)
	if !ok {
		return 0, fmt.Errorf("%w: %#x", ErrUnmapped, va)
	}
	return off, nil
}

func (im *Image) String() string {
	return fmt.Sprintf("elf(%s, %d load segments)", im.Machine, len(im.Loads))
}
