package cpu

import (
	"encoding/binary"
	"errors"
)

const (
	MEMORY_SIZE = 8192 // Default memory capacity, in bytes.
)

// Memory is a fixed capacity, byte addressable, little-endian memory.
// Every access is checked over its full span; a failed access neither
// reads nor writes any byte.
type Memory struct {
	data []byte
}

// NewMemory creates a zeroed memory of size bytes.
func NewMemory(size uint32) (mem *Memory) {
	mem = &Memory{
		data: make([]byte, size),
	}

	return
}

// Size returns the memory capacity in bytes.
func (mem *Memory) Size() uint32 {
	return uint32(len(mem.data))
}

// Bytes returns the memory contents. The slice must not be modified.
func (mem *Memory) Bytes() []byte {
	return mem.data
}

// Reset zeroes the memory.
func (mem *Memory) Reset() {
	clear(mem.data)
}

// span returns the slice for [addr, addr+size), or ErrMemoryFault.
func (mem *Memory) span(addr uint32, size uint32) (buf []byte, err error) {
	end := uint64(addr) + uint64(size)
	if end > uint64(len(mem.data)) {
		err = ErrMemoryFault
		return
	}

	buf = mem.data[addr:end]
	return
}

// LoadByte reads the byte at addr.
func (mem *Memory) LoadByte(addr uint32) (value uint8, err error) {
	buf, err := mem.span(addr, 1)
	if err != nil {
		return
	}

	value = buf[0]
	return
}

// LoadWord reads the 16-bit little-endian value at addr.
func (mem *Memory) LoadWord(addr uint32) (value uint16, err error) {
	buf, err := mem.span(addr, 2)
	if err != nil {
		return
	}

	value = binary.LittleEndian.Uint16(buf)
	return
}

// LoadDword reads the 32-bit little-endian value at addr.
func (mem *Memory) LoadDword(addr uint32) (value uint32, err error) {
	buf, err := mem.span(addr, 4)
	if err != nil {
		return
	}

	value = binary.LittleEndian.Uint32(buf)
	return
}

// StoreByte writes value to addr.
func (mem *Memory) StoreByte(addr uint32, value uint8) (err error) {
	buf, err := mem.span(addr, 1)
	if err != nil {
		return
	}

	buf[0] = value
	return
}

// StoreWord writes value to addr as 16-bit little-endian.
func (mem *Memory) StoreWord(addr uint32, value uint16) (err error) {
	buf, err := mem.span(addr, 2)
	if err != nil {
		return
	}

	binary.LittleEndian.PutUint16(buf, value)
	return
}

// StoreDword writes value to addr as 32-bit little-endian.
func (mem *Memory) StoreDword(addr uint32, value uint32) (err error) {
	buf, err := mem.span(addr, 4)
	if err != nil {
		return
	}

	binary.LittleEndian.PutUint32(buf, value)
	return
}

// Load reads a zero-extended value of the given width.
func (mem *Memory) Load(addr uint32, width CodeWidth) (value uint32, err error) {
	switch width {
	case WIDTH_BYTE:
		var v8 uint8
		v8, err = mem.LoadByte(addr)
		value = uint32(v8)
	case WIDTH_WORD:
		var v16 uint16
		v16, err = mem.LoadWord(addr)
		value = uint32(v16)
	case WIDTH_DWORD:
		value, err = mem.LoadDword(addr)
	default:
		err = errors.Join(ErrOpcodeFault, ErrOpcodeWidth)
	}

	return
}

// Store writes value, truncated to the given width.
func (mem *Memory) Store(addr uint32, width CodeWidth, value uint32) (err error) {
	switch width {
	case WIDTH_BYTE:
		err = mem.StoreByte(addr, uint8(value))
	case WIDTH_WORD:
		err = mem.StoreWord(addr, uint16(value))
	case WIDTH_DWORD:
		err = mem.StoreDword(addr, value)
	default:
		err = errors.Join(ErrOpcodeFault, ErrOpcodeWidth)
	}

	return
}

// Read copies len(buf) bytes at addr into buf.
func (mem *Memory) Read(addr uint32, buf []byte) (err error) {
	src, err := mem.span(addr, uint32(len(buf)))
	if err != nil {
		return
	}

	copy(buf, src)
	return
}

// LoadImage copies image into memory starting at offset.
func (mem *Memory) LoadImage(image []byte, offset uint32) (err error) {
	if uint64(len(image)) > uint64(len(mem.data)) {
		err = ErrMemoryFault
		return
	}

	dst, err := mem.span(offset, uint32(len(image)))
	if err != nil {
		return
	}

	copy(dst, image)
	return
}
