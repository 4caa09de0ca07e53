package hackvm

import "fmt"

// Fixed address map (spec §3). RAM is a flat array of 32768 signed 16-bit
// words; named regions below are conventions enforced by the instruction
// decoder and the native OS library, not by the RAM type itself.
const (
	RAMSize = 32768

	RegSP   = 0
	RegLCL  = 1
	RegARG  = 2
	RegTHIS = 3
	RegTHAT = 4
	RegTemp = 5 // TEMP occupies 5..12
	RegR13  = 13

	StaticBase  = 16
	StaticLimit = 256 // exclusive
	MaxStatics  = 240 // §7: static overflow past this many slots is a LinkError

	StackBase  = 256
	StackLimit = 2048 // exclusive, heap starts here

	HeapBase  = 2048
	HeapLimit = 16384 // exclusive

	ScreenBase = 16384
	ScreenEnd  = 24576 // exclusive, 8192 words
	ScreenRows = 256
	ScreenCols = 512

	KeyboardAddr = 24576
)

// RAM is the flat word array shared by the interpreter, the native OS
// library, and the host's screen/keyboard surface.
type RAM [RAMSize]int16

func (r *RAM) read(addr int) (int16, error) {
	if addr < 0 || addr >= RAMSize {
		return 0, fmt.Errorf("memory read out of range: %d", addr)
	}
	return r[addr], nil
}

func (r *RAM) write(addr int, v int16) error {
	if addr < 0 || addr >= RAMSize {
		return fmt.Errorf("memory write out of range: %d", addr)
	}
	r[addr] = v
	return nil
}

func (r *RAM) reset() {
	for i := range r {
		r[i] = 0
	}
}
