package hackvm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Status is the interpreter's run state (spec §4.4 "PC status").
type Status int

const (
	StatusRunning Status = iota
	StatusHalted
	StatusFaulted
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusHalted:
		return "halted"
	case StatusFaulted:
		return "faulted"
	default:
		return "?"
	}
}

// nativeState is the small amount of mutable state the built-in OS library
// keeps outside of RAM: the Output/Screen cursor and color, and the
// Memory.alloc bump pointer. It is reset whenever the VM is (spec §4.5,
// design note "Shared cursor/color state").
type nativeState struct {
	cursorRow, cursorCol int
	color                bool // true = black, matches Screen.setColor(true)
	heapNext             int
}

func (n *nativeState) reset() {
	n.cursorRow, n.cursorCol = 0, 0
	n.color = true
	n.heapNext = HeapBase
}

// VM is the host-facing emulator: it owns RAM, the linked Program, and the
// fetch-decode-execute loop, and exposes the host I/O surface from spec
// §4.7 (load_file, init, tick, reset, set_keyboard, draw_screen, get_debug,
// get_stats).
type VM struct {
	ram     RAM
	program *Program
	pc      int
	status  Status
	fault   error

	pendingUnits []*ParsedUnit
	natives      map[string]NativeFunc
	native       nativeState

	callNames []string          // shadow stack of function names, for profiling/debug only (spec design note)
	profile   map[string]uint64 // profiled-tick instruction counters, keyed by function name
}

// NewVM constructs an unlinked VM. Call LoadFile for each translation unit
// and then Init before Tick.
func NewVM() *VM {
	v := &VM{
		natives: builtinNatives(),
		profile: map[string]uint64{},
	}
	return v
}

// LoadFile parses one translation unit and buffers it for linking (spec
// §4.7). It must be called before Init.
func (v *VM) LoadFile(name, text string) error {
	u, err := ParseUnit(name, text)
	if err != nil {
		return err
	}
	v.pendingUnits = append(v.pendingUnits, u)
	return nil
}

// Init links all buffered translation units into a single Program Image,
// then zeroes RAM and starts execution at the bootstrap prologue.
func (v *VM) Init() error {
	prog, err := Link(v.pendingUnits, v.natives)
	if err != nil {
		return err
	}
	v.program = prog
	return v.Reset()
}

// Reset clears RAM, rewinds PC to the bootstrap prologue, and re-arms SP;
// the linked Program Image is preserved (spec §4.5).
func (v *VM) Reset() error {
	if v.program == nil {
		return errors.New("hackvm: Reset called before Init")
	}
	v.ram.reset()
	v.ram[RegSP] = StackBase
	v.pc = 0
	v.status = StatusRunning
	v.fault = nil
	v.callNames = v.callNames[:0]
	v.native.reset()
	v.profile = map[string]uint64{}
	return nil
}

// Tick advances the PC at most maxSteps times, stopping early on Halt or
// fault, and returns the number of instructions actually executed. A VM
// that is already Faulted is a no-op: Tick returns (0, the fault reason)
// without touching RAM or PC (spec §7).
func (v *VM) Tick(maxSteps int) (int, error) {
	return v.tick(maxSteps, false)
}

// TickProfiled behaves like Tick but additionally accumulates per-function
// instruction counts, retrievable via GetStats (spec §4.7, §9).
func (v *VM) TickProfiled(maxSteps int) (int, error) {
	return v.tick(maxSteps, true)
}

func (v *VM) tick(maxSteps int, profiled bool) (int, error) {
	if v.status == StatusFaulted {
		return 0, v.fault
	}
	executed := 0
	for ; executed < maxSteps; executed++ {
		if v.status != StatusRunning {
			break
		}
		if profiled {
			v.profile[v.currentFunctionName()]++
		}
		err := v.step()
		if err == nil {
			continue
		}
		if errors.Is(err, ErrHalt) {
			v.status = StatusHalted
			executed++
			break
		}
		v.status = StatusFaulted
		v.fault = err
		return executed, err
	}
	return executed, nil
}

// SetKeyboard writes a key code to the memory-mapped keyboard register; 0
// means released (spec §4.7, §6).
func (v *VM) SetKeyboard(code int16) {
	v.ram[KeyboardAddr] = code
}

// ScreenFrame is a 512x256 two-color bitmap snapshot of the screen region,
// one bool per pixel (true = black), handed to a ScreenSink once per frame.
type ScreenFrame struct {
	Pixels [ScreenRows][ScreenCols]bool
}

// ScreenSink receives one rendered frame per DrawScreen call (spec §4.7).
type ScreenSink interface {
	Blit(frame *ScreenFrame)
}

// DrawScreen unpacks the bit-packed screen region (spec §3, §6) into a
// ScreenFrame and hands it to sink.
func (v *VM) DrawScreen(sink ScreenSink) {
	var frame ScreenFrame
	for w := 0; w < ScreenEnd-ScreenBase; w++ {
		word := uint16(v.ram[ScreenBase+w])
		row := w / 32
		colBase := (w % 32) * 16
		for bit := 0; bit < 16; bit++ {
			if (word>>uint(bit))&1 != 0 {
				frame.Pixels[row][colBase+bit] = true
			}
		}
	}
	sink.Blit(&frame)
}

// Status reports the current run state.
func (v *VM) Status() Status {
	return v.status
}

func (v *VM) currentFunctionName() string {
	if len(v.callNames) == 0 {
		return "<bootstrap>"
	}
	return v.callNames[len(v.callNames)-1]
}

// GetDebug returns a textual dump for a host debug panel: PC, SP, a window
// of the top of the operand stack, the current function, and — if
// Faulted — the fault reason with a short stack trace (spec §4.7, §7).
func (v *VM) GetDebug() string {
	var b strings.Builder
	fmt.Fprintf(&b, "status=%s pc=%d sp=%d fn=%s\n", v.status, v.pc, v.ram[RegSP], v.currentFunctionName())

	sp := int(v.ram[RegSP])
	lo := sp - 8
	if lo < StackBase {
		lo = StackBase
	}
	b.WriteString("stack:")
	for a := lo; a < sp; a++ {
		fmt.Fprintf(&b, " %d", v.ram[a])
	}
	b.WriteString("\n")

	if v.status == StatusFaulted && v.fault != nil {
		fmt.Fprintf(&b, "fault: %v\n", v.fault)
		type stackTracer interface {
			StackTrace() errors.StackTrace
		}
		if st, ok := v.fault.(stackTracer); ok {
			frames := st.StackTrace()
			n := 3
			if len(frames) < n {
				n = len(frames)
			}
			for _, f := range frames[:n] {
				fmt.Fprintf(&b, "  %+v\n", f)
			}
		}
	}
	return b.String()
}

// GetStats returns the profiled-tick instruction counters, JSON-encoded
// (spec §4.7 "serialized profile counters").
func (v *VM) GetStats() ([]byte, error) {
	return json.Marshal(v.profile)
}
