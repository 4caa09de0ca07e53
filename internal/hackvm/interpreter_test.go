package hackvm

import "testing"

// TestAddTwoConstants covers the simplest possible program: one function,
// two pushes, one add, one return, with no user-supplied Sys.init.
func TestAddTwoConstants(t *testing.T) {
	src := "function Main.main 0\n" +
		"push constant 7\n" +
		"push constant 8\n" +
		"add\n" +
		"return\n"
	v := runProgram(t, map[string]string{"Main.vm": src}, []string{"Main.vm"})

	assert(t, v.Status() == StatusHalted, "expected Halted, got %v", v.Status())
	assert(t, v.ram[256] == 15, "RAM[256] = %d, want 15", v.ram[256])
	assert(t, v.ram[RegSP] == 257, "SP = %d, want 257", v.ram[RegSP])
}

// TestFunctionWithLocalsAndStatic covers local-slot allocation and a
// round-trip through the static segment.
func TestFunctionWithLocalsAndStatic(t *testing.T) {
	src := "function Main.main 2\n" +
		"push constant 3\n" +
		"pop local 0\n" +
		"push constant 5\n" +
		"pop local 1\n" +
		"push local 0\n" +
		"push local 1\n" +
		"sub\n" +
		"pop static 0\n" +
		"push static 0\n" +
		"return\n"
	v := runProgram(t, map[string]string{"Main.vm": src}, []string{"Main.vm"})

	assert(t, v.Status() == StatusHalted, "expected Halted, got %v", v.Status())
	assert(t, v.ram[StaticBase] == -2, "RAM[%d] = %d, want -2", StaticBase, v.ram[StaticBase])
}

// TestBranching covers eq plus if-goto control flow.
func TestBranching(t *testing.T) {
	src := "function Main.main 0\n" +
		"push constant 10\n" +
		"push constant 10\n" +
		"eq\n" +
		"if-goto EQUAL\n" +
		"push constant 0\n" +
		"return\n" +
		"label EQUAL\n" +
		"push constant 1\n" +
		"return\n"
	v := runProgram(t, map[string]string{"Main.vm": src}, []string{"Main.vm"})

	assert(t, v.Status() == StatusHalted, "expected Halted, got %v", v.Status())
	assert(t, v.ram[256] == 1, "return value = %d, want 1", v.ram[256])
}

// TestCallReturnConvention covers a nested call through a native (Math.multiply)
// and verifies the final return value alongside register restoration.
func TestCallReturnConvention(t *testing.T) {
	src := "function Main.mul 0\n" +
		"push argument 0\n" +
		"push argument 1\n" +
		"call Math.multiply 2\n" +
		"return\n" +
		"function Main.main 0\n" +
		"push constant 6\n" +
		"push constant 7\n" +
		"call Main.mul 2\n" +
		"return\n"
	v := runProgram(t, map[string]string{"Main.vm": src}, []string{"Main.vm"})

	assert(t, v.Status() == StatusHalted, "expected Halted, got %v", v.Status())
	assert(t, v.ram[256] == 42, "return value = %d, want 42", v.ram[256])
	assert(t, v.ram[RegLCL] == 0, "LCL not restored: got %d", v.ram[RegLCL])
	assert(t, v.ram[RegARG] == 0, "ARG not restored: got %d", v.ram[RegARG])
	assert(t, v.ram[RegTHIS] == 0, "THIS not restored: got %d", v.ram[RegTHIS])
	assert(t, v.ram[RegTHAT] == 0, "THAT not restored: got %d", v.ram[RegTHAT])
}

// TestMemoryPoke covers a Memory.poke native call hitting the memory-mapped
// screen region directly.
func TestMemoryPoke(t *testing.T) {
	src := "function Main.main 0\n" +
		"push constant 16384\n" +
		"push constant 0\n" +
		"not\n" +
		"call Memory.poke 2\n" +
		"push constant 0\n" +
		"return\n"
	v := runProgram(t, map[string]string{"Main.vm": src}, []string{"Main.vm"})

	assert(t, v.Status() == StatusHalted, "expected Halted, got %v", v.Status())
	assert(t, v.ram[ScreenBase] == -1, "RAM[%d] = %d, want -1", ScreenBase, v.ram[ScreenBase])
}

// TestKeyboardRead covers Keyboard.keyPressed reflecting the host-driven
// keyboard register at the moment Init/Tick ran.
func TestKeyboardRead(t *testing.T) {
	src := "function Main.main 0\n" +
		"call Keyboard.keyPressed 0\n" +
		"return\n"

	pressed := NewVM()
	if err := pressed.LoadFile("Main.vm", src); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if err := pressed.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	pressed.SetKeyboard(65)
	for pressed.Status() == StatusRunning {
		if _, err := pressed.Tick(1000); err != nil {
			t.Fatalf("Tick: %v", err)
		}
	}
	assert(t, pressed.ram[256] == 65, "keyPressed = %d, want 65", pressed.ram[256])

	released := NewVM()
	if err := released.LoadFile("Main.vm", src); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if err := released.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	released.SetKeyboard(0)
	for released.Status() == StatusRunning {
		if _, err := released.Tick(1000); err != nil {
			t.Fatalf("Tick: %v", err)
		}
	}
	assert(t, released.ram[256] == 0, "keyPressed = %d, want 0", released.ram[256])
}

// TestArithmeticWraparound exercises the 16-bit wrap semantics of add at
// the positive boundary value.
func TestArithmeticWraparound(t *testing.T) {
	src := "function Main.main 0\n" +
		"push constant 32767\n" +
		"push constant 1\n" +
		"add\n" +
		"return\n"
	v := runProgram(t, map[string]string{"Main.vm": src}, []string{"Main.vm"})

	assert(t, v.Status() == StatusHalted, "expected Halted, got %v", v.Status())
	assert(t, v.ram[256] == -32768, "RAM[256] = %d, want -32768 (wrapped)", v.ram[256])
}

// TestStackUnderflowFaults covers an operand-stack underflow turning into a
// Faulted status rather than a panic.
func TestStackUnderflowFaults(t *testing.T) {
	src := "function Main.main 0\n" +
		"add\n" +
		"return\n"
	v := runProgram(t, map[string]string{"Main.vm": src}, []string{"Main.vm"})

	assert(t, v.Status() == StatusFaulted, "expected Faulted, got %v", v.Status())
}
