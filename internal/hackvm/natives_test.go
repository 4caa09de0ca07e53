package hackvm

import "testing"

func TestNativeMathOps(t *testing.T) {
	src := "function Main.main 0\n" +
		"push constant 6\n" +
		"push constant 7\n" +
		"call Math.multiply 2\n" +
		"return\n"
	v := runProgram(t, map[string]string{"Main.vm": src}, []string{"Main.vm"})
	assert(t, v.Status() == StatusHalted, "expected Halted, got %v", v.Status())
	assert(t, v.ram[256] == 42, "Math.multiply result = %d, want 42", v.ram[256])
}

func TestNativeMathDivideByZeroFaults(t *testing.T) {
	src := "function Main.main 0\n" +
		"push constant 10\n" +
		"push constant 0\n" +
		"call Math.divide 2\n" +
		"return\n"
	v := runProgram(t, map[string]string{"Main.vm": src}, []string{"Main.vm"})
	assert(t, v.Status() == StatusFaulted, "expected Faulted on divide by zero, got %v", v.Status())
}

func TestNativeMathSqrt(t *testing.T) {
	src := "function Main.main 0\n" +
		"push constant 81\n" +
		"call Math.sqrt 1\n" +
		"return\n"
	v := runProgram(t, map[string]string{"Main.vm": src}, []string{"Main.vm"})
	assert(t, v.Status() == StatusHalted, "expected Halted, got %v", v.Status())
	assert(t, v.ram[256] == 9, "Math.sqrt(81) = %d, want 9", v.ram[256])
}

func TestNativeMemoryAllocReturnsDistinctBlocks(t *testing.T) {
	src := "function Main.main 0\n" +
		"push constant 4\n" +
		"call Memory.alloc 1\n" +
		"push constant 4\n" +
		"call Memory.alloc 1\n" +
		"sub\n" +
		"return\n"
	v := runProgram(t, map[string]string{"Main.vm": src}, []string{"Main.vm"})
	assert(t, v.Status() == StatusHalted, "expected Halted, got %v", v.Status())
	assert(t, v.ram[256] != 0, "two Memory.alloc calls returned overlapping blocks")
}

func TestNativeStringRoundTrip(t *testing.T) {
	src := "function Main.main 0\n" +
		"push constant 10\n" +
		"call String.new 1\n" +
		"push constant 65\n" +
		"call String.appendChar 2\n" +
		"call String.length 1\n" +
		"return\n"
	v := runProgram(t, map[string]string{"Main.vm": src}, []string{"Main.vm"})
	assert(t, v.Status() == StatusHalted, "expected Halted, got %v", v.Status())
	assert(t, v.ram[256] == 1, "String.length after one appendChar = %d, want 1", v.ram[256])
}
