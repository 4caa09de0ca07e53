package hackvm

import "fmt"

// step executes exactly one instruction at the current PC (spec §4.4). It
// returns ErrHalt on the bootstrap's terminal marker, nil on a normal
// advance, or a wrapped RuntimeError on any fault.
func (v *VM) step() error {
	ins := &v.program.Instructions[v.pc]
	if err := v.exec(ins); err != nil {
		if err == ErrHalt {
			return err
		}
		return newRuntimeError(v.pc, "%v", err)
	}
	return nil
}

func (v *VM) exec(ins *Instruction) error {
	switch ins.Op {
	case OpPush:
		val := ins.Value
		if ins.Seg != SegConstant {
			addr, err := v.segAddr(ins)
			if err != nil {
				return err
			}
			val, err = v.ram.read(addr)
			if err != nil {
				return err
			}
		}
		if err := v.push(val); err != nil {
			return err
		}
		v.pc++

	case OpPop:
		addr, err := v.segAddr(ins)
		if err != nil {
			return err
		}
		val, err := v.pop()
		if err != nil {
			return err
		}
		if err := v.ram.write(addr, val); err != nil {
			return err
		}
		v.pc++

	case OpAdd:
		return v.binaryOp(func(x, y int16) int16 { return x + y })
	case OpSub:
		return v.binaryOp(func(x, y int16) int16 { return x - y })
	case OpAnd:
		return v.binaryOp(func(x, y int16) int16 { return x & y })
	case OpOr:
		return v.binaryOp(func(x, y int16) int16 { return x | y })
	case OpNeg:
		return v.unaryOp(func(x int16) int16 { return -x })
	case OpNot:
		return v.unaryOp(func(x int16) int16 { return ^x })
	case OpEq:
		return v.compareOp(func(x, y int16) bool { return x == y })
	case OpLt:
		return v.compareOp(func(x, y int16) bool { return x < y })
	case OpGt:
		return v.compareOp(func(x, y int16) bool { return x > y })

	case OpLabel:
		v.pc++

	case OpGoto:
		v.pc = ins.Target

	case OpIfGoto:
		val, err := v.pop()
		if err != nil {
			return err
		}
		if val != 0 {
			v.pc = ins.Target
		} else {
			v.pc++
		}

	case OpFunction:
		for i := 0; i < ins.NLocals; i++ {
			if err := v.push(0); err != nil {
				return err
			}
		}
		v.pc++

	case OpCall:
		return v.doCall(ins)

	case OpCallNative:
		if err := v.doNativeCall(ins); err != nil {
			return err
		}
		v.pc++

	case OpReturn:
		return v.doReturn()

	case OpHalt:
		return ErrHalt

	default:
		return fmt.Errorf("unreachable opcode %v", ins.Op)
	}
	return nil
}

// segAddr resolves the RAM address a push/pop instruction reads or writes,
// per the decode table in spec §4.4. It must not be called for
// SegConstant, which has no address (push-only literal).
func (v *VM) segAddr(ins *Instruction) (int, error) {
	switch ins.Seg {
	case SegLocal:
		return int(v.ram[RegLCL]) + ins.Index, nil
	case SegArgument:
		return int(v.ram[RegARG]) + ins.Index, nil
	case SegThis:
		return int(v.ram[RegTHIS]) + ins.Index, nil
	case SegThat:
		return int(v.ram[RegTHAT]) + ins.Index, nil
	case SegPointer, SegTemp, SegStatic:
		return ins.Addr, nil
	default:
		return 0, fmt.Errorf("invalid segment for address resolution: %v", ins.Seg)
	}
}

func (v *VM) binaryOp(f func(x, y int16) int16) error {
	y, err := v.pop()
	if err != nil {
		return err
	}
	x, err := v.pop()
	if err != nil {
		return err
	}
	if err := v.push(f(x, y)); err != nil {
		return err
	}
	v.pc++
	return nil
}

func (v *VM) unaryOp(f func(x int16) int16) error {
	x, err := v.pop()
	if err != nil {
		return err
	}
	if err := v.push(f(x)); err != nil {
		return err
	}
	v.pc++
	return nil
}

func (v *VM) compareOp(f func(x, y int16) bool) error {
	y, err := v.pop()
	if err != nil {
		return err
	}
	x, err := v.pop()
	if err != nil {
		return err
	}
	result := int16(0)
	if f(x, y) {
		result = -1
	}
	if err := v.push(result); err != nil {
		return err
	}
	v.pc++
	return nil
}

// push writes v to RAM[SP] and advances SP (spec §4.4 stack convention).
func (v *VM) push(val int16) error {
	sp := int(v.ram[RegSP])
	if err := v.ram.write(sp, val); err != nil {
		return err
	}
	v.ram[RegSP] = int16(sp + 1)
	return nil
}

// pop decrements SP and returns the word it pointed past. Popping below the
// current frame's LCL (or below StackBase outside any frame) is an underflow.
func (v *VM) pop() (int16, error) {
	sp := int(v.ram[RegSP])
	floor := StackBase
	if lcl := int(v.ram[RegLCL]); lcl > floor {
		floor = lcl
	}
	if sp-1 < floor {
		return 0, fmt.Errorf("stack underflow at sp=%d", sp)
	}
	val, err := v.ram.read(sp - 1)
	if err != nil {
		return 0, err
	}
	v.ram[RegSP] = int16(sp - 1)
	return val, nil
}

// doCall implements the calling convention from spec §4.4: push return
// address and the caller's saved frame, rebase ARG/LCL, jump to the
// callee's entry (its `function` instruction, which allocates locals).
func (v *VM) doCall(ins *Instruction) error {
	retAddr := v.pc + 1
	if err := v.push(int16(retAddr)); err != nil {
		return err
	}
	if err := v.push(v.ram[RegLCL]); err != nil {
		return err
	}
	if err := v.push(v.ram[RegARG]); err != nil {
		return err
	}
	if err := v.push(v.ram[RegTHIS]); err != nil {
		return err
	}
	if err := v.push(v.ram[RegTHAT]); err != nil {
		return err
	}
	sp := int(v.ram[RegSP])
	v.ram[RegARG] = int16(sp - ins.NArgs - 5)
	v.ram[RegLCL] = int16(sp)
	v.callNames = append(v.callNames, ins.Name)
	v.pc = ins.Target
	return nil
}

// doReturn implements spec §4.4's return sequence.
func (v *VM) doReturn() error {
	frame := int(v.ram[RegLCL])
	retVal, err := v.pop()
	if err != nil {
		return err
	}
	retAddr, err := v.ram.read(frame - 5)
	if err != nil {
		return err
	}
	that, err := v.ram.read(frame - 1)
	if err != nil {
		return err
	}
	this, err := v.ram.read(frame - 2)
	if err != nil {
		return err
	}
	arg, err := v.ram.read(frame - 3)
	if err != nil {
		return err
	}
	lcl, err := v.ram.read(frame - 4)
	if err != nil {
		return err
	}

	argAddr := int(v.ram[RegARG])
	if err := v.ram.write(argAddr, retVal); err != nil {
		return err
	}
	v.ram[RegSP] = int16(argAddr + 1)
	v.ram[RegTHAT] = that
	v.ram[RegTHIS] = this
	v.ram[RegARG] = arg
	v.ram[RegLCL] = lcl
	v.pc = int(retAddr)

	if len(v.callNames) > 0 {
		v.callNames = v.callNames[:len(v.callNames)-1]
	}
	return nil
}

// doNativeCall invokes a built-in OS handler in place of a VM-coded call
// (spec §4.6): the handler reads its arguments off the operand stack
// without disturbing it, then doNativeCall pops them and pushes the single
// return value, giving the same net stack effect as a real call+return.
func (v *VM) doNativeCall(ins *Instruction) error {
	result, err := ins.Native(v, ins.NArgs)
	if err != nil {
		return err
	}
	for i := 0; i < ins.NArgs; i++ {
		if _, err := v.pop(); err != nil {
			return err
		}
	}
	return v.push(result)
}

// arg reads the i-th argument (0-indexed, in push order) of a pending
// native call without popping it, for use by native handlers.
func (v *VM) arg(nArgs, i int) (int16, error) {
	sp := int(v.ram[RegSP])
	return v.ram.read(sp - nArgs + i)
}
