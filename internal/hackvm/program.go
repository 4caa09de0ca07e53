package hackvm

// FunctionInfo records where a function's entry instruction lives in the
// linked Program and how many locals its header allocates.
type FunctionInfo struct {
	Entry   int
	NLocals int
}

// Program is the immutable, linked output of the Linker: a flat
// instruction array plus the tables needed to interpret it (spec §3
// "Program Image").
type Program struct {
	Instructions []Instruction
	Functions    map[string]FunctionInfo
	Statics      map[string]int // translation-unit name -> assigned static base
}

type pendingCall struct {
	idx  int
	name string
}

// Link merges parsed translation units into a single Program Image,
// assigning static-segment bases, resolving branch and call targets, and
// emitting the bootstrap prologue (spec §4.2).
func Link(units []*ParsedUnit, natives map[string]NativeFunc) (*Program, error) {
	prog := &Program{
		Functions: map[string]FunctionInfo{},
		Statics:   map[string]int{},
	}

	var pendingCalls []pendingCall

	bootCallIdx := 0
	prog.Instructions = append(prog.Instructions, Instruction{Op: OpCall, Name: "Sys.init", NArgs: 0, File: "<bootstrap>"})
	pendingCalls = append(pendingCalls, pendingCall{idx: bootCallIdx, name: "Sys.init"})
	prog.Instructions = append(prog.Instructions, Instruction{Op: OpHalt, File: "<bootstrap>"})

	nextStatic := StaticBase
	for _, u := range units {
		base := nextStatic
		if u.MaxStatic >= 0 {
			nStatics := u.MaxStatic + 1
			if base+nStatics > StaticBase+MaxStatics {
				return nil, newLinkError("static overflow in %q: would need %d total static slots (max %d)", u.File, base+nStatics-StaticBase, MaxStatics)
			}
			nextStatic += nStatics
		}
		prog.Statics[u.File] = base

		offset := len(prog.Instructions)
		for li, ins := range u.Instructions {
			switch ins.Op {
			case OpPush, OpPop:
				if ins.Seg == SegStatic {
					ins.Addr = base + ins.Index
				}
			case OpFunction:
				if _, exists := prog.Functions[ins.Name]; exists {
					return nil, newLinkError("duplicate function %q (redefined in %s:%d)", ins.Name, u.File, ins.SrcLine)
				}
				prog.Functions[ins.Name] = FunctionInfo{Entry: offset + li, NLocals: ins.NLocals}
			case OpGoto, OpIfGoto:
				scope, ok := u.FuncLabels[ins.FuncScope]
				localIdx, found := -1, false
				if ok {
					localIdx, found = scope[ins.Label]
				}
				if !found {
					return nil, newLinkError("unresolved label %q referenced in %s:%d", ins.Label, u.File, ins.SrcLine)
				}
				ins.Target = offset + localIdx
			case OpCall:
				pendingCalls = append(pendingCalls, pendingCall{idx: offset + li, name: ins.Name})
			}
			prog.Instructions = append(prog.Instructions, ins)
		}
	}

	for _, pc := range pendingCalls {
		ins := &prog.Instructions[pc.idx]
		name := pc.name
		if name == "Sys.init" {
			if _, ok := prog.Functions[name]; !ok {
				// No program-supplied Sys.init: the bootstrap's own "halt"
				// right after this call already gives the "then Sys.halt"
				// half of the fallback for free, so resolving straight to
				// Main.main (rather than synthesizing a wrapper function
				// that would add a second call frame) keeps the very first
				// user call at the expected single frame of stack overhead.
				name = "Main.main"
			}
		}
		if fn, ok := prog.Functions[name]; ok {
			ins.Op = OpCall
			ins.Target = fn.Entry
			continue
		}
		if native, ok := natives[name]; ok {
			ins.Op = OpCallNative
			ins.Native = native
			continue
		}
		if pc.name == "Sys.init" {
			return nil, newLinkError("no Sys.init and no Main.main defined")
		}
		return nil, newLinkError("unresolved call target %q (in %s:%d)", pc.name, ins.File, ins.SrcLine)
	}

	return prog, nil
}
