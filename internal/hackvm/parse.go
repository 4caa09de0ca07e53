package hackvm

import (
	"bufio"
	"strconv"
	"strings"
)

// ParsedUnit is one translation unit's parse result: an ordered instruction
// stream plus the function-local label index the linker needs to resolve
// goto/if-goto targets (spec §4.1, §4.2).
type ParsedUnit struct {
	File         string
	Instructions []Instruction
	FuncLabels   map[string]map[string]int // function scope -> label -> index within Instructions
	MaxStatic    int                        // -1 if the unit never references `static`
}

var labelRune = func(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
		r == '_' || r == '.' || r == ':' || r == '$'
}

func isValidLabel(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !labelRune(r) {
			return false
		}
	}
	return true
}

func isValidFuncName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '.') {
			return false
		}
	}
	return true
}

// ParseUnit tokenizes one translation unit of VM text (spec §4.1). `file`
// is the translation-unit name used for static-segment assignment and for
// error locations; the `.vm` extension, if present, is not stripped here —
// callers that want it stripped should do so before calling.
func ParseUnit(file, text string) (*ParsedUnit, error) {
	u := &ParsedUnit{
		File:       file,
		FuncLabels: map[string]map[string]int{},
		MaxStatic:  -1,
	}

	currentFunc := ""
	ensureScope := func(scope string) map[string]int {
		m, ok := u.FuncLabels[scope]
		if !ok {
			m = map[string]int{}
			u.FuncLabels[scope] = m
		}
		return m
	}
	ensureScope("")

	scanner := bufio.NewScanner(strings.NewReader(text))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		line, _, _ := strings.Cut(raw, "//")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		mnemonic := fields[0]
		args := fields[1:]

		ins := Instruction{File: file, SrcLine: lineNo, FuncScope: currentFunc}

		switch mnemonic {
		case "push", "pop":
			if len(args) != 2 {
				return nil, newParseError(file, lineNo, "%s requires segment and index, got %d args", mnemonic, len(args))
			}
			seg, ok := segmentNames[args[0]]
			if !ok {
				return nil, newParseError(file, lineNo, "unknown segment %q", args[0])
			}
			idx, err := strconv.Atoi(args[1])
			if err != nil {
				return nil, newParseError(file, lineNo, "non-integer index %q", args[1])
			}
			if idx < 0 {
				return nil, newParseError(file, lineNo, "negative index %d", idx)
			}
			if mnemonic == "pop" {
				if seg == SegConstant {
					return nil, newParseError(file, lineNo, "pop constant is not allowed")
				}
				ins.Op = OpPop
			} else {
				ins.Op = OpPush
			}
			ins.Seg = seg
			ins.Index = idx
			switch seg {
			case SegPointer:
				if idx > 1 {
					return nil, newParseError(file, lineNo, "pointer index %d out of range [0..1]", idx)
				}
				if idx == 0 {
					ins.Addr = RegTHIS
				} else {
					ins.Addr = RegTHAT
				}
			case SegTemp:
				if idx > 7 {
					return nil, newParseError(file, lineNo, "temp index %d out of range [0..7]", idx)
				}
				ins.Addr = RegTemp + idx
			case SegStatic:
				if idx > u.MaxStatic {
					u.MaxStatic = idx
				}
			case SegConstant:
				ins.Value = int16(idx)
			}

		case "add":
			ins.Op = OpAdd
		case "sub":
			ins.Op = OpSub
		case "neg":
			ins.Op = OpNeg
		case "eq":
			ins.Op = OpEq
		case "lt":
			ins.Op = OpLt
		case "gt":
			ins.Op = OpGt
		case "and":
			ins.Op = OpAnd
		case "or":
			ins.Op = OpOr
		case "not":
			ins.Op = OpNot

		case "label":
			if len(args) != 1 || !isValidLabel(args[0]) {
				return nil, newParseError(file, lineNo, "label requires a single valid name")
			}
			ins.Op = OpLabel
			ins.Label = args[0]
			scope := ensureScope(currentFunc)
			scope[args[0]] = len(u.Instructions)

		case "goto":
			if len(args) != 1 || !isValidLabel(args[0]) {
				return nil, newParseError(file, lineNo, "goto requires a single valid label")
			}
			ins.Op = OpGoto
			ins.Label = args[0]

		case "if-goto":
			if len(args) != 1 || !isValidLabel(args[0]) {
				return nil, newParseError(file, lineNo, "if-goto requires a single valid label")
			}
			ins.Op = OpIfGoto
			ins.Label = args[0]

		case "function":
			if len(args) != 2 {
				return nil, newParseError(file, lineNo, "function requires name and nLocals")
			}
			if !isValidFuncName(args[0]) {
				return nil, newParseError(file, lineNo, "invalid function name %q", args[0])
			}
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 0 {
				return nil, newParseError(file, lineNo, "invalid nLocals %q", args[1])
			}
			ins.Op = OpFunction
			ins.Name = args[0]
			ins.NLocals = n
			currentFunc = args[0]
			ensureScope(currentFunc)

		case "call":
			if len(args) != 2 {
				return nil, newParseError(file, lineNo, "call requires name and nArgs")
			}
			if !isValidFuncName(args[0]) {
				return nil, newParseError(file, lineNo, "invalid call target %q", args[0])
			}
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 0 {
				return nil, newParseError(file, lineNo, "invalid nArgs %q", args[1])
			}
			ins.Op = OpCall
			ins.Name = args[0]
			ins.NArgs = n

		case "return":
			if len(args) != 0 {
				return nil, newParseError(file, lineNo, "return takes no arguments")
			}
			ins.Op = OpReturn

		default:
			return nil, newParseError(file, lineNo, "unknown mnemonic %q", mnemonic)
		}

		u.Instructions = append(u.Instructions, ins)
	}
	if err := scanner.Err(); err != nil {
		return nil, newParseError(file, lineNo, "scan error: %v", err)
	}

	return u, nil
}
