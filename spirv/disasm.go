package spirv

import (
	"fmt"
	"math"
	"strings"
)

// idOnly lists opcodes whose first operand is a result id without a result
// type.
var idOnly = map[OpCode]bool{
	OpExtInstImport:    true,
	OpString:           true,
	OpDecorationGroup:  true,
	OpLabel:            true,
	OpTypeVoid:         true,
	OpTypeBool:         true,
	OpTypeInt:          true,
	OpTypeFloat:        true,
	OpTypeVector:       true,
	OpTypeMatrix:       true,
	OpTypeImage:        true,
	OpTypeSampler:      true,
	OpTypeSampledImage: true,
	OpTypeArray:        true,
	OpTypeRuntimeArray: true,
	OpTypeStruct:       true,
	OpTypePointer:      true,
	OpTypeFunction:     true,
}

// withoutResult lists opcodes that produce no result id.
var withoutResult = map[OpCode]bool{
	OpNop:                      true,
	OpSourceContinued:          true,
	OpSource:                   true,
	OpSourceExtension:          true,
	OpName:                     true,
	OpMemberName:               true,
	OpLine:                     true,
	OpNoLine:                   true,
	OpExtension:                true,
	OpMemoryModel:              true,
	OpEntryPoint:               true,
	OpExecutionMode:            true,
	OpCapability:               true,
	OpDecorate:                 true,
	OpMemberDecorate:           true,
	OpModuleProcessed:          true,
	OpFunctionEnd:              true,
	OpStore:                    true,
	OpCopyMemory:               true,
	OpImageWrite:               true,
	OpControlBarrier:           true,
	OpMemoryBarrier:            true,
	OpSelectionMerge:           true,
	OpLoopMerge:                true,
	OpBranch:                   true,
	OpBranchConditional:        true,
	OpSwitch:                   true,
	OpKill:                     true,
	OpReturn:                   true,
	OpReturnValue:              true,
	OpUnreachable:              true,
	OpTerminateInvocation:      true,
	OpDemoteToHelperInvocation: true,
}

// Disassemble renders a SPIR-V binary as text assembly in the style of
// spirv-dis.
func Disassemble(data []byte) (string, error) {
	words, err := decodeWords(data)
	if err != nil {
		return "", err
	}
	hdr, err := readHeader(words)
	if err != nil {
		return "", err
	}
	insts, err := readInstructions(words)
	if err != nil {
		return "", err
	}

	d := &disassembler{floatTypes: make(map[uint32]bool)}
	fmt.Fprintf(&d.sb, "; SPIR-V\n; Version: %s\n; Generator: 0x%08X\n; Bound: %d\n; Schema: %d\n",
		hdr.Version, hdr.Generator, hdr.Bound, hdr.Schema)
	for _, inst := range insts {
		d.instruction(inst)
	}
	return d.sb.String(), nil
}

type disassembler struct {
	sb         strings.Builder
	floatTypes map[uint32]bool
}

func idStr(n uint32) string { return fmt.Sprintf("%%%d", n) }

func (d *disassembler) instruction(inst rawInst) {
	w := inst.Words
	var result string
	switch {
	case withoutResult[inst.Opcode]:
	case idOnly[inst.Opcode] && len(w) >= 1:
		result, w = idStr(w[0]), w[1:]
	case len(w) >= 2:
		result, w = idStr(w[1]), append([]uint32{w[0]}, w[2:]...)
	}
	if inst.Opcode == OpTypeFloat && len(inst.Words) > 0 {
		d.floatTypes[inst.Words[0]] = true
	}

	operands := d.operands(inst.Opcode, w)
	line := inst.Opcode.String()
	if len(operands) > 0 {
		line += " " + strings.Join(operands, " ")
	}
	if result != "" {
		fmt.Fprintf(&d.sb, "%14s = %s\n", result, line)
	} else {
		fmt.Fprintf(&d.sb, "%16s%s\n", "", line)
	}
}

func idStrs(ws []uint32) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = idStr(w)
	}
	return out
}

func literals(ws []uint32) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = fmt.Sprint(w)
	}
	return out
}

func quoted(ws []uint32) (string, []uint32) {
	s, n := decodeString(ws)
	if n > len(ws) {
		n = len(ws)
	}
	return fmt.Sprintf("%q", s), ws[n:]
}

func mask(m uint32) string { return fmt.Sprintf("0x%x", m) }

// operands formats the operands of an instruction. For instructions with a
// result type, w starts with the type id.
//
//nolint:gocyclo,cyclop,funlen // one case per operand layout
func (d *disassembler) operands(op OpCode, w []uint32) []string {
	if len(w) == 0 {
		return nil
	}
	switch op {
	case OpCapability:
		return []string{Capability(w[0]).String()}
	case OpExtension, OpSourceExtension, OpModuleProcessed, OpExtInstImport, OpString:
		s, _ := quoted(w)
		return []string{s}
	case OpSource:
		return literals(w[:min(2, len(w))])
	case OpMemoryModel:
		names := []string{"Logical", "GLSL450"}
		if len(w) > 1 && MemoryModel(w[1]) == MemoryModelVulkan {
			names[1] = "Vulkan"
		}
		return names
	case OpEntryPoint:
		if len(w) < 2 {
			return literals(w)
		}
		name, rest := quoted(w[2:])
		return append([]string{ExecutionModel(w[0]).String(), idStr(w[1]), name}, idStrs(rest)...)
	case OpExecutionMode:
		if len(w) < 2 {
			return literals(w)
		}
		return append([]string{idStr(w[0]), ExecutionMode(w[1]).String()}, literals(w[2:])...)
	case OpName:
		name, _ := quoted(w[1:])
		return []string{idStr(w[0]), name}
	case OpMemberName:
		if len(w) < 2 {
			return literals(w)
		}
		name, _ := quoted(w[2:])
		return []string{idStr(w[0]), fmt.Sprint(w[1]), name}
	case OpDecorate:
		if len(w) < 2 {
			return literals(w)
		}
		return append([]string{idStr(w[0])}, decorationOperands(Decoration(w[1]), w[2:])...)
	case OpMemberDecorate:
		if len(w) < 3 {
			return literals(w)
		}
		return append([]string{idStr(w[0]), fmt.Sprint(w[1])}, decorationOperands(Decoration(w[2]), w[3:])...)
	case OpTypeInt, OpTypeFloat:
		return literals(w)
	case OpTypeVector, OpTypeMatrix:
		return append(idStrs(w[:1]), literals(w[1:])...)
	case OpTypeImage:
		if len(w) < 2 {
			return idStrs(w)
		}
		return append([]string{idStr(w[0]), dimName(Dim(w[1]))}, literals(w[2:])...)
	case OpTypePointer:
		return append([]string{StorageClass(w[0]).String()}, idStrs(w[1:])...)
	case OpConstant, OpSpecConstant:
		if len(w) == 2 && d.floatTypes[w[0]] {
			return []string{idStr(w[0]), fmt.Sprint(math.Float32frombits(w[1]))}
		}
		return append(idStrs(w[:1]), literals(w[1:])...)
	case OpVariable:
		if len(w) < 2 {
			return idStrs(w)
		}
		return append([]string{idStr(w[0]), StorageClass(w[1]).String()}, idStrs(w[2:])...)
	case OpFunction:
		if len(w) < 3 {
			return idStrs(w)
		}
		return []string{idStr(w[0]), "None", idStr(w[2])}
	case OpCompositeExtract:
		return append(idStrs(w[:min(2, len(w))]), literals(w[min(2, len(w)):])...)
	case OpCompositeInsert, OpVectorShuffle:
		return append(idStrs(w[:min(3, len(w))]), literals(w[min(3, len(w)):])...)
	case OpExtInst:
		if len(w) < 3 {
			return idStrs(w)
		}
		return append([]string{idStr(w[0]), idStr(w[1]), fmt.Sprint(w[2])}, idStrs(w[3:])...)
	case OpImageSampleImplicitLod, OpImageSampleExplicitLod, OpImageFetch, OpImageRead, OpImageWrite:
		return withMask(w, 3)
	case OpImageSampleDrefImplicitLod, OpImageSampleDrefExplicitLod, OpImageGather, OpImageDrefGather:
		return withMask(w, 4)
	case OpSelectionMerge:
		return []string{idStr(w[0]), "None"}
	case OpLoopMerge:
		return append(idStrs(w[:min(2, len(w))]), "None")
	case OpSwitch:
		out := idStrs(w[:min(2, len(w))])
		for i := 2; i+1 < len(w); i += 2 {
			out = append(out, fmt.Sprint(w[i]), idStr(w[i+1]))
		}
		return out
	}
	return idStrs(w)
}

func withMask(w []uint32, fixed int) []string {
	if len(w) <= fixed {
		return idStrs(w)
	}
	return append(append(idStrs(w[:fixed]), mask(w[fixed])), idStrs(w[fixed+1:])...)
}

func decorationOperands(dec Decoration, args []uint32) []string {
	out := []string{dec.String()}
	if dec == DecorationBuiltIn && len(args) > 0 {
		return append(out, BuiltIn(args[0]).String())
	}
	return append(out, literals(args)...)
}

func dimName(d Dim) string {
	switch d {
	case Dim1D:
		return "1D"
	case Dim2D:
		return "2D"
	case Dim3D:
		return "3D"
	case DimCube:
		return "Cube"
	case DimRect:
		return "Rect"
	case DimBuffer:
		return "Buffer"
	case DimSubpassData:
		return "SubpassData"
	}
	return fmt.Sprint(uint32(d))
}
