package spirv

import (
	"strings"
	"testing"
)

func TestDisassemble(t *testing.T) {
	b := NewModuleBuilder(Version1_3)
	b.AddCapability(CapabilityShader)
	glsl := b.AddExtInstImport("GLSL.std.450")
	b.SetMemoryModel(AddressingModelLogical, MemoryModelGLSL450)
	void := b.TypeVoid()
	fnType := b.TypeFunction(void)
	f32 := b.TypeFloat(32)
	half := b.ConstantFloat32(f32, 0.5)
	out := b.Variable(b.TypePointer(StorageClassOutput, f32), StorageClassOutput)
	b.AddDecorate(out, DecorationLocation, 0)
	main := b.Function(void, fnType)
	b.Label(0)
	b.Store(out, b.ExtInst(f32, glsl, GLSLstd450Sqrt, half))
	b.Return()
	b.FunctionEnd()
	b.AddEntryPoint(ExecutionModelFragment, main, "main", out)
	b.AddExecutionMode(main, ExecutionModeOriginUpperLeft)
	b.AddName(main, "main")

	text, err := Disassemble(b.Build())
	if err != nil {
		t.Fatalf("Disassemble: %v", err)
	}

	want := []string{
		"; Version: 1.3",
		"OpCapability Shader",
		`= OpExtInstImport "GLSL.std.450"`,
		"OpMemoryModel Logical GLSL450",
		`OpEntryPoint Fragment %`,
		"OpExecutionMode %",
		"OriginUpperLeft",
		`OpName %`,
		"OpDecorate %",
		"Location 0",
		"= OpTypeFloat 32",
		" 0.5",
		"Output",
		"OpFunction %",
		"OpExtInst %",
		"OpStore %",
		"OpReturn",
		"OpFunctionEnd",
	}
	for _, w := range want {
		if !strings.Contains(text, w) {
			t.Errorf("disassembly missing %q:\n%s", w, text)
		}
	}
}

func TestDisassembleRejectsGarbage(t *testing.T) {
	if _, err := Disassemble([]byte("not a spir-v module at all")); err == nil {
		t.Error("expected an error for non SPIR-V input")
	}
}

func TestInstructionEncode(t *testing.T) {
	inst := Instruction{Opcode: OpTypeInt, Words: []uint32{5, 32, 1}}
	got := inst.Encode()
	want := []uint32{(4 << 16) | uint32(OpTypeInt), 5, 32, 1}
	if len(got) != len(want) {
		t.Fatalf("Encode() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("word %d = %#x, want %#x", i, got[i], want[i])
		}
	}
}

func TestBuilderSectionOrder(t *testing.T) {
	b := NewModuleBuilder(Version1_0)
	// Declared out of order: the builder places each in its section.
	f32 := b.TypeFloat(32)
	b.AddName(f32, "float")
	b.AddCapability(CapabilityShader)

	insts, err := readInstructions(b.Words())
	if err != nil {
		t.Fatalf("readInstructions: %v", err)
	}
	var ops []OpCode
	for _, inst := range insts {
		ops = append(ops, inst.Opcode)
	}
	want := []OpCode{OpCapability, OpName, OpTypeFloat}
	if len(ops) != len(want) {
		t.Fatalf("opcodes = %v, want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Errorf("opcode %d = %v, want %v", i, ops[i], want[i])
		}
	}
}
