package spirv

import (
	"encoding/binary"
	"math"
)

// Instruction is a decoded or pending SPIR-V instruction. Words holds the
// operands without the leading opcode/word-count word.
type Instruction struct {
	Opcode OpCode
	Words  []uint32
}

// Encode encodes the instruction to binary words.
func (i Instruction) Encode() []uint32 {
	wordCount := uint32(len(i.Words) + 1)
	result := make([]uint32, 0, wordCount)
	result = append(result, (wordCount<<16)|uint32(i.Opcode))
	return append(result, i.Words...)
}

// stringWords encodes a null-terminated, word-padded UTF-8 literal.
func stringWords(s string) []uint32 {
	bytes := append([]byte(s), 0)
	for len(bytes)%4 != 0 {
		bytes = append(bytes, 0)
	}
	words := make([]uint32, 0, len(bytes)/4)
	for i := 0; i < len(bytes); i += 4 {
		words = append(words, binary.LittleEndian.Uint32(bytes[i:]))
	}
	return words
}

// section is a logical layout section of a SPIR-V module.
type section int

const (
	sectionCapabilities section = iota
	sectionExtensions
	sectionExtInstImports
	sectionMemoryModel
	sectionEntryPoints
	sectionExecutionModes
	sectionDebug
	sectionAnnotations
	sectionTypes
	sectionFunctions
	sectionCount
)

// ModuleBuilder assembles SPIR-V modules. Instructions are appended to their
// logical section regardless of call order, so types may be declared while a
// function body is being built.
type ModuleBuilder struct {
	version  Version
	nextID   uint32
	sections [sectionCount][]Instruction
}

// NewModuleBuilder creates a new SPIR-V module builder.
func NewModuleBuilder(version Version) *ModuleBuilder {
	return &ModuleBuilder{version: version, nextID: 1}
}

// AllocID allocates a new SPIR-V ID.
func (b *ModuleBuilder) AllocID() uint32 {
	id := b.nextID
	b.nextID++
	return id
}

func (b *ModuleBuilder) emit(s section, op OpCode, words ...uint32) {
	b.sections[s] = append(b.sections[s], Instruction{Opcode: op, Words: words})
}

// result emits an instruction whose first operand is a fresh result id.
func (b *ModuleBuilder) result(s section, op OpCode, operands ...uint32) uint32 {
	id := b.AllocID()
	b.emit(s, op, append([]uint32{id}, operands...)...)
	return id
}

// typed emits an instruction with a result type and a fresh result id.
func (b *ModuleBuilder) typed(s section, op OpCode, resultType uint32, operands ...uint32) uint32 {
	id := b.AllocID()
	b.emit(s, op, append([]uint32{resultType, id}, operands...)...)
	return id
}

// AddCapability adds a capability.
func (b *ModuleBuilder) AddCapability(capability Capability) {
	b.emit(sectionCapabilities, OpCapability, uint32(capability))
}

// AddExtension adds an extension.
func (b *ModuleBuilder) AddExtension(name string) {
	b.emit(sectionExtensions, OpExtension, stringWords(name)...)
}

// AddExtInstImport imports an extended instruction set.
func (b *ModuleBuilder) AddExtInstImport(name string) uint32 {
	return b.result(sectionExtInstImports, OpExtInstImport, stringWords(name)...)
}

// SetMemoryModel sets the memory model.
func (b *ModuleBuilder) SetMemoryModel(addressing AddressingModel, memory MemoryModel) {
	b.sections[sectionMemoryModel] = []Instruction{{
		Opcode: OpMemoryModel,
		Words:  []uint32{uint32(addressing), uint32(memory)},
	}}
}

// AddEntryPoint adds an entry point.
func (b *ModuleBuilder) AddEntryPoint(model ExecutionModel, funcID uint32, name string, interfaces ...uint32) {
	words := append([]uint32{uint32(model), funcID}, stringWords(name)...)
	b.emit(sectionEntryPoints, OpEntryPoint, append(words, interfaces...)...)
}

// AddExecutionMode adds an execution mode.
func (b *ModuleBuilder) AddExecutionMode(entryPoint uint32, mode ExecutionMode, params ...uint32) {
	b.emit(sectionExecutionModes, OpExecutionMode, append([]uint32{entryPoint, uint32(mode)}, params...)...)
}

// AddSource records the OpSource debug instruction glslc emits.
func (b *ModuleBuilder) AddSource(language, version uint32) {
	b.emit(sectionDebug, OpSource, language, version)
}

// AddName adds a debug name.
func (b *ModuleBuilder) AddName(id uint32, name string) {
	b.emit(sectionDebug, OpName, append([]uint32{id}, stringWords(name)...)...)
}

// AddMemberName adds a debug member name.
func (b *ModuleBuilder) AddMemberName(structID, member uint32, name string) {
	b.emit(sectionDebug, OpMemberName, append([]uint32{structID, member}, stringWords(name)...)...)
}

// AddDecorate adds a decoration.
func (b *ModuleBuilder) AddDecorate(id uint32, decoration Decoration, params ...uint32) {
	b.emit(sectionAnnotations, OpDecorate, append([]uint32{id, uint32(decoration)}, params...)...)
}

// AddMemberDecorate adds a member decoration.
func (b *ModuleBuilder) AddMemberDecorate(structID, member uint32, decoration Decoration, params ...uint32) {
	b.emit(sectionAnnotations, OpMemberDecorate, append([]uint32{structID, member, uint32(decoration)}, params...)...)
}

// TypeVoid adds OpTypeVoid.
func (b *ModuleBuilder) TypeVoid() uint32 { return b.result(sectionTypes, OpTypeVoid) }

// TypeBool adds OpTypeBool.
func (b *ModuleBuilder) TypeBool() uint32 { return b.result(sectionTypes, OpTypeBool) }

// TypeFloat adds OpTypeFloat.
func (b *ModuleBuilder) TypeFloat(width uint32) uint32 {
	return b.result(sectionTypes, OpTypeFloat, width)
}

// TypeInt adds OpTypeInt.
func (b *ModuleBuilder) TypeInt(width uint32, signed bool) uint32 {
	var s uint32
	if signed {
		s = 1
	}
	return b.result(sectionTypes, OpTypeInt, width, s)
}

// TypeVector adds OpTypeVector.
func (b *ModuleBuilder) TypeVector(component, count uint32) uint32 {
	return b.result(sectionTypes, OpTypeVector, component, count)
}

// TypeMatrix adds OpTypeMatrix.
func (b *ModuleBuilder) TypeMatrix(column, columns uint32) uint32 {
	return b.result(sectionTypes, OpTypeMatrix, column, columns)
}

// TypeArray adds OpTypeArray. length is the id of an integer constant.
func (b *ModuleBuilder) TypeArray(element, length uint32) uint32 {
	return b.result(sectionTypes, OpTypeArray, element, length)
}

// TypeRuntimeArray adds OpTypeRuntimeArray.
func (b *ModuleBuilder) TypeRuntimeArray(element uint32) uint32 {
	return b.result(sectionTypes, OpTypeRuntimeArray, element)
}

// TypeStruct adds OpTypeStruct.
func (b *ModuleBuilder) TypeStruct(members ...uint32) uint32 {
	return b.result(sectionTypes, OpTypeStruct, members...)
}

// TypePointer adds OpTypePointer.
func (b *ModuleBuilder) TypePointer(class StorageClass, base uint32) uint32 {
	return b.result(sectionTypes, OpTypePointer, uint32(class), base)
}

// TypeFunction adds OpTypeFunction.
func (b *ModuleBuilder) TypeFunction(returnType uint32, params ...uint32) uint32 {
	return b.result(sectionTypes, OpTypeFunction, append([]uint32{returnType}, params...)...)
}

// TypeImage adds OpTypeImage. sampled is 1 for sampled images and 2 for
// storage images; format is 0 (Unknown) for sampled images.
func (b *ModuleBuilder) TypeImage(sampledType uint32, dim Dim, depth, arrayed, ms, sampled, format uint32) uint32 {
	return b.result(sectionTypes, OpTypeImage, sampledType, uint32(dim), depth, arrayed, ms, sampled, format)
}

// TypeSampler adds OpTypeSampler.
func (b *ModuleBuilder) TypeSampler() uint32 { return b.result(sectionTypes, OpTypeSampler) }

// TypeSampledImage adds OpTypeSampledImage.
func (b *ModuleBuilder) TypeSampledImage(image uint32) uint32 {
	return b.result(sectionTypes, OpTypeSampledImage, image)
}

// Constant adds OpConstant with raw literal words.
func (b *ModuleBuilder) Constant(typeID uint32, values ...uint32) uint32 {
	return b.typed(sectionTypes, OpConstant, typeID, values...)
}

// ConstantFloat32 adds a 32-bit float constant.
func (b *ModuleBuilder) ConstantFloat32(typeID uint32, value float32) uint32 {
	return b.Constant(typeID, math.Float32bits(value))
}

// ConstantFloat64 adds a 64-bit float constant.
func (b *ModuleBuilder) ConstantFloat64(typeID uint32, value float64) uint32 {
	bits := math.Float64bits(value)
	return b.Constant(typeID, uint32(bits), uint32(bits>>32))
}

// ConstantInt32 adds a 32-bit integer constant.
func (b *ModuleBuilder) ConstantInt32(typeID uint32, value int32) uint32 {
	return b.Constant(typeID, uint32(value))
}

// ConstantBool adds OpConstantTrue or OpConstantFalse.
func (b *ModuleBuilder) ConstantBool(typeID uint32, value bool) uint32 {
	if value {
		return b.typed(sectionTypes, OpConstantTrue, typeID)
	}
	return b.typed(sectionTypes, OpConstantFalse, typeID)
}

// ConstantComposite adds OpConstantComposite.
func (b *ModuleBuilder) ConstantComposite(typeID uint32, constituents ...uint32) uint32 {
	return b.typed(sectionTypes, OpConstantComposite, typeID, constituents...)
}

// ConstantNull adds OpConstantNull.
func (b *ModuleBuilder) ConstantNull(typeID uint32) uint32 {
	return b.typed(sectionTypes, OpConstantNull, typeID)
}

// Variable adds OpVariable. Function-class variables go into the current
// function body; all others are module-scope. An optional initializer id
// may follow.
func (b *ModuleBuilder) Variable(pointerType uint32, class StorageClass, init ...uint32) uint32 {
	s := sectionTypes
	if class == StorageClassFunction {
		s = sectionFunctions
	}
	return b.typed(s, OpVariable, pointerType, append([]uint32{uint32(class)}, init...)...)
}

// Function opens a function definition.
func (b *ModuleBuilder) Function(returnType, funcType uint32) uint32 {
	return b.typed(sectionFunctions, OpFunction, returnType, uint32(FunctionControlNone), funcType)
}

// FunctionParameter adds a function parameter.
func (b *ModuleBuilder) FunctionParameter(typeID uint32) uint32 {
	return b.typed(sectionFunctions, OpFunctionParameter, typeID)
}

// FunctionEnd closes the current function.
func (b *ModuleBuilder) FunctionEnd() { b.emit(sectionFunctions, OpFunctionEnd) }

// Label places a basic block label. Pass 0 to allocate a new id, or an id
// obtained earlier from AllocID for forward branch targets.
func (b *ModuleBuilder) Label(id uint32) uint32 {
	if id == 0 {
		id = b.AllocID()
	}
	b.emit(sectionFunctions, OpLabel, id)
	return id
}

// Op appends a function-body instruction that produces a value and returns
// its result id.
func (b *ModuleBuilder) Op(op OpCode, resultType uint32, operands ...uint32) uint32 {
	return b.typed(sectionFunctions, op, resultType, operands...)
}

// Do appends a function-body instruction without a result.
func (b *ModuleBuilder) Do(op OpCode, operands ...uint32) {
	b.emit(sectionFunctions, op, operands...)
}

// Load adds OpLoad.
func (b *ModuleBuilder) Load(resultType, pointer uint32) uint32 {
	return b.Op(OpLoad, resultType, pointer)
}

// Store adds OpStore.
func (b *ModuleBuilder) Store(pointer, value uint32) { b.Do(OpStore, pointer, value) }

// AccessChain adds OpAccessChain.
func (b *ModuleBuilder) AccessChain(resultType, base uint32, indices ...uint32) uint32 {
	return b.Op(OpAccessChain, resultType, append([]uint32{base}, indices...)...)
}

// ExtInst adds OpExtInst.
func (b *ModuleBuilder) ExtInst(resultType, set, instruction uint32, operands ...uint32) uint32 {
	return b.Op(OpExtInst, resultType, append([]uint32{set, instruction}, operands...)...)
}

// SelectionMerge adds OpSelectionMerge.
func (b *ModuleBuilder) SelectionMerge(merge uint32) {
	b.Do(OpSelectionMerge, merge, uint32(SelectionControlNone))
}

// LoopMerge adds OpLoopMerge.
func (b *ModuleBuilder) LoopMerge(merge, continueTarget uint32) {
	b.Do(OpLoopMerge, merge, continueTarget, uint32(LoopControlNone))
}

// Branch adds OpBranch.
func (b *ModuleBuilder) Branch(target uint32) { b.Do(OpBranch, target) }

// BranchConditional adds OpBranchConditional.
func (b *ModuleBuilder) BranchConditional(cond, trueLabel, falseLabel uint32) {
	b.Do(OpBranchConditional, cond, trueLabel, falseLabel)
}

// Return adds OpReturn.
func (b *ModuleBuilder) Return() { b.Do(OpReturn) }

// ReturnValue adds OpReturnValue.
func (b *ModuleBuilder) ReturnValue(value uint32) { b.Do(OpReturnValue, value) }

// Words returns the module as SPIR-V words.
func (b *ModuleBuilder) Words() []uint32 {
	words := []uint32{MagicNumber, versionToWord(b.version), GeneratorID, b.nextID, 0}
	for _, insts := range b.sections {
		for _, inst := range insts {
			words = append(words, inst.Encode()...)
		}
	}
	return words
}

// Build generates the final little-endian SPIR-V binary.
func (b *ModuleBuilder) Build() []byte {
	words := b.Words()
	buffer := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(buffer[i*4:], w)
	}
	return buffer
}

// versionToWord converts Version to SPIR-V word format.
func versionToWord(v Version) uint32 {
	return (uint32(v.Major) << 16) | (uint32(v.Minor) << 8)
}
