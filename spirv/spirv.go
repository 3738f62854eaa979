package spirv

import "fmt"

// Version represents a SPIR-V version.
type Version struct {
	Major uint8
	Minor uint8
}

// Common SPIR-V versions
var (
	Version1_0 = Version{1, 0}
	Version1_3 = Version{1, 3}
	Version1_5 = Version{1, 5}
	Version1_6 = Version{1, 6}
)

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// SPIR-V magic number and constants
const (
	MagicNumber = 0x07230203
	GeneratorID = 0x00000000 // Unregistered generator

	// headerWords is the number of words preceding the instruction stream.
	headerWords = 5
)

// OpCode represents a SPIR-V opcode.
type OpCode uint16

// Opcodes understood by the front end and the disassembler.
const (
	OpNop                        OpCode = 0
	OpUndef                      OpCode = 1
	OpSourceContinued            OpCode = 2
	OpSource                     OpCode = 3
	OpSourceExtension            OpCode = 4
	OpName                       OpCode = 5
	OpMemberName                 OpCode = 6
	OpString                     OpCode = 7
	OpLine                       OpCode = 8
	OpExtension                  OpCode = 10
	OpExtInstImport              OpCode = 11
	OpExtInst                    OpCode = 12
	OpMemoryModel                OpCode = 14
	OpEntryPoint                 OpCode = 15
	OpExecutionMode              OpCode = 16
	OpCapability                 OpCode = 17
	OpTypeVoid                   OpCode = 19
	OpTypeBool                   OpCode = 20
	OpTypeInt                    OpCode = 21
	OpTypeFloat                  OpCode = 22
	OpTypeVector                 OpCode = 23
	OpTypeMatrix                 OpCode = 24
	OpTypeImage                  OpCode = 25
	OpTypeSampler                OpCode = 26
	OpTypeSampledImage           OpCode = 27
	OpTypeArray                  OpCode = 28
	OpTypeRuntimeArray           OpCode = 29
	OpTypeStruct                 OpCode = 30
	OpTypePointer                OpCode = 32
	OpTypeFunction               OpCode = 33
	OpConstantTrue               OpCode = 41
	OpConstantFalse              OpCode = 42
	OpConstant                   OpCode = 43
	OpConstantComposite          OpCode = 44
	OpConstantNull               OpCode = 46
	OpSpecConstantTrue           OpCode = 48
	OpSpecConstantFalse          OpCode = 49
	OpSpecConstant               OpCode = 50
	OpSpecConstantComposite      OpCode = 51
	OpSpecConstantOp             OpCode = 52
	OpFunction                   OpCode = 54
	OpFunctionParameter          OpCode = 55
	OpFunctionEnd                OpCode = 56
	OpFunctionCall               OpCode = 57
	OpVariable                   OpCode = 59
	OpLoad                       OpCode = 61
	OpStore                      OpCode = 62
	OpCopyMemory                 OpCode = 63
	OpAccessChain                OpCode = 65
	OpInBoundsAccessChain        OpCode = 66
	OpArrayLength                OpCode = 68
	OpDecorate                   OpCode = 71
	OpMemberDecorate             OpCode = 72
	OpDecorationGroup            OpCode = 73
	OpVectorExtractDynamic       OpCode = 77
	OpVectorInsertDynamic        OpCode = 78
	OpVectorShuffle              OpCode = 79
	OpCompositeConstruct         OpCode = 80
	OpCompositeExtract           OpCode = 81
	OpCompositeInsert            OpCode = 82
	OpCopyObject                 OpCode = 83
	OpTranspose                  OpCode = 84
	OpSampledImage               OpCode = 86
	OpImageSampleImplicitLod     OpCode = 87
	OpImageSampleExplicitLod     OpCode = 88
	OpImageSampleDrefImplicitLod OpCode = 89
	OpImageSampleDrefExplicitLod OpCode = 90
	OpImageFetch                 OpCode = 95
	OpImageGather                OpCode = 96
	OpImageDrefGather            OpCode = 97
	OpImageRead                  OpCode = 98
	OpImageWrite                 OpCode = 99
	OpImage                      OpCode = 100
	OpImageQuerySizeLod          OpCode = 103
	OpImageQuerySize             OpCode = 104
	OpImageQueryLod              OpCode = 105
	OpImageQueryLevels           OpCode = 106
	OpImageQuerySamples          OpCode = 107
	OpConvertFToU                OpCode = 109
	OpConvertFToS                OpCode = 110
	OpConvertSToF                OpCode = 111
	OpConvertUToF                OpCode = 112
	OpUConvert                   OpCode = 113
	OpSConvert                   OpCode = 114
	OpFConvert                   OpCode = 115
	OpQuantizeToF16              OpCode = 116
	OpBitcast                    OpCode = 124
	OpSNegate                    OpCode = 126
	OpFNegate                    OpCode = 127
	OpIAdd                       OpCode = 128
	OpFAdd                       OpCode = 129
	OpISub                       OpCode = 130
	OpFSub                       OpCode = 131
	OpIMul                       OpCode = 132
	OpFMul                       OpCode = 133
	OpUDiv                       OpCode = 134
	OpSDiv                       OpCode = 135
	OpFDiv                       OpCode = 136
	OpUMod                       OpCode = 137
	OpSRem                       OpCode = 138
	OpSMod                       OpCode = 139
	OpFRem                       OpCode = 140
	OpFMod                       OpCode = 141
	OpVectorTimesScalar          OpCode = 142
	OpMatrixTimesScalar          OpCode = 143
	OpVectorTimesMatrix          OpCode = 144
	OpMatrixTimesVector          OpCode = 145
	OpMatrixTimesMatrix          OpCode = 146
	OpOuterProduct               OpCode = 147
	OpDot                        OpCode = 148
	OpAny                        OpCode = 154
	OpAll                        OpCode = 155
	OpIsNan                      OpCode = 156
	OpIsInf                      OpCode = 157
	OpLogicalEqual               OpCode = 164
	OpLogicalNotEqual            OpCode = 165
	OpLogicalOr                  OpCode = 166
	OpLogicalAnd                 OpCode = 167
	OpLogicalNot                 OpCode = 168
	OpSelect                     OpCode = 169
	OpIEqual                     OpCode = 170
	OpINotEqual                  OpCode = 171
	OpUGreaterThan               OpCode = 172
	OpSGreaterThan               OpCode = 173
	OpUGreaterThanEqual          OpCode = 174
	OpSGreaterThanEqual          OpCode = 175
	OpULessThan                  OpCode = 176
	OpSLessThan                  OpCode = 177
	OpULessThanEqual             OpCode = 178
	OpSLessThanEqual             OpCode = 179
	OpFOrdEqual                  OpCode = 180
	OpFUnordEqual                OpCode = 181
	OpFOrdNotEqual               OpCode = 182
	OpFUnordNotEqual             OpCode = 183
	OpFOrdLessThan               OpCode = 184
	OpFUnordLessThan             OpCode = 185
	OpFOrdGreaterThan            OpCode = 186
	OpFUnordGreaterThan          OpCode = 187
	OpFOrdLessThanEqual          OpCode = 188
	OpFUnordLessThanEqual        OpCode = 189
	OpFOrdGreaterThanEqual       OpCode = 190
	OpFUnordGreaterThanEqual     OpCode = 191
	OpShiftRightLogical          OpCode = 194
	OpShiftRightArithmetic       OpCode = 195
	OpShiftLeftLogical           OpCode = 196
	OpBitwiseOr                  OpCode = 197
	OpBitwiseXor                 OpCode = 198
	OpBitwiseAnd                 OpCode = 199
	OpNot                        OpCode = 200
	OpBitFieldInsert             OpCode = 201
	OpBitFieldSExtract           OpCode = 202
	OpBitFieldUExtract           OpCode = 203
	OpBitReverse                 OpCode = 204
	OpBitCount                   OpCode = 205
	OpDPdx                       OpCode = 207
	OpDPdy                       OpCode = 208
	OpFwidth                     OpCode = 209
	OpDPdxFine                   OpCode = 210
	OpDPdyFine                   OpCode = 211
	OpFwidthFine                 OpCode = 212
	OpDPdxCoarse                 OpCode = 213
	OpDPdyCoarse                 OpCode = 214
	OpFwidthCoarse               OpCode = 215
	OpControlBarrier             OpCode = 224
	OpMemoryBarrier              OpCode = 225
	OpPhi                        OpCode = 245
	OpLoopMerge                  OpCode = 246
	OpSelectionMerge             OpCode = 247
	OpLabel                      OpCode = 248
	OpBranch                     OpCode = 249
	OpBranchConditional          OpCode = 250
	OpSwitch                     OpCode = 251
	OpKill                       OpCode = 252
	OpReturn                     OpCode = 253
	OpReturnValue                OpCode = 254
	OpUnreachable                OpCode = 255
	OpNoLine                     OpCode = 317
	OpModuleProcessed            OpCode = 330
	OpTerminateInvocation        OpCode = 4416
	OpDemoteToHelperInvocation   OpCode = 5380
)

var opcodeNames = map[OpCode]string{
	OpNop:                        "OpNop",
	OpUndef:                      "OpUndef",
	OpSourceContinued:            "OpSourceContinued",
	OpSource:                     "OpSource",
	OpSourceExtension:            "OpSourceExtension",
	OpName:                       "OpName",
	OpMemberName:                 "OpMemberName",
	OpString:                     "OpString",
	OpLine:                       "OpLine",
	OpExtension:                  "OpExtension",
	OpExtInstImport:              "OpExtInstImport",
	OpExtInst:                    "OpExtInst",
	OpMemoryModel:                "OpMemoryModel",
	OpEntryPoint:                 "OpEntryPoint",
	OpExecutionMode:              "OpExecutionMode",
	OpCapability:                 "OpCapability",
	OpTypeVoid:                   "OpTypeVoid",
	OpTypeBool:                   "OpTypeBool",
	OpTypeInt:                    "OpTypeInt",
	OpTypeFloat:                  "OpTypeFloat",
	OpTypeVector:                 "OpTypeVector",
	OpTypeMatrix:                 "OpTypeMatrix",
	OpTypeImage:                  "OpTypeImage",
	OpTypeSampler:                "OpTypeSampler",
	OpTypeSampledImage:           "OpTypeSampledImage",
	OpTypeArray:                  "OpTypeArray",
	OpTypeRuntimeArray:           "OpTypeRuntimeArray",
	OpTypeStruct:                 "OpTypeStruct",
	OpTypePointer:                "OpTypePointer",
	OpTypeFunction:               "OpTypeFunction",
	OpConstantTrue:               "OpConstantTrue",
	OpConstantFalse:              "OpConstantFalse",
	OpConstant:                   "OpConstant",
	OpConstantComposite:          "OpConstantComposite",
	OpConstantNull:               "OpConstantNull",
	OpSpecConstantTrue:           "OpSpecConstantTrue",
	OpSpecConstantFalse:          "OpSpecConstantFalse",
	OpSpecConstant:               "OpSpecConstant",
	OpSpecConstantComposite:      "OpSpecConstantComposite",
	OpSpecConstantOp:             "OpSpecConstantOp",
	OpFunction:                   "OpFunction",
	OpFunctionParameter:          "OpFunctionParameter",
	OpFunctionEnd:                "OpFunctionEnd",
	OpFunctionCall:               "OpFunctionCall",
	OpVariable:                   "OpVariable",
	OpLoad:                       "OpLoad",
	OpStore:                      "OpStore",
	OpCopyMemory:                 "OpCopyMemory",
	OpAccessChain:                "OpAccessChain",
	OpInBoundsAccessChain:        "OpInBoundsAccessChain",
	OpArrayLength:                "OpArrayLength",
	OpDecorate:                   "OpDecorate",
	OpMemberDecorate:             "OpMemberDecorate",
	OpDecorationGroup:            "OpDecorationGroup",
	OpVectorExtractDynamic:       "OpVectorExtractDynamic",
	OpVectorInsertDynamic:        "OpVectorInsertDynamic",
	OpVectorShuffle:              "OpVectorShuffle",
	OpCompositeConstruct:         "OpCompositeConstruct",
	OpCompositeExtract:           "OpCompositeExtract",
	OpCompositeInsert:            "OpCompositeInsert",
	OpCopyObject:                 "OpCopyObject",
	OpTranspose:                  "OpTranspose",
	OpSampledImage:               "OpSampledImage",
	OpImageSampleImplicitLod:     "OpImageSampleImplicitLod",
	OpImageSampleExplicitLod:     "OpImageSampleExplicitLod",
	OpImageSampleDrefImplicitLod: "OpImageSampleDrefImplicitLod",
	OpImageSampleDrefExplicitLod: "OpImageSampleDrefExplicitLod",
	OpImageFetch:                 "OpImageFetch",
	OpImageGather:                "OpImageGather",
	OpImageDrefGather:            "OpImageDrefGather",
	OpImageRead:                  "OpImageRead",
	OpImageWrite:                 "OpImageWrite",
	OpImage:                      "OpImage",
	OpImageQuerySizeLod:          "OpImageQuerySizeLod",
	OpImageQuerySize:             "OpImageQuerySize",
	OpImageQueryLod:              "OpImageQueryLod",
	OpImageQueryLevels:           "OpImageQueryLevels",
	OpImageQuerySamples:          "OpImageQuerySamples",
	OpConvertFToU:                "OpConvertFToU",
	OpConvertFToS:                "OpConvertFToS",
	OpConvertSToF:                "OpConvertSToF",
	OpConvertUToF:                "OpConvertUToF",
	OpUConvert:                   "OpUConvert",
	OpSConvert:                   "OpSConvert",
	OpFConvert:                   "OpFConvert",
	OpQuantizeToF16:              "OpQuantizeToF16",
	OpBitcast:                    "OpBitcast",
	OpSNegate:                    "OpSNegate",
	OpFNegate:                    "OpFNegate",
	OpIAdd:                       "OpIAdd",
	OpFAdd:                       "OpFAdd",
	OpISub:                       "OpISub",
	OpFSub:                       "OpFSub",
	OpIMul:                       "OpIMul",
	OpFMul:                       "OpFMul",
	OpUDiv:                       "OpUDiv",
	OpSDiv:                       "OpSDiv",
	OpFDiv:                       "OpFDiv",
	OpUMod:                       "OpUMod",
	OpSRem:                       "OpSRem",
	OpSMod:                       "OpSMod",
	OpFRem:                       "OpFRem",
	OpFMod:                       "OpFMod",
	OpVectorTimesScalar:          "OpVectorTimesScalar",
	OpMatrixTimesScalar:          "OpMatrixTimesScalar",
	OpVectorTimesMatrix:          "OpVectorTimesMatrix",
	OpMatrixTimesVector:          "OpMatrixTimesVector",
	OpMatrixTimesMatrix:          "OpMatrixTimesMatrix",
	OpOuterProduct:               "OpOuterProduct",
	OpDot:                        "OpDot",
	OpAny:                        "OpAny",
	OpAll:                        "OpAll",
	OpIsNan:                      "OpIsNan",
	OpIsInf:                      "OpIsInf",
	OpLogicalEqual:               "OpLogicalEqual",
	OpLogicalNotEqual:            "OpLogicalNotEqual",
	OpLogicalOr:                  "OpLogicalOr",
	OpLogicalAnd:                 "OpLogicalAnd",
	OpLogicalNot:                 "OpLogicalNot",
	OpSelect:                     "OpSelect",
	OpIEqual:                     "OpIEqual",
	OpINotEqual:                  "OpINotEqual",
	OpUGreaterThan:               "OpUGreaterThan",
	OpSGreaterThan:               "OpSGreaterThan",
	OpUGreaterThanEqual:          "OpUGreaterThanEqual",
	OpSGreaterThanEqual:          "OpSGreaterThanEqual",
	OpULessThan:                  "OpULessThan",
	OpSLessThan:                  "OpSLessThan",
	OpULessThanEqual:             "OpULessThanEqual",
	OpSLessThanEqual:             "OpSLessThanEqual",
	OpFOrdEqual:                  "OpFOrdEqual",
	OpFUnordEqual:                "OpFUnordEqual",
	OpFOrdNotEqual:               "OpFOrdNotEqual",
	OpFUnordNotEqual:             "OpFUnordNotEqual",
	OpFOrdLessThan:               "OpFOrdLessThan",
	OpFUnordLessThan:             "OpFUnordLessThan",
	OpFOrdGreaterThan:            "OpFOrdGreaterThan",
	OpFUnordGreaterThan:          "OpFUnordGreaterThan",
	OpFOrdLessThanEqual:          "OpFOrdLessThanEqual",
	OpFUnordLessThanEqual:        "OpFUnordLessThanEqual",
	OpFOrdGreaterThanEqual:       "OpFOrdGreaterThanEqual",
	OpFUnordGreaterThanEqual:     "OpFUnordGreaterThanEqual",
	OpShiftRightLogical:          "OpShiftRightLogical",
	OpShiftRightArithmetic:       "OpShiftRightArithmetic",
	OpShiftLeftLogical:           "OpShiftLeftLogical",
	OpBitwiseOr:                  "OpBitwiseOr",
	OpBitwiseXor:                 "OpBitwiseXor",
	OpBitwiseAnd:                 "OpBitwiseAnd",
	OpNot:                        "OpNot",
	OpBitFieldInsert:             "OpBitFieldInsert",
	OpBitFieldSExtract:           "OpBitFieldSExtract",
	OpBitFieldUExtract:           "OpBitFieldUExtract",
	OpBitReverse:                 "OpBitReverse",
	OpBitCount:                   "OpBitCount",
	OpDPdx:                       "OpDPdx",
	OpDPdy:                       "OpDPdy",
	OpFwidth:                     "OpFwidth",
	OpDPdxFine:                   "OpDPdxFine",
	OpDPdyFine:                   "OpDPdyFine",
	OpFwidthFine:                 "OpFwidthFine",
	OpDPdxCoarse:                 "OpDPdxCoarse",
	OpDPdyCoarse:                 "OpDPdyCoarse",
	OpFwidthCoarse:               "OpFwidthCoarse",
	OpControlBarrier:             "OpControlBarrier",
	OpMemoryBarrier:              "OpMemoryBarrier",
	OpPhi:                        "OpPhi",
	OpLoopMerge:                  "OpLoopMerge",
	OpSelectionMerge:             "OpSelectionMerge",
	OpLabel:                      "OpLabel",
	OpBranch:                     "OpBranch",
	OpBranchConditional:          "OpBranchConditional",
	OpSwitch:                     "OpSwitch",
	OpKill:                       "OpKill",
	OpReturn:                     "OpReturn",
	OpReturnValue:                "OpReturnValue",
	OpUnreachable:                "OpUnreachable",
	OpNoLine:                     "OpNoLine",
	OpModuleProcessed:            "OpModuleProcessed",
	OpTerminateInvocation:        "OpTerminateInvocation",
	OpDemoteToHelperInvocation:   "OpDemoteToHelperInvocation",
}

func (op OpCode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Op%d", uint16(op))
}

// Decoration represents a SPIR-V decoration.
type Decoration uint32

// Decorations
const (
	DecorationBlock         Decoration = 2
	DecorationBufferBlock   Decoration = 3
	DecorationRowMajor      Decoration = 4
	DecorationColMajor      Decoration = 5
	DecorationArrayStride   Decoration = 6
	DecorationMatrixStride  Decoration = 7
	DecorationBuiltIn       Decoration = 11
	DecorationNoPerspective Decoration = 13
	DecorationFlat          Decoration = 14
	DecorationCentroid      Decoration = 16
	DecorationSample        Decoration = 17
	DecorationInvariant     Decoration = 18
	DecorationNonWritable   Decoration = 24
	DecorationNonReadable   Decoration = 25
	DecorationLocation      Decoration = 30
	DecorationComponent     Decoration = 31
	DecorationIndex         Decoration = 32
	DecorationBinding       Decoration = 33
	DecorationDescriptorSet Decoration = 34
	DecorationOffset        Decoration = 35
)

var decorationNames = map[Decoration]string{
	DecorationBlock:         "Block",
	DecorationBufferBlock:   "BufferBlock",
	DecorationRowMajor:      "RowMajor",
	DecorationColMajor:      "ColMajor",
	DecorationArrayStride:   "ArrayStride",
	DecorationMatrixStride:  "MatrixStride",
	DecorationBuiltIn:       "BuiltIn",
	DecorationNoPerspective: "NoPerspective",
	DecorationFlat:          "Flat",
	DecorationCentroid:      "Centroid",
	DecorationSample:        "Sample",
	DecorationInvariant:     "Invariant",
	DecorationNonWritable:   "NonWritable",
	DecorationNonReadable:   "NonReadable",
	DecorationLocation:      "Location",
	DecorationComponent:     "Component",
	DecorationIndex:         "Index",
	DecorationBinding:       "Binding",
	DecorationDescriptorSet: "DescriptorSet",
	DecorationOffset:        "Offset",
}

// BuiltIn represents a SPIR-V builtin decoration value.
type BuiltIn uint32

// Builtins
const (
	BuiltInPosition             BuiltIn = 0
	BuiltInPointSize            BuiltIn = 1
	BuiltInClipDistance         BuiltIn = 3
	BuiltInCullDistance         BuiltIn = 4
	BuiltInPrimitiveID          BuiltIn = 7
	BuiltInFragCoord            BuiltIn = 15
	BuiltInPointCoord           BuiltIn = 16
	BuiltInFrontFacing          BuiltIn = 17
	BuiltInSampleID             BuiltIn = 18
	BuiltInSampleMask           BuiltIn = 20
	BuiltInFragDepth            BuiltIn = 22
	BuiltInNumWorkgroups        BuiltIn = 24
	BuiltInWorkgroupID          BuiltIn = 26
	BuiltInLocalInvocationID    BuiltIn = 27
	BuiltInGlobalInvocationID   BuiltIn = 28
	BuiltInLocalInvocationIndex BuiltIn = 29
	BuiltInVertexIndex          BuiltIn = 42
	BuiltInInstanceIndex        BuiltIn = 43
	BuiltInViewIndex            BuiltIn = 4440
)

var builtinNames = map[BuiltIn]string{
	BuiltInPosition:             "Position",
	BuiltInPointSize:            "PointSize",
	BuiltInClipDistance:         "ClipDistance",
	BuiltInCullDistance:         "CullDistance",
	BuiltInPrimitiveID:          "PrimitiveId",
	BuiltInFragCoord:            "FragCoord",
	BuiltInPointCoord:           "PointCoord",
	BuiltInFrontFacing:          "FrontFacing",
	BuiltInSampleID:             "SampleId",
	BuiltInSampleMask:           "SampleMask",
	BuiltInFragDepth:            "FragDepth",
	BuiltInNumWorkgroups:        "NumWorkgroups",
	BuiltInWorkgroupID:          "WorkgroupId",
	BuiltInLocalInvocationID:    "LocalInvocationId",
	BuiltInGlobalInvocationID:   "GlobalInvocationId",
	BuiltInLocalInvocationIndex: "LocalInvocationIndex",
	BuiltInVertexIndex:          "VertexIndex",
	BuiltInInstanceIndex:        "InstanceIndex",
	BuiltInViewIndex:            "ViewIndex",
}

func (b BuiltIn) String() string {
	if name, ok := builtinNames[b]; ok {
		return name
	}
	return fmt.Sprintf("BuiltIn(%d)", uint32(b))
}

// StorageClass represents a SPIR-V storage class.
type StorageClass uint32

// Storage classes
const (
	StorageClassUniformConstant StorageClass = 0
	StorageClassInput           StorageClass = 1
	StorageClassUniform         StorageClass = 2
	StorageClassOutput          StorageClass = 3
	StorageClassWorkgroup       StorageClass = 4
	StorageClassPrivate         StorageClass = 6
	StorageClassFunction        StorageClass = 7
	StorageClassPushConstant    StorageClass = 9
	StorageClassStorageBuffer   StorageClass = 12
)

var storageClassNames = map[StorageClass]string{
	StorageClassUniformConstant: "UniformConstant",
	StorageClassInput:           "Input",
	StorageClassUniform:         "Uniform",
	StorageClassOutput:          "Output",
	StorageClassWorkgroup:       "Workgroup",
	StorageClassPrivate:         "Private",
	StorageClassFunction:        "Function",
	StorageClassPushConstant:    "PushConstant",
	StorageClassStorageBuffer:   "StorageBuffer",
}

// Capability represents a SPIR-V capability.
type Capability uint32

// Capabilities
const (
	CapabilityMatrix            Capability = 0
	CapabilityShader            Capability = 1
	CapabilityFloat16           Capability = 9
	CapabilityFloat64           Capability = 10
	CapabilityInt64             Capability = 11
	CapabilityInt16             Capability = 22
	CapabilityClipDistance      Capability = 32
	CapabilityCullDistance      Capability = 33
	CapabilityImageCubeArray    Capability = 34
	CapabilitySampleRateShading Capability = 35
	CapabilitySampled1D         Capability = 43
	CapabilityImage1D           Capability = 44
	CapabilitySampledCubeArray  Capability = 45
	CapabilityImageQuery        Capability = 50
	CapabilityDerivativeControl Capability = 51
	CapabilityMultiView         Capability = 4439
)

var capabilityNames = map[Capability]string{
	CapabilityMatrix:            "Matrix",
	CapabilityShader:            "Shader",
	CapabilityFloat16:           "Float16",
	CapabilityFloat64:           "Float64",
	CapabilityInt64:             "Int64",
	CapabilityInt16:             "Int16",
	CapabilityClipDistance:      "ClipDistance",
	CapabilityCullDistance:      "CullDistance",
	CapabilityImageCubeArray:    "ImageCubeArray",
	CapabilitySampleRateShading: "SampleRateShading",
	CapabilitySampled1D:         "Sampled1D",
	CapabilityImage1D:           "Image1D",
	CapabilitySampledCubeArray:  "SampledCubeArray",
	CapabilityImageQuery:        "ImageQuery",
	CapabilityDerivativeControl: "DerivativeControl",
	CapabilityMultiView:         "MultiView",
}

// supportedCapabilities are the capabilities the front end can lower.
// Anything else is rejected when Options.StrictCapabilities is set.
var supportedCapabilities = map[Capability]bool{
	CapabilityMatrix:            true,
	CapabilityShader:            true,
	CapabilityFloat16:           true,
	CapabilityFloat64:           true,
	CapabilityInt64:             true,
	CapabilityClipDistance:      true,
	CapabilityCullDistance:      true,
	CapabilityImageCubeArray:    true,
	CapabilitySampleRateShading: true,
	CapabilitySampled1D:         true,
	CapabilityImage1D:           true,
	CapabilitySampledCubeArray:  true,
	CapabilityImageQuery:        true,
	CapabilityDerivativeControl: true,
	CapabilityMultiView:         true,
}

// ExecutionModel represents a SPIR-V execution model.
type ExecutionModel uint32

// Execution models
const (
	ExecutionModelVertex    ExecutionModel = 0
	ExecutionModelFragment  ExecutionModel = 4
	ExecutionModelGLCompute ExecutionModel = 5
)

var executionModelNames = map[ExecutionModel]string{
	ExecutionModelVertex:    "Vertex",
	ExecutionModelFragment:  "Fragment",
	ExecutionModelGLCompute: "GLCompute",
}

// ExecutionMode represents a SPIR-V execution mode.
type ExecutionMode uint32

// Execution modes
const (
	ExecutionModeOriginUpperLeft    ExecutionMode = 7
	ExecutionModeOriginLowerLeft    ExecutionMode = 8
	ExecutionModeEarlyFragmentTests ExecutionMode = 9
	ExecutionModeDepthReplacing     ExecutionMode = 12
	ExecutionModeDepthGreater       ExecutionMode = 14
	ExecutionModeDepthLess          ExecutionMode = 15
	ExecutionModeDepthUnchanged     ExecutionMode = 16
	ExecutionModeLocalSize          ExecutionMode = 17
)

var executionModeNames = map[ExecutionMode]string{
	ExecutionModeOriginUpperLeft:    "OriginUpperLeft",
	ExecutionModeOriginLowerLeft:    "OriginLowerLeft",
	ExecutionModeEarlyFragmentTests: "EarlyFragmentTests",
	ExecutionModeDepthReplacing:     "DepthReplacing",
	ExecutionModeDepthGreater:       "DepthGreater",
	ExecutionModeDepthLess:          "DepthLess",
	ExecutionModeDepthUnchanged:     "DepthUnchanged",
	ExecutionModeLocalSize:          "LocalSize",
}

// AddressingModel represents a SPIR-V addressing model.
type AddressingModel uint32

// MemoryModel represents a SPIR-V memory model.
type MemoryModel uint32

// Addressing and memory models
const (
	AddressingModelLogical AddressingModel = 0
	MemoryModelGLSL450     MemoryModel     = 1
	MemoryModelVulkan      MemoryModel     = 3
)

// Dim represents an image dimensionality.
type Dim uint32

// Image dimensions
const (
	Dim1D          Dim = 0
	Dim2D          Dim = 1
	Dim3D          Dim = 2
	DimCube        Dim = 3
	DimRect        Dim = 4
	DimBuffer      Dim = 5
	DimSubpassData Dim = 6
)

// Image operand mask bits.
const (
	ImageOperandsBias         uint32 = 0x1
	ImageOperandsLod          uint32 = 0x2
	ImageOperandsGrad         uint32 = 0x4
	ImageOperandsConstOffset  uint32 = 0x8
	ImageOperandsOffset       uint32 = 0x10
	ImageOperandsConstOffsets uint32 = 0x20
	ImageOperandsSample       uint32 = 0x40
	ImageOperandsMinLod       uint32 = 0x80
)

// Memory semantics bits used by barriers.
const (
	MemorySemanticsUniformMemory   uint32 = 0x40
	MemorySemanticsWorkgroupMemory uint32 = 0x100
	MemorySemanticsImageMemory     uint32 = 0x800
)

// FunctionControl, SelectionControl and LoopControl masks.
type (
	FunctionControl  uint32
	SelectionControl uint32
	LoopControl      uint32
)

// Control masks
const (
	FunctionControlNone  FunctionControl  = 0
	SelectionControlNone SelectionControl = 0
	LoopControlNone      LoopControl      = 0
)

// GLSL.std.450 extended instruction numbers.
const (
	GLSLstd450Round           = 1
	GLSLstd450RoundEven       = 2
	GLSLstd450Trunc           = 3
	GLSLstd450FAbs            = 4
	GLSLstd450SAbs            = 5
	GLSLstd450FSign           = 6
	GLSLstd450SSign           = 7
	GLSLstd450Floor           = 8
	GLSLstd450Ceil            = 9
	GLSLstd450Fract           = 10
	GLSLstd450Radians         = 11
	GLSLstd450Degrees         = 12
	GLSLstd450Sin             = 13
	GLSLstd450Cos             = 14
	GLSLstd450Tan             = 15
	GLSLstd450Asin            = 16
	GLSLstd450Acos            = 17
	GLSLstd450Atan            = 18
	GLSLstd450Sinh            = 19
	GLSLstd450Cosh            = 20
	GLSLstd450Tanh            = 21
	GLSLstd450Asinh           = 22
	GLSLstd450Acosh           = 23
	GLSLstd450Atanh           = 24
	GLSLstd450Atan2           = 25
	GLSLstd450Pow             = 26
	GLSLstd450Exp             = 27
	GLSLstd450Log             = 28
	GLSLstd450Exp2            = 29
	GLSLstd450Log2            = 30
	GLSLstd450Sqrt            = 31
	GLSLstd450InverseSqrt     = 32
	GLSLstd450Determinant     = 33
	GLSLstd450MatrixInverse   = 34
	GLSLstd450Modf            = 35
	GLSLstd450ModfStruct      = 36
	GLSLstd450FMin            = 37
	GLSLstd450UMin            = 38
	GLSLstd450SMin            = 39
	GLSLstd450FMax            = 40
	GLSLstd450UMax            = 41
	GLSLstd450SMax            = 42
	GLSLstd450FClamp          = 43
	GLSLstd450UClamp          = 44
	GLSLstd450SClamp          = 45
	GLSLstd450FMix            = 46
	GLSLstd450IMix            = 47
	GLSLstd450Step            = 48
	GLSLstd450SmoothStep      = 49
	GLSLstd450Fma             = 50
	GLSLstd450Frexp           = 51
	GLSLstd450FrexpStruct     = 52
	GLSLstd450Ldexp           = 53
	GLSLstd450PackSnorm4x8    = 54
	GLSLstd450PackUnorm4x8    = 55
	GLSLstd450PackSnorm2x16   = 56
	GLSLstd450PackUnorm2x16   = 57
	GLSLstd450PackHalf2x16    = 58
	GLSLstd450UnpackSnorm2x16 = 60
	GLSLstd450UnpackUnorm2x16 = 61
	GLSLstd450UnpackHalf2x16  = 62
	GLSLstd450UnpackSnorm4x8  = 63
	GLSLstd450UnpackUnorm4x8  = 64
	GLSLstd450Length          = 66
	GLSLstd450Distance        = 67
	GLSLstd450Cross           = 68
	GLSLstd450Normalize       = 69
	GLSLstd450FaceForward     = 70
	GLSLstd450Reflect         = 71
	GLSLstd450Refract         = 72
	GLSLstd450FindILsb        = 73
	GLSLstd450FindSMsb        = 74
	GLSLstd450FindUMsb        = 75
	GLSLstd450NMin            = 79
	GLSLstd450NMax            = 80
	GLSLstd450NClamp          = 81
)

func (d Decoration) String() string {
	if name, ok := decorationNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Decoration(%d)", uint32(d))
}

func (c StorageClass) String() string {
	if name, ok := storageClassNames[c]; ok {
		return name
	}
	return fmt.Sprintf("StorageClass(%d)", uint32(c))
}

func (c Capability) String() string {
	if name, ok := capabilityNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Capability(%d)", uint32(c))
}

func (m ExecutionModel) String() string {
	if name, ok := executionModelNames[m]; ok {
		return name
	}
	return fmt.Sprintf("ExecutionModel(%d)", uint32(m))
}

func (m ExecutionMode) String() string {
	if name, ok := executionModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("ExecutionMode(%d)", uint32(m))
}
