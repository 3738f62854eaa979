package spirv

import (
	"strconv"

	"github.com/gogpu/naga/ir"
)

// Options configures the SPIR-V front end.
type Options struct {
	// AdjustCoordinateSpace negates the Y component of vertex positions,
	// converting from the Vulkan clip space convention to the WebGPU one.
	AdjustCoordinateSpace bool

	// StrictCapabilities rejects modules that declare capabilities the
	// front end does not know how to lower.
	StrictCapabilities bool
}

// Parse parses a SPIR-V binary (either byte order) into a naga IR module.
func Parse(data []byte, opts Options) (*ir.Module, error) {
	words, err := decodeWords(data)
	if err != nil {
		return nil, err
	}
	return ParseWords(words, opts)
}

// ParseWords parses a SPIR-V module given as host-order words.
func ParseWords(words []uint32, opts Options) (*ir.Module, error) {
	if _, err := readHeader(words); err != nil {
		return nil, err
	}
	insts, err := readInstructions(words)
	if err != nil {
		return nil, err
	}
	p := newParser(opts)
	if err := p.collect(insts); err != nil {
		return nil, err
	}
	return p.lower()
}

// decoration holds the decorations applied to an id or a struct member.
type decoration struct {
	builtin       *BuiltIn
	location      *uint32
	index         *uint32
	binding       *uint32
	set           *uint32
	offset        *uint32
	arrayStride   uint32
	matrixStride  uint32
	block         bool
	bufferBlock   bool
	flat          bool
	noPerspective bool
	centroid      bool
	sample        bool
	invariant     bool
	nonWritable   bool
	nonReadable   bool
	rowMajor      bool
}

type memberKey struct {
	id     uint32
	member uint32
}

type entryPointDecl struct {
	model      ExecutionModel
	function   uint32
	name       string
	interfaces []uint32
	modes      map[ExecutionMode][]uint32
}

// spvVar is a module-scope OpVariable.
type spvVar struct {
	id      uint32
	typeID  uint32 // pointer type
	class   StorageClass
	init    uint32
	handle  ir.GlobalVariableHandle
	lowered bool
}

// spvConst is a constant instruction.
type spvConst struct {
	id       uint32
	op       OpCode
	typeID   uint32
	operands []uint32
	handle   ir.ConstantHandle
	done     bool
	visiting bool
}

// parser holds the module-wide state of a parse.
type parser struct {
	opts   Options
	module *ir.Module

	names             map[uint32]string
	memberNames       map[memberKey]string
	decorations       map[uint32]*decoration
	memberDecorations map[memberKey]*decoration

	types     map[uint32]*spvType
	typeKeys  map[string]ir.TypeHandle
	consts    map[uint32]*spvConst
	constList []*spvConst
	vars      map[uint32]*spvVar
	varList   []*spvVar

	extInstSets map[uint32]string
	glslExt     uint32

	entryPoints []*entryPointDecl
	functions   []*spvFunction
	funcByID    map[uint32]*spvFunction

	// handles used with depth comparisons; patched after lowering
	comparisonSamplers map[ir.GlobalVariableHandle]bool
	depthImages        map[ir.GlobalVariableHandle]bool

	// gl_PerVertex style block members read or written by any function
	usedMembers map[memberKey]bool
}

func newParser(opts Options) *parser {
	return &parser{
		opts:               opts,
		module:             &ir.Module{},
		names:              make(map[uint32]string),
		memberNames:        make(map[memberKey]string),
		decorations:        make(map[uint32]*decoration),
		memberDecorations:  make(map[memberKey]*decoration),
		types:              make(map[uint32]*spvType),
		typeKeys:           make(map[string]ir.TypeHandle),
		consts:             make(map[uint32]*spvConst),
		vars:               make(map[uint32]*spvVar),
		extInstSets:        make(map[uint32]string),
		funcByID:           make(map[uint32]*spvFunction),
		comparisonSamplers: make(map[ir.GlobalVariableHandle]bool),
		depthImages:        make(map[ir.GlobalVariableHandle]bool),
		usedMembers:        make(map[memberKey]bool),
	}
}

func (p *parser) decoration(id uint32) *decoration {
	d, ok := p.decorations[id]
	if !ok {
		d = &decoration{}
		p.decorations[id] = d
	}
	return d
}

func (p *parser) memberDecoration(id, member uint32) *decoration {
	k := memberKey{id, member}
	d, ok := p.memberDecorations[k]
	if !ok {
		d = &decoration{}
		p.memberDecorations[k] = d
	}
	return d
}

// decorationOf returns the decorations of id, or an empty set.
func (p *parser) decorationOf(id uint32) *decoration {
	if d, ok := p.decorations[id]; ok {
		return d
	}
	return &decoration{}
}

func (p *parser) memberDecorationOf(id, member uint32) *decoration {
	if d, ok := p.memberDecorations[memberKey{id, member}]; ok {
		return d
	}
	return &decoration{}
}

// collect walks the instruction stream once, recording module-level
// declarations and splitting function bodies into basic blocks.
func (p *parser) collect(insts []rawInst) error {
	var fn *spvFunction
	var blk *block
	for _, inst := range insts {
		w := inst.Words
		need := func(n int) error {
			if len(w) < n {
				return parseErrorf(inst.offset, "%s: expected at least %d operands, got %d", inst.Opcode, n, len(w))
			}
			return nil
		}
		if fn != nil {
			switch inst.Opcode {
			case OpFunctionParameter:
				if err := need(2); err != nil {
					return err
				}
				fn.params = append(fn.params, param{typeID: w[0], id: w[1]})
				continue
			case OpFunctionEnd:
				if blk != nil {
					return parseErrorf(inst.offset, "block %%%d has no terminator", blk.label)
				}
				p.functions = append(p.functions, fn)
				p.funcByID[fn.id] = fn
				fn = nil
				continue
			case OpLabel:
				if err := need(1); err != nil {
					return err
				}
				if blk != nil {
					return parseErrorf(inst.offset, "block %%%d has no terminator", blk.label)
				}
				blk = &block{label: w[0], index: len(fn.blocks)}
				fn.blocks = append(fn.blocks, blk)
				continue
			}
			if blk == nil {
				return parseErrorf(inst.offset, "%s outside of a block", inst.Opcode)
			}
			switch inst.Opcode {
			case OpVariable:
				fn.variables = append(fn.variables, inst)
			case OpPhi:
				blk.phis = append(blk.phis, inst)
			case OpSelectionMerge, OpLoopMerge:
				m := inst
				blk.merge = &m
			case OpBranch, OpBranchConditional, OpSwitch, OpReturn, OpReturnValue,
				OpKill, OpTerminateInvocation, OpUnreachable:
				blk.term = inst
				blk = nil
			case OpLine, OpNoLine, OpNop:
			default:
				blk.body = append(blk.body, inst)
			}
			continue
		}

		switch inst.Opcode {
		case OpNop, OpSource, OpSourceContinued, OpSourceExtension, OpString,
			OpLine, OpNoLine, OpModuleProcessed, OpMemoryModel, OpDecorationGroup:
		case OpCapability:
			if err := need(1); err != nil {
				return err
			}
			c := Capability(w[0])
			if p.opts.StrictCapabilities && !supportedCapabilities[c] {
				return parseErrorf(inst.offset, "unsupported capability %s", c)
			}
		case OpExtension:
		case OpExtInstImport:
			if err := need(2); err != nil {
				return err
			}
			name, _ := decodeString(w[1:])
			p.extInstSets[w[0]] = name
			if name == "GLSL.std.450" {
				p.glslExt = w[0]
			}
		case OpEntryPoint:
			if err := need(3); err != nil {
				return err
			}
			name, n := decodeString(w[2:])
			p.entryPoints = append(p.entryPoints, &entryPointDecl{
				model:      ExecutionModel(w[0]),
				function:   w[1],
				name:       name,
				interfaces: append([]uint32(nil), w[2+n:]...),
				modes:      make(map[ExecutionMode][]uint32),
			})
		case OpExecutionMode:
			if err := need(2); err != nil {
				return err
			}
			for _, ep := range p.entryPoints {
				if ep.function == w[0] {
					ep.modes[ExecutionMode(w[1])] = append([]uint32(nil), w[2:]...)
				}
			}
		case OpName:
			if err := need(1); err != nil {
				return err
			}
			p.names[w[0]], _ = decodeString(w[1:])
		case OpMemberName:
			if err := need(2); err != nil {
				return err
			}
			p.memberNames[memberKey{w[0], w[1]}], _ = decodeString(w[2:])
		case OpDecorate:
			if err := need(2); err != nil {
				return err
			}
			applyDecoration(p.decoration(w[0]), Decoration(w[1]), w[2:])
		case OpMemberDecorate:
			if err := need(3); err != nil {
				return err
			}
			applyDecoration(p.memberDecoration(w[0], w[1]), Decoration(w[2]), w[3:])
		case OpTypeVoid, OpTypeBool, OpTypeInt, OpTypeFloat, OpTypeVector, OpTypeMatrix,
			OpTypeImage, OpTypeSampler, OpTypeSampledImage, OpTypeArray, OpTypeRuntimeArray,
			OpTypeStruct, OpTypePointer, OpTypeFunction:
			t, err := decodeType(inst)
			if err != nil {
				return err
			}
			p.types[w[0]] = t
		case OpConstantTrue, OpConstantFalse, OpConstant, OpConstantComposite, OpConstantNull,
			OpSpecConstantTrue, OpSpecConstantFalse, OpSpecConstant, OpSpecConstantComposite:
			if err := need(2); err != nil {
				return err
			}
			c := &spvConst{id: w[1], op: inst.Opcode, typeID: w[0], operands: w[2:]}
			p.consts[c.id] = c
			p.constList = append(p.constList, c)
		case OpSpecConstantOp:
			return parseErrorf(inst.offset, "OpSpecConstantOp is not supported")
		case OpUndef:
			if err := need(2); err != nil {
				return err
			}
			c := &spvConst{id: w[1], op: OpConstantNull, typeID: w[0]}
			p.consts[c.id] = c
			p.constList = append(p.constList, c)
		case OpVariable:
			if err := need(3); err != nil {
				return err
			}
			v := &spvVar{id: w[1], typeID: w[0], class: StorageClass(w[2])}
			if len(w) > 3 {
				v.init = w[3]
			}
			p.vars[v.id] = v
			p.varList = append(p.varList, v)
		case OpFunction:
			if err := need(4); err != nil {
				return err
			}
			fn = &spvFunction{resultType: w[0], id: w[1], typeID: w[3]}
		default:
			return parseErrorf(inst.offset, "unsupported module-level instruction %s", inst.Opcode)
		}
	}
	if fn != nil {
		return parseErrorf(-1, "function %%%d is missing OpFunctionEnd", fn.id)
	}
	return nil
}

func applyDecoration(d *decoration, dec Decoration, args []uint32) {
	arg := func() *uint32 {
		if len(args) == 0 {
			return nil
		}
		v := args[0]
		return &v
	}
	switch dec {
	case DecorationBuiltIn:
		if len(args) > 0 {
			b := BuiltIn(args[0])
			d.builtin = &b
		}
	case DecorationLocation:
		d.location = arg()
	case DecorationIndex:
		d.index = arg()
	case DecorationBinding:
		d.binding = arg()
	case DecorationDescriptorSet:
		d.set = arg()
	case DecorationOffset:
		d.offset = arg()
	case DecorationArrayStride:
		if len(args) > 0 {
			d.arrayStride = args[0]
		}
	case DecorationMatrixStride:
		if len(args) > 0 {
			d.matrixStride = args[0]
		}
	case DecorationBlock:
		d.block = true
	case DecorationBufferBlock:
		d.bufferBlock = true
	case DecorationFlat:
		d.flat = true
	case DecorationNoPerspective:
		d.noPerspective = true
	case DecorationCentroid:
		d.centroid = true
	case DecorationSample:
		d.sample = true
	case DecorationInvariant:
		d.invariant = true
	case DecorationNonWritable:
		d.nonWritable = true
	case DecorationNonReadable:
		d.nonReadable = true
	case DecorationRowMajor:
		d.rowMajor = true
	}
}

// lower converts the collected declarations into the IR module.
func (p *parser) lower() (*ir.Module, error) {
	for _, c := range p.constList {
		if _, err := p.lowerConstant(c); err != nil {
			return nil, err
		}
	}
	for _, v := range p.varList {
		if err := p.lowerGlobal(v); err != nil {
			return nil, err
		}
	}

	if err := p.declareFunctions(); err != nil {
		return nil, err
	}
	for _, sf := range p.functions {
		if err := p.lowerFunction(sf); err != nil {
			return nil, err
		}
	}
	for _, ep := range p.entryPoints {
		if err := p.lowerEntryPoint(ep); err != nil {
			return nil, err
		}
	}

	p.patchDepthResources()

	if err := p.resolveTypes(); err != nil {
		return nil, err
	}
	return p.module, nil
}

// declareFunctions reserves an IR function per SPIR-V function so that
// calls can be lowered in any order. Functions that share a name with an
// entry point get a numeric suffix; the entry point keeps the plain name.
func (p *parser) declareFunctions() error {
	taken := make(map[string]bool)
	for _, ep := range p.entryPoints {
		taken[ep.name] = true
	}
	for i, sf := range p.functions {
		name := p.names[sf.id]
		if name != "" && taken[name] {
			base := name
			for n := 1; taken[name]; n++ {
				name = base + "_" + strconv.Itoa(n)
			}
		}
		if name != "" {
			taken[name] = true
		}
		sf.handle = ir.FunctionHandle(i)
		p.module.Functions = append(p.module.Functions, ir.Function{Name: name})
	}
	return nil
}

// patchDepthResources turns samplers and images used in depth comparisons
// into comparison samplers and depth textures.
func (p *parser) patchDepthResources() {
	for h := range p.comparisonSamplers {
		gv := &p.module.GlobalVariables[h]
		gv.Type = p.addType("", ir.SamplerType{Comparison: true})
	}
	for h := range p.depthImages {
		gv := &p.module.GlobalVariables[h]
		img, ok := p.module.Types[gv.Type].Inner.(ir.ImageType)
		if !ok {
			continue
		}
		img.Class = ir.ImageClassDepth
		img.SampledKind = 0
		gv.Type = p.addType("", img)
	}
}

// resolveTypes fills ExpressionTypes for every function and entry point.
func (p *parser) resolveTypes() error {
	resolve := func(fn *ir.Function) error {
		fn.ExpressionTypes = make([]ir.TypeResolution, len(fn.Expressions))
		for i := range fn.Expressions {
			res, err := ir.ResolveExpressionType(p.module, fn, ir.ExpressionHandle(i))
			if err != nil {
				return parseErrorf(-1, "function %q: expression %d: %v", fn.Name, i, err)
			}
			fn.ExpressionTypes[i] = res
		}
		return nil
	}
	for i := range p.module.Functions {
		if err := resolve(&p.module.Functions[i]); err != nil {
			return err
		}
	}
	for i := range p.module.EntryPoints {
		if err := resolve(&p.module.EntryPoints[i].Function); err != nil {
			return err
		}
	}
	return nil
}
