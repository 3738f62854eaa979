package spirv

import (
	"github.com/gogpu/naga/ir"
)

type param struct {
	typeID uint32
	id     uint32
}

// block is a SPIR-V basic block.
type block struct {
	label uint32
	index int
	phis  []rawInst
	body  []rawInst
	merge *rawInst
	term  rawInst
}

// spvFunction is a SPIR-V function split into basic blocks.
type spvFunction struct {
	id         uint32
	resultType uint32
	typeID     uint32
	params     []param
	blocks     []*block
	variables  []rawInst
	handle     ir.FunctionHandle
}

// emitter appends expressions to a function and wraps the ones that need
// evaluation in Emit statements of the current block.
type emitter struct {
	fn       *ir.Function
	block    *ir.Block
	start    ir.ExpressionHandle
	emitting bool
}

// needsEmit reports whether an expression kind must be covered by an Emit
// statement before it can be used.
func needsEmit(kind ir.ExpressionKind) bool {
	switch kind.(type) {
	case ir.Literal, ir.ExprConstant, ir.ExprOverride, ir.ExprZeroValue,
		ir.ExprFunctionArgument, ir.ExprGlobalVariable, ir.ExprLocalVariable,
		ir.ExprCallResult:
		return false
	}
	return true
}

func (e *emitter) add(kind ir.ExpressionKind) ir.ExpressionHandle {
	if needsEmit(kind) {
		if !e.emitting {
			e.start = ir.ExpressionHandle(len(e.fn.Expressions))
			e.emitting = true
		}
	} else {
		e.flush()
	}
	h := ir.ExpressionHandle(len(e.fn.Expressions))
	e.fn.Expressions = append(e.fn.Expressions, ir.Expression{Kind: kind})
	return h
}

func (e *emitter) flush() {
	if !e.emitting {
		return
	}
	e.emitting = false
	end := ir.ExpressionHandle(len(e.fn.Expressions))
	if end > e.start {
		*e.block = append(*e.block, ir.Statement{Kind: ir.StmtEmit{Range: ir.Range{Start: e.start, End: end}}})
	}
}

func (e *emitter) push(kind ir.StatementKind) {
	e.flush()
	*e.block = append(*e.block, ir.Statement{Kind: kind})
}

// into runs fn with blk as the current block.
func (e *emitter) into(blk *ir.Block, fn func() error) error {
	e.flush()
	saved := e.block
	e.block = blk
	err := fn()
	e.flush()
	e.block = saved
	return err
}

// value is a lowered SPIR-V result.
type value struct {
	expr   ir.ExpressionHandle
	typeID uint32
}

type phiStore struct {
	local uint32
	value uint32
}

type sampledImage struct {
	image, sampler value
}

// funcLowerer lowers one SPIR-V function body.
type funcLowerer struct {
	emitter
	p  *parser
	sf *spvFunction

	blocks  map[uint32]*block
	visited map[uint32]bool
	cur     *block

	values     map[uint32]value
	valueBlock map[uint32]int
	sampled    map[uint32]sampledImage

	defBlock   map[uint32]int
	resultType map[uint32]uint32
	insts      map[uint32]rawInst
	spills     map[uint32]uint32
	phiStores  map[uint32][]phiStore

	cache  map[uint32]value
	locals map[uint32]uint32

	// ids being re-lowered on the current operand path
	pending map[uint32]bool

	breakIf     *ir.ExpressionHandle
	fellThrough bool
}

func (p *parser) lowerFunction(sf *spvFunction) error {
	fn := &p.module.Functions[sf.handle]
	if len(sf.blocks) == 0 {
		return parseErrorf(-1, "function %q has no body", fn.Name)
	}
	f := &funcLowerer{
		emitter:    emitter{fn: fn, block: (*ir.Block)(&fn.Body)},
		p:          p,
		sf:         sf,
		blocks:     make(map[uint32]*block),
		visited:    make(map[uint32]bool),
		values:     make(map[uint32]value),
		valueBlock: make(map[uint32]int),
		sampled:    make(map[uint32]sampledImage),
		defBlock:   make(map[uint32]int),
		resultType: make(map[uint32]uint32),
		insts:      make(map[uint32]rawInst),
		spills:     make(map[uint32]uint32),
		phiStores:  make(map[uint32][]phiStore),
		cache:      make(map[uint32]value),
		locals:     make(map[uint32]uint32),
		pending:    make(map[uint32]bool),
	}
	for _, b := range sf.blocks {
		f.blocks[b.label] = b
	}

	for i, prm := range sf.params {
		ty, err := p.paramType(prm.typeID)
		if err != nil {
			return err
		}
		fn.Arguments = append(fn.Arguments, ir.FunctionArgument{Name: p.names[prm.id], Type: ty})
		h := f.add(ir.ExprFunctionArgument{Index: uint32(i)})
		f.cache[prm.id] = value{h, prm.typeID}
	}
	if rt, err := p.typeByID(sf.resultType); err != nil {
		return err
	} else if rt.kind != kindVoid {
		ty, err := p.irType(sf.resultType)
		if err != nil {
			return err
		}
		fn.Result = &ir.FunctionResult{Type: ty}
	}

	if err := f.declareLocals(); err != nil {
		return err
	}
	if err := f.analyze(); err != nil {
		return err
	}
	if err := f.lowerRegion(sf.blocks[0].label, region{}); err != nil {
		return err
	}
	f.flush()
	return nil
}

func (p *parser) paramType(typeID uint32) (ir.TypeHandle, error) {
	t, err := p.typeByID(typeID)
	if err != nil {
		return 0, err
	}
	if t.kind != kindPointer {
		return p.irType(typeID)
	}
	switch t.class {
	case StorageClassFunction, StorageClassPrivate, StorageClassWorkgroup:
	default:
		return 0, parseErrorf(-1, "pointer parameters in storage class %s are not supported", t.class)
	}
	base, err := p.irType(t.elem)
	if err != nil {
		return 0, err
	}
	return p.addType("", ir.PointerType{Base: base, Space: p.addressSpace(t.class, 0)}), nil
}

// declareLocals turns function-scope OpVariables into local variables.
func (f *funcLowerer) declareLocals() error {
	for _, inst := range f.sf.variables {
		w := inst.Words
		if len(w) < 3 {
			return parseErrorf(inst.offset, "OpVariable: missing operands")
		}
		pt, err := f.p.pointee(w[0])
		if err != nil {
			return err
		}
		ty, err := f.p.irType(pt.id)
		if err != nil {
			return err
		}
		lv := ir.LocalVariable{Name: f.p.names[w[1]], Type: ty}
		if len(w) > 3 {
			c, ok := f.p.consts[w[3]]
			if !ok {
				return parseErrorf(inst.offset, "local %q: initializer is not a constant", lv.Name)
			}
			h := f.add(ir.ExprConstant{Constant: c.handle})
			lv.Init = &h
		}
		idx := uint32(len(f.fn.LocalVars))
		f.fn.LocalVars = append(f.fn.LocalVars, lv)
		f.locals[w[1]] = idx
		h := f.add(ir.ExprLocalVariable{Variable: idx})
		f.cache[w[1]] = value{h, w[0]}
	}
	return nil
}

// noResult lists body opcodes without a result type and id.
var noResult = map[OpCode]bool{
	OpStore:                    true,
	OpCopyMemory:               true,
	OpImageWrite:               true,
	OpControlBarrier:           true,
	OpMemoryBarrier:            true,
	OpDemoteToHelperInvocation: true,
}

func resultOf(inst rawInst) (typeID, id uint32, ok bool) {
	if noResult[inst.Opcode] || len(inst.Words) < 2 {
		return 0, 0, false
	}
	return inst.Words[0], inst.Words[1], true
}

// idOperands returns the operand words of inst that may reference ids.
func idOperands(inst rawInst) []uint32 {
	w := inst.Words
	ops := w
	if _, _, ok := resultOf(inst); ok {
		ops = w[2:]
	}
	switch inst.Opcode {
	case OpCompositeExtract:
		return ops[:min(1, len(ops))]
	case OpCompositeInsert:
		return ops[:min(2, len(ops))]
	case OpVectorShuffle:
		return ops[:min(2, len(ops))]
	case OpExtInst:
		if len(ops) < 2 {
			return nil
		}
		return ops[2:]
	case OpImageSampleImplicitLod, OpImageSampleExplicitLod, OpImageFetch, OpImageRead:
		return withoutWord(ops, 2)
	case OpImageSampleDrefImplicitLod, OpImageSampleDrefExplicitLod, OpImageGather, OpImageDrefGather:
		return withoutWord(ops, 3)
	case OpImageWrite:
		return withoutWord(ops, 3)
	case OpSwitch:
		return ops[:min(1, len(ops))]
	case OpSelectionMerge, OpLoopMerge, OpBranch:
		return nil
	case OpBranchConditional:
		return ops[:min(1, len(ops))]
	case OpPhi:
		return nil
	}
	return ops
}

func withoutWord(ops []uint32, i int) []uint32 {
	if len(ops) <= i {
		return ops
	}
	out := append([]uint32(nil), ops[:i]...)
	return append(out, ops[i+1:]...)
}

// analyze finds values that are used outside the block defining them and
// allocates local variables to carry them, together with OpPhi results.
func (f *funcLowerer) analyze() error {
	for bi, b := range f.sf.blocks {
		for _, inst := range b.phis {
			f.defBlock[inst.Words[1]] = bi
			f.resultType[inst.Words[1]] = inst.Words[0]
		}
		for _, inst := range b.body {
			if ty, id, ok := resultOf(inst); ok {
				f.defBlock[id] = bi
				f.resultType[id] = ty
				f.insts[id] = inst
			}
		}
	}

	cross := make(map[uint32]bool)
	var markUse func(id uint32, bi int, depth int)
	markUse = func(id uint32, bi int, depth int) {
		db, ok := f.defBlock[id]
		if !ok || db == bi || depth > 64 {
			return
		}
		cross[id] = true
		if f.rematerializable(id) {
			for _, op := range idOperands(f.insts[id]) {
				markUse(op, bi, depth+1)
			}
		}
	}
	for bi, b := range f.sf.blocks {
		for _, inst := range b.body {
			for _, op := range idOperands(inst) {
				markUse(op, bi, 0)
			}
		}
		for _, op := range idOperands(b.term) {
			markUse(op, bi, 0)
		}
		for _, inst := range b.phis {
			w := inst.Words
			for i := 2; i+1 < len(w); i += 2 {
				pred, ok := f.blocks[w[i+1]]
				if !ok {
					return parseErrorf(inst.offset, "OpPhi: unknown predecessor %%%d", w[i+1])
				}
				markUse(w[i], pred.index, 0)
			}
		}
	}

	// Allocate in program order so the output is deterministic.
	for _, b := range f.sf.blocks {
		for _, inst := range b.phis {
			local, err := f.newLocal(inst.Words[0], f.p.names[inst.Words[1]])
			if err != nil {
				return err
			}
			f.spills[inst.Words[1]] = local
			w := inst.Words
			for i := 2; i+1 < len(w); i += 2 {
				f.phiStores[w[i+1]] = append(f.phiStores[w[i+1]], phiStore{local: local, value: w[i]})
			}
		}
		for _, inst := range b.body {
			ty, id, ok := resultOf(inst)
			if !ok || !cross[id] || f.rematerializable(id) {
				continue
			}
			local, err := f.newLocal(ty, f.p.names[id])
			if err != nil {
				return err
			}
			f.spills[id] = local
		}
	}
	return nil
}

func (f *funcLowerer) newLocal(typeID uint32, name string) (uint32, error) {
	ty, err := f.p.irType(typeID)
	if err != nil {
		return 0, err
	}
	idx := uint32(len(f.fn.LocalVars))
	f.fn.LocalVars = append(f.fn.LocalVars, ir.LocalVariable{Name: name, Type: ty})
	return idx, nil
}

// rematerializable reports whether a result is re-lowered at every use
// instead of being carried in a local: pointers and resource handles.
func (f *funcLowerer) rematerializable(id uint32) bool {
	t, ok := f.p.types[f.resultType[id]]
	if !ok {
		return false
	}
	switch t.kind {
	case kindPointer, kindImage, kindSampler, kindSampledImage:
		return true
	}
	return false
}

func (f *funcLowerer) localExpr(idx uint32) ir.ExpressionHandle {
	return f.add(ir.ExprLocalVariable{Variable: idx})
}

// define records the lowered value of a result id and stores it into its
// spill variable when the value is used in other blocks.
func (f *funcLowerer) define(id uint32, v value) {
	f.values[id] = v
	f.valueBlock[id] = f.cur.index
	if local, ok := f.spills[id]; ok && f.defBlock[id] == f.cur.index {
		f.push(ir.StmtStore{Pointer: f.localExpr(local), Value: v.expr})
	}
}

// operand returns the value of id as seen from the current block.
func (f *funcLowerer) operand(id uint32) (value, error) {
	if v, ok := f.values[id]; ok && f.valueBlock[id] == f.cur.index {
		return v, nil
	}
	if local, ok := f.spills[id]; ok {
		v := value{f.add(ir.ExprLoad{Pointer: f.localExpr(local)}), f.resultType[id]}
		f.values[id] = v
		f.valueBlock[id] = f.cur.index
		return v, nil
	}
	if v, ok := f.cache[id]; ok {
		return v, nil
	}
	if c, ok := f.p.consts[id]; ok {
		v := value{f.add(ir.ExprConstant{Constant: c.handle}), c.typeID}
		f.cache[id] = v
		return v, nil
	}
	if gv, ok := f.p.vars[id]; ok && gv.lowered {
		v := value{f.add(ir.ExprGlobalVariable{Variable: gv.handle}), gv.typeID}
		f.cache[id] = v
		return v, nil
	}
	if inst, ok := f.insts[id]; ok && f.rematerializable(id) {
		if err := f.rematerialize(id, inst); err != nil {
			return value{}, err
		}
		if v, ok := f.values[id]; ok {
			return v, nil
		}
	}
	return value{}, parseErrorf(-1, "function %q: %%%d is not available here", f.fn.Name, id)
}

// rematerialize lowers the defining instruction of id again at the current
// position.
func (f *funcLowerer) rematerialize(id uint32, inst rawInst) error {
	if f.pending[id] {
		return parseErrorf(-1, "function %q: cyclic reference to %%%d", f.fn.Name, id)
	}
	f.pending[id] = true
	defer delete(f.pending, id)
	return f.lowerInst(inst)
}

// operands resolves several ids.
func (f *funcLowerer) operands(ids ...uint32) ([]value, error) {
	out := make([]value, len(ids))
	for i, id := range ids {
		v, err := f.operand(id)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// lowerBlockBody lowers the phis and ordinary instructions of b, followed by
// the phi copies feeding its successors.
func (f *funcLowerer) lowerBlockBody(b *block) error {
	f.cur = b
	for _, inst := range b.phis {
		id := inst.Words[1]
		f.values[id] = value{f.add(ir.ExprLoad{Pointer: f.localExpr(f.spills[id])}), inst.Words[0]}
		f.valueBlock[id] = b.index
	}
	for _, inst := range b.body {
		if err := f.lowerInst(inst); err != nil {
			return err
		}
	}
	stores := f.phiStores[b.label]
	if len(stores) == 0 {
		return nil
	}
	vals := make([]value, len(stores))
	for i, s := range stores {
		v, err := f.operand(s.value)
		if err != nil {
			return err
		}
		vals[i] = v
	}
	for i, s := range stores {
		f.push(ir.StmtStore{Pointer: f.localExpr(s.local), Value: vals[i].expr})
	}
	return nil
}
