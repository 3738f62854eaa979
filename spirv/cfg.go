package spirv

import (
	"sort"

	"github.com/gogpu/naga/ir"
)

type breakable uint8

const (
	breakNone breakable = iota
	breakLoop
	breakSwitch
)

// region bounds the structured lowering of a chain of blocks.
type region struct {
	stop         uint32 // merge block or back edge target ending the chain
	loopMerge    uint32
	loopContinue uint32
	switchMerge  uint32
	caseNext     uint32 // next switch case, reached by falling through
	innermost    breakable
	inContinuing bool
}

type edgeKind uint8

const (
	edgeNormal edgeKind = iota
	edgeStop
	edgeBreak
	edgeContinue
	edgeFallThrough
)

func (f *funcLowerer) classify(target uint32, r region) (edgeKind, error) {
	switch {
	case target == r.stop:
		return edgeStop, nil
	case r.switchMerge != 0 && target == r.switchMerge && r.innermost == breakSwitch:
		return edgeBreak, nil
	case r.loopMerge != 0 && target == r.loopMerge:
		if r.inContinuing {
			return 0, parseErrorf(-1, "function %q: break from a loop continuing block", f.fn.Name)
		}
		if r.innermost != breakLoop {
			return 0, parseErrorf(-1, "function %q: loop exit from inside a switch", f.fn.Name)
		}
		return edgeBreak, nil
	case r.loopContinue != 0 && target == r.loopContinue:
		return edgeContinue, nil
	case r.caseNext != 0 && target == r.caseNext:
		return edgeFallThrough, nil
	}
	return edgeNormal, nil
}

// jump emits the statement for a non-normal edge.
func (f *funcLowerer) jump(kind edgeKind) {
	switch kind {
	case edgeBreak:
		f.push(ir.StmtBreak{})
	case edgeContinue:
		f.push(ir.StmtContinue{})
	case edgeFallThrough:
		f.fellThrough = true
	}
}

// lowerRegion lowers the blocks reachable from start until the region's
// stop block or a jump out of it.
func (f *funcLowerer) lowerRegion(start uint32, r region) error {
	cur := start
	for cur != 0 {
		kind, err := f.classify(cur, r)
		if err != nil {
			return err
		}
		if kind != edgeNormal {
			f.jump(kind)
			return nil
		}
		b, ok := f.blocks[cur]
		if !ok {
			return parseErrorf(-1, "function %q: branch to unknown block %%%d", f.fn.Name, cur)
		}
		if f.visited[cur] {
			return parseErrorf(-1, "function %q: unstructured control flow at block %%%d", f.fn.Name, cur)
		}
		f.visited[cur] = true
		if cur, err = f.lowerBlock(b, r); err != nil {
			return err
		}
	}
	return nil
}

// lowerBlock lowers b and its construct, returning the block that follows.
func (f *funcLowerer) lowerBlock(b *block, r region) (uint32, error) {
	if b.merge != nil && b.merge.Opcode == OpLoopMerge {
		return f.lowerLoop(b, r)
	}
	if err := f.lowerBlockBody(b); err != nil {
		return 0, err
	}
	return f.lowerTerminator(b, r)
}

func (f *funcLowerer) lowerLoop(h *block, r region) (uint32, error) {
	if len(h.merge.Words) < 2 {
		return 0, parseErrorf(h.merge.offset, "OpLoopMerge: missing operands")
	}
	merge, cont := h.merge.Words[0], h.merge.Words[1]
	var loop ir.StmtLoop

	body := region{
		stop:         cont,
		loopMerge:    merge,
		loopContinue: cont,
		switchMerge:  r.switchMerge,
		innermost:    breakLoop,
	}
	if cont == h.label {
		body.loopContinue = 0
	}
	err := f.into(&loop.Body, func() error {
		if err := f.lowerBlockBody(h); err != nil {
			return err
		}
		next, err := f.lowerTerminator(h, body)
		if err != nil {
			return err
		}
		return f.lowerRegion(next, body)
	})
	if err != nil {
		return 0, err
	}

	if cont != h.label {
		continuing := region{
			stop:         h.label,
			loopMerge:    merge,
			innermost:    breakLoop,
			inContinuing: true,
		}
		savedBreakIf := f.breakIf
		f.breakIf = nil
		err = f.into(&loop.Continuing, func() error {
			return f.lowerRegion(cont, continuing)
		})
		if err != nil {
			return 0, err
		}
		loop.BreakIf = f.breakIf
		f.breakIf = savedBreakIf
	}
	f.push(loop)
	return merge, nil
}

func (f *funcLowerer) lowerTerminator(b *block, r region) (uint32, error) {
	t := b.term
	w := t.Words
	switch t.Opcode {
	case OpBranch:
		if len(w) < 1 {
			return 0, parseErrorf(t.offset, "OpBranch: missing target")
		}
		return w[0], nil

	case OpBranchConditional:
		if len(w) < 3 {
			return 0, parseErrorf(t.offset, "OpBranchConditional: missing operands")
		}
		cond, err := f.operand(w[0])
		if err != nil {
			return 0, err
		}
		if b.merge != nil && b.merge.Opcode == OpSelectionMerge {
			return f.lowerSelection(cond.expr, w[1], w[2], b.merge.Words[0], r)
		}
		if w[1] == w[2] {
			return w[1], nil
		}
		if r.inContinuing && r.loopMerge != 0 {
			if w[1] == r.stop && w[2] == r.loopMerge {
				h := f.add(ir.ExprUnary{Op: ir.UnaryLogicalNot, Expr: cond.expr})
				f.breakIf = &h
				return 0, nil
			}
			if w[1] == r.loopMerge && w[2] == r.stop {
				h := cond.expr
				f.breakIf = &h
				return 0, nil
			}
		}
		return f.lowerBranchWithoutMerge(cond.expr, w[1], w[2], r)

	case OpSwitch:
		if b.merge == nil || b.merge.Opcode != OpSelectionMerge {
			return 0, parseErrorf(t.offset, "function %q: OpSwitch without OpSelectionMerge", f.fn.Name)
		}
		return f.lowerSwitch(t, b.merge.Words[0], r)

	case OpReturn:
		f.push(ir.StmtReturn{})
		return 0, nil

	case OpReturnValue:
		if len(w) < 1 {
			return 0, parseErrorf(t.offset, "OpReturnValue: missing value")
		}
		v, err := f.operand(w[0])
		if err != nil {
			return 0, err
		}
		f.push(ir.StmtReturn{Value: &v.expr})
		return 0, nil

	case OpKill, OpTerminateInvocation:
		f.push(ir.StmtKill{})
		return 0, nil

	case OpUnreachable:
		return 0, nil
	}
	return 0, parseErrorf(t.offset, "function %q: block %%%d has no terminator", f.fn.Name, b.label)
}

// lowerSelection lowers an if construct with an explicit merge block.
func (f *funcLowerer) lowerSelection(cond ir.ExpressionHandle, accept, reject, merge uint32, r region) (uint32, error) {
	inner := r
	inner.stop = merge
	inner.caseNext = 0
	var stmt ir.StmtIf
	stmt.Condition = cond
	if err := f.into(&stmt.Accept, func() error { return f.lowerRegion(accept, inner) }); err != nil {
		return 0, err
	}
	if err := f.into(&stmt.Reject, func() error { return f.lowerRegion(reject, inner) }); err != nil {
		return 0, err
	}
	f.push(stmt)
	return merge, nil
}

// lowerBranchWithoutMerge handles conditional branches that leave the
// current construct on at least one side.
func (f *funcLowerer) lowerBranchWithoutMerge(cond ir.ExpressionHandle, accept, reject uint32, r region) (uint32, error) {
	ak, err := f.classify(accept, r)
	if err != nil {
		return 0, err
	}
	rk, err := f.classify(reject, r)
	if err != nil {
		return 0, err
	}
	if ak == edgeFallThrough || rk == edgeFallThrough {
		return 0, parseErrorf(-1, "function %q: conditional switch fallthrough", f.fn.Name)
	}

	switch {
	case ak != edgeNormal && rk != edgeNormal:
		stmt := ir.StmtIf{Condition: cond}
		f.into(&stmt.Accept, func() error { f.jump(ak); return nil })
		f.into(&stmt.Reject, func() error { f.jump(rk); return nil })
		f.push(stmt)
		return 0, nil

	case ak == edgeBreak || ak == edgeContinue:
		stmt := ir.StmtIf{Condition: cond}
		f.into(&stmt.Accept, func() error { f.jump(ak); return nil })
		f.push(stmt)
		return reject, nil

	case rk == edgeBreak || rk == edgeContinue:
		not := f.add(ir.ExprUnary{Op: ir.UnaryLogicalNot, Expr: cond})
		stmt := ir.StmtIf{Condition: not}
		f.into(&stmt.Accept, func() error { f.jump(rk); return nil })
		f.push(stmt)
		return accept, nil

	case ak == edgeStop:
		not := f.add(ir.ExprUnary{Op: ir.UnaryLogicalNot, Expr: cond})
		stmt := ir.StmtIf{Condition: not}
		if err := f.into(&stmt.Accept, func() error { return f.lowerRegion(reject, r) }); err != nil {
			return 0, err
		}
		f.push(stmt)
		return 0, nil

	case rk == edgeStop:
		stmt := ir.StmtIf{Condition: cond}
		if err := f.into(&stmt.Accept, func() error { return f.lowerRegion(accept, r) }); err != nil {
			return 0, err
		}
		f.push(stmt)
		return 0, nil
	}
	return 0, parseErrorf(-1, "function %q: unstructured conditional branch to %%%d and %%%d", f.fn.Name, accept, reject)
}

type caseGroup struct {
	label     uint32
	values    []uint32
	isDefault bool
}

func (f *funcLowerer) lowerSwitch(t rawInst, merge uint32, r region) (uint32, error) {
	w := t.Words
	if len(w) < 2 || (len(w)-2)%2 != 0 {
		return 0, parseErrorf(t.offset, "OpSwitch: malformed operands")
	}
	sel, err := f.operand(w[0])
	if err != nil {
		return 0, err
	}
	s, ok := f.p.scalarOf(sel.typeID)
	if !ok || (s.Kind != ir.ScalarSint && s.Kind != ir.ScalarUint) {
		return 0, parseErrorf(t.offset, "OpSwitch: selector is not an integer")
	}

	groups := make(map[uint32]*caseGroup)
	var order []*caseGroup
	group := func(label uint32) *caseGroup {
		g, ok := groups[label]
		if !ok {
			g = &caseGroup{label: label}
			groups[label] = g
			order = append(order, g)
		}
		return g
	}
	group(w[1]).isDefault = true
	for i := 2; i < len(w); i += 2 {
		g := group(w[i+1])
		g.values = append(g.values, w[i])
	}

	var targets []*caseGroup
	for _, g := range order {
		if g.label == merge {
			continue
		}
		if _, ok := f.blocks[g.label]; !ok {
			return 0, parseErrorf(t.offset, "OpSwitch: unknown target %%%d", g.label)
		}
		targets = append(targets, g)
	}
	sort.SliceStable(targets, func(i, j int) bool {
		return f.blocks[targets[i].label].index < f.blocks[targets[j].label].index
	})

	caseValue := func(v uint32) ir.SwitchValue {
		if s.Kind == ir.ScalarSint {
			return ir.SwitchValueI32(int32(v))
		}
		return ir.SwitchValueU32(v)
	}

	stmt := ir.StmtSwitch{Selector: sel.expr}
	hasDefault := false
	for i, g := range targets {
		selectors := make([]ir.SwitchValue, 0, len(g.values)+1)
		for _, v := range g.values {
			selectors = append(selectors, caseValue(v))
		}
		if g.isDefault {
			selectors = append(selectors, ir.SwitchValueDefault{})
			hasDefault = true
		}
		for _, v := range selectors[:len(selectors)-1] {
			stmt.Cases = append(stmt.Cases, ir.SwitchCase{Value: v, FallThrough: true})
		}

		inner := region{
			stop:         merge,
			loopMerge:    r.loopMerge,
			loopContinue: r.loopContinue,
			switchMerge:  merge,
			innermost:    breakSwitch,
		}
		if i+1 < len(targets) {
			inner.caseNext = targets[i+1].label
		}
		c := ir.SwitchCase{Value: selectors[len(selectors)-1]}
		f.fellThrough = false
		if err := f.into(&c.Body, func() error { return f.lowerRegion(g.label, inner) }); err != nil {
			return 0, err
		}
		c.FallThrough = f.fellThrough
		f.fellThrough = false
		stmt.Cases = append(stmt.Cases, c)
	}
	if !hasDefault {
		stmt.Cases = append(stmt.Cases, ir.SwitchCase{Value: ir.SwitchValueDefault{}})
	}
	f.push(stmt)
	return merge, nil
}
