// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package wgsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/naga/ir"
)

func (w *Writer) writeBlock(block ir.Block) error {
	for i := range block {
		if err := w.writeStatement(&block[i]); err != nil {
			return err
		}
	}
	return nil
}

//nolint:gocyclo,cyclop,funlen // one case per statement kind
func (w *Writer) writeStatement(stmt *ir.Statement) error {
	switch s := stmt.Kind.(type) {
	case ir.StmtEmit:
		return w.writeEmit(s.Range)

	case ir.StmtBlock:
		w.writeLine("{")
		w.pushIndent()
		if err := w.writeBlock(s.Block); err != nil {
			return err
		}
		w.popIndent()
		w.writeLine("}")

	case ir.StmtIf:
		cond, err := w.expressionString(s.Condition)
		if err != nil {
			return err
		}
		w.writeLine("if %s {", cond)
		w.pushIndent()
		if err := w.writeBlock(s.Accept); err != nil {
			return err
		}
		w.popIndent()
		if len(s.Reject) > 0 {
			w.writeLine("} else {")
			w.pushIndent()
			if err := w.writeBlock(s.Reject); err != nil {
				return err
			}
			w.popIndent()
		}
		w.writeLine("}")

	case ir.StmtSwitch:
		return w.writeSwitch(s)

	case ir.StmtLoop:
		w.writeLine("loop {")
		w.pushIndent()
		if err := w.writeBlock(s.Body); err != nil {
			return err
		}
		if len(s.Continuing) > 0 || s.BreakIf != nil {
			w.writeLine("continuing {")
			w.pushIndent()
			if err := w.writeBlock(s.Continuing); err != nil {
				return err
			}
			if s.BreakIf != nil {
				cond, err := w.expressionString(*s.BreakIf)
				if err != nil {
					return err
				}
				w.writeLine("break if %s;", cond)
			}
			w.popIndent()
			w.writeLine("}")
		}
		w.popIndent()
		w.writeLine("}")

	case ir.StmtBreak:
		w.writeLine("break;")

	case ir.StmtContinue:
		w.writeLine("continue;")

	case ir.StmtReturn:
		if s.Value == nil {
			w.writeLine("return;")
			return nil
		}
		v, err := w.expressionString(*s.Value)
		if err != nil {
			return err
		}
		w.writeLine("return %s;", v)

	case ir.StmtKill:
		w.writeLine("discard;")

	case ir.StmtBarrier:
		if s.Flags&ir.BarrierSubGroup != 0 {
			return fmt.Errorf("subgroup barriers are not supported")
		}
		if s.Flags&ir.BarrierStorage != 0 {
			w.writeLine("storageBarrier();")
		}
		if s.Flags&ir.BarrierWorkGroup != 0 {
			w.writeLine("workgroupBarrier();")
		}
		if s.Flags&ir.BarrierTexture != 0 {
			w.writeLine("textureBarrier();")
		}

	case ir.StmtStore:
		value, err := w.expressionString(s.Value)
		if err != nil {
			return err
		}
		if w.isAtomicPointer(s.Pointer) {
			p, err := w.pointerString(s.Pointer)
			if err != nil {
				return err
			}
			w.writeLine("atomicStore(%s, %s);", p, value)
			return nil
		}
		target, err := w.referenceString(s.Pointer)
		if err != nil {
			return err
		}
		w.writeLine("%s = %s;", target, value)

	case ir.StmtImageStore:
		handles := []ir.ExpressionHandle{s.Image, s.Coordinate}
		if s.ArrayIndex != nil {
			handles = append(handles, *s.ArrayIndex)
		}
		handles = append(handles, s.Value)
		args, err := w.expressionList(handles)
		if err != nil {
			return err
		}
		w.writeLine("textureStore(%s);", args)

	case ir.StmtCall:
		return w.writeCall(s)

	case ir.StmtAtomic:
		return w.writeAtomic(s)

	case ir.StmtWorkGroupUniformLoad:
		p, err := w.pointerString(s.Pointer)
		if err != nil {
			return err
		}
		name := w.bakedName(s.Result)
		w.writeLine("let %s = workgroupUniformLoad(%s);", name, p)
		w.namedExpressions[s.Result] = name

	default:
		return fmt.Errorf("unsupported statement %T", s)
	}
	return nil
}

// writeEmit binds the expressions of an emit range that must be evaluated
// at this point: named expressions and those selected by shouldBake.
func (w *Writer) writeEmit(r ir.Range) error {
	fn := w.currentFunction
	for h := r.Start; h < r.End; h++ {
		name, named := fn.NamedExpressions[h]
		if !named && !w.shouldBake(h) {
			continue
		}
		if w.pointerClass(h) != notPointer {
			continue
		}
		text, err := w.expressionKindString(h)
		if err != nil {
			return err
		}
		if named {
			name = w.namer.call(name, "v")
		} else {
			name = w.bakedName(h)
		}

		w.writeIndent()
		fmt.Fprintf(&w.out, "let %s", name)
		if w.options.Flags&WriterFlagExplicitTypes != 0 {
			tn, err := w.resolutionName(w.currentInfo.Type(h))
			if err != nil {
				return err
			}
			fmt.Fprintf(&w.out, ": %s", tn)
		}
		fmt.Fprintf(&w.out, " = %s;\n", text)
		w.namedExpressions[h] = name
	}
	return nil
}

func (w *Writer) bakedName(h ir.ExpressionHandle) string {
	return fmt.Sprintf("_e%d", h)
}

// shouldBake decides whether an emitted expression is bound to a let.
// Loads, image reads and derivatives are evaluated where they are emitted
// because later stores or control flow can change their value. Other
// expressions are bound once they are used more than once.
func (w *Writer) shouldBake(h ir.ExpressionHandle) bool {
	minRefs := uint32(2)
	switch w.currentFunction.Expressions[h].Kind.(type) {
	case ir.ExprAccess, ir.ExprAccessIndex:
		return false
	case ir.ExprLoad, ir.ExprImageSample, ir.ExprImageLoad, ir.ExprDerivative:
		minRefs = 1
	}
	return w.currentInfo.RefCount(h) >= minRefs
}

// writeSwitch writes a switch. Empty fall-through cases share the selector
// list of the case that follows them.
func (w *Writer) writeSwitch(s ir.StmtSwitch) error {
	sel, err := w.expressionString(s.Selector)
	if err != nil {
		return err
	}
	w.writeLine("switch %s {", sel)
	w.pushIndent()

	var pending []string
	for i, c := range s.Cases {
		pending = append(pending, switchValue(c.Value))
		if c.FallThrough {
			if len(c.Body) > 0 {
				return fmt.Errorf("switch case %s falls through after a non-empty body", switchValue(c.Value))
			}
			if i < len(s.Cases)-1 {
				continue
			}
		}
		w.writeLine("case %s: {", strings.Join(pending, ", "))
		pending = pending[:0]
		w.pushIndent()
		if err := w.writeBlock(c.Body); err != nil {
			return err
		}
		w.popIndent()
		w.writeLine("}")
	}

	w.popIndent()
	w.writeLine("}")
	return nil
}

func switchValue(v ir.SwitchValue) string {
	switch v := v.(type) {
	case ir.SwitchValueI32:
		return fmt.Sprintf("%d", int32(v))
	case ir.SwitchValueU32:
		return fmt.Sprintf("%du", uint32(v))
	}
	return "default"
}

func (w *Writer) writeCall(s ir.StmtCall) error {
	parts := make([]string, len(s.Arguments))
	callee := &w.module.Functions[s.Function]
	for i, arg := range s.Arguments {
		var (
			text string
			err  error
		)
		isPointerParam := false
		if i < len(callee.Arguments) {
			_, isPointerParam = w.module.Types[callee.Arguments[i].Type].Inner.(ir.PointerType)
		}
		if isPointerParam {
			text, err = w.pointerString(arg)
		} else {
			text, err = w.expressionString(arg)
		}
		if err != nil {
			return err
		}
		parts[i] = text
	}
	call := fmt.Sprintf("%s(%s)", w.names[nameKey{kind: nameKeyFunction, handle1: uint32(s.Function)}], strings.Join(parts, ", "))
	if s.Result == nil {
		w.writeLine("%s;", call)
		return nil
	}
	name := w.bakedName(*s.Result)
	w.writeLine("let %s = %s;", name, call)
	w.namedExpressions[*s.Result] = name
	return nil
}

func (w *Writer) writeAtomic(s ir.StmtAtomic) error {
	p, err := w.pointerString(s.Pointer)
	if err != nil {
		return err
	}
	value, err := w.expressionString(s.Value)
	if err != nil {
		return err
	}
	var fun string
	args := []string{p, value}
	switch f := s.Fun.(type) {
	case ir.AtomicAdd:
		fun = "atomicAdd"
	case ir.AtomicSubtract:
		fun = "atomicSub"
	case ir.AtomicAnd:
		fun = "atomicAnd"
	case ir.AtomicExclusiveOr:
		fun = "atomicXor"
	case ir.AtomicInclusiveOr:
		fun = "atomicOr"
	case ir.AtomicMin:
		fun = "atomicMin"
	case ir.AtomicMax:
		fun = "atomicMax"
	case ir.AtomicExchange:
		fun = "atomicExchange"
		if f.Compare != nil {
			cmp, err := w.expressionString(*f.Compare)
			if err != nil {
				return err
			}
			fun = "atomicCompareExchangeWeak"
			args = []string{p, cmp, value}
		}
	case ir.AtomicStore:
		w.writeLine("atomicStore(%s, %s);", p, value)
		return nil
	default:
		return fmt.Errorf("unsupported atomic function %T", s.Fun)
	}
	call := fun + "(" + strings.Join(args, ", ") + ")"
	if s.Result == nil {
		w.writeLine("%s;", call)
		return nil
	}
	name := w.bakedName(*s.Result)
	w.writeLine("let %s = %s;", name, call)
	w.namedExpressions[*s.Result] = name
	return nil
}
