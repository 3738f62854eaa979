package valid

import (
	"fmt"

	"github.com/gogpu/naga/ir"
)

// GlobalUse records how a function touches a global variable.
type GlobalUse uint8

const (
	// GlobalUseRead means the global is read or referenced.
	GlobalUseRead GlobalUse = 1 << iota
	// GlobalUseWrite means the global is stored to.
	GlobalUseWrite
	// GlobalUseQuery means an image global is only queried.
	GlobalUseQuery
)

// FunctionInfo is the analysis of one function or entry point body.
type FunctionInfo struct {
	// Types holds the resolved type of every expression.
	Types []ir.TypeResolution
	// RefCounts holds how many expressions and statements use each
	// expression.
	RefCounts []uint32
	// GlobalUses holds the usage of every module global, including uses
	// made by called functions.
	GlobalUses []GlobalUse
}

// Type returns the resolution of the expression behind handle.
func (fi *FunctionInfo) Type(handle ir.ExpressionHandle) ir.TypeResolution {
	if int(handle) >= len(fi.Types) {
		return ir.TypeResolution{}
	}
	return fi.Types[handle]
}

// RefCount returns the number of uses of the expression behind handle.
func (fi *FunctionInfo) RefCount(handle ir.ExpressionHandle) uint32 {
	if int(handle) >= len(fi.RefCounts) {
		return 0
	}
	return fi.RefCounts[handle]
}

// Uses returns the usage of a global variable.
func (fi *FunctionInfo) Uses(global ir.GlobalVariableHandle) GlobalUse {
	if int(global) >= len(fi.GlobalUses) {
		return 0
	}
	return fi.GlobalUses[global]
}

// ModuleInfo is the result of a successful validation. It belongs to the
// module it was computed from and must not be paired with another one.
type ModuleInfo struct {
	module      *ir.Module
	functions   []FunctionInfo
	entryPoints []FunctionInfo
}

// Module returns the module this info was computed from.
func (m *ModuleInfo) Module() *ir.Module { return m.module }

// Function returns the info of a regular function.
func (m *ModuleInfo) Function(handle ir.FunctionHandle) *FunctionInfo {
	if int(handle) >= len(m.functions) {
		return nil
	}
	return &m.functions[handle]
}

// EntryPoint returns the info of the entry point at index.
func (m *ModuleInfo) EntryPoint(index int) *FunctionInfo {
	if index < 0 || index >= len(m.entryPoints) {
		return nil
	}
	return &m.entryPoints[index]
}

// analyzer computes FunctionInfo for every function of a module. Calls are
// resolved through memoized callee infos.
type analyzer struct {
	module *ir.Module
	infos  []FunctionInfo
	state  []uint8 // 0 = pending, 1 = in progress, 2 = done
	diag   func(scope, msg string)
}

func newAnalyzer(module *ir.Module, diag func(scope, msg string)) *analyzer {
	return &analyzer{
		module: module,
		infos:  make([]FunctionInfo, len(module.Functions)),
		state:  make([]uint8, len(module.Functions)),
		diag:   diag,
	}
}

func (a *analyzer) function(h ir.FunctionHandle) *FunctionInfo {
	switch a.state[h] {
	case 2:
		return &a.infos[h]
	case 1:
		fn := &a.module.Functions[h]
		a.diag(functionScope(fn.Name), "recursive call")
		return &a.infos[h]
	}
	a.state[h] = 1
	a.infos[h] = a.analyze(&a.module.Functions[h], functionScope(a.module.Functions[h].Name))
	a.state[h] = 2
	return &a.infos[h]
}

func functionScope(name string) string { return fmt.Sprintf("function %q", name) }

func entryPointScope(name string) string { return fmt.Sprintf("entry point %q", name) }

func (a *analyzer) analyze(fn *ir.Function, scope string) FunctionInfo {
	info := FunctionInfo{
		Types:      make([]ir.TypeResolution, len(fn.Expressions)),
		RefCounts:  make([]uint32, len(fn.Expressions)),
		GlobalUses: make([]GlobalUse, len(a.module.GlobalVariables)),
	}
	for i := range fn.Expressions {
		h := ir.ExpressionHandle(i)
		res, err := ir.ResolveExpressionType(a.module, fn, h)
		if err != nil {
			a.diag(scope, fmt.Sprintf("expression %d: %v", i, err))
		}
		info.Types[i] = res

		kind := fn.Expressions[i].Kind
		for _, op := range operands(kind) {
			if int(op) < len(info.RefCounts) {
				info.RefCounts[op]++
			}
		}
		switch k := kind.(type) {
		case ir.ExprGlobalVariable:
			if int(k.Variable) < len(info.GlobalUses) {
				info.GlobalUses[k.Variable] |= GlobalUseRead
			}
		case ir.ExprImageQuery:
			if g, ok := rootGlobal(fn, k.Image); ok {
				info.GlobalUses[g] |= GlobalUseQuery
			}
		}
	}
	a.block(fn, fn.Body, &info)
	return info
}

func (a *analyzer) use(info *FunctionInfo, handles ...ir.ExpressionHandle) {
	for _, h := range handles {
		if int(h) < len(info.RefCounts) {
			info.RefCounts[h]++
		}
	}
}

func (a *analyzer) block(fn *ir.Function, blk ir.Block, info *FunctionInfo) {
	for _, stmt := range blk {
		switch s := stmt.Kind.(type) {
		case ir.StmtBlock:
			a.block(fn, s.Block, info)
		case ir.StmtIf:
			a.use(info, s.Condition)
			a.block(fn, s.Accept, info)
			a.block(fn, s.Reject, info)
		case ir.StmtSwitch:
			a.use(info, s.Selector)
			for _, c := range s.Cases {
				a.block(fn, c.Body, info)
			}
		case ir.StmtLoop:
			a.block(fn, s.Body, info)
			a.block(fn, s.Continuing, info)
			if s.BreakIf != nil {
				a.use(info, *s.BreakIf)
			}
		case ir.StmtReturn:
			if s.Value != nil {
				a.use(info, *s.Value)
			}
		case ir.StmtStore:
			a.use(info, s.Pointer, s.Value)
			if g, ok := rootGlobal(fn, s.Pointer); ok {
				info.GlobalUses[g] |= GlobalUseWrite
			}
		case ir.StmtImageStore:
			a.use(info, s.Image, s.Coordinate, s.Value)
			if s.ArrayIndex != nil {
				a.use(info, *s.ArrayIndex)
			}
			if g, ok := rootGlobal(fn, s.Image); ok {
				info.GlobalUses[g] |= GlobalUseWrite
			}
		case ir.StmtAtomic:
			a.use(info, s.Pointer, s.Value)
			if g, ok := rootGlobal(fn, s.Pointer); ok {
				info.GlobalUses[g] |= GlobalUseRead | GlobalUseWrite
			}
		case ir.StmtWorkGroupUniformLoad:
			a.use(info, s.Pointer)
		case ir.StmtCall:
			a.use(info, s.Arguments...)
			if int(s.Function) >= len(a.module.Functions) {
				continue
			}
			callee := a.function(s.Function)
			for g, u := range callee.GlobalUses {
				info.GlobalUses[g] |= u
			}
		}
	}
}

// rootGlobal follows access chains from a pointer or handle expression to
// the global variable it starts at.
func rootGlobal(fn *ir.Function, h ir.ExpressionHandle) (ir.GlobalVariableHandle, bool) {
	for int(h) < len(fn.Expressions) {
		switch k := fn.Expressions[h].Kind.(type) {
		case ir.ExprGlobalVariable:
			return k.Variable, true
		case ir.ExprAccess:
			h = k.Base
		case ir.ExprAccessIndex:
			h = k.Base
		default:
			return 0, false
		}
	}
	return 0, false
}

// operands lists the expressions an expression reads.
//
//nolint:gocyclo,cyclop // one case per expression kind
func operands(kind ir.ExpressionKind) []ir.ExpressionHandle {
	opt := func(out []ir.ExpressionHandle, hs ...*ir.ExpressionHandle) []ir.ExpressionHandle {
		for _, h := range hs {
			if h != nil {
				out = append(out, *h)
			}
		}
		return out
	}
	switch k := kind.(type) {
	case ir.ExprCompose:
		return k.Components
	case ir.ExprAccess:
		return []ir.ExpressionHandle{k.Base, k.Index}
	case ir.ExprAccessIndex:
		return []ir.ExpressionHandle{k.Base}
	case ir.ExprSplat:
		return []ir.ExpressionHandle{k.Value}
	case ir.ExprSwizzle:
		return []ir.ExpressionHandle{k.Vector}
	case ir.ExprLoad:
		return []ir.ExpressionHandle{k.Pointer}
	case ir.ExprImageSample:
		out := opt([]ir.ExpressionHandle{k.Image, k.Sampler, k.Coordinate}, k.ArrayIndex, k.Offset, k.DepthRef)
		switch l := k.Level.(type) {
		case ir.SampleLevelExact:
			out = append(out, l.Level)
		case ir.SampleLevelBias:
			out = append(out, l.Bias)
		case ir.SampleLevelGradient:
			out = append(out, l.X, l.Y)
		}
		return out
	case ir.ExprImageLoad:
		return opt([]ir.ExpressionHandle{k.Image, k.Coordinate}, k.ArrayIndex, k.Sample, k.Level)
	case ir.ExprImageQuery:
		if q, ok := k.Query.(ir.ImageQuerySize); ok {
			return opt([]ir.ExpressionHandle{k.Image}, q.Level)
		}
		return []ir.ExpressionHandle{k.Image}
	case ir.ExprUnary:
		return []ir.ExpressionHandle{k.Expr}
	case ir.ExprBinary:
		return []ir.ExpressionHandle{k.Left, k.Right}
	case ir.ExprSelect:
		return []ir.ExpressionHandle{k.Condition, k.Accept, k.Reject}
	case ir.ExprDerivative:
		return []ir.ExpressionHandle{k.Expr}
	case ir.ExprRelational:
		return []ir.ExpressionHandle{k.Argument}
	case ir.ExprMath:
		return opt([]ir.ExpressionHandle{k.Arg}, k.Arg1, k.Arg2, k.Arg3)
	case ir.ExprAs:
		return []ir.ExpressionHandle{k.Expr}
	case ir.ExprArrayLength:
		return []ir.ExpressionHandle{k.Array}
	}
	return nil
}
