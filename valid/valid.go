package valid

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/naga/ir"
)

// ValidationFlags selects the validation passes to run.
type ValidationFlags uint8

const (
	// FlagStructure runs the structural checks of the IR over the module
	// and over every entry point body.
	FlagStructure ValidationFlags = 1 << iota
	// FlagExpressions requires every expression to have a type.
	FlagExpressions
	// FlagBindings checks entry point interfaces.
	FlagBindings
	// FlagCapabilities checks the module against the capability set.
	FlagCapabilities

	// FlagsAll enables every pass.
	FlagsAll = FlagStructure | FlagExpressions | FlagBindings | FlagCapabilities
)

// Diagnostic is one validation failure.
type Diagnostic struct {
	// Scope names the module item the failure belongs to. Empty for
	// module-level failures.
	Scope   string
	Message string
}

func (d Diagnostic) String() string {
	if d.Scope == "" {
		return d.Message
	}
	return d.Scope + ": " + d.Message
}

// Error is returned when a module fails validation.
type Error struct {
	Diagnostics []Diagnostic
}

func (e *Error) Error() string {
	switch len(e.Diagnostics) {
	case 0:
		return "invalid module"
	case 1:
		return e.Diagnostics[0].String()
	}
	return fmt.Sprintf("%s (and %d more)", e.Diagnostics[0], len(e.Diagnostics)-1)
}

// Detail lists every diagnostic on its own line.
func (e *Error) Detail() string {
	lines := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		lines[i] = d.String()
	}
	return strings.Join(lines, "\n")
}

// Validator checks IR modules produced by the front end.
type Validator struct {
	flags        ValidationFlags
	capabilities Capabilities
}

// New creates a validator running the passes in flags and allowing the
// features in caps.
func New(flags ValidationFlags, caps Capabilities) *Validator {
	return &Validator{flags: flags, capabilities: caps}
}

// Capabilities returns the capability set the validator allows.
func (v *Validator) Capabilities() Capabilities { return v.capabilities }

// checker holds the state of one Validate call.
type checker struct {
	v           *Validator
	module      *ir.Module
	diagnostics []Diagnostic
}

func (c *checker) addError(scope, msg string) {
	c.diagnostics = append(c.diagnostics, Diagnostic{Scope: scope, Message: msg})
}

// Validate runs the enabled passes over module. On success it returns the
// module info the WGSL writer needs; otherwise an *Error listing every
// failure.
func (v *Validator) Validate(module *ir.Module) (*ModuleInfo, error) {
	if module == nil {
		return nil, errors.New("valid: module is nil")
	}
	c := &checker{v: v, module: module}

	if v.flags&FlagStructure != 0 {
		c.structure()
		// Handles were found dangling; the remaining passes would index out
		// of range.
		if len(c.diagnostics) > 0 {
			return nil, &Error{Diagnostics: c.diagnostics}
		}
	}

	info := c.analyze()
	if v.flags&FlagBindings != 0 {
		c.bindings()
	}
	if v.flags&FlagCapabilities != 0 {
		c.capabilityChecks()
	}
	if len(c.diagnostics) > 0 {
		return nil, &Error{Diagnostics: c.diagnostics}
	}
	return info, nil
}

// structure runs ir.Validate. Entry point bodies live inline in the entry
// points and are not visited by it, so they are checked as extra functions
// of a shadow copy of the module.
func (c *checker) structure() {
	shadow := *c.module
	shadow.Functions = make([]ir.Function, 0, len(c.module.Functions)+len(c.module.EntryPoints))
	shadow.Functions = append(shadow.Functions, c.module.Functions...)
	for _, ep := range c.module.EntryPoints {
		fn := ep.Function
		fn.Name = "entry point " + ep.Name
		shadow.Functions = append(shadow.Functions, fn)
	}

	errs, err := ir.Validate(&shadow)
	if err != nil {
		c.addError("", err.Error())
		return
	}
	for _, e := range errs {
		c.addError("", e.Error())
	}
}

func (c *checker) analyze() *ModuleInfo {
	diag := func(string, string) {}
	if c.v.flags&FlagExpressions != 0 {
		diag = c.addError
	}
	a := newAnalyzer(c.module, diag)
	info := &ModuleInfo{
		module:      c.module,
		functions:   make([]FunctionInfo, len(c.module.Functions)),
		entryPoints: make([]FunctionInfo, len(c.module.EntryPoints)),
	}
	for i := range c.module.Functions {
		info.functions[i] = *a.function(ir.FunctionHandle(i))
	}
	for i := range c.module.EntryPoints {
		ep := &c.module.EntryPoints[i]
		info.entryPoints[i] = a.analyze(&ep.Function, entryPointScope(ep.Name))
	}
	return info
}
