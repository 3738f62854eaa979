package spirv

import (
	"github.com/gogpu/naga/ir"
)

// lowerGlobal converts a module-scope variable into a global variable.
// Input and output variables become private globals; the entry point
// wrappers copy them to and from the pipeline interface.
func (p *parser) lowerGlobal(v *spvVar) error {
	pt, err := p.pointee(v.typeID)
	if err != nil {
		return err
	}
	dec := p.decorationOf(v.id)
	gv := ir.GlobalVariable{Name: p.names[v.id]}

	switch v.class {
	case StorageClassUniformConstant:
		gv.Space = ir.SpaceHandle
		switch pt.kind {
		case kindImage:
			access := ir.StorageAccessReadWrite
			switch {
			case dec.nonWritable:
				access = ir.StorageAccessRead
			case dec.nonReadable:
				access = ir.StorageAccessWrite
			}
			img, err := p.lowerImage(pt, access)
			if err != nil {
				return err
			}
			gv.Type = p.addType("", img)
		case kindSampler:
			gv.Type = p.addType("", ir.SamplerType{})
		case kindSampledImage:
			return parseErrorf(-1, "variable %q: combined image samplers are not supported", gv.Name)
		default:
			return parseErrorf(-1, "variable %q: unsupported uniform constant type", gv.Name)
		}
		gv.Binding = resourceBinding(dec)

	case StorageClassUniform, StorageClassStorageBuffer, StorageClassPushConstant:
		if gv.Type, err = p.irType(pt.id); err != nil {
			return err
		}
		gv.Space = p.addressSpace(v.class, pt.id)
		if gv.Space == ir.SpaceStorage {
			gv.Access = ir.StorageReadWrite
			if dec.nonWritable || p.allMembersReadOnly(pt) {
				gv.Access = ir.StorageRead
			}
		}
		if v.class != StorageClassPushConstant {
			gv.Binding = resourceBinding(dec)
		}

	case StorageClassInput, StorageClassOutput, StorageClassPrivate, StorageClassWorkgroup:
		if gv.Type, err = p.irType(pt.id); err != nil {
			return err
		}
		gv.Space = ir.SpacePrivate
		if v.class == StorageClassWorkgroup {
			gv.Space = ir.SpaceWorkGroup
		}
		if v.init != 0 {
			c, ok := p.consts[v.init]
			if !ok {
				return parseErrorf(-1, "variable %q: initializer %%%d is not a constant", gv.Name, v.init)
			}
			h, err := p.lowerConstant(c)
			if err != nil {
				return err
			}
			gv.Init = &h
		}

	default:
		return parseErrorf(-1, "variable %q: unsupported storage class %s", gv.Name, v.class)
	}

	v.handle = ir.GlobalVariableHandle(len(p.module.GlobalVariables))
	v.lowered = true
	p.module.GlobalVariables = append(p.module.GlobalVariables, gv)
	return nil
}

func resourceBinding(dec *decoration) *ir.ResourceBinding {
	rb := &ir.ResourceBinding{}
	if dec.set != nil {
		rb.Group = *dec.set
	}
	if dec.binding != nil {
		rb.Binding = *dec.binding
	}
	return rb
}

func (p *parser) allMembersReadOnly(t *spvType) bool {
	if t.kind != kindStruct || len(t.members) == 0 {
		return false
	}
	for i := range t.members {
		if !p.memberDecorationOf(t.id, uint32(i)).nonWritable {
			return false
		}
	}
	return true
}

// isPerVertexBlock reports whether t is a block whose members are builtins,
// such as gl_PerVertex.
func (p *parser) isPerVertexBlock(t *spvType) bool {
	if t.kind != kindStruct || len(t.members) == 0 {
		return false
	}
	for i := range t.members {
		if p.memberDecorationOf(t.id, uint32(i)).builtin == nil {
			return false
		}
	}
	return true
}
