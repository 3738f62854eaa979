// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package wgsl

import (
	"strings"
	"unicode"
)

// wgslKeywords contains WGSL keywords, reserved words, predeclared types and
// the builtin functions the writer emits. Identifiers matching one of them
// are escaped so user names never shadow a builtin the output relies on.
var wgslKeywords = map[string]struct{}{
	// Keywords
	"alias": {}, "break": {}, "case": {}, "const": {}, "const_assert": {},
	"continue": {}, "continuing": {}, "default": {}, "diagnostic": {},
	"discard": {}, "else": {}, "enable": {}, "false": {}, "fn": {}, "for": {},
	"if": {}, "let": {}, "loop": {}, "override": {}, "requires": {},
	"return": {}, "struct": {}, "switch": {}, "true": {}, "var": {}, "while": {},

	// Predeclared types
	"array": {}, "atomic": {}, "bool": {}, "f16": {}, "f32": {}, "i32": {},
	"u32": {}, "ptr": {}, "sampler": {}, "sampler_comparison": {},
	"vec2": {}, "vec3": {}, "vec4": {},
	"vec2i": {}, "vec3i": {}, "vec4i": {}, "vec2u": {}, "vec3u": {}, "vec4u": {},
	"vec2f": {}, "vec3f": {}, "vec4f": {}, "vec2h": {}, "vec3h": {}, "vec4h": {},
	"mat2x2": {}, "mat2x3": {}, "mat2x4": {},
	"mat3x2": {}, "mat3x3": {}, "mat3x4": {},
	"mat4x2": {}, "mat4x3": {}, "mat4x4": {},
	"texture_1d": {}, "texture_2d": {}, "texture_2d_array": {}, "texture_3d": {},
	"texture_cube": {}, "texture_cube_array": {}, "texture_multisampled_2d": {},
	"texture_depth_2d": {}, "texture_depth_2d_array": {}, "texture_depth_cube": {},
	"texture_depth_cube_array": {}, "texture_depth_multisampled_2d": {},
	"texture_external": {}, "texture_storage_1d": {}, "texture_storage_2d": {},
	"texture_storage_2d_array": {}, "texture_storage_3d": {},
	"binding_array": {},

	// Reserved words
	"NULL": {}, "Self": {}, "abstract": {}, "active": {}, "alignas": {},
	"alignof": {}, "as": {}, "asm": {}, "asm_fragment": {}, "async": {},
	"attribute": {}, "auto": {}, "await": {}, "become": {}, "cast": {},
	"catch": {}, "class": {}, "co_await": {}, "co_return": {}, "co_yield": {},
	"coherent": {}, "column_major": {}, "common": {}, "compile": {},
	"compile_fragment": {}, "concept": {}, "const_cast": {}, "consteval": {},
	"constexpr": {}, "constinit": {}, "crate": {}, "debugger": {},
	"decltype": {}, "delete": {}, "demote": {}, "demote_to_helper": {},
	"do": {}, "dynamic_cast": {}, "enum": {}, "explicit": {}, "export": {},
	"extends": {}, "extern": {}, "external": {}, "fallthrough": {},
	"filter": {}, "final": {}, "finally": {}, "friend": {}, "from": {},
	"fxgroup": {}, "get": {}, "goto": {}, "groupshared": {}, "highp": {},
	"impl": {}, "implements": {}, "import": {}, "inline": {},
	"instanceof": {}, "interface": {}, "layout": {}, "lowp": {}, "macro": {},
	"macro_rules": {}, "match": {}, "mediump": {}, "meta": {}, "mod": {},
	"module": {}, "move": {}, "mut": {}, "mutable": {}, "namespace": {},
	"new": {}, "nil": {}, "noexcept": {}, "noinline": {},
	"nointerpolation": {}, "noperspective": {}, "null": {}, "nullptr": {},
	"of": {}, "operator": {}, "package": {}, "packoffset": {},
	"partition": {}, "pass": {}, "patch": {}, "pixelfragment": {},
	"precise": {}, "precision": {}, "premerge": {}, "priv": {},
	"protected": {}, "pub": {}, "public": {}, "readonly": {}, "ref": {},
	"regardless": {}, "register": {}, "reinterpret_cast": {}, "require": {},
	"resource": {}, "restrict": {}, "self": {}, "set": {}, "shared": {},
	"sizeof": {}, "smooth": {}, "snorm": {}, "static": {}, "static_assert": {},
	"static_cast": {}, "std": {}, "subroutine": {}, "super": {}, "target": {},
	"template": {}, "this": {}, "thread_local": {}, "throw": {}, "trait": {},
	"try": {}, "type": {}, "typedef": {}, "typeid": {}, "typename": {},
	"typeof": {}, "union": {}, "unless": {}, "unorm": {}, "unsafe": {},
	"unsized": {}, "use": {}, "using": {}, "varying": {}, "virtual": {},
	"volatile": {}, "wgsl": {}, "where": {}, "with": {}, "writeonly": {},
	"yield": {},

	// Builtin functions
	"abs": {}, "acos": {}, "acosh": {}, "all": {}, "any": {}, "arrayLength": {},
	"asin": {}, "asinh": {}, "atan": {}, "atan2": {}, "atanh": {},
	"atomicAdd": {}, "atomicAnd": {}, "atomicExchange": {}, "atomicLoad": {},
	"atomicMax": {}, "atomicMin": {}, "atomicOr": {}, "atomicStore": {},
	"atomicSub": {}, "atomicXor": {}, "bitcast": {}, "ceil": {}, "clamp": {},
	"cos": {}, "cosh": {}, "countLeadingZeros": {}, "countOneBits": {},
	"countTrailingZeros": {}, "cross": {}, "degrees": {}, "determinant": {},
	"distance": {}, "dot": {}, "dpdx": {}, "dpdxCoarse": {}, "dpdxFine": {},
	"dpdy": {}, "dpdyCoarse": {}, "dpdyFine": {}, "exp": {}, "exp2": {},
	"extractBits": {}, "faceForward": {}, "firstLeadingBit": {},
	"firstTrailingBit": {}, "floor": {}, "fma": {}, "fract": {}, "frexp": {},
	"fwidth": {}, "fwidthCoarse": {}, "fwidthFine": {}, "insertBits": {},
	"inverseSqrt": {}, "ldexp": {}, "length": {}, "log": {}, "log2": {},
	"max": {}, "min": {}, "mix": {}, "modf": {}, "normalize": {},
	"pack2x16float": {}, "pack2x16snorm": {}, "pack2x16unorm": {},
	"pack4x8snorm": {}, "pack4x8unorm": {}, "pow": {}, "quantizeToF16": {},
	"radians": {}, "reflect": {}, "refract": {}, "reverseBits": {},
	"round": {}, "saturate": {}, "select": {}, "sign": {}, "sin": {},
	"sinh": {}, "smoothstep": {}, "sqrt": {}, "step": {}, "storageBarrier": {},
	"tan": {}, "tanh": {}, "textureBarrier": {}, "textureDimensions": {},
	"textureGather": {}, "textureGatherCompare": {}, "textureLoad": {},
	"textureNumLayers": {}, "textureNumLevels": {}, "textureNumSamples": {},
	"textureSample": {}, "textureSampleBias": {}, "textureSampleCompare": {},
	"textureSampleCompareLevel": {}, "textureSampleGrad": {},
	"textureSampleLevel": {}, "textureStore": {}, "transpose": {},
	"trunc": {}, "unpack2x16float": {}, "unpack2x16snorm": {},
	"unpack2x16unorm": {}, "unpack4x8snorm": {}, "unpack4x8unorm": {},
	"workgroupBarrier": {}, "workgroupUniformLoad": {},
}

// isKeyword checks if a name is reserved in WGSL.
func isKeyword(name string) bool {
	_, ok := wgslKeywords[name]
	return ok
}

// sanitize turns an arbitrary name into a valid WGSL identifier, using
// fallback when nothing usable is left.
func sanitize(name, fallback string) string {
	var sb strings.Builder
	for _, r := range name {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	s := sb.String()
	// Identifiers starting with two underscores are reserved.
	if strings.HasPrefix(s, "__") {
		s = strings.TrimLeft(s, "_")
	}
	if s == "" || s == "_" {
		return fallback
	}
	if unicode.IsDigit(rune(s[0])) {
		s = "_" + s
	}
	return escapeKeyword(s)
}

// escapeKeyword appends an underscore to reserved names.
func escapeKeyword(name string) string {
	if isKeyword(name) {
		return name + "_"
	}
	return name
}
