package spirv

import (
	"encoding/binary"
	"fmt"
	"math/bits"
)

// ParseError reports a malformed or unsupported SPIR-V module.
type ParseError struct {
	Offset  int // word offset of the offending instruction, -1 if unknown
	Message string
}

func (e *ParseError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("spirv: word %d: %s", e.Offset, e.Message)
	}
	return "spirv: " + e.Message
}

func parseErrorf(offset int, format string, args ...any) *ParseError {
	return &ParseError{Offset: offset, Message: fmt.Sprintf(format, args...)}
}

// Header is the five-word SPIR-V module header.
type Header struct {
	Version   Version
	Generator uint32
	Bound     uint32
	Schema    uint32
}

// rawInst is an instruction as found in the binary stream.
type rawInst struct {
	Instruction
	offset int
}

// decodeWords converts a byte slice into words, detecting endianness from
// the magic number.
func decodeWords(data []byte) ([]uint32, error) {
	if len(data) < headerWords*4 {
		return nil, parseErrorf(-1, "module too short: %d bytes", len(data))
	}
	if len(data)%4 != 0 {
		return nil, parseErrorf(-1, "module length %d is not a multiple of 4", len(data))
	}
	order := binary.ByteOrder(binary.LittleEndian)
	switch magic := binary.LittleEndian.Uint32(data); magic {
	case MagicNumber:
	case bits.ReverseBytes32(MagicNumber):
		order = binary.BigEndian
	default:
		return nil, parseErrorf(-1, "invalid magic number %#08x", magic)
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = order.Uint32(data[i*4:])
	}
	return words, nil
}

// readHeader validates and decodes the module header.
func readHeader(words []uint32) (Header, error) {
	if len(words) < headerWords {
		return Header{}, parseErrorf(-1, "module too short: %d words", len(words))
	}
	if words[0] != MagicNumber {
		return Header{}, parseErrorf(0, "invalid magic number %#08x", words[0])
	}
	return Header{
		Version:   Version{Major: uint8(words[1] >> 16), Minor: uint8(words[1] >> 8)},
		Generator: words[2],
		Bound:     words[3],
		Schema:    words[4],
	}, nil
}

// readInstructions splits the instruction stream following the header.
func readInstructions(words []uint32) ([]rawInst, error) {
	var insts []rawInst
	for i := headerWords; i < len(words); {
		count := int(words[i] >> 16)
		op := OpCode(words[i] & 0xffff)
		if count == 0 {
			return nil, parseErrorf(i, "zero word count for %s", op)
		}
		if i+count > len(words) {
			return nil, parseErrorf(i, "%s overruns the module (%d words)", op, count)
		}
		insts = append(insts, rawInst{
			Instruction: Instruction{Opcode: op, Words: words[i+1 : i+count]},
			offset:      i,
		})
		i += count
	}
	return insts, nil
}

// decodeString decodes a null-terminated literal string starting at words[0]
// and returns it together with the number of words consumed.
func decodeString(words []uint32) (string, int) {
	var buf []byte
	for i, w := range words {
		for shift := 0; shift < 32; shift += 8 {
			c := byte(w >> shift)
			if c == 0 {
				return string(buf), i + 1
			}
			buf = append(buf, c)
		}
	}
	return string(buf), len(words)
}
