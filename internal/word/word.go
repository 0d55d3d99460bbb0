// Package word reads the 32-bit little-endian word streams that make up a
// compiled core program, appending the zero-word terminator every program
// image is expected to end with.
package word

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Sentinel is the all-zero word appended after the last real word of a
// program. It decodes to opcode NOP and is what stops a core's fetch loop.
const Sentinel uint32 = 0x00000000

// Source is an ordered, indexable sequence of 32-bit words.
type Source struct {
	words []uint32
}

// FromBytes builds a Source from a little-endian byte stream, appending the
// sentinel word. Returns an error if the stream length is not a multiple
// of 4 (a truncated word).
func FromBytes(data []byte) (*Source, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("word: truncated binary: %d bytes is not a multiple of 4", len(data))
	}
	words := make([]uint32, 0, len(data)/4+1)
	for i := 0; i < len(data); i += 4 {
		words = append(words, binary.LittleEndian.Uint32(data[i:i+4]))
	}
	words = append(words, Sentinel)
	return &Source{words: words}, nil
}

// FromReader reads all of r and delegates to FromBytes.
func FromReader(r io.Reader) (*Source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("word: reading stream: %w", err)
	}
	return FromBytes(data)
}

// Len returns the number of words, including the appended sentinel.
func (s *Source) Len() int {
	return len(s.words)
}

// Word returns the word at index i. Indices are unchecked past the
// sentinel, matching the decoder's "programs are well-formed" contract —
// an out-of-range index panics like any other Go slice access.
func (s *Source) Word(i int) uint32 {
	return s.words[i]
}
