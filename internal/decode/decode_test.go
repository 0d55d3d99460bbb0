package decode

import (
	"encoding/binary"
	"testing"

	"github.com/oisee/gcmc/internal/word"
)

func TestDecodeWorkedExamples(t *testing.T) {
	tests := []struct {
		name string
		word uint32
		want Instruction
	}{
		{
			name: "add r3, r1, r2",
			word: 0x10c00802,
			want: Instruction{Op: ADD, Cfg: uint8(RR), Rd: 3, Ra: 1, Rb: 2},
		},
		{
			name: "mod r3, 122, r2",
			word: 0x58c3d002,
			want: Instruction{Op: MOD, Cfg: uint8(IR), Rd: 3, Imma: 122, Rb: 2},
		},
		{
			name: "loadint r3, r1 (register-indirect address)",
			word: 0xee300001,
			want: Instruction{Op: LOAD, Cfg: uint8(LoadRAA), Typ: Int, Rd: 3, Ra: 1},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Decode(tc.word)
			if got != tc.want {
				t.Errorf("Decode(%#08x) = %+v, want %+v", tc.word, got, tc.want)
			}
		})
	}
}

func wordsToSource(t *testing.T, words []uint32) *word.Source {
	t.Helper()
	buf := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}
	src, err := word.FromBytes(buf)
	if err != nil {
		t.Fatalf("word.FromBytes: %v", err)
	}
	return src
}

func TestDecoderAdvancesAndJumps(t *testing.T) {
	src := wordsToSource(t, []uint32{0x10c00802, 0xf0000000})

	d := NewDecoder(src)
	if d.Index() != 0 {
		t.Fatalf("Index() = %d, want 0", d.Index())
	}
	in := d.DecodeNext()
	if in.Op != ADD {
		t.Fatalf("first decode = %v, want ADD", in.Op)
	}
	if d.Index() != 1 {
		t.Fatalf("Index() after decode = %d, want 1", d.Index())
	}

	d.SetIndex(2)
	if d.Index() != 2 {
		t.Fatalf("SetIndex did not take effect")
	}

	d.Reset()
	if d.Index() != 0 {
		t.Fatalf("Reset() left Index() = %d, want 0", d.Index())
	}
}

func TestFieldTypeWidth(t *testing.T) {
	tests := []struct {
		t    FieldType
		want int
	}{
		{Bool, 8},
		{Byte, 8},
		{Int, 32},
		{State, 16},
	}
	for _, tc := range tests {
		if got := tc.t.Width(); got != tc.want {
			t.Errorf("%v.Width() = %d, want %d", tc.t, got, tc.want)
		}
	}
}
