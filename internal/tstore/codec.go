package tstore

import "encoding/binary"

// tokenRecordSize is the frozen on-disk layout (12 bytes), little-endian:
//
//	kind uint16 | fileOffset uint16 | line uint32 | lexemeOffset uint16 | _pad uint16
//
// line sits at a 4-byte-aligned offset so the layout reads naturally on
// platforms that care about alignment, even though pread/pwrite never
// require it.
const tokenRecordSize = 12

type tokenCodec struct{}

func (tokenCodec) Size() int { return tokenRecordSize }

func (tokenCodec) Encode(t Token) []byte {
	b := make([]byte, tokenRecordSize)
	binary.LittleEndian.PutUint16(b[0:2], uint16(t.Kind))
	binary.LittleEndian.PutUint16(b[2:4], t.FileOffset)
	binary.LittleEndian.PutUint32(b[4:8], t.Line)
	binary.LittleEndian.PutUint16(b[8:10], t.LexemeOffset)
	// b[10:12] is reserved padding, always zero.
	return b
}

func (tokenCodec) Decode(b []byte) (Token, error) {
	return Token{
		Kind:         Kind(binary.LittleEndian.Uint16(b[0:2])),
		FileOffset:   binary.LittleEndian.Uint16(b[2:4]),
		Line:         binary.LittleEndian.Uint32(b[4:8]),
		LexemeOffset: binary.LittleEndian.Uint16(b[8:10]),
	}, nil
}
