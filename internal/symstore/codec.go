package symstore

import "encoding/binary"

// entryRecordSize is the frozen on-disk layout (12 bytes), little-endian:
//
//	name uint16 | kind uint16 | typeRef uint16 | scope uint16 | value int32
const entryRecordSize = 12

type entryCodec struct{}

func (entryCodec) Size() int { return entryRecordSize }

func (entryCodec) Encode(e Entry) []byte {
	b := make([]byte, entryRecordSize)
	binary.LittleEndian.PutUint16(b[0:2], e.Name)
	binary.LittleEndian.PutUint16(b[2:4], e.Kind)
	binary.LittleEndian.PutUint16(b[4:6], e.TypeRef)
	binary.LittleEndian.PutUint16(b[6:8], e.Scope)
	binary.LittleEndian.PutUint32(b[8:12], uint32(e.Value))
	return b
}

func (entryCodec) Decode(b []byte) (Entry, error) {
	return Entry{
		Name:    binary.LittleEndian.Uint16(b[0:2]),
		Kind:    binary.LittleEndian.Uint16(b[2:4]),
		TypeRef: binary.LittleEndian.Uint16(b[4:6]),
		Scope:   binary.LittleEndian.Uint16(b[6:8]),
		Value:   int32(binary.LittleEndian.Uint32(b[8:12])),
	}, nil
}
