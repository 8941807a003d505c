package aststore

import "encoding/binary"

// nodeRecordSize is the frozen on-disk layout (16 bytes), little-endian:
//
//	typ uint16 | _pad uint16 | tokenIndex uint32 | o1 uint32 | o2 uint32
const nodeRecordSize = 16

type nodeCodec struct{}

func (nodeCodec) Size() int { return nodeRecordSize }

func (nodeCodec) Encode(n Node) []byte {
	b := make([]byte, nodeRecordSize)
	binary.LittleEndian.PutUint16(b[0:2], uint16(n.Type))
	binary.LittleEndian.PutUint32(b[4:8], n.TokenIndex)
	binary.LittleEndian.PutUint32(b[8:12], n.O1)
	binary.LittleEndian.PutUint32(b[12:16], n.O2)
	return b
}

func (nodeCodec) Decode(b []byte) (Node, error) {
	return Node{
		Type:       NodeType(binary.LittleEndian.Uint16(b[0:2])),
		TokenIndex: binary.LittleEndian.Uint32(b[4:8]),
		O1:         binary.LittleEndian.Uint32(b[8:12]),
		O2:         binary.LittleEndian.Uint32(b[12:16]),
	}, nil
}
