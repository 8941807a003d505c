package tacstore

import "encoding/binary"

// instructionRecordSize is the frozen on-disk layout (28 bytes),
// little-endian:
//
//	opcode uint16 | flags uint16 | dest{tag uint8, _pad[3]byte, payload int32} | src1{...} | src2{...}
const instructionRecordSize = 4 + 3*operandSize

const operandSize = 8 // tag(1) + pad(3) + payload(4)

type instructionCodec struct{}

func (instructionCodec) Size() int { return instructionRecordSize }

func (instructionCodec) Encode(ins Instruction) []byte {
	b := make([]byte, instructionRecordSize)
	binary.LittleEndian.PutUint16(b[0:2], uint16(ins.Opcode))
	binary.LittleEndian.PutUint16(b[2:4], ins.Flags)
	encodeOperand(b[4:12], ins.Dest)
	encodeOperand(b[12:20], ins.Src1)
	encodeOperand(b[20:28], ins.Src2)
	return b
}

func (instructionCodec) Decode(b []byte) (Instruction, error) {
	return Instruction{
		Opcode: Opcode(binary.LittleEndian.Uint16(b[0:2])),
		Flags:  binary.LittleEndian.Uint16(b[2:4]),
		Dest:   decodeOperand(b[4:12]),
		Src1:   decodeOperand(b[12:20]),
		Src2:   decodeOperand(b[20:28]),
	}, nil
}

func encodeOperand(b []byte, op Operand) {
	b[0] = byte(op.Tag)
	binary.LittleEndian.PutUint32(b[4:8], uint32(op.Payload))
}

func decodeOperand(b []byte) Operand {
	return Operand{
		Tag:     OperandTag(b[0]),
		Payload: int32(binary.LittleEndian.Uint32(b[4:8])),
	}
}
