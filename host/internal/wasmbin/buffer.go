package wasmbin

// Buffer accumulates encoded bytes.
type Buffer struct {
	Bytes []byte
}

func (b *Buffer) AppendByte(v byte) {
	b.Bytes = append(b.Bytes, v)
}

func (b *Buffer) WriteBytes(v []byte) {
	b.Bytes = append(b.Bytes, v...)
}

// WriteU32 writes unsigned LEB128 encoding.
func (b *Buffer) WriteU32(v uint32) {
	for {
		byt := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			byt |= 0x80
		}
		b.AppendByte(byt)
		if v == 0 {
			break
		}
	}
}

// WriteI64 writes signed LEB128 encoding. Also used for i32 constants,
// whose encoding is the same for values in range.
func (b *Buffer) WriteI64(v int64) {
	for {
		byt := byte(v & 0x7F)
		v >>= 7
		if (v == 0 && byt&0x40 == 0) || (v == -1 && byt&0x40 != 0) {
			b.AppendByte(byt)
			break
		}
		b.AppendByte(byt | 0x80)
	}
}

// WriteName writes a length-prefixed UTF-8 name.
func (b *Buffer) WriteName(s string) {
	b.WriteU32(uint32(len(s)))
	b.WriteBytes([]byte(s))
}

// WriteLimits writes a limits pair without a maximum.
func (b *Buffer) WriteLimits(min uint32) {
	b.AppendByte(0x00)
	b.WriteU32(min)
}
