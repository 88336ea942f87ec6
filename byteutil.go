package undokv

import (
	"encoding/binary"
	"math"
)

func appendUint32(buf []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(buf, v)
}

func appendUint64(buf []byte, v uint64) []byte {
	return binary.LittleEndian.AppendUint64(buf, v)
}

func appendUvarint(buf []byte, v uint64) []byte {
	return binary.AppendUvarint(buf, v)
}

func appendUvarinti(buf []byte, v int) []byte {
	if v < 0 {
		panic("invalid negative value")
	}
	return appendUvarint(buf, uint64(v))
}

func appendVarbytes(buf []byte, v []byte) []byte {
	buf = appendUvarint(buf, uint64(len(v)))
	return append(buf, v...)
}

type byteDecoder struct {
	Orig []byte
	Buf  []byte
}

func makeByteDecoder(buf []byte) byteDecoder {
	return byteDecoder{buf, buf}
}

func (d *byteDecoder) Off() int {
	return len(d.Orig) - len(d.Buf)
}

func (d *byteDecoder) Uint32() (uint32, error) {
	if len(d.Buf) < 4 {
		return 0, dataErrf(d.Orig, d.Off(), nil, "not enough data: %d bytes remaining, 4 wanted", len(d.Buf))
	}
	v := binary.LittleEndian.Uint32(d.Buf)
	d.Buf = d.Buf[4:]
	return v, nil
}

func (d *byteDecoder) Uint64() (uint64, error) {
	if len(d.Buf) < 8 {
		return 0, dataErrf(d.Orig, d.Off(), nil, "not enough data: %d bytes remaining, 8 wanted", len(d.Buf))
	}
	v := binary.LittleEndian.Uint64(d.Buf)
	d.Buf = d.Buf[8:]
	return v, nil
}

func (d *byteDecoder) Uvarint() (uint64, error) {
	v, n := binary.Uvarint(d.Buf)
	if n <= 0 {
		return 0, dataErrf(d.Orig, d.Off(), nil, "invalid uvarint")
	}
	d.Buf = d.Buf[n:]
	return v, nil
}

func (d *byteDecoder) Uvarinti() (int, error) {
	v, err := d.Uvarint()
	if v > math.MaxInt {
		return 0, dataErrf(d.Orig, d.Off(), nil, "value does not fit into int: %d", v)
	}
	return int(v), err
}

func (d *byteDecoder) Raw(n int) ([]byte, error) {
	if len(d.Buf) < n {
		return nil, dataErrf(d.Orig, d.Off(), nil, "not enough data: %d bytes remaining, %d wanted", len(d.Buf), n)
	}
	v := d.Buf[:n]
	d.Buf = d.Buf[n:]
	return v, nil
}

func (d *byteDecoder) VarBytes() ([]byte, error) {
	n, err := d.Uvarinti()
	if err != nil {
		return nil, err
	}
	return d.Raw(n)
}
