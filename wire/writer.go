// Package wire provides the binary encoding primitives shared by scene
// serialization and protocol framing. All multi-byte values are big-endian;
// strings and slices are u32 length-prefixed.
package wire

import (
	"encoding/binary"
	"io"
	"math"

	"goki.dev/mat32/v2"
)

// Writer encodes primitive values onto an io.Writer. The first write error
// is retained and every later call becomes a no-op, so a whole record can be
// written without per-field error checks; callers inspect Err once at the end.
type Writer struct {
	w   io.Writer
	err error
	buf [8]byte
}

// NewWriter creates a Writer encoding onto w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Err returns the first error encountered while writing, if any.
func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) write(b []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.Write(b)
}

// U8 writes an unsigned 8-bit value.
func (w *Writer) U8(v uint8) {
	w.buf[0] = v
	w.write(w.buf[:1])
}

// U32 writes an unsigned 32-bit value.
func (w *Writer) U32(v uint32) {
	binary.BigEndian.PutUint32(w.buf[:4], v)
	w.write(w.buf[:4])
}

// U64 writes an unsigned 64-bit value.
func (w *Writer) U64(v uint64) {
	binary.BigEndian.PutUint64(w.buf[:8], v)
	w.write(w.buf[:8])
}

// I32 writes a signed 32-bit value.
func (w *Writer) I32(v int32) {
	w.U32(uint32(v))
}

// F32 writes a 32-bit float.
func (w *Writer) F32(v float32) {
	w.U32(math.Float32bits(v))
}

// Bool writes a boolean as a single byte.
func (w *Writer) Bool(v bool) {
	if v {
		w.U8(1)
	} else {
		w.U8(0)
	}
}

// String writes a u32 length prefix followed by the raw bytes.
func (w *Writer) String(s string) {
	w.U32(uint32(len(s)))
	w.write([]byte(s))
}

// Bytes writes a u32 length prefix followed by the raw bytes.
func (w *Writer) Bytes(b []byte) {
	w.U32(uint32(len(b)))
	w.write(b)
}

// Strings writes a u32 count followed by each string.
func (w *Writer) Strings(vs []string) {
	w.U32(uint32(len(vs)))
	for _, v := range vs {
		w.String(v)
	}
}

// I32s writes a u32 count followed by each value.
func (w *Writer) I32s(vs []int32) {
	w.U32(uint32(len(vs)))
	for _, v := range vs {
		w.I32(v)
	}
}

// F32s writes a u32 count followed by each value.
func (w *Writer) F32s(vs []float32) {
	w.U32(uint32(len(vs)))
	for _, v := range vs {
		w.F32(v)
	}
}

// Vec2 writes the two components of v.
func (w *Writer) Vec2(v mat32.Vec2) {
	w.F32(v.X)
	w.F32(v.Y)
}

// Vec3 writes the three components of v.
func (w *Writer) Vec3(v mat32.Vec3) {
	w.F32(v.X)
	w.F32(v.Y)
	w.F32(v.Z)
}

// Vec4 writes the four components of v.
func (w *Writer) Vec4(v mat32.Vec4) {
	w.F32(v.X)
	w.F32(v.Y)
	w.F32(v.Z)
	w.F32(v.W)
}

// Quat writes the four components of q.
func (w *Writer) Quat(q mat32.Quat) {
	w.F32(q.X)
	w.F32(q.Y)
	w.F32(q.Z)
	w.F32(q.W)
}

// Mat4 writes the 16 matrix components in storage order.
func (w *Writer) Mat4(m mat32.Mat4) {
	for _, f := range m {
		w.F32(f)
	}
}

// Vec2s writes a u32 count followed by each vector.
func (w *Writer) Vec2s(vs []mat32.Vec2) {
	w.U32(uint32(len(vs)))
	for _, v := range vs {
		w.Vec2(v)
	}
}

// Vec3s writes a u32 count followed by each vector.
func (w *Writer) Vec3s(vs []mat32.Vec3) {
	w.U32(uint32(len(vs)))
	for _, v := range vs {
		w.Vec3(v)
	}
}

// Vec4s writes a u32 count followed by each vector.
func (w *Writer) Vec4s(vs []mat32.Vec4) {
	w.U32(uint32(len(vs)))
	for _, v := range vs {
		w.Vec4(v)
	}
}

// Quats writes a u32 count followed by each quaternion.
func (w *Writer) Quats(vs []mat32.Quat) {
	w.U32(uint32(len(vs)))
	for _, v := range vs {
		w.Quat(v)
	}
}
