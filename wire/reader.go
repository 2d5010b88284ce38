// Package wire decoding primitives.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"goki.dev/mat32/v2"
)

// MaxElements is the maximum element count accepted for any length-prefixed
// string or slice. A count beyond this on a corrupt or truncated stream would
// otherwise turn into a giant allocation before the hash check ever runs.
const MaxElements = 64 * 1024 * 1024

// ErrElementCount is returned when a length prefix exceeds MaxElements.
var ErrElementCount = errors.New("element count exceeds limit")

// Reader decodes primitive values from an io.Reader. Like Writer it retains
// the first error and turns later calls into no-ops returning zero values,
// so a whole record can be read before checking Err.
type Reader struct {
	r   io.Reader
	err error
	buf [8]byte
}

// NewReader creates a Reader decoding from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Err returns the first error encountered while reading, if any.
func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) read(b []byte) bool {
	if r.err != nil {
		return false
	}
	if _, err := io.ReadFull(r.r, b); err != nil {
		r.err = err
		return false
	}
	return true
}

// Count reads a u32 length prefix and validates it against MaxElements. An
// oversized count becomes the reader's sticky error, so callers decoding
// their own sections fail at the bad prefix rather than somewhere downstream.
func (r *Reader) Count() int {
	n := r.U32()
	if r.err != nil {
		return 0
	}
	if n > MaxElements {
		r.err = fmt.Errorf("%w: %d", ErrElementCount, n)
		return 0
	}
	return int(n)
}

// U8 reads an unsigned 8-bit value.
func (r *Reader) U8() uint8 {
	if !r.read(r.buf[:1]) {
		return 0
	}
	return r.buf[0]
}

// U32 reads an unsigned 32-bit value.
func (r *Reader) U32() uint32 {
	if !r.read(r.buf[:4]) {
		return 0
	}
	return binary.BigEndian.Uint32(r.buf[:4])
}

// U64 reads an unsigned 64-bit value.
func (r *Reader) U64() uint64 {
	if !r.read(r.buf[:8]) {
		return 0
	}
	return binary.BigEndian.Uint64(r.buf[:8])
}

// I32 reads a signed 32-bit value.
func (r *Reader) I32() int32 {
	return int32(r.U32())
}

// F32 reads a 32-bit float.
func (r *Reader) F32() float32 {
	return math.Float32frombits(r.U32())
}

// Bool reads a single byte as a boolean.
func (r *Reader) Bool() bool {
	return r.U8() != 0
}

// String reads a u32 length prefix followed by the raw bytes.
func (r *Reader) String() string {
	n := r.Count()
	if n == 0 {
		return ""
	}
	b := make([]byte, n)
	if !r.read(b) {
		return ""
	}
	return string(b)
}

// Bytes reads a u32 length prefix followed by the raw bytes.
func (r *Reader) Bytes() []byte {
	n := r.Count()
	if n == 0 {
		return nil
	}
	b := make([]byte, n)
	if !r.read(b) {
		return nil
	}
	return b
}

// Strings reads a u32 count followed by each string.
func (r *Reader) Strings() []string {
	n := r.Count()
	if n == 0 {
		return nil
	}
	vs := make([]string, n)
	for i := range vs {
		vs[i] = r.String()
	}
	return vs
}

// I32s reads a u32 count followed by each value.
func (r *Reader) I32s() []int32 {
	n := r.Count()
	if n == 0 {
		return nil
	}
	vs := make([]int32, n)
	for i := range vs {
		vs[i] = r.I32()
	}
	return vs
}

// F32s reads a u32 count followed by each value.
func (r *Reader) F32s() []float32 {
	n := r.Count()
	if n == 0 {
		return nil
	}
	vs := make([]float32, n)
	for i := range vs {
		vs[i] = r.F32()
	}
	return vs
}

// Vec2 reads two float components.
func (r *Reader) Vec2() mat32.Vec2 {
	var v mat32.Vec2
	v.X = r.F32()
	v.Y = r.F32()
	return v
}

// Vec3 reads three float components.
func (r *Reader) Vec3() mat32.Vec3 {
	var v mat32.Vec3
	v.X = r.F32()
	v.Y = r.F32()
	v.Z = r.F32()
	return v
}

// Vec4 reads four float components.
func (r *Reader) Vec4() mat32.Vec4 {
	var v mat32.Vec4
	v.X = r.F32()
	v.Y = r.F32()
	v.Z = r.F32()
	v.W = r.F32()
	return v
}

// Quat reads four float components.
func (r *Reader) Quat() mat32.Quat {
	var q mat32.Quat
	q.X = r.F32()
	q.Y = r.F32()
	q.Z = r.F32()
	q.W = r.F32()
	return q
}

// Mat4 reads 16 matrix components in storage order.
func (r *Reader) Mat4() mat32.Mat4 {
	var m mat32.Mat4
	for i := range m {
		m[i] = r.F32()
	}
	return m
}

// Vec2s reads a u32 count followed by each vector.
func (r *Reader) Vec2s() []mat32.Vec2 {
	n := r.Count()
	if n == 0 {
		return nil
	}
	vs := make([]mat32.Vec2, n)
	for i := range vs {
		vs[i] = r.Vec2()
	}
	return vs
}

// Vec3s reads a u32 count followed by each vector.
func (r *Reader) Vec3s() []mat32.Vec3 {
	n := r.Count()
	if n == 0 {
		return nil
	}
	vs := make([]mat32.Vec3, n)
	for i := range vs {
		vs[i] = r.Vec3()
	}
	return vs
}

// Vec4s reads a u32 count followed by each vector.
func (r *Reader) Vec4s() []mat32.Vec4 {
	n := r.Count()
	if n == 0 {
		return nil
	}
	vs := make([]mat32.Vec4, n)
	for i := range vs {
		vs[i] = r.Vec4()
	}
	return vs
}

// Quats reads a u32 count followed by each quaternion.
func (r *Reader) Quats() []mat32.Quat {
	n := r.Count()
	if n == 0 {
		return nil
	}
	vs := make([]mat32.Quat, n)
	for i := range vs {
		vs[i] = r.Quat()
	}
	return vs
}
