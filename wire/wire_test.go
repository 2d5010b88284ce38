package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"goki.dev/mat32/v2"
)

// TestRoundTrip tests that every primitive survives a write/read cycle
func TestRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	w.U8(0xAB)
	w.U32(0xDEADBEEF)
	w.U64(0x0123456789ABCDEF)
	w.I32(-42)
	w.F32(1.5)
	w.Bool(true)
	w.Bool(false)
	w.String("hello/world")
	w.Bytes([]byte{1, 2, 3})
	w.Strings([]string{"a", "bb"})
	w.I32s([]int32{-1, 0, 1})
	w.F32s([]float32{0.25, -0.5})
	w.Vec2(mat32.Vec2{X: 1, Y: 2})
	w.Vec3(mat32.V3(3, 4, 5))
	w.Vec4(mat32.Vec4{X: 1, Y: 0, Z: 0, W: 1})
	w.Quat(mat32.Quat{X: 0, Y: 0, Z: 0, W: 1})
	var m mat32.Mat4
	m.SetTransform(mat32.V3(1, 2, 3), mat32.NewQuat(0, 0, 0, 1), mat32.V3(1, 1, 1))
	w.Mat4(m)
	w.Vec3s([]mat32.Vec3{mat32.V3(1, 0, 0), mat32.V3(0, 1, 0)})
	w.Quats([]mat32.Quat{{X: 0, Y: 0, Z: 0, W: 1}})
	if err := w.Err(); err != nil {
		t.Fatalf("writer error: %v", err)
	}

	r := NewReader(&buf)
	if got := r.U8(); got != 0xAB {
		t.Errorf("U8: got %#x", got)
	}
	if got := r.U32(); got != 0xDEADBEEF {
		t.Errorf("U32: got %#x", got)
	}
	if got := r.U64(); got != 0x0123456789ABCDEF {
		t.Errorf("U64: got %#x", got)
	}
	if got := r.I32(); got != -42 {
		t.Errorf("I32: got %d", got)
	}
	if got := r.F32(); got != 1.5 {
		t.Errorf("F32: got %v", got)
	}
	if !r.Bool() || r.Bool() {
		t.Error("Bool: round trip mismatch")
	}
	if got := r.String(); got != "hello/world" {
		t.Errorf("String: got %q", got)
	}
	if got := r.Bytes(); !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Errorf("Bytes: got %v", got)
	}
	if got := r.Strings(); len(got) != 2 || got[1] != "bb" {
		t.Errorf("Strings: got %v", got)
	}
	if got := r.I32s(); len(got) != 3 || got[0] != -1 {
		t.Errorf("I32s: got %v", got)
	}
	if got := r.F32s(); len(got) != 2 || got[1] != -0.5 {
		t.Errorf("F32s: got %v", got)
	}
	if got := r.Vec2(); got != (mat32.Vec2{X: 1, Y: 2}) {
		t.Errorf("Vec2: got %v", got)
	}
	if got := r.Vec3(); got != mat32.V3(3, 4, 5) {
		t.Errorf("Vec3: got %v", got)
	}
	if got := r.Vec4(); got != (mat32.Vec4{X: 1, Y: 0, Z: 0, W: 1}) {
		t.Errorf("Vec4: got %v", got)
	}
	if got := r.Quat(); got != (mat32.Quat{X: 0, Y: 0, Z: 0, W: 1}) {
		t.Errorf("Quat: got %v", got)
	}
	if got := r.Mat4(); got != m {
		t.Errorf("Mat4: got %v", got)
	}
	if got := r.Vec3s(); len(got) != 2 || got[0] != mat32.V3(1, 0, 0) {
		t.Errorf("Vec3s: got %v", got)
	}
	if got := r.Quats(); len(got) != 1 || got[0].W != 1 {
		t.Errorf("Quats: got %v", got)
	}
	if err := r.Err(); err != nil {
		t.Fatalf("reader error: %v", err)
	}
}

// TestBigEndian tests the on-wire byte order
func TestBigEndian(t *testing.T) {
	var buf bytes.Buffer
	NewWriter(&buf).U32(0x01020304)
	got := buf.Bytes()
	want := []byte{1, 2, 3, 4}
	if !bytes.Equal(got, want) {
		t.Errorf("expected big-endian %v, got %v", want, got)
	}
}

// TestTruncation tests that a short stream sets a sticky error
func TestTruncation(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0, 0}))
	_ = r.U32()
	if r.Err() == nil {
		t.Fatal("expected error on truncated stream")
	}
	// Every later read returns zero values without touching the stream
	if got := r.U64(); got != 0 {
		t.Errorf("expected zero after sticky error, got %d", got)
	}
	if got := r.String(); got != "" {
		t.Errorf("expected empty string after sticky error, got %q", got)
	}
}

// TestStickyWriteError tests that a failing sink stops the writer
func TestStickyWriteError(t *testing.T) {
	w := NewWriter(failWriter{})
	w.U32(1)
	if w.Err() == nil {
		t.Fatal("expected error from failing sink")
	}
	w.String("ignored")
	if w.Err() == nil {
		t.Fatal("error must stay sticky")
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) {
	return 0, io.ErrClosedPipe
}

// TestElementCountLimit tests rejection of absurd element counts
func TestElementCountLimit(t *testing.T) {
	var buf bytes.Buffer
	count := make([]byte, 4)
	binary.BigEndian.PutUint32(count, uint32(MaxElements+1))
	buf.Write(count)

	r := NewReader(&buf)
	if got := r.I32s(); got != nil {
		t.Errorf("expected nil slice, got %d elements", len(got))
	}
	if !errors.Is(r.Err(), ErrElementCount) {
		t.Errorf("expected ErrElementCount, got %v", r.Err())
	}
}
