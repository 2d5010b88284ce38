// Package scene camera entity.
package scene

import (
	"github.com/scenebridge/scenebridge/wire"
)

// Camera is a Transform carrying projection parameters.
type Camera struct {
	Transform

	Ortho       bool
	FOV         float32
	NearPlane   float32
	FarPlane    float32
	FocalLength float32
}

// NewCamera creates a Camera with common projection defaults.
func NewCamera(id int32, path string) *Camera {
	c := &Camera{Transform: *NewTransform(id, path)}
	c.FOV = 30
	c.NearPlane = 0.3
	c.FarPlane = 1000
	c.Mask |= MaskCamera
	return c
}

// Type returns EntityCamera.
func (c *Camera) Type() EntityType {
	return EntityCamera
}

// IsGeometry returns false.
func (c *Camera) IsGeometry() bool {
	return false
}

// Clone returns a deep copy without the Parent link.
func (c *Camera) Clone() Entity {
	n := *c
	n.Parent = nil
	return &n
}

// Write serializes the Camera record.
func (c *Camera) Write(w *wire.Writer) {
	c.Transform.Write(w)
	if c.Mask.Has(MaskCamera) {
		w.Bool(c.Ortho)
		w.F32(c.FOV)
		w.F32(c.NearPlane)
		w.F32(c.FarPlane)
		w.F32(c.FocalLength)
	}
}

// Read deserializes the Camera record.
func (c *Camera) Read(r *wire.Reader) {
	c.Transform.Read(r)
	if c.Mask.Has(MaskCamera) {
		c.Ortho = r.Bool()
		c.FOV = r.F32()
		c.NearPlane = r.F32()
		c.FarPlane = r.F32()
		c.FocalLength = r.F32()
	}
}

func (c *Camera) paramsEqual(b *Camera) bool {
	return c.Ortho == b.Ortho && c.FOV == b.FOV && c.NearPlane == b.NearPlane &&
		c.FarPlane == b.FarPlane && c.FocalLength == b.FocalLength
}

func (c *Camera) clearParams() {
	c.Ortho = false
	c.FOV = 0
	c.NearPlane = 0
	c.FarPlane = 0
	c.FocalLength = 0
}

// Strip zeroes fields equal to base and clears their mask bits.
func (c *Camera) Strip(base Entity) {
	b, ok := base.(*Camera)
	if !ok {
		return
	}
	c.Transform.Strip(base)
	if c.Mask.Has(MaskCamera) && b.Mask.Has(MaskCamera) && c.paramsEqual(b) {
		c.clearParams()
		c.Mask &^= MaskCamera
	}
}

// Merge fills mask-unset fields from base.
func (c *Camera) Merge(base Entity) {
	b, ok := base.(*Camera)
	if !ok {
		return
	}
	c.Transform.Merge(base)
	if !c.Mask.Has(MaskCamera) && b.Mask.Has(MaskCamera) {
		c.Ortho = b.Ortho
		c.FOV = b.FOV
		c.NearPlane = b.NearPlane
		c.FarPlane = b.FarPlane
		c.FocalLength = b.FocalLength
		c.Mask |= MaskCamera
	}
}

// Diff populates c as the delta between a and b.
func (c *Camera) Diff(a, b Entity) {
	ca, okA := a.(*Camera)
	cb, okB := b.(*Camera)
	if !okA || !okB {
		return
	}
	c.Transform.Diff(a, b)
	if !ca.paramsEqual(cb) {
		c.Ortho = cb.Ortho
		c.FOV = cb.FOV
		c.NearPlane = cb.NearPlane
		c.FarPlane = cb.FarPlane
		c.FocalLength = cb.FocalLength
		c.Mask |= MaskCamera
	} else {
		c.clearParams()
	}
}

// Lerp populates c with the interpolation of a and b at t.
func (c *Camera) Lerp(a, b Entity, t float32) {
	ca, okA := a.(*Camera)
	cb, okB := b.(*Camera)
	if !okA || !okB {
		return
	}
	c.Transform.Lerp(a, b, t)
	c.Ortho = ca.Ortho
	c.FOV = lerpF32(ca.FOV, cb.FOV, t)
	c.NearPlane = lerpF32(ca.NearPlane, cb.NearPlane, t)
	c.FarPlane = lerpF32(ca.FarPlane, cb.FarPlane, t)
	c.FocalLength = lerpF32(ca.FocalLength, cb.FocalLength, t)
}

func lerpF32(a, b, t float32) float32 {
	return a + (b-a)*t
}
