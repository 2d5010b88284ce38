// Package scene light entity.
package scene

import (
	"fmt"

	"goki.dev/mat32/v2"

	"github.com/scenebridge/scenebridge/wire"
)

// LightType identifies the light kind.
type LightType uint32

const (
	LightSpot LightType = iota
	LightDirectional
	LightPoint
	LightArea
)

// String returns the string representation of LightType.
func (lt LightType) String() string {
	switch lt {
	case LightSpot:
		return "spot"
	case LightDirectional:
		return "directional"
	case LightPoint:
		return "point"
	case LightArea:
		return "area"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(lt))
	}
}

// Light is a Transform carrying light parameters.
type Light struct {
	Transform

	LightType LightType
	Color     mat32.Vec4
	Intensity float32
	Range     float32
	SpotAngle float32
}

// NewLight creates a directional white Light.
func NewLight(id int32, path string) *Light {
	l := &Light{Transform: *NewTransform(id, path)}
	l.LightType = LightDirectional
	l.Color = mat32.Vec4{X: 1, Y: 1, Z: 1, W: 1}
	l.Intensity = 1
	l.Mask |= MaskLight
	return l
}

// Type returns EntityLight.
func (l *Light) Type() EntityType {
	return EntityLight
}

// IsGeometry returns false.
func (l *Light) IsGeometry() bool {
	return false
}

// Clone returns a deep copy without the Parent link.
func (l *Light) Clone() Entity {
	n := *l
	n.Parent = nil
	return &n
}

// Write serializes the Light record.
func (l *Light) Write(w *wire.Writer) {
	l.Transform.Write(w)
	if l.Mask.Has(MaskLight) {
		w.U32(uint32(l.LightType))
		w.Vec4(l.Color)
		w.F32(l.Intensity)
		w.F32(l.Range)
		w.F32(l.SpotAngle)
	}
}

// Read deserializes the Light record.
func (l *Light) Read(r *wire.Reader) {
	l.Transform.Read(r)
	if l.Mask.Has(MaskLight) {
		l.LightType = LightType(r.U32())
		l.Color = r.Vec4()
		l.Intensity = r.F32()
		l.Range = r.F32()
		l.SpotAngle = r.F32()
	}
}

func (l *Light) paramsEqual(b *Light) bool {
	return l.LightType == b.LightType && l.Color == b.Color && l.Intensity == b.Intensity &&
		l.Range == b.Range && l.SpotAngle == b.SpotAngle
}

func (l *Light) clearParams() {
	l.LightType = 0
	l.Color = mat32.Vec4{}
	l.Intensity = 0
	l.Range = 0
	l.SpotAngle = 0
}

// Strip zeroes fields equal to base and clears their mask bits.
func (l *Light) Strip(base Entity) {
	b, ok := base.(*Light)
	if !ok {
		return
	}
	l.Transform.Strip(base)
	if l.Mask.Has(MaskLight) && b.Mask.Has(MaskLight) && l.paramsEqual(b) {
		l.clearParams()
		l.Mask &^= MaskLight
	}
}

// Merge fills mask-unset fields from base.
func (l *Light) Merge(base Entity) {
	b, ok := base.(*Light)
	if !ok {
		return
	}
	l.Transform.Merge(base)
	if !l.Mask.Has(MaskLight) && b.Mask.Has(MaskLight) {
		l.LightType = b.LightType
		l.Color = b.Color
		l.Intensity = b.Intensity
		l.Range = b.Range
		l.SpotAngle = b.SpotAngle
		l.Mask |= MaskLight
	}
}

// Diff populates l as the delta between a and b.
func (l *Light) Diff(a, b Entity) {
	la, okA := a.(*Light)
	lb, okB := b.(*Light)
	if !okA || !okB {
		return
	}
	l.Transform.Diff(a, b)
	if !la.paramsEqual(lb) {
		l.LightType = lb.LightType
		l.Color = lb.Color
		l.Intensity = lb.Intensity
		l.Range = lb.Range
		l.SpotAngle = lb.SpotAngle
		l.Mask |= MaskLight
	} else {
		l.clearParams()
	}
}

// Lerp populates l with the interpolation of a and b at t.
func (l *Light) Lerp(a, b Entity, t float32) {
	la, okA := a.(*Light)
	lb, okB := b.(*Light)
	if !okA || !okB {
		return
	}
	l.Transform.Lerp(a, b, t)
	l.LightType = la.LightType
	l.Color = lerpVec4(la.Color, lb.Color, t)
	l.Intensity = lerpF32(la.Intensity, lb.Intensity, t)
	l.Range = lerpF32(la.Range, lb.Range, t)
	l.SpotAngle = lerpF32(la.SpotAngle, lb.SpotAngle, t)
}

func lerpVec4(a, b mat32.Vec4, t float32) mat32.Vec4 {
	return mat32.Vec4{
		X: lerpF32(a.X, b.X, t),
		Y: lerpF32(a.Y, b.Y, t),
		Z: lerpF32(a.Z, b.Z, t),
		W: lerpF32(a.W, b.W, t),
	}
}
