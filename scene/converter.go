// Package scene entity converters: the chain-of-responsibility of
// coordinate and unit corrections applied uniformly to every entity and
// every animation curve during import.
package scene

import (
	"github.com/chewxy/math32"
	"goki.dev/mat32/v2"
)

// EntityConverter rewrites an entity or an animation curve from one
// coordinate frame to another. Converters compose into an ordered chain;
// each assumes the frame left by the previous one.
type EntityConverter interface {
	ConvertEntity(e Entity)
	ConvertAnimation(a *Animation)
}

// frameOps are the per-element primitives a converter defines. point applies
// to positions and translations, vector to normals and directions, scale to
// scale channels, distance to scalar lengths such as clip planes and ranges.
type frameOps interface {
	point(v mat32.Vec3) mat32.Vec3
	vector(v mat32.Vec3) mat32.Vec3
	quat(q mat32.Quat) mat32.Quat
	scale(v mat32.Vec3) mat32.Vec3
	distance(f float32) float32
}

// applyEntity runs the converter primitives over every frame-dependent field
// of the entity, dispatching on its kind.
func applyEntity(c frameOps, e Entity) {
	t := e.TransformBase()
	t.Position = c.point(t.Position)
	t.Rotation = c.quat(t.Rotation)
	t.Scale = c.scale(t.Scale)

	switch v := e.(type) {
	case *Camera:
		v.NearPlane = c.distance(v.NearPlane)
		v.FarPlane = c.distance(v.FarPlane)
	case *Light:
		v.Range = c.distance(v.Range)
	case *Mesh:
		for i := range v.Points {
			v.Points[i] = c.point(v.Points[i])
		}
		for i := range v.Normals {
			v.Normals[i] = c.vector(v.Normals[i])
		}
		for _, b := range v.Bones {
			// The bindpose translation lives in the last matrix column.
			p := c.point(mat32.V3(b.Bindpose[12], b.Bindpose[13], b.Bindpose[14]))
			b.Bindpose[12] = p.X
			b.Bindpose[13] = p.Y
			b.Bindpose[14] = p.Z
		}
	case *Points:
		for i := range v.Positions {
			v.Positions[i] = c.point(v.Positions[i])
		}
		for i := range v.Rotations {
			v.Rotations[i] = c.quat(v.Rotations[i])
		}
		for i := range v.Scales {
			v.Scales[i] = c.scale(v.Scales[i])
		}
	}
}

// applyAnimation runs the converter primitives over every curve channel.
func applyAnimation(c frameOps, a *Animation) {
	for i := range a.TranslationKeys {
		a.TranslationKeys[i].Value = c.point(a.TranslationKeys[i].Value)
	}
	for i := range a.RotationKeys {
		a.RotationKeys[i].Value = c.quat(a.RotationKeys[i].Value)
	}
	for i := range a.ScaleKeys {
		a.ScaleKeys[i].Value = c.scale(a.ScaleKeys[i].Value)
	}
}

// ScaleConverter applies a uniform length-unit conversion.
type ScaleConverter struct {
	Factor float32
}

// NewScaleConverter creates a converter multiplying lengths by factor.
func NewScaleConverter(factor float32) *ScaleConverter {
	return &ScaleConverter{Factor: factor}
}

func (c *ScaleConverter) ConvertEntity(e Entity)        { applyEntity(c, e) }
func (c *ScaleConverter) ConvertAnimation(a *Animation) { applyAnimation(c, a) }

func (c *ScaleConverter) point(v mat32.Vec3) mat32.Vec3  { return v.MulScalar(c.Factor) }
func (c *ScaleConverter) vector(v mat32.Vec3) mat32.Vec3 { return v }
func (c *ScaleConverter) quat(q mat32.Quat) mat32.Quat   { return q }
func (c *ScaleConverter) scale(v mat32.Vec3) mat32.Vec3  { return v }
func (c *ScaleConverter) distance(f float32) float32     { return f * c.Factor }

// FlipXConverter mirrors the X axis, converting between left- and
// right-handed frames.
type FlipXConverter struct{}

// NewFlipXConverter creates a handedness corrector.
func NewFlipXConverter() *FlipXConverter {
	return &FlipXConverter{}
}

func (c *FlipXConverter) ConvertEntity(e Entity)        { applyEntity(c, e) }
func (c *FlipXConverter) ConvertAnimation(a *Animation) { applyAnimation(c, a) }

func (c *FlipXConverter) point(v mat32.Vec3) mat32.Vec3 {
	return mat32.V3(-v.X, v.Y, v.Z)
}
func (c *FlipXConverter) vector(v mat32.Vec3) mat32.Vec3 {
	return mat32.V3(-v.X, v.Y, v.Z)
}
func (c *FlipXConverter) quat(q mat32.Quat) mat32.Quat {
	return mat32.NewQuat(q.X, -q.Y, -q.Z, q.W)
}
func (c *FlipXConverter) scale(v mat32.Vec3) mat32.Vec3 { return v }
func (c *FlipXConverter) distance(f float32) float32    { return f }

// FlipYZConverter swaps the Y and Z axes, converting a Z-up frame to Y-up.
type FlipYZConverter struct{}

// NewFlipYZConverter creates a swap-based up-axis corrector.
func NewFlipYZConverter() *FlipYZConverter {
	return &FlipYZConverter{}
}

func (c *FlipYZConverter) ConvertEntity(e Entity)        { applyEntity(c, e) }
func (c *FlipYZConverter) ConvertAnimation(a *Animation) { applyAnimation(c, a) }

func (c *FlipYZConverter) point(v mat32.Vec3) mat32.Vec3 {
	return mat32.V3(v.X, v.Z, v.Y)
}
func (c *FlipYZConverter) vector(v mat32.Vec3) mat32.Vec3 {
	return mat32.V3(v.X, v.Z, v.Y)
}
func (c *FlipYZConverter) quat(q mat32.Quat) mat32.Quat {
	return mat32.NewQuat(-q.X, -q.Z, -q.Y, q.W)
}
func (c *FlipYZConverter) scale(v mat32.Vec3) mat32.Vec3 {
	return mat32.V3(v.X, v.Z, v.Y)
}
func (c *FlipYZConverter) distance(f float32) float32 { return f }

// RotateXConverter rotates -90 degrees about X, the rotation-based up-axis
// correction for hosts that prefer preserved winding over swapped axes.
type RotateXConverter struct {
	rot mat32.Quat
}

// NewRotateXConverter creates a rotation-based up-axis corrector.
func NewRotateXConverter() *RotateXConverter {
	return &RotateXConverter{rot: mat32.NewQuatAxisAngle(mat32.V3(1, 0, 0), -math32.Pi/2)}
}

func (c *RotateXConverter) ConvertEntity(e Entity)        { applyEntity(c, e) }
func (c *RotateXConverter) ConvertAnimation(a *Animation) { applyAnimation(c, a) }

func (c *RotateXConverter) point(v mat32.Vec3) mat32.Vec3 {
	return mat32.V3(v.X, v.Z, -v.Y)
}
func (c *RotateXConverter) vector(v mat32.Vec3) mat32.Vec3 {
	return mat32.V3(v.X, v.Z, -v.Y)
}
func (c *RotateXConverter) quat(q mat32.Quat) mat32.Quat {
	return c.rot.Mul(q)
}
func (c *RotateXConverter) scale(v mat32.Vec3) mat32.Vec3 {
	return mat32.V3(v.X, v.Z, v.Y)
}
func (c *RotateXConverter) distance(f float32) float32 { return f }

// converterChain builds the ordered converter list for the given authoring
// frame: unit scale first, then the handedness flip, then the up-axis
// correction. Order matters: each converter assumes the frame left by the
// previous one. A canonical frame yields an empty chain.
func converterChain(settings SceneSettings, imp ImportSettings) []EntityConverter {
	var chain []EntityConverter
	if settings.ScaleFactor != 1 && settings.ScaleFactor != 0 {
		chain = append(chain, NewScaleConverter(1/settings.ScaleFactor))
	}
	if settings.Handedness.FlipsX() {
		chain = append(chain, NewFlipXConverter())
	}
	if settings.Handedness.SwapsYZ() {
		switch imp.ZUpCorrection {
		case FlipYZ:
			chain = append(chain, NewFlipYZConverter())
		case RotateX:
			chain = append(chain, NewRotateXConverter())
		}
	}
	return chain
}
