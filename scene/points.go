// Package scene point-instancing entity.
package scene

import (
	"slices"

	"goki.dev/mat32/v2"

	"github.com/scenebridge/scenebridge/wire"
)

// Points is a geometry entity carrying per-instance transforms, used for
// particle and scatter data.
type Points struct {
	Transform

	Positions []mat32.Vec3
	Rotations []mat32.Quat
	Scales    []mat32.Vec3
	IDs       []int32
}

// NewPoints creates an empty Points entity.
func NewPoints(id int32, path string) *Points {
	p := &Points{Transform: *NewTransform(id, path)}
	p.Mask |= MaskPointsData
	return p
}

// Type returns EntityPoints.
func (p *Points) Type() EntityType {
	return EntityPoints
}

// IsGeometry returns true.
func (p *Points) IsGeometry() bool {
	return true
}

// Clone returns a deep copy without the Parent link.
func (p *Points) Clone() Entity {
	n := *p
	n.Parent = nil
	n.Positions = slices.Clone(p.Positions)
	n.Rotations = slices.Clone(p.Rotations)
	n.Scales = slices.Clone(p.Scales)
	n.IDs = slices.Clone(p.IDs)
	return &n
}

// Write serializes the Points record.
func (p *Points) Write(w *wire.Writer) {
	p.Transform.Write(w)
	if p.Mask.Has(MaskPointsData) {
		w.Vec3s(p.Positions)
		w.Quats(p.Rotations)
		w.Vec3s(p.Scales)
		w.I32s(p.IDs)
	}
}

// Read deserializes the Points record.
func (p *Points) Read(r *wire.Reader) {
	p.Transform.Read(r)
	if p.Mask.Has(MaskPointsData) {
		p.Positions = r.Vec3s()
		p.Rotations = r.Quats()
		p.Scales = r.Vec3s()
		p.IDs = r.I32s()
	}
}

func (p *Points) dataEqual(b *Points) bool {
	return slices.Equal(p.Positions, b.Positions) && slices.Equal(p.Rotations, b.Rotations) &&
		slices.Equal(p.Scales, b.Scales) && slices.Equal(p.IDs, b.IDs)
}

func (p *Points) clearData() {
	p.Positions = nil
	p.Rotations = nil
	p.Scales = nil
	p.IDs = nil
}

func (p *Points) copyData(b *Points) {
	p.Positions = slices.Clone(b.Positions)
	p.Rotations = slices.Clone(b.Rotations)
	p.Scales = slices.Clone(b.Scales)
	p.IDs = slices.Clone(b.IDs)
}

// Strip zeroes fields equal to base and clears their mask bits.
func (p *Points) Strip(base Entity) {
	b, ok := base.(*Points)
	if !ok {
		return
	}
	p.Transform.Strip(base)
	if p.Mask.Has(MaskPointsData) && b.Mask.Has(MaskPointsData) && p.dataEqual(b) {
		p.clearData()
		p.Mask &^= MaskPointsData
	}
}

// Merge fills mask-unset fields from base.
func (p *Points) Merge(base Entity) {
	b, ok := base.(*Points)
	if !ok {
		return
	}
	p.Transform.Merge(base)
	if !p.Mask.Has(MaskPointsData) && b.Mask.Has(MaskPointsData) {
		p.copyData(b)
		p.Mask |= MaskPointsData
	}
}

// Diff populates p as the delta between a and b.
func (p *Points) Diff(a, b Entity) {
	pa, okA := a.(*Points)
	pb, okB := b.(*Points)
	if !okA || !okB {
		return
	}
	p.Transform.Diff(a, b)
	if !pa.dataEqual(pb) {
		p.copyData(pb)
		p.Mask |= MaskPointsData
	} else {
		p.clearData()
		p.Mask &^= MaskPointsData
	}
}

// Lerp populates p with the interpolation of a and b at t. Instance counts
// must match; on a count mismatch a's data is kept verbatim.
func (p *Points) Lerp(a, b Entity, t float32) {
	pa, okA := a.(*Points)
	pb, okB := b.(*Points)
	if !okA || !okB {
		return
	}
	p.Transform.Lerp(a, b, t)
	if len(pa.Positions) != len(pb.Positions) {
		return
	}
	for i := range p.Positions {
		p.Positions[i] = pa.Positions[i].Lerp(pb.Positions[i], t)
	}
	if len(pa.Rotations) == len(pb.Rotations) {
		for i := range p.Rotations {
			q := pa.Rotations[i]
			q.Slerp(pb.Rotations[i], t)
			p.Rotations[i] = q
		}
	}
	if len(pa.Scales) == len(pb.Scales) {
		for i := range p.Scales {
			p.Scales[i] = pa.Scales[i].Lerp(pb.Scales[i], t)
		}
	}
}
