// Package scene mesh entity: vertex channels, topology, skin bindings and
// the refinement entry point.
package scene

import (
	"slices"
	"sort"

	"github.com/chewxy/math32"
	"goki.dev/mat32/v2"

	"github.com/scenebridge/scenebridge/wire"
)

// RefineFlags marks which refinement steps apply to a mesh.
type RefineFlags uint32

const (
	// RefineSplit marks a mesh whose vertex count exceeds the split unit.
	RefineSplit RefineFlags = 1 << iota
)

// RefineSettings parameterizes the refinement step invoked during import.
type RefineSettings struct {
	Flags            RefineFlags
	SplitUnit        int32
	MaxBoneInfluence int32
}

// Bounds is an axis-aligned box around a mesh's vertices.
type Bounds struct {
	Center  mat32.Vec3
	Extents mat32.Vec3
}

// BoneData is a skin binding: the hierarchy path of the bone node (needing
// the same normalization as entity paths), its bindpose, and one weight per
// vertex of the owning mesh.
type BoneData struct {
	Path     string
	Bindpose mat32.Mat4
	Weights  []float32
}

// Clone returns a deep copy of the binding.
func (b *BoneData) Clone() *BoneData {
	n := *b
	n.Weights = slices.Clone(b.Weights)
	return &n
}

func (b *BoneData) equal(o *BoneData) bool {
	return b.Path == o.Path && b.Bindpose == o.Bindpose && slices.Equal(b.Weights, o.Weights)
}

func (b *BoneData) write(w *wire.Writer) {
	w.String(b.Path)
	w.Mat4(b.Bindpose)
	w.F32s(b.Weights)
}

func (b *BoneData) read(r *wire.Reader) {
	b.Path = r.String()
	b.Bindpose = r.Mat4()
	b.Weights = r.F32s()
}

// Mesh is a geometry entity. Counts holds per-face vertex counts, Indices
// the flattened face corners, MaterialIDs one material slot per face.
type Mesh struct {
	Transform

	Points      []mat32.Vec3
	Normals     []mat32.Vec3
	UV          []mat32.Vec2
	Colors      []mat32.Vec4
	Counts      []int32
	Indices     []int32
	MaterialIDs []int32
	Bones       []*BoneData

	RefineSettings RefineSettings
	Bounds         Bounds
}

// NewMesh creates an empty Mesh.
func NewMesh(id int32, path string) *Mesh {
	m := &Mesh{Transform: *NewTransform(id, path)}
	m.Mask |= MaskMeshPoints | MaskMeshNormals | MaskMeshUV | MaskMeshColors |
		MaskMeshTopology | MaskMeshBones
	return m
}

// Type returns EntityMesh.
func (m *Mesh) Type() EntityType {
	return EntityMesh
}

// IsGeometry returns true.
func (m *Mesh) IsGeometry() bool {
	return true
}

// Clone returns a deep copy without the Parent link.
func (m *Mesh) Clone() Entity {
	n := *m
	n.Parent = nil
	n.Points = slices.Clone(m.Points)
	n.Normals = slices.Clone(m.Normals)
	n.UV = slices.Clone(m.UV)
	n.Colors = slices.Clone(m.Colors)
	n.Counts = slices.Clone(m.Counts)
	n.Indices = slices.Clone(m.Indices)
	n.MaterialIDs = slices.Clone(m.MaterialIDs)
	n.Bones = make([]*BoneData, len(m.Bones))
	for i, b := range m.Bones {
		n.Bones[i] = b.Clone()
	}
	return &n
}

// Write serializes the Mesh record.
func (m *Mesh) Write(w *wire.Writer) {
	m.Transform.Write(w)
	if m.Mask.Has(MaskMeshPoints) {
		w.Vec3s(m.Points)
	}
	if m.Mask.Has(MaskMeshNormals) {
		w.Vec3s(m.Normals)
	}
	if m.Mask.Has(MaskMeshUV) {
		w.Vec2s(m.UV)
	}
	if m.Mask.Has(MaskMeshColors) {
		w.Vec4s(m.Colors)
	}
	if m.Mask.Has(MaskMeshTopology) {
		w.I32s(m.Counts)
		w.I32s(m.Indices)
		w.I32s(m.MaterialIDs)
	}
	if m.Mask.Has(MaskMeshBones) {
		w.U32(uint32(len(m.Bones)))
		for _, b := range m.Bones {
			b.write(w)
		}
	}
	w.U32(uint32(m.RefineSettings.Flags))
	w.I32(m.RefineSettings.SplitUnit)
	w.I32(m.RefineSettings.MaxBoneInfluence)
	w.Vec3(m.Bounds.Center)
	w.Vec3(m.Bounds.Extents)
}

// Read deserializes the Mesh record.
func (m *Mesh) Read(r *wire.Reader) {
	m.Transform.Read(r)
	if m.Mask.Has(MaskMeshPoints) {
		m.Points = r.Vec3s()
	}
	if m.Mask.Has(MaskMeshNormals) {
		m.Normals = r.Vec3s()
	}
	if m.Mask.Has(MaskMeshUV) {
		m.UV = r.Vec2s()
	}
	if m.Mask.Has(MaskMeshColors) {
		m.Colors = r.Vec4s()
	}
	if m.Mask.Has(MaskMeshTopology) {
		m.Counts = r.I32s()
		m.Indices = r.I32s()
		m.MaterialIDs = r.I32s()
	}
	if m.Mask.Has(MaskMeshBones) {
		n := r.Count()
		if r.Err() == nil {
			m.Bones = make([]*BoneData, 0, n)
			for i := 0; i < n; i++ {
				b := &BoneData{}
				b.read(r)
				m.Bones = append(m.Bones, b)
			}
		}
	}
	m.RefineSettings.Flags = RefineFlags(r.U32())
	m.RefineSettings.SplitUnit = r.I32()
	m.RefineSettings.MaxBoneInfluence = r.I32()
	m.Bounds.Center = r.Vec3()
	m.Bounds.Extents = r.Vec3()
}

func (m *Mesh) bonesEqual(b *Mesh) bool {
	if len(m.Bones) != len(b.Bones) {
		return false
	}
	for i := range m.Bones {
		if !m.Bones[i].equal(b.Bones[i]) {
			return false
		}
	}
	return true
}

func (m *Mesh) topologyEqual(b *Mesh) bool {
	return slices.Equal(m.Counts, b.Counts) && slices.Equal(m.Indices, b.Indices) &&
		slices.Equal(m.MaterialIDs, b.MaterialIDs)
}

// Strip zeroes fields equal to base and clears their mask bits.
func (m *Mesh) Strip(base Entity) {
	b, ok := base.(*Mesh)
	if !ok {
		return
	}
	m.Transform.Strip(base)
	if m.Mask.Has(MaskMeshPoints) && b.Mask.Has(MaskMeshPoints) && slices.Equal(m.Points, b.Points) {
		m.Points = nil
		m.Mask &^= MaskMeshPoints
	}
	if m.Mask.Has(MaskMeshNormals) && b.Mask.Has(MaskMeshNormals) && slices.Equal(m.Normals, b.Normals) {
		m.Normals = nil
		m.Mask &^= MaskMeshNormals
	}
	if m.Mask.Has(MaskMeshUV) && b.Mask.Has(MaskMeshUV) && slices.Equal(m.UV, b.UV) {
		m.UV = nil
		m.Mask &^= MaskMeshUV
	}
	if m.Mask.Has(MaskMeshColors) && b.Mask.Has(MaskMeshColors) && slices.Equal(m.Colors, b.Colors) {
		m.Colors = nil
		m.Mask &^= MaskMeshColors
	}
	if m.Mask.Has(MaskMeshTopology) && b.Mask.Has(MaskMeshTopology) && m.topologyEqual(b) {
		m.Counts = nil
		m.Indices = nil
		m.MaterialIDs = nil
		m.Mask &^= MaskMeshTopology
	}
	if m.Mask.Has(MaskMeshBones) && b.Mask.Has(MaskMeshBones) && m.bonesEqual(b) {
		m.Bones = nil
		m.Mask &^= MaskMeshBones
	}
}

// Merge fills mask-unset fields from base.
func (m *Mesh) Merge(base Entity) {
	b, ok := base.(*Mesh)
	if !ok {
		return
	}
	m.Transform.Merge(base)
	if !m.Mask.Has(MaskMeshPoints) && b.Mask.Has(MaskMeshPoints) {
		m.Points = slices.Clone(b.Points)
		m.Mask |= MaskMeshPoints
	}
	if !m.Mask.Has(MaskMeshNormals) && b.Mask.Has(MaskMeshNormals) {
		m.Normals = slices.Clone(b.Normals)
		m.Mask |= MaskMeshNormals
	}
	if !m.Mask.Has(MaskMeshUV) && b.Mask.Has(MaskMeshUV) {
		m.UV = slices.Clone(b.UV)
		m.Mask |= MaskMeshUV
	}
	if !m.Mask.Has(MaskMeshColors) && b.Mask.Has(MaskMeshColors) {
		m.Colors = slices.Clone(b.Colors)
		m.Mask |= MaskMeshColors
	}
	if !m.Mask.Has(MaskMeshTopology) && b.Mask.Has(MaskMeshTopology) {
		m.Counts = slices.Clone(b.Counts)
		m.Indices = slices.Clone(b.Indices)
		m.MaterialIDs = slices.Clone(b.MaterialIDs)
		m.Mask |= MaskMeshTopology
	}
	if !m.Mask.Has(MaskMeshBones) && b.Mask.Has(MaskMeshBones) {
		m.Bones = make([]*BoneData, len(b.Bones))
		for i, bn := range b.Bones {
			m.Bones[i] = bn.Clone()
		}
		m.Mask |= MaskMeshBones
	}
}

// Diff populates m as the delta between a and b.
func (m *Mesh) Diff(a, b Entity) {
	ma, okA := a.(*Mesh)
	mb, okB := b.(*Mesh)
	if !okA || !okB {
		return
	}
	m.Transform.Diff(a, b)
	if !slices.Equal(ma.Points, mb.Points) {
		m.Points = slices.Clone(mb.Points)
		m.Mask |= MaskMeshPoints
	} else {
		m.Points = nil
	}
	if !slices.Equal(ma.Normals, mb.Normals) {
		m.Normals = slices.Clone(mb.Normals)
		m.Mask |= MaskMeshNormals
	} else {
		m.Normals = nil
	}
	if !slices.Equal(ma.UV, mb.UV) {
		m.UV = slices.Clone(mb.UV)
		m.Mask |= MaskMeshUV
	} else {
		m.UV = nil
	}
	if !slices.Equal(ma.Colors, mb.Colors) {
		m.Colors = slices.Clone(mb.Colors)
		m.Mask |= MaskMeshColors
	} else {
		m.Colors = nil
	}
	if !ma.topologyEqual(mb) {
		m.Counts = slices.Clone(mb.Counts)
		m.Indices = slices.Clone(mb.Indices)
		m.MaterialIDs = slices.Clone(mb.MaterialIDs)
		m.Mask |= MaskMeshTopology
	} else {
		m.Counts = nil
		m.Indices = nil
		m.MaterialIDs = nil
	}
	if !ma.bonesEqual(mb) {
		m.Bones = make([]*BoneData, len(mb.Bones))
		for i, bn := range mb.Bones {
			m.Bones[i] = bn.Clone()
		}
		m.Mask |= MaskMeshBones
	} else {
		m.Bones = nil
	}
	m.Bounds = mb.Bounds
}

// Lerp populates m with the interpolation of a and b at t. Only meshes with
// matching vertex counts can blend; callers gate on constant topology.
func (m *Mesh) Lerp(a, b Entity, t float32) {
	ma, okA := a.(*Mesh)
	mb, okB := b.(*Mesh)
	if !okA || !okB {
		return
	}
	m.Transform.Lerp(a, b, t)
	if len(ma.Points) != len(mb.Points) {
		return
	}
	for i := range m.Points {
		m.Points[i] = ma.Points[i].Lerp(mb.Points[i], t)
	}
	if len(ma.Normals) == len(mb.Normals) {
		for i := range m.Normals {
			m.Normals[i] = ma.Normals[i].Lerp(mb.Normals[i], t).Normal()
		}
	}
	if len(ma.UV) == len(mb.UV) {
		for i := range m.UV {
			m.UV[i] = ma.UV[i].Lerp(mb.UV[i], t)
		}
	}
	if len(ma.Colors) == len(mb.Colors) {
		for i := range m.Colors {
			m.Colors[i] = lerpVec4(ma.Colors[i], mb.Colors[i], t)
		}
	}
	m.UpdateBounds()
}

// Refine applies the pre-conversion refinement step: it marks meshes that
// exceed the split unit and caps per-vertex bone influences. Triangulation
// and the actual splitting belong to the mesh subsystem and are not done
// here; refinement is best-effort and does not fail.
func (m *Mesh) Refine() {
	if m.RefineSettings.SplitUnit > 0 && int32(len(m.Points)) > m.RefineSettings.SplitUnit {
		m.RefineSettings.Flags |= RefineSplit
	}
	if n := m.RefineSettings.MaxBoneInfluence; n > 0 {
		m.capBoneInfluence(int(n))
	}
}

// capBoneInfluence keeps, for every vertex, only the strongest max bone
// weights and renormalizes them to sum to one.
func (m *Mesh) capBoneInfluence(max int) {
	if len(m.Bones) <= max {
		return
	}
	nv := len(m.Points)
	idxs := make([]int, len(m.Bones))
	for vi := 0; vi < nv; vi++ {
		idxs = idxs[:0]
		for bi, b := range m.Bones {
			if vi < len(b.Weights) && b.Weights[vi] > 0 {
				idxs = append(idxs, bi)
			}
		}
		if len(idxs) <= max {
			continue
		}
		sort.Slice(idxs, func(i, j int) bool {
			return m.Bones[idxs[i]].Weights[vi] > m.Bones[idxs[j]].Weights[vi]
		})
		var total float32
		for _, bi := range idxs[:max] {
			total += m.Bones[bi].Weights[vi]
		}
		for _, bi := range idxs[max:] {
			m.Bones[bi].Weights[vi] = 0
		}
		if total > 0 {
			for _, bi := range idxs[:max] {
				m.Bones[bi].Weights[vi] /= total
			}
		}
	}
}

// UpdateBounds recomputes the axis-aligned bounds from the vertex positions.
func (m *Mesh) UpdateBounds() {
	if len(m.Points) == 0 {
		m.Bounds = Bounds{}
		return
	}
	min := mat32.V3(math32.Inf(1), math32.Inf(1), math32.Inf(1))
	max := mat32.V3(math32.Inf(-1), math32.Inf(-1), math32.Inf(-1))
	for _, p := range m.Points {
		min.X = math32.Min(min.X, p.X)
		min.Y = math32.Min(min.Y, p.Y)
		min.Z = math32.Min(min.Z, p.Z)
		max.X = math32.Max(max.X, p.X)
		max.Y = math32.Max(max.Y, p.Y)
		max.Z = math32.Max(max.Z, p.Z)
	}
	m.Bounds.Center = min.Add(max).MulScalar(0.5)
	m.Bounds.Extents = max.Sub(min).MulScalar(0.5)
}
