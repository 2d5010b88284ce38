// Package scene entity model: polymorphic graph nodes with identity,
// hierarchy path, local/global transform and per-kind payload.
package scene

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"goki.dev/mat32/v2"

	"github.com/scenebridge/scenebridge/wire"
)

// EntityType discriminates the closed set of entity kinds.
type EntityType uint32

const (
	EntityTransform EntityType = iota
	EntityCamera
	EntityLight
	EntityMesh
	EntityPoints
)

// String returns the string representation of EntityType.
func (t EntityType) String() string {
	switch t {
	case EntityTransform:
		return "transform"
	case EntityCamera:
		return "camera"
	case EntityLight:
		return "light"
	case EntityMesh:
		return "mesh"
	case EntityPoints:
		return "points"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(t))
	}
}

// FieldMask records which fields of an entity are set. Strip clears bits for
// fields equal to a baseline, Merge fills unset bits from a baseline, and
// serialization writes only masked fields.
type FieldMask uint32

const (
	MaskPosition FieldMask = 1 << iota
	MaskRotation
	MaskScale
	MaskVisible
	MaskCamera
	MaskLight
	MaskMeshPoints
	MaskMeshNormals
	MaskMeshUV
	MaskMeshColors
	MaskMeshTopology
	MaskMeshBones
	MaskPointsData

	// MaskTransformAll covers every field of the Transform base.
	MaskTransformAll = MaskPosition | MaskRotation | MaskScale | MaskVisible
)

// Has reports whether all bits of other are set in m.
func (m FieldMask) Has(other FieldMask) bool {
	return m&other == other
}

// CacheFlags carries per-entity cache state that travels with the entity but
// does not contribute to its content identity.
type CacheFlags uint32

const (
	// FlagConstantTopology marks geometry whose topology never changes
	// between snapshots, making vertex attributes safe to interpolate.
	FlagConstantTopology CacheFlags = 1 << iota
)

// Entity is a node in the scene hierarchy: a plain Transform or one of the
// kinds derived from it. The set of implementations is closed: *Transform,
// *Camera, *Light, *Mesh and *Points.
type Entity interface {
	// TransformBase returns the common Transform fields of the entity.
	TransformBase() *Transform

	// Type returns the kind discriminant.
	Type() EntityType

	// IsGeometry reports whether the entity carries vertex data.
	IsGeometry() bool

	// Clone returns a deep copy. The Parent link is not carried over; it is
	// recomputed by Scene.BuildHierarchy.
	Clone() Entity

	// Write serializes the entity record (excluding the kind tag).
	Write(w *wire.Writer)

	// Read deserializes the entity record (excluding the kind tag).
	Read(r *wire.Reader)

	// Strip zeroes every field equal to the corresponding field of base and
	// clears its mask bit, shrinking an outgoing update to what changed.
	Strip(base Entity)

	// Merge fills every mask-unset field from base, reconstituting a full
	// entity from a partial update plus a prior full snapshot.
	Merge(base Entity)

	// Diff populates the receiver as a delta between a and b: post-state
	// values from b for every field that changed, with the mask marking the
	// changed set. The receiver is a topology clone of a.
	Diff(a, b Entity)

	// Lerp populates the receiver with the linear interpolation of a and b
	// at t in [0,1]. The receiver is a clone of a.
	Lerp(a, b Entity, t float32)
}

// Transform is the base node: identity, hierarchy path, TRS fields and the
// matrix caches maintained by Scene.BuildHierarchy.
type Transform struct {
	// ID is a process-local integer, stable within one snapshot.
	ID int32

	// Path is the slash-delimited hierarchy path, the globally unique key.
	Path string

	// Reference optionally names a source node this one mirrors.
	Reference string

	Position mat32.Vec3
	Rotation mat32.Quat
	Scale    mat32.Vec3
	Visible  bool

	Mask       FieldMask
	CacheFlags CacheFlags

	// Local and Global are matrix caches computed by Scene.BuildHierarchy;
	// they are not serialized.
	Local  mat32.Mat4
	Global mat32.Mat4

	// Parent is a non-owning link into the same scene's entity pool,
	// resolved by path on every Scene.BuildHierarchy call. Never serialized,
	// not valid before hierarchy construction.
	Parent *Transform
}

// NewTransform creates a Transform with identity TRS at the given path.
func NewTransform(id int32, path string) *Transform {
	t := &Transform{
		ID:      id,
		Path:    path,
		Scale:   mat32.V3(1, 1, 1),
		Visible: true,
		Mask:    MaskTransformAll,
	}
	t.Rotation.SetIdentity()
	return t
}

// TransformBase returns t itself; derived kinds inherit this.
func (t *Transform) TransformBase() *Transform {
	return t
}

// Type returns EntityTransform.
func (t *Transform) Type() EntityType {
	return EntityTransform
}

// IsGeometry returns false for a plain Transform.
func (t *Transform) IsGeometry() bool {
	return false
}

// Name returns the last segment of the hierarchy path.
func (t *Transform) Name() string {
	if i := strings.LastIndexByte(t.Path, '/'); i >= 0 {
		return t.Path[i+1:]
	}
	return t.Path
}

// ParentPath returns all path segments but the last, or "" for a root.
func (t *Transform) ParentPath() string {
	i := strings.LastIndexByte(t.Path, '/')
	if i <= 0 {
		return ""
	}
	return t.Path[:i]
}

// Matrix returns the local matrix composed from the TRS fields.
func (t *Transform) Matrix() mat32.Mat4 {
	var m mat32.Mat4
	m.SetTransform(t.Position, t.Rotation, t.Scale)
	return m
}

// Clone returns a deep copy without the Parent link.
func (t *Transform) Clone() Entity {
	c := *t
	c.Parent = nil
	return &c
}

// Write serializes the Transform record.
func (t *Transform) Write(w *wire.Writer) {
	w.I32(t.ID)
	w.String(t.Path)
	w.String(t.Reference)
	w.U32(uint32(t.Mask))
	w.U32(uint32(t.CacheFlags))
	if t.Mask.Has(MaskPosition) {
		w.Vec3(t.Position)
	}
	if t.Mask.Has(MaskRotation) {
		w.Quat(t.Rotation)
	}
	if t.Mask.Has(MaskScale) {
		w.Vec3(t.Scale)
	}
	if t.Mask.Has(MaskVisible) {
		w.Bool(t.Visible)
	}
}

// Read deserializes the Transform record.
func (t *Transform) Read(r *wire.Reader) {
	t.ID = r.I32()
	t.Path = r.String()
	t.Reference = r.String()
	t.Mask = FieldMask(r.U32())
	t.CacheFlags = CacheFlags(r.U32())
	if t.Mask.Has(MaskPosition) {
		t.Position = r.Vec3()
	}
	if t.Mask.Has(MaskRotation) {
		t.Rotation = r.Quat()
	}
	if t.Mask.Has(MaskScale) {
		t.Scale = r.Vec3()
	}
	if t.Mask.Has(MaskVisible) {
		t.Visible = r.Bool()
	}
}

// Strip zeroes fields equal to base and clears their mask bits.
func (t *Transform) Strip(base Entity) {
	b := base.TransformBase()
	if t.Mask.Has(MaskPosition) && b.Mask.Has(MaskPosition) && t.Position == b.Position {
		t.Position = mat32.Vec3{}
		t.Mask &^= MaskPosition
	}
	if t.Mask.Has(MaskRotation) && b.Mask.Has(MaskRotation) && t.Rotation == b.Rotation {
		t.Rotation = mat32.Quat{}
		t.Mask &^= MaskRotation
	}
	if t.Mask.Has(MaskScale) && b.Mask.Has(MaskScale) && t.Scale == b.Scale {
		t.Scale = mat32.Vec3{}
		t.Mask &^= MaskScale
	}
	if t.Mask.Has(MaskVisible) && b.Mask.Has(MaskVisible) && t.Visible == b.Visible {
		t.Visible = false
		t.Mask &^= MaskVisible
	}
}

// Merge fills mask-unset fields from base.
func (t *Transform) Merge(base Entity) {
	b := base.TransformBase()
	if !t.Mask.Has(MaskPosition) && b.Mask.Has(MaskPosition) {
		t.Position = b.Position
		t.Mask |= MaskPosition
	}
	if !t.Mask.Has(MaskRotation) && b.Mask.Has(MaskRotation) {
		t.Rotation = b.Rotation
		t.Mask |= MaskRotation
	}
	if !t.Mask.Has(MaskScale) && b.Mask.Has(MaskScale) {
		t.Scale = b.Scale
		t.Mask |= MaskScale
	}
	if !t.Mask.Has(MaskVisible) && b.Mask.Has(MaskVisible) {
		t.Visible = b.Visible
		t.Mask |= MaskVisible
	}
}

// Diff populates t as the delta between a and b.
func (t *Transform) Diff(a, b Entity) {
	ta, tb := a.TransformBase(), b.TransformBase()
	t.Mask = 0
	if ta.Position != tb.Position {
		t.Position = tb.Position
		t.Mask |= MaskPosition
	} else {
		t.Position = mat32.Vec3{}
	}
	if ta.Rotation != tb.Rotation {
		t.Rotation = tb.Rotation
		t.Mask |= MaskRotation
	} else {
		t.Rotation = mat32.Quat{}
	}
	if ta.Scale != tb.Scale {
		t.Scale = tb.Scale
		t.Mask |= MaskScale
	} else {
		t.Scale = mat32.Vec3{}
	}
	if ta.Visible != tb.Visible {
		t.Visible = tb.Visible
		t.Mask |= MaskVisible
	} else {
		t.Visible = false
	}
}

// Lerp populates t with the interpolation of a and b at t in [0,1].
func (t *Transform) Lerp(a, b Entity, alpha float32) {
	ta, tb := a.TransformBase(), b.TransformBase()
	t.Position = ta.Position.Lerp(tb.Position, alpha)
	q := ta.Rotation
	q.Slerp(tb.Rotation, alpha)
	t.Rotation = q
	t.Scale = ta.Scale.Lerp(tb.Scale, alpha)
	t.Visible = ta.Visible
}

// HashEntity returns the 64-bit content hash of an entity: the xxhash of its
// kind tag and serialized record. Matrix caches and the Parent link do not
// contribute.
func HashEntity(e Entity) uint64 {
	d := xxhash.New()
	w := wire.NewWriter(d)
	w.U32(uint32(e.Type()))
	e.Write(w)
	return d.Sum64()
}

// writeEntity writes the kind tag followed by the entity record.
func writeEntity(w *wire.Writer, e Entity) {
	w.U32(uint32(e.Type()))
	e.Write(w)
}

// readEntity reads the kind tag and dispatches to the matching record type.
func readEntity(r *wire.Reader) (Entity, error) {
	tag := EntityType(r.U32())
	if err := r.Err(); err != nil {
		return nil, err
	}
	var e Entity
	switch tag {
	case EntityTransform:
		e = &Transform{}
	case EntityCamera:
		e = &Camera{}
	case EntityLight:
		e = &Light{}
	case EntityMesh:
		e = &Mesh{}
	case EntityPoints:
		e = &Points{}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownEntityType, uint32(tag))
	}
	e.Read(r)
	return e, r.Err()
}

// SanitizePath normalizes a hierarchy path: leading slash enforced, trailing
// and duplicate slashes collapsed. Empty paths stay empty.
func SanitizePath(path string) string {
	if path == "" {
		return ""
	}
	segs := strings.Split(path, "/")
	out := make([]string, 0, len(segs))
	for _, s := range segs {
		if s != "" {
			out = append(out, s)
		}
	}
	return "/" + strings.Join(out, "/")
}
