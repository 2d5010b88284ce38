// Package scene animation assets: clips owning per-entity curves that are
// normalized and converted alongside the entities they target.
package scene

import (
	"goki.dev/mat32/v2"

	"github.com/scenebridge/scenebridge/wire"
)

// KeyVec3 is a time-stamped vector keyframe.
type KeyVec3 struct {
	Time  float32
	Value mat32.Vec3
}

// KeyQuat is a time-stamped rotation keyframe.
type KeyQuat struct {
	Time  float32
	Value mat32.Quat
}

// Animation is one entity's curve set inside a clip, addressed by the same
// slash-delimited hierarchy path as the entity it animates.
type Animation struct {
	Path string

	TranslationKeys []KeyVec3
	RotationKeys    []KeyQuat
	ScaleKeys       []KeyVec3
}

func (a *Animation) write(w *wire.Writer) {
	w.String(a.Path)
	w.U32(uint32(len(a.TranslationKeys)))
	for _, k := range a.TranslationKeys {
		w.F32(k.Time)
		w.Vec3(k.Value)
	}
	w.U32(uint32(len(a.RotationKeys)))
	for _, k := range a.RotationKeys {
		w.F32(k.Time)
		w.Quat(k.Value)
	}
	w.U32(uint32(len(a.ScaleKeys)))
	for _, k := range a.ScaleKeys {
		w.F32(k.Time)
		w.Vec3(k.Value)
	}
}

func (a *Animation) read(r *wire.Reader) {
	a.Path = r.String()
	nt := r.Count()
	if r.Err() != nil {
		return
	}
	a.TranslationKeys = make([]KeyVec3, nt)
	for i := range a.TranslationKeys {
		a.TranslationKeys[i].Time = r.F32()
		a.TranslationKeys[i].Value = r.Vec3()
	}
	nr := r.Count()
	if r.Err() != nil {
		return
	}
	a.RotationKeys = make([]KeyQuat, nr)
	for i := range a.RotationKeys {
		a.RotationKeys[i].Time = r.F32()
		a.RotationKeys[i].Value = r.Quat()
	}
	ns := r.Count()
	if r.Err() != nil {
		return
	}
	a.ScaleKeys = make([]KeyVec3, ns)
	for i := range a.ScaleKeys {
		a.ScaleKeys[i].Time = r.F32()
		a.ScaleKeys[i].Value = r.Vec3()
	}
}

// AnimationClip is an asset owning an ordered collection of per-entity
// animation curves.
type AnimationClip struct {
	AssetCommon

	Animations []*Animation
}

// Type returns AssetAnimation.
func (c *AnimationClip) Type() AssetType { return AssetAnimation }

// Write serializes the AnimationClip record.
func (c *AnimationClip) Write(w *wire.Writer) {
	c.AssetCommon.write(w)
	w.U32(uint32(len(c.Animations)))
	for _, a := range c.Animations {
		a.write(w)
	}
}

// Read deserializes the AnimationClip record.
func (c *AnimationClip) Read(r *wire.Reader) {
	c.AssetCommon.read(r)
	n := r.Count()
	if r.Err() != nil {
		return
	}
	c.Animations = make([]*Animation, 0, n)
	for i := 0; i < n; i++ {
		a := &Animation{}
		a.read(r)
		c.Animations = append(c.Animations, a)
	}
}
