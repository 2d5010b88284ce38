// Package scene implements the scene-graph synchronization core: a snapshot
// of a 3D scene (transform hierarchy, meshes, materials, animation clips,
// audio, cameras, lights) held as an in-memory graph, with validated binary
// (de)serialization, structural diff, incremental merge/strip and temporal
// interpolation between aligned snapshots.
package scene

import (
	"fmt"

	"github.com/scenebridge/scenebridge/wire"
)

// Handedness identifies the coordinate frame a scene was authored in.
type Handedness uint8

const (
	// Left is the canonical frame: left-handed, Y-up.
	Left Handedness = iota
	Right
	LeftZUp
	RightZUp
)

// String returns the string representation of Handedness.
func (h Handedness) String() string {
	switch h {
	case Left:
		return "left"
	case Right:
		return "right"
	case LeftZUp:
		return "left-zup"
	case RightZUp:
		return "right-zup"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(h))
	}
}

// FlipsX reports whether converting from h to the canonical frame requires
// a handedness flip on the X axis.
func (h Handedness) FlipsX() bool {
	return h == Right || h == RightZUp
}

// SwapsYZ reports whether converting from h to the canonical frame requires
// an up-axis correction.
func (h Handedness) SwapsYZ() bool {
	return h == LeftZUp || h == RightZUp
}

// ZUpCorrectionMode selects how a Z-up scene is corrected to Y-up.
type ZUpCorrectionMode uint8

const (
	// FlipYZ swaps the Y and Z axes of every element.
	FlipYZ ZUpCorrectionMode = iota
	// RotateX applies a -90 degree rotation about the X axis instead.
	RotateX
)

// String returns the string representation of ZUpCorrectionMode.
func (m ZUpCorrectionMode) String() string {
	switch m {
	case FlipYZ:
		return "flipyz"
	case RotateX:
		return "rotatex"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(m))
	}
}

// SceneSettings carries the authoring frame of a scene. Import normalizes
// the scene to the canonical frame and resets these fields afterward, so a
// canonical settings block signals that no further conversion is needed.
type SceneSettings struct {
	Name        string
	Handedness  Handedness
	ScaleFactor float32
}

// DefaultSettings returns settings describing the canonical frame.
func DefaultSettings() SceneSettings {
	return SceneSettings{Handedness: Left, ScaleFactor: 1}
}

func (s *SceneSettings) write(w *wire.Writer) {
	w.String(s.Name)
	w.U8(uint8(s.Handedness))
	w.F32(s.ScaleFactor)
}

func (s *SceneSettings) read(r *wire.Reader) {
	s.Name = r.String()
	s.Handedness = Handedness(r.U8())
	s.ScaleFactor = r.F32()
}

// ImportSettings are the host-provided knobs for Import.
type ImportSettings struct {
	// ZUpCorrection selects the up-axis correction applied to Z-up scenes.
	ZUpCorrection ZUpCorrectionMode

	// MeshSplitUnit is the vertex count above which a mesh is marked for
	// splitting during refinement.
	MeshSplitUnit int32

	// MeshMaxBoneInfluence caps the number of bones influencing any single
	// vertex; 0 disables capping.
	MeshMaxBoneInfluence int32
}

// DefaultImportSettings returns the import settings used when the host does
// not override them.
func DefaultImportSettings() ImportSettings {
	return ImportSettings{
		ZUpCorrection:        FlipYZ,
		MeshSplitUnit:        65000,
		MeshMaxBoneInfluence: 4,
	}
}
