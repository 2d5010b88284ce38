package scene

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"goki.dev/mat32/v2"

	"github.com/scenebridge/scenebridge/wire"
)

// buildTestScene assembles a scene exercising every entity and asset kind.
func buildTestScene() *Scene {
	sc := NewScene()
	sc.Settings.Name = "test"

	root := NewTransform(1, "/root")
	root.Position = mat32.V3(1, 0, 0)

	cam := NewCamera(2, "/root/cam")
	cam.FOV = 45

	light := NewLight(3, "/root/sun")
	light.Intensity = 2

	mesh := NewMesh(4, "/root/box")
	mesh.Points = []mat32.Vec3{mat32.V3(0, 0, 0), mat32.V3(1, 0, 0), mat32.V3(0, 1, 0)}
	mesh.Normals = []mat32.Vec3{mat32.V3(0, 0, 1), mat32.V3(0, 0, 1), mat32.V3(0, 0, 1)}
	mesh.UV = []mat32.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}
	mesh.Counts = []int32{3}
	mesh.Indices = []int32{0, 1, 2}
	mesh.MaterialIDs = []int32{0}
	mesh.CacheFlags |= FlagConstantTopology
	mesh.UpdateBounds()

	pts := NewPoints(5, "/root/scatter")
	pts.Positions = []mat32.Vec3{mat32.V3(0, 5, 0)}
	pts.IDs = []int32{100}

	sc.Entities = append(sc.Entities, root, cam, light, mesh, pts)

	sc.Assets = append(sc.Assets,
		&Material{AssetCommon: AssetCommon{ID: 1, Name: "default"}, ShaderName: "standard",
			Color: mat32.Vec4{X: 1, Y: 1, Z: 1, W: 1}},
		&Texture{AssetCommon: AssetCommon{ID: 2, Name: "albedo"}, Format: TextureRGBA8,
			Width: 2, Height: 2, Data: []byte{0, 1, 2, 3}},
		&AnimationClip{AssetCommon: AssetCommon{ID: 3, Name: "walk"}, Animations: []*Animation{
			{Path: "/root", TranslationKeys: []KeyVec3{{Time: 0, Value: mat32.V3(0, 0, 0)}}},
		}},
		&Audio{AssetCommon: AssetCommon{ID: 4, Name: "beep"}, Format: AudioS16,
			Frequency: 44100, Channels: 1, Data: []byte{1, 2}},
		&FileAsset{AssetCommon: AssetCommon{ID: 5, Name: "notes.txt"}, Data: []byte("x")},
	)

	sc.Constraints = append(sc.Constraints, &Constraint{
		Type: ConstraintAim, Path: "/root/cam", SourcePaths: []string{"/root/box"},
	})

	return sc
}

// TestSceneHash tests order independence and sensitivity of the scene hash
func TestSceneHash(t *testing.T) {
	sc := buildTestScene()
	h := sc.Hash()

	// Reordering the pools does not change the hash
	sc.Entities[0], sc.Entities[4] = sc.Entities[4], sc.Entities[0]
	sc.Assets[0], sc.Assets[1] = sc.Assets[1], sc.Assets[0]
	assert.Equal(t, h, sc.Hash())

	// Any content change does
	sc.Entities[0].TransformBase().Position = mat32.V3(9, 9, 9)
	assert.NotEqual(t, h, sc.Hash())
}

// TestSerializeRoundTrip tests the validated binary round trip
func TestSerializeRoundTrip(t *testing.T) {
	src := buildTestScene()

	var buf bytes.Buffer
	require.NoError(t, src.Serialize(&buf))

	dst := NewScene()
	require.NoError(t, dst.Deserialize(&buf))

	assert.Equal(t, src.Hash(), dst.Hash())
	assert.Equal(t, "test", dst.Settings.Name)
	require.Len(t, dst.Entities, 5)
	require.Len(t, dst.Assets, 5)
	require.Len(t, dst.Constraints, 1)

	cam, ok := dst.FindEntity("/root/cam").(*Camera)
	require.True(t, ok, "camera kind must survive the round trip")
	assert.Equal(t, float32(45), cam.FOV)

	mesh, ok := dst.FindEntity("/root/box").(*Mesh)
	require.True(t, ok)
	assert.Len(t, mesh.Points, 3)
	assert.Equal(t, []int32{0, 1, 2}, mesh.Indices)
	assert.NotZero(t, mesh.CacheFlags&FlagConstantTopology)

	mats := AssetsOf[*Material](dst)
	require.Len(t, mats, 1)
	assert.Equal(t, "standard", mats[0].ShaderName)
}

// TestDeserializeHashMismatch tests that a tampered stream is rejected
func TestDeserializeHashMismatch(t *testing.T) {
	src := buildTestScene()
	var buf bytes.Buffer
	require.NoError(t, src.Serialize(&buf))

	// Corrupt the stored hash; the payload still parses but the check
	// must fail and leave the scene cleared
	data := buf.Bytes()
	data[0] ^= 0xFF

	dst := NewScene()
	err := dst.Deserialize(bytes.NewReader(data))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrHashMismatch), "expected ErrHashMismatch, got %v", err)
	assert.Empty(t, dst.Entities)
	assert.Empty(t, dst.Assets)
}

// TestDeserializeOversizedCount tests that a corrupt length prefix fails
// with the element-count error rather than a downstream hash mismatch
func TestDeserializeOversizedCount(t *testing.T) {
	src := NewScene()
	src.Entities = append(src.Entities, NewTransform(1, "/root"))
	var buf bytes.Buffer
	require.NoError(t, src.Serialize(&buf))

	// The asset count follows the hash and the settings block
	// (empty name prefix, handedness, scale factor)
	data := buf.Bytes()
	const countOff = 8 + 4 + 1 + 4
	for i := 0; i < 4; i++ {
		data[countOff+i] = 0xFF
	}

	dst := NewScene()
	err := dst.Deserialize(bytes.NewReader(data))
	require.Error(t, err)
	assert.True(t, errors.Is(err, wire.ErrElementCount), "expected ErrElementCount, got %v", err)
	assert.False(t, errors.Is(err, ErrHashMismatch))
	assert.Empty(t, dst.Entities)
}

// TestDeserializeTruncated tests that a short stream is rejected
func TestDeserializeTruncated(t *testing.T) {
	src := buildTestScene()
	var buf bytes.Buffer
	require.NoError(t, src.Serialize(&buf))

	dst := NewScene()
	err := dst.Deserialize(bytes.NewReader(buf.Bytes()[:buf.Len()/2]))
	require.Error(t, err)
	assert.Empty(t, dst.Entities)
}

// TestSceneStripMerge tests the delta round trip at scene level
func TestSceneStripMerge(t *testing.T) {
	base := buildTestScene()
	edited := base.Clone()
	edited.Entities[1].TransformBase().Position = mat32.V3(0, 7, 0)

	want := edited.Hash()

	edited.Strip(base)
	// The stripped scene differs from the full edit
	assert.NotEqual(t, want, edited.Hash())

	edited.Merge(base)
	assert.Equal(t, want, edited.Hash())
}

// TestSceneStripCountMismatch tests the alignment precondition
func TestSceneStripCountMismatch(t *testing.T) {
	base := buildTestScene()
	other := buildTestScene()
	other.Entities = other.Entities[:3]

	h := base.Hash()
	base.Strip(other)
	assert.Equal(t, h, base.Hash(), "mismatched scenes must not be modified")
}

// TestSceneDiff tests structural diff between aligned snapshots
func TestSceneDiff(t *testing.T) {
	s1 := buildTestScene()
	s2 := s1.Clone()
	s2.Entities[2].(*Light).Intensity = 10

	d := NewScene()
	d.Diff(s1, s2)

	require.Len(t, d.Entities, len(s1.Entities))
	dl, ok := d.Entities[2].(*Light)
	require.True(t, ok)
	assert.True(t, dl.Mask.Has(MaskLight))
	assert.Equal(t, float32(10), dl.Intensity)
	assert.False(t, dl.Mask.Has(MaskPosition))

	// Unchanged entities produce empty deltas
	assert.Zero(t, d.Entities[0].TransformBase().Mask)

	t.Run("count mismatch", func(t *testing.T) {
		short := s1.Clone()
		short.Entities = short.Entities[:2]
		d := NewScene()
		d.Diff(s1, short)
		assert.Empty(t, d.Entities)
	})

	t.Run("id mismatch", func(t *testing.T) {
		swapped := s1.Clone()
		swapped.Entities[0].TransformBase().ID = 999
		d := NewScene()
		d.Diff(s1, swapped)
		require.Len(t, d.Entities, len(s1.Entities))
		assert.Nil(t, d.Entities[0], "mismatched slot must stay empty")
		assert.NotNil(t, d.Entities[1])
	})
}

// TestSceneLerp tests temporal interpolation between aligned snapshots
func TestSceneLerp(t *testing.T) {
	s1 := buildTestScene()
	s2 := s1.Clone()
	s2.Entities[0].TransformBase().Position = mat32.V3(3, 0, 0)

	out := NewScene()
	out.Lerp(s1, s2, 0.5)

	require.Len(t, out.Entities, len(s1.Entities))
	assert.Equal(t, mat32.V3(2, 0, 0), out.Entities[0].TransformBase().Position)

	t.Run("non-constant topology passthrough", func(t *testing.T) {
		a := buildTestScene()
		a.Entities[3].TransformBase().CacheFlags &^= FlagConstantTopology
		b := a.Clone()

		out := NewScene()
		out.Lerp(a, b, 0.5)
		assert.Same(t, a.Entities[3], out.Entities[3],
			"geometry without constant topology passes through from the first snapshot")
	})

	t.Run("id mismatch", func(t *testing.T) {
		b := s1.Clone()
		b.Entities[1].TransformBase().ID = 999
		out := NewScene()
		out.Lerp(s1, b, 0.5)
		assert.Nil(t, out.Entities[1])
	})
}

// TestBuildHierarchy tests parent resolution and matrix caches
func TestBuildHierarchy(t *testing.T) {
	sc := NewScene()
	root := NewTransform(1, "/root")
	root.Position = mat32.V3(1, 0, 0)
	child := NewTransform(2, "/root/child")
	child.Position = mat32.V3(0, 2, 0)
	orphan := NewTransform(3, "/lost/thing")
	sc.Entities = append(sc.Entities, child, root, orphan)

	sc.BuildHierarchy()

	assert.Nil(t, root.Parent)
	assert.Same(t, root, child.Parent)
	assert.Nil(t, orphan.Parent, "orphan parent path resolves to nil")

	// Root global equals its local; child global composes the chain
	assert.Equal(t, root.Local, root.Global)
	assert.Equal(t, float32(1), child.Global[12])
	assert.Equal(t, float32(2), child.Global[13])
	assert.Equal(t, float32(0), child.Global[14])

	// Rebuilding is deterministic
	g := child.Global
	sc.BuildHierarchy()
	assert.Equal(t, g, child.Global)
}

// TestFlattenHierarchy tests path flattening and collision dedup
func TestFlattenHierarchy(t *testing.T) {
	sc := NewScene()
	sc.Entities = append(sc.Entities,
		NewTransform(1, "/group"),
		NewCamera(2, "/group/eye"),
		NewLight(3, "/group/a/lamp"),
		NewLight(4, "/group/b/lamp"),
	)

	sc.FlattenHierarchy()

	// Grouping transforms are dropped, surviving paths are /name and
	// unique, ordered by name
	require.Len(t, sc.Entities, 3)
	paths := make([]string, len(sc.Entities))
	for i, e := range sc.Entities {
		paths[i] = e.TransformBase().Path
	}
	assert.Equal(t, []string{"/eye", "/lamp", "/lamp0"}, paths)
}

// TestSceneClone tests deep copy semantics
func TestSceneClone(t *testing.T) {
	src := buildTestScene()
	cp := src.Clone()

	assert.Equal(t, src.Hash(), cp.Hash())

	cp.Entities[3].(*Mesh).Points[0] = mat32.V3(8, 8, 8)
	assert.Equal(t, mat32.V3(0, 0, 0), src.Entities[3].(*Mesh).Points[0],
		"clone must not share vertex storage")
}

// TestEntitiesOf tests the kind filter
func TestEntitiesOf(t *testing.T) {
	sc := buildTestScene()

	lights := EntitiesOf[*Light](sc)
	require.Len(t, lights, 1)
	assert.Equal(t, "/root/sun", lights[0].Path)

	clips := AssetsOf[*AnimationClip](sc)
	require.Len(t, clips, 1)
	assert.Equal(t, "walk", clips[0].Name)
}

// TestClear tests scene reset
// TestZeroValueScene tests that a Scene literal works without NewScene:
// the pool and logger default on first use
func TestZeroValueScene(t *testing.T) {
	var sc Scene
	assert.Zero(t, sc.Hash())

	sc.Entities = append(sc.Entities,
		NewTransform(1, "/root"), NewTransform(2, "/root/child"))
	sc.BuildHierarchy()
	assert.NotZero(t, sc.Hash())

	var d Scene
	d.Diff(&sc, &sc)
	assert.Len(t, d.Entities, 2)

	var l Scene
	l.Lerp(&sc, &sc, 0.5)
	assert.Len(t, l.Entities, 2)

	clone := sc.Clone()
	assert.Equal(t, sc.Hash(), clone.Hash())
}

func TestClear(t *testing.T) {
	sc := buildTestScene()
	sc.Clear()
	assert.Empty(t, sc.Entities)
	assert.Empty(t, sc.Assets)
	assert.Empty(t, sc.Constraints)
	assert.Equal(t, DefaultSettings(), sc.Settings)
}
