package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"goki.dev/mat32/v2"
)

// TestTransformName tests path segment helpers
func TestTransformName(t *testing.T) {
	tests := []struct {
		path   string
		name   string
		parent string
	}{
		{"/root", "root", ""},
		{"/root/child", "child", "/root"},
		{"/a/b/c", "c", "/a/b"},
		{"", "", ""},
	}
	for _, tt := range tests {
		tr := NewTransform(1, tt.path)
		if got := tr.Name(); got != tt.name {
			t.Errorf("Name(%q) = %q, want %q", tt.path, got, tt.name)
		}
		if got := tr.ParentPath(); got != tt.parent {
			t.Errorf("ParentPath(%q) = %q, want %q", tt.path, got, tt.parent)
		}
	}
}

// TestSanitizePath tests path normalization
func TestSanitizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"root", "/root"},
		{"/root", "/root"},
		{"/root/", "/root"},
		{"//a//b/", "/a/b"},
		{"a/b", "/a/b"},
	}
	for _, tt := range tests {
		if got := SanitizePath(tt.in); got != tt.want {
			t.Errorf("SanitizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestStripMergeInverse tests that merge(strip(E,B),B) restores E
func TestStripMergeInverse(t *testing.T) {
	t.Run("transform", func(t *testing.T) {
		base := NewTransform(1, "/node")
		base.Position = mat32.V3(1, 2, 3)

		edited := base.Clone().(*Transform)
		edited.Position = mat32.V3(4, 5, 6)

		want := edited.Clone().(*Transform)

		edited.Strip(base)
		// Rotation, scale and visibility were untouched, so only
		// position survives the strip
		assert.True(t, edited.Mask.Has(MaskPosition))
		assert.False(t, edited.Mask.Has(MaskRotation))
		assert.False(t, edited.Mask.Has(MaskScale))
		assert.False(t, edited.Mask.Has(MaskVisible))

		edited.Merge(base)
		assert.Equal(t, want, edited)
	})

	t.Run("camera", func(t *testing.T) {
		base := NewCamera(2, "/cam")
		edited := base.Clone().(*Camera)
		edited.FOV = 60

		want := edited.Clone().(*Camera)

		edited.Strip(base)
		assert.True(t, edited.Mask.Has(MaskCamera))
		assert.False(t, edited.Mask.Has(MaskPosition))

		edited.Merge(base)
		assert.Equal(t, want, edited)
	})

	t.Run("mesh", func(t *testing.T) {
		base := NewMesh(3, "/mesh")
		base.Points = []mat32.Vec3{mat32.V3(0, 0, 0), mat32.V3(1, 0, 0)}
		base.UV = []mat32.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}}
		base.Counts = []int32{2}
		base.Indices = []int32{0, 1}

		edited := base.Clone().(*Mesh)
		edited.Points[1] = mat32.V3(2, 0, 0)

		want := edited.Clone().(*Mesh)

		edited.Strip(base)
		assert.True(t, edited.Mask.Has(MaskMeshPoints))
		assert.False(t, edited.Mask.Has(MaskMeshUV))
		assert.False(t, edited.Mask.Has(MaskMeshTopology))
		assert.Nil(t, edited.UV)
		assert.Nil(t, edited.Counts)

		edited.Merge(base)
		assert.Equal(t, want, edited)
	})
}

// TestDiffMask tests that diff marks exactly the changed fields
func TestDiffMask(t *testing.T) {
	a := NewLight(4, "/light")
	b := a.Clone().(*Light)
	b.Intensity = 5
	b.Position = mat32.V3(0, 10, 0)

	d := a.Clone().(*Light)
	d.Diff(a, b)

	assert.True(t, d.Mask.Has(MaskPosition))
	assert.True(t, d.Mask.Has(MaskLight))
	assert.False(t, d.Mask.Has(MaskRotation))
	assert.False(t, d.Mask.Has(MaskScale))
	assert.False(t, d.Mask.Has(MaskVisible))
	assert.Equal(t, mat32.V3(0, 10, 0), d.Position)
	assert.Equal(t, float32(5), d.Intensity)
}

// TestCloneIndependence tests that clones share no mutable state
func TestCloneIndependence(t *testing.T) {
	m := NewMesh(5, "/m")
	m.Points = []mat32.Vec3{mat32.V3(1, 1, 1)}
	m.Bones = []*BoneData{{Path: "/b", Weights: []float32{1}}}

	c := m.Clone().(*Mesh)
	c.Points[0] = mat32.V3(9, 9, 9)
	c.Bones[0].Weights[0] = 0.5

	assert.Equal(t, mat32.V3(1, 1, 1), m.Points[0])
	assert.Equal(t, float32(1), m.Bones[0].Weights[0])
}

// TestEntityHash tests content hashing
func TestEntityHash(t *testing.T) {
	a := NewTransform(1, "/n")
	b := NewTransform(1, "/n")
	require.Equal(t, HashEntity(a), HashEntity(b))

	b.Position = mat32.V3(0, 0, 1)
	assert.NotEqual(t, HashEntity(a), HashEntity(b))

	// Matrix caches and parent links do not contribute
	c := NewTransform(1, "/n")
	c.Global = c.Matrix()
	c.Parent = a
	assert.Equal(t, HashEntity(a), HashEntity(c))

	// The kind tag does: a transform and a camera with identical base
	// fields hash differently
	cam := NewCamera(1, "/n")
	cam.Mask = a.Mask
	assert.NotEqual(t, HashEntity(a), HashEntity(cam))
}

// TestLerpBoundaries tests interpolation endpoints
func TestLerpBoundaries(t *testing.T) {
	a := NewTransform(1, "/n")
	a.Position = mat32.V3(0, 0, 0)
	b := a.Clone().(*Transform)
	b.Position = mat32.V3(10, 0, 0)

	out := a.Clone().(*Transform)
	out.Lerp(a, b, 0)
	assert.Equal(t, a.Position, out.Position)

	out.Lerp(a, b, 1)
	assert.Equal(t, b.Position, out.Position)

	out.Lerp(a, b, 0.5)
	assert.Equal(t, mat32.V3(5, 0, 0), out.Position)
}
