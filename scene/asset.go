// Package scene asset model: content-addressable payloads referenced by
// entities but stored in a flat pool.
package scene

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"goki.dev/mat32/v2"

	"github.com/scenebridge/scenebridge/wire"
)

// AssetType discriminates the closed set of asset kinds.
type AssetType uint32

const (
	AssetFile AssetType = iota
	AssetAnimation
	AssetTexture
	AssetMaterial
	AssetAudio
)

// String returns the string representation of AssetType.
func (t AssetType) String() string {
	switch t {
	case AssetFile:
		return "file"
	case AssetAnimation:
		return "animation"
	case AssetTexture:
		return "texture"
	case AssetMaterial:
		return "material"
	case AssetAudio:
		return "audio"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(t))
	}
}

// Asset is a content-addressable payload. The set of implementations is
// closed: *FileAsset, *AnimationClip, *Texture, *Material and *Audio.
type Asset interface {
	// AssetBase returns the common identity fields of the asset.
	AssetBase() *AssetCommon

	// Type returns the kind discriminant.
	Type() AssetType

	// Write serializes the asset record (excluding the kind tag).
	Write(w *wire.Writer)

	// Read deserializes the asset record (excluding the kind tag).
	Read(r *wire.Reader)
}

// AssetCommon holds the identity fields shared by every asset kind.
type AssetCommon struct {
	ID   int32
	Name string
}

// AssetBase returns a itself; concrete kinds inherit this.
func (a *AssetCommon) AssetBase() *AssetCommon {
	return a
}

func (a *AssetCommon) write(w *wire.Writer) {
	w.I32(a.ID)
	w.String(a.Name)
}

func (a *AssetCommon) read(r *wire.Reader) {
	a.ID = r.I32()
	a.Name = r.String()
}

// HashAsset returns the 64-bit content hash of an asset: the xxhash of its
// kind tag and serialized record.
func HashAsset(a Asset) uint64 {
	d := xxhash.New()
	w := wire.NewWriter(d)
	w.U32(uint32(a.Type()))
	a.Write(w)
	return d.Sum64()
}

// writeAsset writes the kind tag followed by the asset record.
func writeAsset(w *wire.Writer, a Asset) {
	w.U32(uint32(a.Type()))
	a.Write(w)
}

// readAsset reads the kind tag and dispatches to the matching record type.
func readAsset(r *wire.Reader) (Asset, error) {
	tag := AssetType(r.U32())
	if err := r.Err(); err != nil {
		return nil, err
	}
	var a Asset
	switch tag {
	case AssetFile:
		a = &FileAsset{}
	case AssetAnimation:
		a = &AnimationClip{}
	case AssetTexture:
		a = &Texture{}
	case AssetMaterial:
		a = &Material{}
	case AssetAudio:
		a = &Audio{}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownAssetType, uint32(tag))
	}
	a.Read(r)
	return a, r.Err()
}

// TextureFormat identifies the pixel layout of a texture payload. The codec
// itself is outside this core; only the identity travels.
type TextureFormat uint32

const (
	TextureRaw TextureFormat = iota
	TextureRGBA8
	TextureRGBAf16
	TextureRGBAf32
)

// Texture is an image payload.
type Texture struct {
	AssetCommon

	Format TextureFormat
	Width  int32
	Height int32
	Data   []byte
}

// Type returns AssetTexture.
func (t *Texture) Type() AssetType { return AssetTexture }

// Write serializes the Texture record.
func (t *Texture) Write(w *wire.Writer) {
	t.AssetCommon.write(w)
	w.U32(uint32(t.Format))
	w.I32(t.Width)
	w.I32(t.Height)
	w.Bytes(t.Data)
}

// Read deserializes the Texture record.
func (t *Texture) Read(r *wire.Reader) {
	t.AssetCommon.read(r)
	t.Format = TextureFormat(r.U32())
	t.Width = r.I32()
	t.Height = r.I32()
	t.Data = r.Bytes()
}

// Material is a shading parameter set referencing textures by asset ID.
type Material struct {
	AssetCommon

	Index      int32
	ShaderName string
	Color      mat32.Vec4
	Emission   mat32.Vec4
	Metallic   float32
	Smoothness float32
	ColorMap   int32
}

// Type returns AssetMaterial.
func (m *Material) Type() AssetType { return AssetMaterial }

// Write serializes the Material record.
func (m *Material) Write(w *wire.Writer) {
	m.AssetCommon.write(w)
	w.I32(m.Index)
	w.String(m.ShaderName)
	w.Vec4(m.Color)
	w.Vec4(m.Emission)
	w.F32(m.Metallic)
	w.F32(m.Smoothness)
	w.I32(m.ColorMap)
}

// Read deserializes the Material record.
func (m *Material) Read(r *wire.Reader) {
	m.AssetCommon.read(r)
	m.Index = r.I32()
	m.ShaderName = r.String()
	m.Color = r.Vec4()
	m.Emission = r.Vec4()
	m.Metallic = r.F32()
	m.Smoothness = r.F32()
	m.ColorMap = r.I32()
}

// AudioFormat identifies the sample layout of an audio payload.
type AudioFormat uint32

const (
	AudioRawFile AudioFormat = iota
	AudioU8
	AudioS16
	AudioS24
	AudioS32
	AudioF32
)

// Audio is a sound payload.
type Audio struct {
	AssetCommon

	Format    AudioFormat
	Frequency int32
	Channels  int32
	Data      []byte
}

// Type returns AssetAudio.
func (a *Audio) Type() AssetType { return AssetAudio }

// Write serializes the Audio record.
func (a *Audio) Write(w *wire.Writer) {
	a.AssetCommon.write(w)
	w.U32(uint32(a.Format))
	w.I32(a.Frequency)
	w.I32(a.Channels)
	w.Bytes(a.Data)
}

// Read deserializes the Audio record.
func (a *Audio) Read(r *wire.Reader) {
	a.AssetCommon.read(r)
	a.Format = AudioFormat(r.U32())
	a.Frequency = r.I32()
	a.Channels = r.I32()
	a.Data = r.Bytes()
}

// FileAsset is an opaque file payload synced alongside the scene.
type FileAsset struct {
	AssetCommon

	Data []byte
}

// Type returns AssetFile.
func (f *FileAsset) Type() AssetType { return AssetFile }

// Write serializes the FileAsset record.
func (f *FileAsset) Write(w *wire.Writer) {
	f.AssetCommon.write(w)
	w.Bytes(f.Data)
}

// Read deserializes the FileAsset record.
func (f *FileAsset) Read(r *wire.Reader) {
	f.AssetCommon.read(r)
	f.Data = r.Bytes()
}

// AssetsOf returns all assets of the scene assignable to T, preserving pool
// order.
func AssetsOf[T Asset](s *Scene) []T {
	var ret []T
	for _, a := range s.Assets {
		if v, ok := a.(T); ok {
			ret = append(ret, v)
		}
	}
	return ret
}

// EntitiesOf returns all entities of the scene assignable to T, preserving
// pool order.
func EntitiesOf[T Entity](s *Scene) []T {
	var ret []T
	for _, e := range s.Entities {
		if v, ok := e.(T); ok {
			ret = append(ret, v)
		}
	}
	return ret
}
