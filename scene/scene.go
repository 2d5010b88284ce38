// Package scene container: owns the entity and asset pools and implements
// the bulk operations that move a scene between processes.
package scene

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"sync/atomic"

	"goki.dev/mat32/v2"
	"goki.dev/ordmap"

	"github.com/scenebridge/scenebridge/logging"
	"github.com/scenebridge/scenebridge/task"
	"github.com/scenebridge/scenebridge/wire"
)

// Grain sizes for the fork-join batches issued by bulk operations. Pairwise
// per-entity work (diff, merge, strip, lerp, clone, hash) is fine-grained;
// hierarchy passes batch wider blocks to amortize the path lookups.
const (
	entityGrain = 10
	blockGrain  = 32
)

// Scene owns a snapshot of the scene graph: settings, the flat asset pool,
// the entity pool and constraints. Entities are identified by path and id;
// asset insertion order is significant for stable iteration but not for
// identity. All bulk operations run on the scene's task pool and return
// only after their batches complete. The zero value is usable: a missing
// pool or logger defaults on first use to task.Default and logging.Nop.
type Scene struct {
	Settings    SceneSettings
	Assets      []Asset
	Entities    []Entity
	Constraints []*Constraint

	pool *task.Pool
	log  *logging.Logger

	// sortBuf is the ephemeral path-sorted copy reused by BuildHierarchy.
	// Derived state: never serialized, dropped by Clear.
	sortBuf []Entity
}

// NewScene creates an empty Scene with canonical settings, a GOMAXPROCS
// task pool and a no-op logger.
func NewScene() *Scene {
	return &Scene{
		Settings: DefaultSettings(),
		pool:     task.Default(),
		log:      logging.Nop(),
	}
}

// SetPool sets the task pool used by bulk operations.
func (s *Scene) SetPool(pool *task.Pool) *Scene {
	s.pool = pool
	return s
}

// SetLogger sets the logger used to report internal-invariant violations.
func (s *Scene) SetLogger(log *logging.Logger) *Scene {
	s.log = log
	return s
}

func (s *Scene) runner() *task.Pool {
	if s.pool == nil {
		s.pool = task.Default()
	}
	return s.pool
}

func (s *Scene) logger() *logging.Logger {
	if s.log == nil {
		s.log = logging.Nop()
	}
	return s.log
}

// Clear resets the scene to the empty state for reuse.
func (s *Scene) Clear() {
	s.Settings = DefaultSettings()
	s.Assets = nil
	s.Entities = nil
	s.Constraints = nil
	s.sortBuf = nil
}

// Hash returns the unordered sum of every asset's and entity's content
// hash. Summation makes the hash order-independent and incrementally
// recomputable per element; it detects truncation, corruption and
// field-count drift, not reordering of equal-hash siblings.
func (s *Scene) Hash() uint64 {
	var sum atomic.Uint64
	s.runner().For(len(s.Assets), entityGrain, func(i int) {
		sum.Add(HashAsset(s.Assets[i]))
	})
	s.runner().For(len(s.Entities), entityGrain, func(i int) {
		sum.Add(HashEntity(s.Entities[i]))
	})
	return sum.Load()
}

// Serialize writes the content hash followed by settings, assets, entities
// and constraints in fixed field order.
func (s *Scene) Serialize(w io.Writer) error {
	bw := wire.NewWriter(w)
	bw.U64(s.Hash())
	s.Settings.write(bw)
	bw.U32(uint32(len(s.Assets)))
	for _, a := range s.Assets {
		writeAsset(bw, a)
	}
	bw.U32(uint32(len(s.Entities)))
	for _, e := range s.Entities {
		writeEntity(bw, e)
	}
	bw.U32(uint32(len(s.Constraints)))
	for _, c := range s.Constraints {
		c.write(bw)
	}
	if err := bw.Err(); err != nil {
		return fmt.Errorf("scene serialize: %w", err)
	}
	return nil
}

// Deserialize reads the stored hash and the same fields Serialize wrote,
// then recomputes the hash over the loaded state. A mismatch aborts the
// load with ErrHashMismatch; the scene is cleared and must not be used.
func (s *Scene) Deserialize(r io.Reader) error {
	br := wire.NewReader(r)
	stored := br.U64()
	s.Settings.read(br)

	na := br.Count()
	if br.Err() == nil {
		s.Assets = make([]Asset, 0, na)
		for i := 0; i < na; i++ {
			a, err := readAsset(br)
			if err != nil {
				s.Clear()
				return fmt.Errorf("scene deserialize: asset %d: %w", i, err)
			}
			s.Assets = append(s.Assets, a)
		}
	}

	ne := br.Count()
	if br.Err() == nil {
		s.Entities = make([]Entity, 0, ne)
		for i := 0; i < ne; i++ {
			e, err := readEntity(br)
			if err != nil {
				s.Clear()
				return fmt.Errorf("scene deserialize: entity %d: %w", i, err)
			}
			s.Entities = append(s.Entities, e)
		}
	}

	nc := br.Count()
	if br.Err() == nil {
		s.Constraints = make([]*Constraint, 0, nc)
		for i := 0; i < nc; i++ {
			c := &Constraint{}
			c.read(br)
			s.Constraints = append(s.Constraints, c)
		}
	}

	if err := br.Err(); err != nil {
		s.Clear()
		return fmt.Errorf("scene deserialize: %w", err)
	}
	if got := s.Hash(); got != stored {
		s.Clear()
		return fmt.Errorf("scene deserialize: %w: stored %016x, computed %016x",
			ErrHashMismatch, stored, got)
	}
	return nil
}

// Clone returns a deep copy of the scene. Assets are shared (content-
// addressed, immutable in transit); entities are cloned in parallel.
func (s *Scene) Clone() *Scene {
	ret := &Scene{
		Settings:    s.Settings,
		Assets:      slices.Clone(s.Assets),
		Constraints: slices.Clone(s.Constraints),
		pool:        s.pool,
		log:         s.log,
	}
	ret.Entities = make([]Entity, len(s.Entities))
	s.runner().For(len(s.Entities), entityGrain, func(i int) {
		ret.Entities[i] = s.Entities[i].Clone()
	})
	return ret
}

// Strip removes from every entity the fields equal to the corresponding
// field of base, shrinking an outgoing update to what changed. Scenes must
// be index-aligned copies of the same topology: on an entity-count mismatch
// nothing happens, and slots whose ids differ are left untouched.
func (s *Scene) Strip(base *Scene) {
	n := len(s.Entities)
	if n != len(base.Entities) {
		return
	}
	s.runner().For(n, entityGrain, func(i int) {
		ecur, ebase := s.Entities[i], base.Entities[i]
		if ecur.TransformBase().ID == ebase.TransformBase().ID {
			ecur.Strip(ebase)
		}
	})
}

// Merge folds base's fields into fields left unset on this scene's
// entities, reconstituting full entities from a partial update plus a prior
// full snapshot. Preconditions as for Strip.
func (s *Scene) Merge(base *Scene) {
	n := len(s.Entities)
	if n != len(base.Entities) {
		return
	}
	s.runner().For(n, entityGrain, func(i int) {
		ecur, ebase := s.Entities[i], base.Entities[i]
		if ecur.TransformBase().ID == ebase.TransformBase().ID {
			ecur.Merge(ebase)
		}
	})
}

// Diff populates the receiver as the per-entity delta between the aligned
// snapshots s1 and s2. If the entity counts differ the result is left
// empty; an id mismatch at an aligned index is an internal-invariant
// violation, logged and skipped. Settings come from s1; assets and
// constraints are not diffed.
func (s *Scene) Diff(s1, s2 *Scene) {
	n := len(s1.Entities)
	if n != len(s2.Entities) {
		return
	}
	s.Settings = s1.Settings
	s.Entities = make([]Entity, n)
	s.runner().For(n, entityGrain, func(i int) {
		e1, e2 := s1.Entities[i], s2.Entities[i]
		if e1.TransformBase().ID != e2.TransformBase().ID {
			s.logger().Errorf("scene diff: id mismatch at index %d: %d vs %d",
				i, e1.TransformBase().ID, e2.TransformBase().ID)
			return
		}
		e3 := e1.Clone()
		e3.Diff(e1, e2)
		s.Entities[i] = e3
	})
}

// Lerp populates the receiver with the interpolation of the aligned
// snapshots s1 and s2 at t in [0,1]. Geometry whose topology is not marked
// constant cannot be blended and passes through from s1 verbatim. An id
// mismatch at an aligned index is logged and leaves the slot empty;
// callers must check output completeness.
func (s *Scene) Lerp(s1, s2 *Scene, t float32) {
	n := len(s1.Entities)
	if n != len(s2.Entities) {
		return
	}
	s.Settings = s1.Settings
	s.Entities = make([]Entity, n)
	s.runner().For(n, entityGrain, func(i int) {
		e1, e2 := s1.Entities[i], s2.Entities[i]
		if e1.TransformBase().ID != e2.TransformBase().ID {
			s.logger().Errorf("scene lerp: id mismatch at index %d: %d vs %d",
				i, e1.TransformBase().ID, e2.TransformBase().ID)
			return
		}
		if e1.IsGeometry() && e1.TransformBase().CacheFlags&FlagConstantTopology == 0 {
			s.Entities[i] = e1
			return
		}
		e3 := e1.Clone()
		e3.Lerp(e1, e2, t)
		s.Entities[i] = e3
	})
}

// FindEntity returns the entity at the given hierarchy path, or nil.
func (s *Scene) FindEntity(path string) Entity {
	for _, e := range s.Entities {
		if e.TransformBase().Path == path {
			return e
		}
	}
	return nil
}

// globalMatrix walks the parent chain computing the world matrix; a root's
// global matrix is its local matrix.
func globalMatrix(t *Transform) mat32.Mat4 {
	if t.Parent == nil {
		return t.Local
	}
	pg := globalMatrix(t.Parent)
	var m mat32.Mat4
	m.MulMatrices(&pg, &t.Local)
	return m
}

// BuildHierarchy resolves every entity's Parent link by path and recomputes
// the Local and Global matrix caches. The two passes are separate fork-join
// batches: pass two reads the Parent links pass one wrote, so it may not
// start until the first batch has fully joined.
func (s *Scene) BuildHierarchy() {
	sorted := append(s.sortBuf[:0], s.Entities...)
	slices.SortFunc(sorted, func(a, b Entity) int {
		return strings.Compare(a.TransformBase().Path, b.TransformBase().Path)
	})
	s.sortBuf = sorted

	find := func(path string) *Transform {
		if path == "" {
			return nil
		}
		i, ok := slices.BinarySearchFunc(sorted, path, func(e Entity, p string) int {
			return strings.Compare(e.TransformBase().Path, p)
		})
		if !ok {
			return nil
		}
		return sorted[i].TransformBase()
	}

	n := len(s.Entities)
	s.runner().ForBlocked(n, blockGrain, func(begin, end int) {
		for i := begin; i < end; i++ {
			t := s.Entities[i].TransformBase()
			t.Parent = find(t.ParentPath())
			t.Local = t.Matrix()
		}
	})
	s.runner().ForBlocked(n, blockGrain, func(begin, end int) {
		for i := begin; i < end; i++ {
			t := s.Entities[i].TransformBase()
			t.Global = globalMatrix(t)
		}
	})
}

// FlattenHierarchy rewrites every non-Transform entity's path to a flat
// /name form, de-duplicating name collisions with a hex suffix counter, and
// drops pure grouping Transforms. The result is ordered by the final
// flattened name, so the same entity set always flattens identically.
func (s *Scene) FlattenHierarchy() {
	om := ordmap.New[string, Entity]()
	for _, e := range s.Entities {
		if e.Type() == EntityTransform {
			continue
		}
		name := e.TransformBase().Name()
		if _, taken := om.Map[name]; !taken {
			om.Add(name, e)
			continue
		}
		for i := 0; ; i++ {
			cand := fmt.Sprintf("%s%x", name, i)
			if _, taken := om.Map[cand]; !taken {
				om.Add(cand, e)
				break
			}
		}
	}

	slices.SortFunc(om.Order, func(a, b ordmap.KeyVal[string, Entity]) int {
		return strings.Compare(a.Key, b.Key)
	})
	s.Entities = s.Entities[:0]
	for _, kv := range om.Order {
		kv.Val.TransformBase().Path = "/" + kv.Key
		s.Entities = append(s.Entities, kv.Val)
	}
}

// Import normalizes a freshly received or authored scene to the canonical
// frame: it builds the converter chain from the scene settings, sanitizes
// every entity and mesh-bone path, refines meshes before conversion
// (refinement may change vertex topology the converters then transform),
// recomputes mesh bounds after conversion, and runs the same chain over
// every curve of every animation clip. Settings are reset to the canonical
// frame afterward, so a second Import is a conversion no-op.
func (s *Scene) Import(imp ImportSettings) {
	chain := converterChain(s.Settings, imp)

	s.runner().For(len(s.Entities), entityGrain, func(i int) {
		e := s.Entities[i]
		t := e.TransformBase()
		t.Path = SanitizePath(t.Path)
		t.Reference = SanitizePath(t.Reference)

		mesh, isMesh := e.(*Mesh)
		if isMesh {
			for _, b := range mesh.Bones {
				b.Path = SanitizePath(b.Path)
			}
			mesh.RefineSettings.SplitUnit = imp.MeshSplitUnit
			mesh.RefineSettings.MaxBoneInfluence = imp.MeshMaxBoneInfluence
			mesh.Refine()
		}

		for _, cv := range chain {
			cv.ConvertEntity(e)
		}
		if isMesh {
			mesh.UpdateBounds()
		}
	})

	for _, a := range s.Assets {
		clip, ok := a.(*AnimationClip)
		if !ok {
			continue
		}
		s.runner().For(len(clip.Animations), entityGrain, func(i int) {
			anim := clip.Animations[i]
			anim.Path = SanitizePath(anim.Path)
			for _, cv := range chain {
				cv.ConvertAnimation(anim)
			}
		})
	}

	s.Settings.Handedness = Left
	s.Settings.ScaleFactor = 1
}
