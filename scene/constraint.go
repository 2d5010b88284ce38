// Package scene constraints: cross-entity relationships synced with the
// graph but resolved by the host application.
package scene

import (
	"fmt"

	"github.com/scenebridge/scenebridge/wire"
)

// ConstraintType identifies the constraint kind.
type ConstraintType uint32

const (
	ConstraintAim ConstraintType = iota
	ConstraintParent
	ConstraintPosition
	ConstraintRotation
	ConstraintScale
)

// String returns the string representation of ConstraintType.
func (t ConstraintType) String() string {
	switch t {
	case ConstraintAim:
		return "aim"
	case ConstraintParent:
		return "parent"
	case ConstraintPosition:
		return "position"
	case ConstraintRotation:
		return "rotation"
	case ConstraintScale:
		return "scale"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(t))
	}
}

// Constraint binds the entity at Path to the entities at SourcePaths.
type Constraint struct {
	Type        ConstraintType
	Path        string
	SourcePaths []string
}

func (c *Constraint) write(w *wire.Writer) {
	w.U32(uint32(c.Type))
	w.String(c.Path)
	w.Strings(c.SourcePaths)
}

func (c *Constraint) read(r *wire.Reader) {
	c.Type = ConstraintType(r.U32())
	c.Path = r.String()
	c.SourcePaths = r.Strings()
}
