package dxf

import "fmt"

// EntityKind enumerates the entity types this package builds.
type EntityKind uint8

const (
	EntityUnknown EntityKind = iota // any other type, kept as Opaque
	EntityPolyline
	EntityVertex
	EntitySeqEnd
)

// String returns the DXF type name of the kind.
func (k EntityKind) String() string {
	switch k {
	case EntityPolyline:
		return "POLYLINE"
	case EntityVertex:
		return "VERTEX"
	case EntitySeqEnd:
		return "SEQEND"
	default:
		return "UNKNOWN"
	}
}

// KindOf maps a DXF entity type name to its kind.
func KindOf(typeName string) EntityKind {
	switch typeName {
	case "POLYLINE":
		return EntityPolyline
	case "VERTEX":
		return EntityVertex
	case "SEQEND":
		return EntitySeqEnd
	default:
		return EntityUnknown
	}
}

// Entity is a built drawing entity.
type Entity interface {
	Kind() EntityKind
	Type() string
	Classified() *ClassifiedTags
}

// LegacyVersion is the last DXF version without subclass markers (R12).
const LegacyVersion = "AC1009"

// IsLegacy reports whether entities of the given $ACADVER keep their
// attributes in the no-class prefix. An empty version counts as legacy.
func IsLegacy(version string) bool {
	return version == "" || version <= LegacyVersion
}

// Base holds the attributes shared by all entities.
type Base struct {
	TypeName string
	Handle   string
	Layer    string
	tags     *ClassifiedTags
}

func newBase(ct *ClassifiedTags) Base {
	typeName, _ := ct.GetType()
	b := Base{TypeName: typeName, tags: ct}
	nc := ct.NoClass()
	b.Handle = nc.GetString(CodeHandle, "")
	b.Layer = nc.GetString(CodeLayer, "")
	if b.Layer == "" {
		if sc, err := ct.GetSubclass("AcDbEntity"); err == nil {
			b.Layer = sc.GetString(CodeLayer, "")
		}
	}
	if b.Layer == "" {
		b.Layer = "0"
	}
	return b
}

// Type returns the DXF type name.
func (b *Base) Type() string { return b.TypeName }

// Classified returns the tags the entity was built from.
func (b *Base) Classified() *ClassifiedTags { return b.tags }

// attribs returns the group holding the type-specific attributes: the first
// of the named subclasses, or the no-class prefix for legacy files and for
// files that omit the subclass.
func attribs(ct *ClassifiedTags, version string, subclasses ...string) Tags {
	if !IsLegacy(version) {
		if sc, err := ct.FirstSubclass(subclasses...); err == nil {
			return sc
		}
	}
	return ct.NoClass()
}

// Opaque is an entity of a type without a dedicated builder.
// Its classified tags are kept unmodified.
type Opaque struct {
	Base
}

func (o *Opaque) Kind() EntityKind { return EntityUnknown }

// SeqEnd closes a POLYLINE vertex sequence.
type SeqEnd struct {
	Base
}

func (s *SeqEnd) Kind() EntityKind { return EntitySeqEnd }

// BuildEntity builds the entity described by ct. A POLYLINE built here has
// no vertices; ReadEntities attaches them from the following runs.
func BuildEntity(ct *ClassifiedTags, version string) (Entity, error) {
	typeName, err := ct.GetType()
	if err != nil {
		return nil, err
	}
	switch KindOf(typeName) {
	case EntityPolyline:
		return NewPolyline(ct, version), nil
	case EntityVertex:
		return NewVertex(ct, version), nil
	case EntitySeqEnd:
		return &SeqEnd{Base: newBase(ct)}, nil
	case EntityUnknown:
		return &Opaque{Base: newBase(ct)}, nil
	}
	return nil, fmt.Errorf("dxf: no builder for %s", typeName)
}
