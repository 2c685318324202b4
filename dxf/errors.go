package dxf

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is matching.
var (
	ErrStructure = errors.New("dxf: structure error")
	ErrNotFound  = errors.New("dxf: not found")
	ErrData      = errors.New("dxf: invalid entity data")
)

// StructureError reports a tag run that cannot be classified.
// The current entity is unusable; sibling entities are unaffected.
type StructureError struct {
	Reason string
	Tag    Tag // offending tag, NoneTag at end of input
	Index  int // position in the tag run, -1 at end of input
}

func (e *StructureError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("dxf: %s: %s at tag %d", e.Reason, e.Tag, e.Index)
	}
	return fmt.Sprintf("dxf: %s", e.Reason)
}

// Is matches ErrStructure.
func (e *StructureError) Is(target error) bool {
	return target == ErrStructure
}

// LookupError reports a missing subclass, appdata or xdata group.
// Callers usually treat it as "feature absent".
type LookupError struct {
	Group string // "subclass", "appdata", "xdata" or "type"
	Name  string
}

func (e *LookupError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("dxf: %s not found", e.Group)
	}
	return fmt.Sprintf("dxf: %s %q not found", e.Group, e.Name)
}

// Is matches ErrNotFound.
func (e *LookupError) Is(target error) bool {
	return target == ErrNotFound
}

// DataError reports a well-formed entity whose values are invalid,
// such as an unknown spline type.
type DataError struct {
	Entity string
	Handle string
	Reason string
}

func (e *DataError) Error() string {
	if e.Handle != "" {
		return fmt.Sprintf("dxf: %s #%s: %s", e.Entity, e.Handle, e.Reason)
	}
	return fmt.Sprintf("dxf: %s: %s", e.Entity, e.Reason)
}

// Is matches ErrData.
func (e *DataError) Is(target error) bool {
	return target == ErrData
}

// EntityError attributes an error to one entity run of a section.
type EntityError struct {
	Index int    // run index within the section
	Type  string // entity type, if known
	Err   error
}

func (e *EntityError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("entity %d (%s): %v", e.Index, e.Type, e.Err)
	}
	return fmt.Sprintf("entity %d: %v", e.Index, e.Err)
}

func (e *EntityError) Unwrap() error {
	return e.Err
}
