package surf

import (
	"errors"
	"fmt"
)

var (
	ErrCycle         = errors.New("surface would become its own ancestor")
	ErrHasRole       = errors.New("surface already has a role")
	ErrSelfReference = errors.New("surface placed relative to itself")
	ErrNotSibling    = errors.New("reference surface is not a sibling")
	ErrNotChild      = errors.New("surface is not a child")
	ErrDestroyed     = errors.New("surface has been destroyed")
	ErrBadValue      = errors.New("invalid value")
	ErrClosed        = errors.New("compositor closed")
)

// HierarchyError is returned when a change to the sub-surface tree
// is rejected. The tree is left exactly as it was before the change
// was attempted.
type HierarchyError struct {
	Op      string
	Surface Handle
	Child   Handle
	Err     error
}

func (err *HierarchyError) Error() string {
	return fmt.Sprintf("%v: surface %v, child %v: %v", err.Op, err.Surface, err.Child, err.Err)
}

func (err *HierarchyError) Unwrap() error {
	return err.Err
}

// ValueError is returned by a setter that was given a value outside
// of its valid range. The pending state is left unchanged.
type ValueError struct {
	Field string
	Value any
}

func (err ValueError) Error() string {
	return fmt.Sprintf("invalid %v: %v", err.Field, err.Value)
}

func (err ValueError) Unwrap() error {
	return ErrBadValue
}
