package exsave

import (
	"errors"
	"fmt"
)

// ErrForeignDocument is returned by Save when the target file holds an XML
// document whose root is not <savedata>.
var ErrForeignDocument = errors.New("exsave: side-file root is not <savedata>")

// HookError wraps a failure raised inside a lifecycle hook, including
// recovered panics.
type HookError struct {
	Hook string
	Slot int
	Path string
	Err  error
}

func (e *HookError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Path == "" {
		return fmt.Sprintf("exsave: %s hook slot=%d: %v", e.Hook, e.Slot, e.Err)
	}
	return fmt.Sprintf("exsave: %s hook slot=%d path=%s: %v", e.Hook, e.Slot, e.Path, e.Err)
}

func (e *HookError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
