// Package lifecycle is the callback boundary between a host game and the
// code that wants to follow its save, load and delete events.
//
// Callbacks are keyed by name and fired in ascending name order, so a
// component that must run first registers under a name sorting early (the
// save-data layer uses ".exsave"). A callback that fails or panics is
// reported and the remaining callbacks still run.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrDuplicateCallback is returned when a name is registered twice for the
// same event.
var ErrDuplicateCallback = errors.New("lifecycle: callback already registered")

// LoadFunc runs after the host loaded a save slot.
type LoadFunc func(ctx context.Context, slot int) error

// SaveFunc runs after the host wrote a save slot.
type SaveFunc func(ctx context.Context, slot int, comment string) error

// DeleteFunc runs after the host deleted a save slot.
type DeleteFunc func(ctx context.Context, slot int) error

// Event names used in CallbackError.
const (
	EventLoad   = "load"
	EventSave   = "save"
	EventDelete = "delete"
)

// CallbackError reports which callback failed for which event.
type CallbackError struct {
	Event string
	Name  string
	Slot  int
	Err   error
}

func (e *CallbackError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("lifecycle: %s callback %q slot=%d: %v", e.Event, e.Name, e.Slot, e.Err)
}

func (e *CallbackError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Reporter receives every callback failure as it happens.
type Reporter func(err *CallbackError)

// Option configures a Registry.
type Option func(*Registry)

// WithReporter installs a failure reporter.
func WithReporter(reporter Reporter) Option {
	return func(r *Registry) {
		r.reporter = reporter
	}
}

// Registry holds the callbacks of the three host events.
type Registry struct {
	mu       sync.Mutex
	load     map[string]LoadFunc
	save     map[string]SaveFunc
	delete   map[string]DeleteFunc
	reporter Reporter
}

// NewRegistry constructs an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		load:   map[string]LoadFunc{},
		save:   map[string]SaveFunc{},
		delete: map[string]DeleteFunc{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// OnLoad registers fn for load events under name.
func (r *Registry) OnLoad(name string, fn LoadFunc) error {
	if fn == nil {
		return fmt.Errorf("lifecycle: load callback %q is nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.load[name]; exists {
		return fmt.Errorf("%w: load %q", ErrDuplicateCallback, name)
	}
	r.load[name] = fn
	return nil
}

// OnSave registers fn for save events under name.
func (r *Registry) OnSave(name string, fn SaveFunc) error {
	if fn == nil {
		return fmt.Errorf("lifecycle: save callback %q is nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.save[name]; exists {
		return fmt.Errorf("%w: save %q", ErrDuplicateCallback, name)
	}
	r.save[name] = fn
	return nil
}

// OnDelete registers fn for delete events under name.
func (r *Registry) OnDelete(name string, fn DeleteFunc) error {
	if fn == nil {
		return fmt.Errorf("lifecycle: delete callback %q is nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.delete[name]; exists {
		return fmt.Errorf("%w: delete %q", ErrDuplicateCallback, name)
	}
	r.delete[name] = fn
	return nil
}

// Names returns the registered callback names for event in firing order.
func (r *Registry) Names(event string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch event {
	case EventLoad:
		return sortedKeys(r.load)
	case EventSave:
		return sortedKeys(r.save)
	case EventDelete:
		return sortedKeys(r.delete)
	default:
		return nil
	}
}

// FireLoad runs every load callback in name order.
func (r *Registry) FireLoad(ctx context.Context, slot int) error {
	r.mu.Lock()
	names := sortedKeys(r.load)
	fns := make([]LoadFunc, len(names))
	for i, name := range names {
		fns[i] = r.load[name]
	}
	r.mu.Unlock()

	var errs []error
	for i, name := range names {
		fn := fns[i]
		if err := r.invoke(EventLoad, name, slot, func() error { return fn(ctx, slot) }); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FireSave runs every save callback in name order.
func (r *Registry) FireSave(ctx context.Context, slot int, comment string) error {
	r.mu.Lock()
	names := sortedKeys(r.save)
	fns := make([]SaveFunc, len(names))
	for i, name := range names {
		fns[i] = r.save[name]
	}
	r.mu.Unlock()

	var errs []error
	for i, name := range names {
		fn := fns[i]
		if err := r.invoke(EventSave, name, slot, func() error { return fn(ctx, slot, comment) }); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FireDelete runs every delete callback in name order.
func (r *Registry) FireDelete(ctx context.Context, slot int) error {
	r.mu.Lock()
	names := sortedKeys(r.delete)
	fns := make([]DeleteFunc, len(names))
	for i, name := range names {
		fns[i] = r.delete[name]
	}
	r.mu.Unlock()

	var errs []error
	for i, name := range names {
		fn := fns[i]
		if err := r.invoke(EventDelete, name, slot, func() error { return fn(ctx, slot) }); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) invoke(event, name string, slot int, fn func() error) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("panic: %v", recovered)
		}
		if err == nil {
			return
		}
		cbErr := &CallbackError{Event: event, Name: name, Slot: slot, Err: err}
		if r.reporter != nil {
			r.reporter(cbErr)
		}
		err = cbErr
	}()
	return fn()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
