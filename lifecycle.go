package exsave

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/goliatone/go-exsave/pkg/activity"
	"github.com/goliatone/go-exsave/pkg/lifecycle"
)

// CallbackName sorts before ordinary plugin names so the side-file is loaded
// before any plugin reads it and refreshed before any plugin saves.
const CallbackName = ".exsave"

// ignoredSlot is what the host passes for transient, unsaved state.
const ignoredSlot = -1

// Host is the part of the game the lifecycle hooks query.
type Host interface {
	// SavePath returns the primary save file path of slot.
	SavePath(slot int) string
	// LiveEntityIDs lists every character the host currently tracks.
	LiveEntityIDs() []string
	// EntityIdentity returns the current metadata of a character.
	EntityIdentity(id string) (Identity, bool)
}

// Lifecycle binds a Manager to a Host.
type Lifecycle struct {
	manager *Manager
	host    Host
}

// NewLifecycle constructs the hook set for manager and host.
func NewLifecycle(manager *Manager, host Host) *Lifecycle {
	return &Lifecycle{manager: manager, host: host}
}

// Register installs the three hooks into registry under CallbackName.
func (l *Lifecycle) Register(registry *lifecycle.Registry) error {
	if err := registry.OnLoad(CallbackName, l.OnLoad); err != nil {
		return err
	}
	if err := registry.OnSave(CallbackName, l.OnSave); err != nil {
		return err
	}
	return registry.OnDelete(CallbackName, l.OnDelete)
}

// OnLoad resets the manager and loads the side-file of slot.
func (l *Lifecycle) OnLoad(ctx context.Context, slot int) error {
	if slot == ignoredSlot {
		return nil
	}
	var path string
	return l.guard(ctx, "load", slot, &path, func() error {
		path = l.manager.SideFilePath(l.host.SavePath(slot))
		if err := l.manager.Load(ctx, path); err != nil {
			return err
		}
		l.manager.emit(ctx, activity.BuildSaveDataLoadedEvent(activity.SaveDataEventInput{
			Path:       path,
			Slot:       slot,
			Target:     l.manager.Target(),
			Entities:   len(l.manager.EntityIDs()),
			OccurredAt: l.manager.cfg.clock(),
		}))
		return nil
	})
}

// OnSave refreshes the metadata of every live character, drops characters
// the host no longer tracks and writes the side-file of slot.
func (l *Lifecycle) OnSave(ctx context.Context, slot int, comment string) error {
	if slot == ignoredSlot {
		return nil
	}
	var path string
	return l.guard(ctx, "save", slot, &path, func() error {
		savePath := l.host.SavePath(slot)
		path = l.manager.SideFilePath(savePath)
		live := l.host.LiveEntityIDs()
		for _, id := range live {
			l.refresh(id)
		}
		l.manager.Cleanup(live)

		target := filepath.Base(savePath)
		if err := l.manager.Save(ctx, path, target); err != nil {
			return err
		}
		var metadata map[string]any
		if comment != "" {
			metadata = map[string]any{"comment": comment}
		}
		l.manager.emit(ctx, activity.BuildSaveDataSavedEvent(activity.SaveDataEventInput{
			Path:       path,
			Slot:       slot,
			Target:     target,
			Entities:   len(l.manager.EntityIDs()),
			Metadata:   metadata,
			OccurredAt: l.manager.cfg.clock(),
		}))
		return nil
	})
}

// OnDelete removes the side-file of slot when present.
func (l *Lifecycle) OnDelete(ctx context.Context, slot int) error {
	var path string
	return l.guard(ctx, "delete", slot, &path, func() error {
		path = l.manager.SideFilePath(l.host.SavePath(slot))
		deleted, err := l.manager.Delete(ctx, path)
		if err != nil || !deleted {
			return err
		}
		l.manager.emit(ctx, activity.BuildSaveDataDeletedEvent(activity.SaveDataEventInput{
			Path:       path,
			Slot:       slot,
			OccurredAt: l.manager.cfg.clock(),
		}))
		return nil
	})
}

// refresh keeps the stored identity of a character current. NPC-routed ids
// are skipped: their records carry no identity.
func (l *Lifecycle) refresh(id string) {
	if l.manager.IsNPC(id) {
		return
	}
	identity, ok := l.host.EntityIdentity(id)
	if !ok {
		return
	}
	if l.manager.Rename(id, identity.LastName, identity.FirstName, identity.CreatedAt) {
		return
	}
	l.manager.RegisterEntity(id, identity.LastName, identity.FirstName, identity.CreatedAt)
}

// guard runs fn, turning errors and panics into a HookError that is logged
// and emitted. path is read after fn so hooks can fill it in.
func (l *Lifecycle) guard(ctx context.Context, hook string, slot int, path *string, fn func() error) (err error) {
	clock := l.manager.cfg.clock
	start := clock()
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("panic: %v", recovered)
		}
		if err != nil {
			err = &HookError{Hook: hook, Slot: slot, Path: *path, Err: err}
		}
		l.manager.cfg.logger.LogHook(HookLogEvent{
			Hook:     hook,
			Slot:     slot,
			Path:     *path,
			Duration: clock().Sub(start),
			Err:      err,
		})
		if err != nil {
			l.manager.emit(ctx, activity.BuildHookFailedEvent(hook, slot, err))
		}
	}()
	return fn()
}
