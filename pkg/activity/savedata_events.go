package activity

import (
	"strings"
	"time"
)

const (
	VerbSaveDataLoaded   = "savedata.loaded"
	VerbSaveDataSaved    = "savedata.saved"
	VerbSaveDataDeleted  = "savedata.deleted"
	VerbPresetCommitted  = "preset.committed"
	VerbPresetApplied    = "preset.applied"
	VerbPresetDiscarded  = "preset.discarded"
	VerbLifecycleFailure = "lifecycle.failed"

	ObjectSaveData = "savedata"
	ObjectPreset   = "preset"
	ObjectHook     = "lifecycle.hook"
)

// SaveDataEventInput describes the fields shared by side-file lifecycle events.
type SaveDataEventInput struct {
	Path       string
	Slot       int
	Target     string
	Entities   int
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// PresetEventInput describes the fields shared by preset transfer events.
type PresetEventInput struct {
	EntityID   string
	Preset     string
	Path       string
	Plugins    []string
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildSaveDataLoadedEvent constructs an event for a side-file load.
func BuildSaveDataLoadedEvent(input SaveDataEventInput) Event {
	return buildSaveDataEvent(VerbSaveDataLoaded, input)
}

// BuildSaveDataSavedEvent constructs an event for a side-file save.
func BuildSaveDataSavedEvent(input SaveDataEventInput) Event {
	return buildSaveDataEvent(VerbSaveDataSaved, input)
}

// BuildSaveDataDeletedEvent constructs an event for a side-file deletion.
func BuildSaveDataDeletedEvent(input SaveDataEventInput) Event {
	return buildSaveDataEvent(VerbSaveDataDeleted, input)
}

// BuildPresetCommittedEvent constructs an event for a written preset side-file.
func BuildPresetCommittedEvent(input PresetEventInput) Event {
	return buildPresetEvent(VerbPresetCommitted, input)
}

// BuildPresetAppliedEvent constructs an event for plugin data applied from a preset.
func BuildPresetAppliedEvent(input PresetEventInput) Event {
	return buildPresetEvent(VerbPresetApplied, input)
}

// BuildPresetDiscardedEvent constructs an event for a deleted preset side-file.
func BuildPresetDiscardedEvent(input PresetEventInput) Event {
	return buildPresetEvent(VerbPresetDiscarded, input)
}

// BuildHookFailedEvent constructs an event for a lifecycle hook that failed.
func BuildHookFailedEvent(hook string, slot int, err error) Event {
	metadata := map[string]any{"slot": slot}
	if err != nil {
		metadata["error"] = err.Error()
	}
	return Event{
		Verb:       VerbLifecycleFailure,
		ObjectType: ObjectHook,
		ObjectID:   strings.TrimSpace(hook),
		Metadata:   metadata,
	}
}

func buildSaveDataEvent(verb string, input SaveDataEventInput) Event {
	metadata := cloneMap(input.Metadata)
	metadata = ensureMetadata(metadata)
	metadata["slot"] = input.Slot
	if input.Target != "" {
		metadata["target"] = input.Target
	}
	if input.Entities > 0 {
		metadata["entities"] = input.Entities
	}

	objectID := strings.TrimSpace(input.Path)
	if objectID == "" {
		objectID = ObjectSaveData
	}

	return Event{
		Verb:       verb,
		ObjectType: ObjectSaveData,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func buildPresetEvent(verb string, input PresetEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if input.Path != "" {
		metadata = ensureMetadata(metadata)
		metadata["path"] = input.Path
	}
	if len(input.Plugins) > 0 {
		metadata = ensureMetadata(metadata)
		metadata["plugins"] = append([]string{}, input.Plugins...)
	}

	objectID := strings.TrimSpace(input.Preset)
	if objectID == "" {
		// in-memory presets have no file name yet
		objectID = "memory"
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.EntityID),
		ObjectType: ObjectPreset,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
