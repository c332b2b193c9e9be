package activity

import (
	"slices"
	"time"
)

// Verbs emitted by a vuet store.
const (
	VerbStateCreated = "store.state.created"
	VerbStateMerged  = "store.state.merged"
	VerbStateReset   = "store.state.reset"
	VerbFetchApplied = "store.fetch.applied"
	VerbFetchFailed  = "store.fetch.failed"
)

// Object types of store events.
const (
	ObjectState = "store.state"
	ObjectFetch = "store.fetch"
)

// StoreEventInput carries what the store knows about a write or a fetch.
type StoreEventInput struct {
	Path    string
	FetchID string
	Fields  []string
	Err     error

	ActorID    string
	UserID     string
	TenantID   string
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildStateCreatedEvent describes the first write to a path.
func BuildStateCreatedEvent(input StoreEventInput) Event {
	return input.event(VerbStateCreated, ObjectState)
}

// BuildStateMergedEvent describes a shallow merge into an existing path.
func BuildStateMergedEvent(input StoreEventInput) Event {
	return input.event(VerbStateMerged, ObjectState)
}

// BuildStateResetEvent describes a path restored to its defaults.
func BuildStateResetEvent(input StoreEventInput) Event {
	return input.event(VerbStateReset, ObjectState)
}

// BuildFetchAppliedEvent describes a fetch result merged into the store.
func BuildFetchAppliedEvent(input StoreEventInput) Event {
	return input.event(VerbFetchApplied, ObjectFetch)
}

// BuildFetchFailedEvent describes a fetch whose error reached the caller.
func BuildFetchFailedEvent(input StoreEventInput) Event {
	return input.event(VerbFetchFailed, ObjectFetch)
}

func (in StoreEventInput) event(verb, objectType string) Event {
	event := Event{
		Verb:       verb,
		ObjectType: objectType,
		Path:       in.Path,
		FetchID:    in.FetchID,
		Fields:     slices.Clone(in.Fields),
		ActorID:    in.ActorID,
		UserID:     in.UserID,
		TenantID:   in.TenantID,
		Channel:    in.Channel,
		Metadata:   cloneMap(in.Metadata),
		OccurredAt: in.OccurredAt,
	}
	if in.Err != nil {
		event.Error = in.Err.Error()
	}
	return event
}
