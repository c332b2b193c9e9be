// Package usersink forwards store activity to a go-users ActivitySink.
package usersink

import (
	"context"
	"strings"

	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"

	"github.com/goliatone/go-vuet/pkg/activity"
)

// Hook is an activity.Hook writing one ActivityRecord per event.
type Hook struct {
	Sink usertypes.ActivitySink
}

var _ activity.Hook = Hook{}

// Notify records event with the module path as ObjectID. Identifiers that
// are not UUIDs are recorded as uuid.Nil. Store specific fields travel in
// Data under "path", "fetch_id", "fields" and "error".
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	event = event.Normalize()
	if !event.Valid() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return h.Sink.Log(ctx, usertypes.ActivityRecord{
		ActorID:    identifier(event.ActorID),
		UserID:     identifier(event.UserID),
		TenantID:   identifier(event.TenantID),
		Verb:       event.Verb,
		ObjectType: event.ObjectType,
		ObjectID:   event.Path,
		Channel:    event.Channel,
		Data:       recordData(event),
		OccurredAt: event.OccurredAt,
	})
}

func recordData(event activity.Event) map[string]any {
	data := make(map[string]any, len(event.Metadata)+4)
	for key, value := range event.Metadata {
		data[key] = value
	}
	data["path"] = event.Path
	if event.FetchID != "" {
		data["fetch_id"] = event.FetchID
	}
	if len(event.Fields) > 0 {
		data["fields"] = event.Fields
	}
	if event.Error != "" {
		data["error"] = event.Error
	}
	return data
}

func identifier(raw string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil
	}
	return id
}
