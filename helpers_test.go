package vuet

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type recordingHost struct {
	mu         sync.Mutex
	observed   int
	keys       []string
	destroyed  int
	observeErr error
	destroyErr error
}

func (h *recordingHost) Observe(*Store) (Binding, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.observeErr != nil {
		return nil, h.observeErr
	}
	h.observed++
	return &recordingBinding{host: h}, nil
}

func (h *recordingHost) addedKeys() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.keys...)
}

type recordingBinding struct {
	host *recordingHost
}

func (b *recordingBinding) SetKey(path string, _ State) {
	b.host.mu.Lock()
	b.host.keys = append(b.host.keys, path)
	b.host.mu.Unlock()
}

func (b *recordingBinding) Destroy() error {
	b.host.mu.Lock()
	b.host.destroyed++
	err := b.host.destroyErr
	b.host.mu.Unlock()
	return err
}

func leafWithData(defaults State) *Leaf {
	return &Leaf{Data: StaticData(defaults)}
}

func staticFetch(result State) FetchFunc {
	return func(context.Context, *FetchContext) (State, error) {
		return result, nil
	}
}

func failingFetch(err error) FetchFunc {
	return func(context.Context, *FetchContext) (State, error) {
		return nil, err
	}
}

var errOffline = errors.New("offline")

func mustInit(t *testing.T, v *Vuet) *recordingHost {
	t.Helper()
	host := &recordingHost{}
	if err := v.Init(context.Background(), host); err != nil {
		t.Fatalf("init: %v", err)
	}
	return host
}
