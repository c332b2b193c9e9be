package metrics_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	vuet "github.com/goliatone/go-vuet"
	"github.com/goliatone/go-vuet/pkg/activity"
	"github.com/goliatone/go-vuet/pkg/metrics"
)

func family(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	return nil
}

func TestNewWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	if m == nil {
		t.Fatal("NewWithRegistry returned nil")
	}
	if m.FetchTotal == nil {
		t.Error("FetchTotal is nil")
	}
	if m.FetchDuration == nil {
		t.Error("FetchDuration is nil")
	}
	if m.FetchErrors == nil {
		t.Error("FetchErrors is nil")
	}
	if m.StoreEvents == nil {
		t.Error("StoreEvents is nil")
	}
}

func TestCollectorRecordsFetches(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	calls := 0
	v := vuet.New(
		vuet.WithModules(vuet.Namespace{
			"feed": &vuet.Leaf{Data: vuet.StaticData(nil), Fetch: func(context.Context, *vuet.FetchContext) (vuet.State, error) {
				calls++
				if calls == 2 {
					return nil, errors.New("offline")
				}
				return vuet.State{"items": calls}, nil
			}},
			"static": &vuet.Leaf{Data: vuet.StaticData(nil)},
		}),
		vuet.WithFetchLogger(m),
	)
	if err := v.Init(context.Background(), vuet.NopHost{}); err != nil {
		t.Fatalf("init: %v", err)
	}

	if _, err := v.Fetch(context.Background(), "feed", nil); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if _, err := v.Fetch(context.Background(), "feed", nil); err == nil {
		t.Fatal("expected second fetch to fail")
	}
	if _, err := v.Fetch(context.Background(), "static", nil); err != nil {
		t.Fatalf("fetch static: %v", err)
	}

	total := family(t, reg, "vuet_fetch_total")
	if total == nil {
		t.Fatal("vuet_fetch_total metric not found")
	}
	if len(total.GetMetric()) != 3 {
		t.Errorf("expected 3 metric series, got %d", len(total.GetMetric()))
	}

	duration := family(t, reg, "vuet_fetch_duration_seconds")
	if duration == nil {
		t.Fatal("vuet_fetch_duration_seconds metric not found")
	}
	if got := duration.GetMetric()[0].GetHistogram().GetSampleCount(); got != 2 {
		t.Errorf("expected 2 timed fetches, got %d", got)
	}

	errs := family(t, reg, "vuet_fetch_errors_total")
	if errs == nil {
		t.Fatal("vuet_fetch_errors_total metric not found")
	}
	if got := errs.GetMetric()[0].GetCounter().GetValue(); got != 1 {
		t.Errorf("expected 1 fetch error, got %v", got)
	}
}

func TestCollectorCountsStoreEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	v := vuet.New(
		vuet.WithModules(vuet.Namespace{"a": &vuet.Leaf{Data: vuet.StaticData(nil)}, "b": &vuet.Leaf{Data: vuet.StaticData(nil)}}),
		vuet.WithActivityHooks(activity.Hooks{m}),
	)
	if err := v.Init(context.Background(), vuet.NopHost{}); err != nil {
		t.Fatalf("init: %v", err)
	}

	events := family(t, reg, "vuet_store_events_total")
	if events == nil {
		t.Fatal("vuet_store_events_total metric not found")
	}
	counts := map[string]float64{}
	for _, metric := range events.GetMetric() {
		for _, label := range metric.GetLabel() {
			if label.GetName() == "verb" {
				counts[label.GetValue()] = metric.GetCounter().GetValue()
			}
		}
	}
	if counts[activity.VerbStateCreated] != 2 {
		t.Errorf("expected 2 created events, got %v", counts[activity.VerbStateCreated])
	}
	if counts[activity.VerbStateReset] != 2 {
		t.Errorf("expected 2 reset events, got %v", counts[activity.VerbStateReset])
	}
}
