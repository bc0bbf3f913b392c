package core

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestExpvarMetricsRecorderAggregates(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	ctx := context.Background()
	rec.Observe(ctx, "create_organization", true, 10*time.Millisecond)
	rec.Observe(ctx, "create_organization", true, 5*time.Millisecond)
	rec.Observe(ctx, "create_organization", false, time.Millisecond)
	rec.Observe(ctx, "", true, time.Millisecond)

	snap := rec.Snapshot()
	if got := snap.DurationsMS["create_organization"]; got != 16 {
		t.Fatalf("expected 16ms total, got %v", got)
	}
	if snap.Results["create_organization"]["success"] != 2 || snap.Results["create_organization"]["error"] != 1 {
		t.Fatalf("unexpected result counters: %+v", snap.Results)
	}
	if _, ok := snap.Results[""]; ok {
		t.Fatalf("empty operation must be ignored")
	}
	if rec.Name() == "" {
		t.Fatalf("expected generated expvar name")
	}
}

func TestJSONTracerEmitsLines(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewJSONTracer(&buf)

	_, span := tracer.Start(context.Background(), "set_course_value")
	span.End(nil)
	_, span = tracer.Start(context.Background(), "delete_organization")
	span.End(errors.New("boom"))

	entries := tracer.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Status != "success" || entries[1].Status != "error" || entries[1].Error != "boom" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.Contains(lines[0], `"set_course_value"`) {
		t.Fatalf("unexpected encoded output: %q", buf.String())
	}
}

func TestJSONTracerNilWriterRetainsEntries(t *testing.T) {
	tracer := NewJSONTracer(nil)
	_, span := tracer.Start(context.Background(), "clear_matrix")
	span.End(nil)
	if entries := tracer.Entries(); len(entries) != 1 || entries[0].Operation != "clear_matrix" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}
