package metrics

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriteTextIncludesRegisteredMetrics(t *testing.T) {
	r := New()
	r.ArenaBytesUsed.Set(128)
	r.QueueDepth.Set(3)
	r.ReportsSent.Inc()
	r.ReportsAcked.Inc()

	var buf bytes.Buffer
	if err := r.WriteText(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, name := range []string{
		"sensornode_arena_bytes_used",
		"sensornode_queue_depth",
		"sensornode_reports_sent_total",
		"sensornode_reports_acked_total",
	} {
		if !strings.Contains(out, name) {
			t.Fatalf("expected output to mention %q, got:\n%s", name, out)
		}
	}
}

func TestWriteTextReflectsCounterIncrements(t *testing.T) {
	r := New()
	r.WakeSeconds.Add(5)
	r.SleepSeconds.Add(2)

	var buf bytes.Buffer
	if err := r.WriteText(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "sensornode_wake_seconds_total 5") {
		t.Fatalf("expected wake seconds counter to read 5, got:\n%s", out)
	}
	if !strings.Contains(out, "sensornode_sleep_seconds_total 2") {
		t.Fatalf("expected sleep seconds counter to read 2, got:\n%s", out)
	}
}
