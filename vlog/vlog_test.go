package vlog

import (
	"log/slog"
	"strings"
	"testing"
)

func TestNewLogsAreBuffered(t *testing.T) {
	log, ring := New(slog.LevelInfo, false)
	log.Info("hello", "key", "value")
	lines := ring.Lines()
	if len(lines) != 1 {
		t.Fatalf("len(lines) = %d, want 1", len(lines))
	}
	if !strings.Contains(lines[0], "hello") || !strings.Contains(lines[0], "key=value") {
		t.Errorf("line = %q, missing message or attribute", lines[0])
	}
}

func TestRingEvictsOldestBeyondCapacity(t *testing.T) {
	ring := NewRing(2)
	ring.push("a")
	ring.push("b")
	ring.push("c")
	lines := ring.Lines()
	if len(lines) != 2 {
		t.Fatalf("len(lines) = %d, want 2", len(lines))
	}
	if lines[0] != "b" || lines[1] != "c" {
		t.Errorf("lines = %v, want [b c]", lines)
	}
}

func TestNewRingDefaultsCapacity(t *testing.T) {
	ring := NewRing(0)
	if ring.cap != 500 {
		t.Errorf("default capacity = %d, want 500", ring.cap)
	}
}

func TestBelowWarnLevelIsBuffered(t *testing.T) {
	log, ring := New(slog.LevelInfo, false)
	log.Info("quiet message")
	if len(ring.Lines()) != 1 {
		t.Fatalf("expected the info line to still be buffered")
	}
}
