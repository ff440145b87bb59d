package logger

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		" warn ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"chatty":  zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestWithAndNamed(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := FromCore(core).Named("palette").With(String("component", "palette"))

	log.Debug("dropped")
	log.Info("bookmarks applied", Int("count", 3), Duration("took", time.Millisecond))
	log.Warnf("slow query %q", "doc")
	log.Error("search failed", Error(errors.New("boom")))

	entries := logs.AllUntimed()
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[0].LoggerName != "palette" {
		t.Errorf("logger name = %q", entries[0].LoggerName)
	}

	ctx := entries[0].ContextMap()
	if ctx["component"] != "palette" || ctx["count"] != int64(3) {
		t.Errorf("context = %v", ctx)
	}
	if entries[1].Message != `slow query "doc"` {
		t.Errorf("formatted message = %q", entries[1].Message)
	}
	if entries[2].ContextMap()["error"] != "boom" {
		t.Errorf("error field = %v", entries[2].ContextMap()["error"])
	}
}

func TestNopDiscards(t *testing.T) {
	log := NewNop().With(Bool("x", true))
	log.Info("nothing")
	if err := log.Sync(); err != nil {
		t.Errorf("Sync() = %v", err)
	}
}
