package logger

import (
	"testing"

	"scanagram/pkg/config"
)

func TestNewWithValidLevels(t *testing.T) {
	levels := []string{"debug", "info", "warn", "warning", "error", "fatal", "disabled", ""}

	for _, level := range levels {
		t.Run("level_"+level, func(t *testing.T) {
			l, err := New(&config.LoggingConfig{Level: level})
			if err != nil {
				t.Fatalf("Expected logger for level %q, got error: %v", level, err)
			}
			if l == nil {
				t.Fatal("Expected non-nil logger")
			}
		})
	}
}

func TestNewWithInvalidLevel(t *testing.T) {
	if _, err := New(&config.LoggingConfig{Level: "loud"}); err == nil {
		t.Error("Expected error for unknown log level")
	}
}

func TestWithFieldsReturnsNewLogger(t *testing.T) {
	l, err := New(&config.LoggingConfig{Level: "disabled"})
	if err != nil {
		t.Fatal(err)
	}

	derived := l.WithField("username", "analyst").WithFields(map[string]interface{}{
		"posts": 50,
	})
	if derived == l {
		t.Error("Expected WithField to return a derived logger")
	}

	// The original logger must be unaffected by derivation.
	if l.(*zerologLogger).fields["username"] != nil {
		t.Error("Expected parent logger fields to be unchanged")
	}
	if derived.(*zerologLogger).fields["posts"] != 50 {
		t.Error("Expected derived logger to carry the added field")
	}
}

func TestWithErrorNilIsNoop(t *testing.T) {
	l, err := New(&config.LoggingConfig{Level: "disabled"})
	if err != nil {
		t.Fatal(err)
	}
	if l.WithError(nil) != l {
		t.Error("Expected WithError(nil) to return the same logger")
	}
}

func TestGetLoggerProvidesDefault(t *testing.T) {
	globalLogger = nil
	if GetLogger() == nil {
		t.Fatal("Expected GetLogger to create a default logger")
	}
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	// Must not panic on any method.
	l.Debug("x")
	l.Info("x")
	l.Warn("x")
	l.Error("x")
	l.WithField("k", "v").WithError(nil).InfoWithFields("x", map[string]interface{}{"a": 1})
	if l.GetZerolog() != nil {
		t.Error("Expected nop logger to have no zerolog backend")
	}
}
