package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer

	config := &Config{
		Level:       DEBUG,
		Format:      TEXT,
		Output:      &buf,
		DefaultTags: map[string]interface{}{"test": true},
	}
	logger := New(config)

	logger.Debug("This is a debug message")
	if !strings.Contains(buf.String(), "DEBUG") || !strings.Contains(buf.String(), "This is a debug message") {
		t.Errorf("Expected debug message in log output, got: %s", buf.String())
	}

	buf.Reset()
	logger.Info("This is an info message")
	if !strings.Contains(buf.String(), "INFO") || !strings.Contains(buf.String(), "This is an info message") {
		t.Errorf("Expected info message in log output, got: %s", buf.String())
	}

	// Test with context
	buf.Reset()
	logger.WithContext("teamwork").Warn("This is a warning")
	if !strings.Contains(buf.String(), "WARN") ||
		!strings.Contains(buf.String(), "This is a warning") ||
		!strings.Contains(buf.String(), "[teamwork]") {
		t.Errorf("Expected warning with context in log output, got: %s", buf.String())
	}

	// Test with fields
	buf.Reset()
	logger.WithField("project_id", "1174174").Error("This is an error")
	if !strings.Contains(buf.String(), "ERROR") ||
		!strings.Contains(buf.String(), "This is an error") ||
		!strings.Contains(buf.String(), "project_id=1174174") {
		t.Errorf("Expected error with field in log output, got: %s", buf.String())
	}

	// Test JSON format
	buf.Reset()
	jsonLogger := New(&Config{
		Level:  INFO,
		Format: JSON,
		Output: &buf,
	})

	jsonLogger.Info("JSON message")
	if !strings.Contains(buf.String(), "\"level\":\"INFO\"") ||
		!strings.Contains(buf.String(), "\"message\":\"JSON message\"") {
		t.Errorf("Expected JSON formatted log, got: %s", buf.String())
	}
}

func TestLogLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Level: WARN, Format: TEXT, Output: &buf})

	logger.Debug("hidden")
	logger.Info("hidden too")
	if buf.Len() != 0 {
		t.Errorf("Expected no output below WARN, got: %s", buf.String())
	}

	logger.Warn("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("Expected WARN output, got: %s", buf.String())
	}
}

func TestErrorHelpers(t *testing.T) {
	baseErr := errors.New("base error")
	appErr := ValidationError(baseErr, "validation failed")

	if appErr.Type != ErrorTypeValidation {
		t.Errorf("Expected error type %s, got %s", ErrorTypeValidation, appErr.Type)
	}

	if !strings.Contains(appErr.Error(), "validation failed") ||
		!strings.Contains(appErr.Error(), "base error") {
		t.Errorf("Error message incorrect: %s", appErr.Error())
	}

	if !errors.Is(appErr, baseErr) {
		t.Error("Expected errors.Is to match the wrapped error")
	}

	// Wrapping an AppError should merge messages and keep fields
	inner := APIError(baseErr, "request failed").WithField("status", 502)
	outer := NewError(inner, ErrorTypeNetwork, "upstream unavailable")
	if outer.Type != ErrorTypeNetwork {
		t.Errorf("Expected outer type %s, got %s", ErrorTypeNetwork, outer.Type)
	}
	if outer.Fields["status"] != 502 {
		t.Errorf("Expected merged field status=502, got %v", outer.Fields["status"])
	}
	if !strings.Contains(outer.Message, "request failed") {
		t.Errorf("Expected merged message, got %s", outer.Message)
	}

	if !IsErrorType(AuthError(baseErr, "no token"), ErrorTypeAuth) {
		t.Error("Expected IsErrorType to identify auth errors")
	}
	if IsErrorType(baseErr, ErrorTypeAuth) {
		t.Error("Plain errors should not match any ErrorType")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":    DEBUG,
		"INFO":     INFO,
		"Warn":     WARN,
		"error":    ERROR,
		"fatal":    FATAL,
		"disabled": DISABLED,
		"bogus":    INFO,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
