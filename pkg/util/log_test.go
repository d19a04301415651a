package util

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

// saveLoggerState saves the current logger state for restoration
func saveLoggerState() (io.Writer, logrus.Level, logrus.Formatter) {
	return Logger.Out, Logger.Level, Logger.Formatter
}

// restoreLoggerState restores the logger to its previous state
func restoreLoggerState(out io.Writer, level logrus.Level, formatter logrus.Formatter) {
	Logger.SetOutput(out)
	Logger.SetLevel(level)
	Logger.SetFormatter(formatter)
}

func TestSetLogLevel(t *testing.T) {
	out, level, formatter := saveLoggerState()
	defer restoreLoggerState(out, level, formatter)

	tests := []struct {
		level   string
		wantErr bool
	}{
		{"debug", false},
		{"info", false},
		{"warn", false},
		{"warning", false},
		{"error", false},
		{"invalid", true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			err := SetLogLevel(tt.level)
			if (err != nil) != tt.wantErr {
				t.Errorf("SetLogLevel(%q) error = %v, wantErr %v", tt.level, err, tt.wantErr)
			}
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	out, level, formatter := saveLoggerState()
	defer restoreLoggerState(out, level, formatter)

	var buf bytes.Buffer
	SetLogOutput(&buf)
	if err := SetLogLevel("warn"); err != nil {
		t.Fatal(err)
	}

	Logger.Debugf("hidden %d", 1)
	WithRouter("SIN1").Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug/info should be filtered at warn level, got %q", buf.String())
	}

	Warnf("shown %d", 2)
	WithOperation("bgp.disable").Error("shown")
	if !strings.Contains(buf.String(), "shown 2") {
		t.Errorf("warn output missing: %q", buf.String())
	}
}

func TestConfigureLogging(t *testing.T) {
	out, level, formatter := saveLoggerState()
	defer restoreLoggerState(out, level, formatter)

	if err := ConfigureLogging("loud", false); err == nil {
		t.Error("ConfigureLogging(loud) should fail")
	}

	var buf bytes.Buffer
	SetLogOutput(&buf)
	if err := ConfigureLogging("info", true); err != nil {
		t.Fatal(err)
	}

	WithRouter("SIN1").WithField("key", "bgp_disabled").Info("entry added")

	var rec map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if rec["router"] != "SIN1" {
		t.Errorf("router = %v, want SIN1", rec["router"])
	}
	if rec["key"] != "bgp_disabled" {
		t.Errorf("key = %v, want bgp_disabled", rec["key"])
	}
	if rec["msg"] != "entry added" {
		t.Errorf("msg = %v", rec["msg"])
	}
}

func TestContextHelpers(t *testing.T) {
	tests := []struct {
		name  string
		entry *logrus.Entry
		field string
		want  interface{}
	}{
		{"WithRouter", WithRouter("SIN1"), "router", "SIN1"},
		{"WithColumn", WithColumn("interface"), "column", "interface"},
		{"WithOperation", WithOperation("ethernet.disable"), "operation", "ethernet.disable"},
		{"WithField", WithField("key", "value"), "key", "value"},
		{"WithFields", WithFields(map[string]interface{}{"n": 3}), "n", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.Data[tt.field]; got != tt.want {
				t.Errorf("Data[%q] = %v, want %v", tt.field, got, tt.want)
			}
		})
	}
}
