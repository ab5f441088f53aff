package config

import (
	"strings"
	"testing"
	"time"
)

// clearEnv blanks every variable Load reads, so host environments cannot
// bleed into the assertions.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"LOG_LEVEL", "LOG_PRETTY",
		"ORDERQ_DB_PATH", "ORDERQ_UNDO_DEPTH", "ORDERQ_GRACE_PERIOD", "ORDERQ_SESSION_TTL",
		"OTEL_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_INSECURE",
		"OTEL_SERVICE_NAME", "OTEL_TRACES_SAMPLER_ARG",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "info" || cfg.LogPretty {
		t.Fatalf("logging defaults wrong: %+v", cfg)
	}
	if cfg.DBPath != "orderq.db" {
		t.Fatalf("DBPath = %q", cfg.DBPath)
	}
	if cfg.UndoDepth != 3 {
		t.Fatalf("UndoDepth = %d", cfg.UndoDepth)
	}
	if cfg.GracePeriod != 30*time.Minute {
		t.Fatalf("GracePeriod = %v", cfg.GracePeriod)
	}
	if cfg.SessionTTL != 2*time.Minute {
		t.Fatalf("SessionTTL = %v", cfg.SessionTTL)
	}
	if cfg.OTEL.Enabled || cfg.OTEL.Endpoint != "localhost:4317" || !cfg.OTEL.Insecure {
		t.Fatalf("OTEL defaults wrong: %+v", cfg.OTEL)
	}
	if cfg.OTEL.SampleRatio != 1.0 {
		t.Fatalf("SampleRatio = %v", cfg.OTEL.SampleRatio)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_PRETTY", "yes")
	t.Setenv("ORDERQ_DB_PATH", "/tmp/q.db")
	t.Setenv("ORDERQ_UNDO_DEPTH", "5")
	t.Setenv("ORDERQ_GRACE_PERIOD", "1h")
	t.Setenv("ORDERQ_SESSION_TTL", "90s")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.25")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "debug" || !cfg.LogPretty {
		t.Fatalf("logging overrides wrong: %+v", cfg)
	}
	if cfg.DBPath != "/tmp/q.db" || cfg.UndoDepth != 5 {
		t.Fatalf("engine overrides wrong: %+v", cfg)
	}
	if cfg.GracePeriod != time.Hour || cfg.SessionTTL != 90*time.Second {
		t.Fatalf("duration overrides wrong: %+v", cfg)
	}
	if !cfg.OTEL.Enabled || cfg.OTEL.SampleRatio != 0.25 {
		t.Fatalf("OTEL overrides wrong: %+v", cfg.OTEL)
	}
}

func TestLoad_NormalizesWarning(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "warning")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("LogLevel = %q, want warn", cfg.LogLevel)
	}
}

func TestLoad_ValidationFailures(t *testing.T) {
	cases := []struct {
		key, val, wantErr string
	}{
		{"LOG_LEVEL", "verbose", "LOG_LEVEL"},
		{"ORDERQ_DB_PATH", "   ", "ORDERQ_DB_PATH"},
		{"ORDERQ_UNDO_DEPTH", "0", "ORDERQ_UNDO_DEPTH"},
		{"ORDERQ_GRACE_PERIOD", "-5m", "ORDERQ_GRACE_PERIOD"},
		{"ORDERQ_SESSION_TTL", "-1s", "ORDERQ_SESSION_TTL"},
		{"OTEL_TRACES_SAMPLER_ARG", "1.5", "OTEL_TRACES_SAMPLER_ARG"},
	}
	for _, c := range cases {
		t.Run(c.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(c.key, c.val)
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), c.wantErr) {
				t.Fatalf("want error mentioning %s, got %v", c.wantErr, err)
			}
		})
	}
}

func TestLoad_UnparsableValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("ORDERQ_UNDO_DEPTH", "lots")
	t.Setenv("ORDERQ_GRACE_PERIOD", "soon")
	t.Setenv("LOG_PRETTY", "maybe")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.UndoDepth != 3 || cfg.GracePeriod != 30*time.Minute || cfg.LogPretty {
		t.Fatalf("unparsable values must fall back to defaults: %+v", cfg)
	}
}

func TestMustLoad_PanicsOnInvalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "verbose")

	defer func() {
		if recover() == nil {
			t.Fatalf("MustLoad must panic on invalid configuration")
		}
	}()
	MustLoad()
}
