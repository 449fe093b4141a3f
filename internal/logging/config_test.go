package logging

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		" DEBUG ": zerolog.DebugLevel,
		"warning": zerolog.WarnLevel,
		"off":     zerolog.Disabled,
	}
	for raw, want := range cases {
		got, ok := ParseLevel(raw)
		if !ok || got != want {
			t.Fatalf("%q: got=%v ok=%v want=%v", raw, got, ok, want)
		}
	}
	if _, ok := ParseLevel("loud"); ok {
		t.Fatalf("unknown level should not parse")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	env := map[string]string{
		EnvLogLevel:     "error",
		EnvLogTimestamp: "true",
		EnvLogNoColor:   "1",
		EnvLogJSON:      "nope",
	}
	cfg := DefaultConfig(ProfileTest)
	ApplyEnvOverrides(&cfg, func(k string) string { return env[k] })
	if cfg.Level != zerolog.ErrorLevel || !cfg.Timestamp || !cfg.NoColor || cfg.JSON {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}
